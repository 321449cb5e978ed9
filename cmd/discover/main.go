// Command discover runs discovery passes and reviews queue items from the
// terminal against the same database the server uses.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/api"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/infrastructure"
)

const shutdownTimeout = 5 * time.Second

var (
	configPath string
	verbose    bool
	jsonOutput bool

	infra  *infrastructure.Infrastructure
	domain *api.Domain
)

var rootCmd = &cobra.Command{
	Use:   "discover",
	Short: "Research tool discovery pipeline",
	Long: `Run the MaLDReTH discovery pipeline outside the server.

Configuration is read the same way as the server: config.toml (or
MALDRETH_CONFIG), the MALDRETH_ENV overlay, then environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsDomain(cmd) {
			return nil
		}
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if infra != nil {
			infra.Lifecycle.Shutdown(shutdownTimeout)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Base config file (overrides MALDRETH_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// needsDomain is false for help and shell completion, which run without
// configuration or a database.
func needsDomain(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			return false
		}
	}
	return true
}

func setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	infra, err = infrastructure.New(cfg, infrastructure.Options{
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})
	if err != nil {
		return err
	}

	if err := infra.Start(); err != nil {
		return err
	}
	infra.Lifecycle.WaitForStartup()

	if !infra.Database.Ready() {
		return fmt.Errorf("database unavailable: %s", cfg.Database.Host)
	}

	domain, err = api.NewDomain(api.NewRuntime(cfg, infra), &cfg.Discovery)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
