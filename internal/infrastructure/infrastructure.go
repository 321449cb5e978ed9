// Package infrastructure assembles the process-wide dependencies shared by
// the server and the CLI: lifecycle coordination, logging, the database and
// the optional run archive.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/database"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/lifecycle"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/storage"
)

// Infrastructure holds the core systems required by the discovery domains.
// Archive is nil when the run archive is disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Archive   storage.System
}

// Options adjust how New builds the logger.
type Options struct {
	// Output receives log records. Nil selects stderr.
	Output io.Writer
	// Level is the minimum log level.
	Level slog.Level
}

// New creates an Infrastructure from the application configuration. Systems
// are initialized but not started; call Start separately.
func New(cfg *config.Config, opts Options) (*Infrastructure, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: opts.Level}))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
	}

	if cfg.Archive.Enabled {
		archive, err := storage.New(&cfg.Archive, logger)
		if err != nil {
			return nil, fmt.Errorf("archive init failed: %w", err)
		}
		infra.Archive = archive
	} else {
		logger.Info("run archive disabled")
	}

	return infra, nil
}

// Start registers the database and archive with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if i.Archive != nil {
		if err := i.Archive.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("archive start failed: %w", err)
		}
	}
	return nil
}
