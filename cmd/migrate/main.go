package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "MALDRETH_DB_DSN"

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database URL (default: $"+envDSN+", then the [database] config)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version after a failed migration")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	url, err := resolveDSN(*dsn)
	if err != nil {
		log.Fatalf("resolve database url: %v", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatalf("create migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if err != nil {
			log.Fatalf("read version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			log.Fatalf("force version: %v", err)
		}
		fmt.Printf("forced to version %d\n", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("run up migrations: %v", err)
		}
		fmt.Println("migrations applied")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("run down migrations: %v", err)
		}
		fmt.Println("migrations reverted")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("run migration steps: %v", err)
		}
		fmt.Printf("applied %d migration steps\n", *steps)
	default:
		fmt.Println("usage: migrate [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}

// resolveDSN prefers the flag, then the environment, then the database
// section of the service configuration so both binaries share settings.
func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.Database.URL(), nil
}
