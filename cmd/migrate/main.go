package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"pinkilang/internal/config"
	"pinkilang/internal/utils"
)

func main() {
	command := flag.String("cmd", "up", "Migration command (up/down/version)")
	steps := flag.Int("steps", 0, "Number of migration steps (0 means all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := utils.GetLogger()

	m, err := migrate.New(fmt.Sprintf("file://%s", cfg.MigrationDir), cfg.GetMigrateDSN())
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize migrate")
	}
	defer m.Close()

	switch *command {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			if errors.Is(verErr, migrate.ErrNilVersion) {
				logger.Info("No migrations have been applied yet")
				return
			}
			logger.WithError(verErr).Fatal("Failed to get version")
		}
		fmt.Printf("Current migration version: %d (dirty: %v)\n", version, dirty)
		return
	default:
		logger.Fatalf("Invalid migration command: %s", *command)
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("No migration changes to apply")
			return
		}
		logger.WithError(err).Fatal("Migration failed")
	}

	logger.WithField("command", *command).Info("Migration completed successfully")
}
