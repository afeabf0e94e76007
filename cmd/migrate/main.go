package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/infrastructure/config"
	"github.com/tradebooks/backend/internal/infrastructure/logger"
	"github.com/tradebooks/backend/internal/infrastructure/migration"
)

const usage = `Usage: migrate [flags] <command>

Commands:
  up              Apply all pending migrations
  down            Roll back all migrations
  steps <n>       Apply n migrations (negative rolls back)
  version         Print the current migration version
  force <v>       Force the version without running migrations
  create <name>   Create an empty up/down migration file pair
`

func main() {
	var migrationsPath string
	var logLevel string
	flag.StringVar(&migrationsPath, "path", "./migrations", "Path to migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	// create only touches the filesystem, no database needed
	if args[0] == "create" {
		if len(args) < 2 {
			log.Fatal("create requires a name")
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1], args[1])
		if err != nil {
			log.Fatal("failed to create migration", zap.Error(err))
		}
		log.Info("migration created",
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	migrator, err := migration.NewFromURL(cfg.Database.DSN(), migrationsPath, log)
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	switch args[0] {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		if len(args) < 2 {
			log.Fatal("steps requires a count")
		}
		n, parseErr := strconv.Atoi(args[1])
		if parseErr != nil {
			log.Fatal("invalid step count", zap.String("value", args[1]))
		}
		err = migrator.Steps(n)
	case "version":
		version, dirty, versionErr := migrator.Version()
		if versionErr != nil {
			log.Fatal("failed to read version", zap.Error(versionErr))
		}
		fmt.Printf("version: %d dirty: %v\n", version, dirty)
		return
	case "force":
		if len(args) < 2 {
			log.Fatal("force requires a version")
		}
		v, parseErr := strconv.Atoi(args[1])
		if parseErr != nil {
			log.Fatal("invalid version", zap.String("value", args[1]))
		}
		err = migrator.Force(v)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("done")
}
