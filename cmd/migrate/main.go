package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"github.com/leonelm2/PotreroMobile/db"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	m, err := db.NewMigrator(dbURL)
	if err != nil {
		logger.Error("failed to create migrator", slog.Any("error", err))
		os.Exit(1)
	}

	code := run(m, os.Args[1:], logger)
	db.CloseMigrator(m, logger)
	os.Exit(code)
}

func run(m *migrate.Migrate, args []string, logger *slog.Logger) int {
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "up":
		if err := m.Up(); !handled(err, logger) {
			return 1
		}
		logger.Info("migrations applied")
	case "down":
		steps, err := parseSteps(args[1:])
		if err != nil {
			logger.Error(err.Error())
			return 2
		}
		if err := m.Steps(-steps); !handled(err, logger) {
			return 1
		}
		logger.Info("rolled back migrations", slog.Int("steps", steps))
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return 0
		}
		if err != nil {
			logger.Error("failed to read version", slog.Any("error", err))
			return 1
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		if len(args) < 2 {
			logger.Error("force requires a version argument")
			return 2
		}
		version, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || version < 0 {
			logger.Error("invalid version", slog.String("value", args[1]))
			return 2
		}
		if err := m.Force(version); err != nil {
			logger.Error("failed to force version", slog.Int("version", version), slog.Any("error", err))
			return 1
		}
		logger.Info("forced version", slog.Int("version", version))
	case "goto":
		if len(args) < 2 {
			logger.Error("goto requires a target version argument")
			return 2
		}
		target, err := strconv.ParseUint(strings.TrimSpace(args[1]), 10, 64)
		if err != nil {
			logger.Error("invalid target version", slog.String("value", args[1]))
			return 2
		}
		if err := m.Migrate(uint(target)); !handled(err, logger) {
			return 1
		}
		logger.Info("migrated", slog.Uint64("version", target))
	default:
		printUsage()
		return 2
	}
	return 0
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

// handled reports whether err is nil or only says nothing changed.
func handled(err error, logger *slog.Logger) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return true
	}
	logger.Error("migration failed", slog.Any("error", err))
	return false
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force|goto> [args]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s up\n", name)
	fmt.Fprintf(os.Stderr, "  %s down 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s version\n", name)
	fmt.Fprintf(os.Stderr, "  %s force 1\n", name)
}
