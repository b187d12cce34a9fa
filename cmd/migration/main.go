package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	if !knownCommand(cmd) {
		printUsage()
		os.Exit(2)
	}

	m, err := newMigrator()
	if err != nil {
		log.Fatal(err)
	}
	defer closeMigrator(m)

	if err := run(m, cmd, os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func knownCommand(cmd string) bool {
	switch cmd {
	case "up", "down", "version", "force", "goto", "migrate":
		return true
	}
	return false
}

func newMigrator() (*migrate.Migrate, error) {
	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return nil, errors.New("DB_URL is required")
	}

	dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	if dir == "" {
		dir = "db/migrations"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("migrations dir %s not found (set MIGRATIONS_DIR)", abs)
	}

	return migrate.New("file://"+filepath.ToSlash(abs), dbURL)
}

func run(m *migrate.Migrate, cmd string, args []string) error {
	switch cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Print("schema is up to date")
	case "down":
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil || n <= 0 {
				return fmt.Errorf("down steps must be a positive number, got %q", args[0])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Printf("rolled back %d migration(s)", steps)
	case "version":
		v, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			fmt.Println("no migrations applied")
		case err != nil:
			return fmt.Errorf("read version: %w", err)
		case dirty:
			fmt.Printf("%d (dirty)\n", v)
		default:
			fmt.Println(v)
		}
	case "force":
		v, err := parseVersion(args)
		if err != nil {
			return err
		}
		if err := m.Force(int(v)); err != nil {
			return fmt.Errorf("force version %d: %w", v, err)
		}
		log.Printf("forced version to %d", v)
	case "goto", "migrate":
		v, err := parseVersion(args)
		if err != nil {
			return err
		}
		if err := m.Migrate(uint(v)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Printf("migrated to version %d", v)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

func parseVersion(args []string) (uint64, error) {
	if len(args) == 0 {
		return 0, errors.New("a schema version argument is required")
	}
	v, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid schema version %q: %w", args[0], err)
	}
	return v, nil
}

func closeMigrator(m *migrate.Migrate) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		log.Printf("close migrator: source=%v db=%v", srcErr, dbErr)
	}
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <command> [args]\n\n", name)
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  up          apply all pending migrations")
	fmt.Fprintln(os.Stderr, "  down [n]    roll back n migrations (default 1)")
	fmt.Fprintln(os.Stderr, "  version     print the current schema version")
	fmt.Fprintln(os.Stderr, "  force <v>   record version v without running migrations")
	fmt.Fprintln(os.Stderr, "  goto <v>    migrate up or down until version v")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "DB_URL selects the database; MIGRATIONS_DIR overrides ./db/migrations.")
}
