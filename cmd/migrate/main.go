package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/saeid-a/NutriScanBack/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	appLog, err := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync()

	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		appLog.Fatal("DB_URL environment variable is required")
	}

	migrationsPath, err := findMigrationsDir()
	if err != nil {
		appLog.Fatal("Migrations directory not found", "error", err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(migrationsPath), dbUrl)
	if err != nil {
		appLog.Fatal("Failed to open migrations", "path", migrationsPath, "error", err)
	}
	defer m.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "reset":
		err = m.Down()
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			appLog.Fatal("Failed to read version", "error", verr)
		}
		appLog.Info("Current migration version", "version", version, "dirty", dirty)
		return
	case "force":
		if len(os.Args) < 3 {
			appLog.Fatal("force requires a version argument")
		}
		version, perr := strconv.Atoi(os.Args[2])
		if perr != nil {
			appLog.Fatal("Invalid version", "value", os.Args[2])
		}
		err = m.Force(version)
	default:
		appLog.Fatal("Unknown command, expected up, down, reset, version or force", "command", cmd)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		appLog.Fatal("Migration failed", "command", cmd, "error", err)
	}
	appLog.Info("Migration successful", "command", cmd)
}

// findMigrationsDir walks up from the working directory and then checks
// next to the executable.
func findMigrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	candidates := []string{}
	current := cwd
	for i := 0; i < 6; i++ {
		candidates = append(candidates, filepath.Join(current, "migrations"))
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append(candidates,
			filepath.Join(exeDir, "migrations"),
			filepath.Join(exeDir, "..", "migrations"),
		)
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", fmt.Errorf("searched %d locations from %s", len(candidates), cwd)
}
