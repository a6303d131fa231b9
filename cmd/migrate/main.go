// Package main applies the SQL migrations in migrations/ against
// the database named by DATABASE_URL.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

func main() {
	var (
		dir  = flag.String("dir", "migrations", "directory containing migration files")
		down = flag.Bool("down", false, "apply down migrations in reverse order")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL is not set")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	files, err := migrationFiles(*dir, *down)
	if err != nil {
		logger.Error("failed to list migrations", "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Error("no migration files found", "dir", *dir)
		os.Exit(1)
	}

	for _, file := range files {
		contents, err := os.ReadFile(file)
		if err != nil {
			logger.Error("failed to read migration", "file", file, "error", err)
			os.Exit(1)
		}
		if _, err := db.Exec(string(contents)); err != nil {
			logger.Error("migration failed", "file", file, "error", err)
			os.Exit(1)
		}
		logger.Info("applied migration", "file", filepath.Base(file))
	}

	logger.Info("migrations complete", "count", len(files))
}

// migrationFiles returns the ordered migration files to apply.
// Up migrations run in ascending order; down migrations run in
// descending order so dependent tables drop first.
func migrationFiles(dir string, down bool) ([]string, error) {
	suffix := ".up.sql"
	if down {
		suffix = ".down.sql"
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(files)
	if down {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}

	return files, nil
}
