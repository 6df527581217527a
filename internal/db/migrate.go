package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// migrationLockID is the pg advisory lock key held while migrating.
const migrationLockID = 7462839

// ErrMigrationLocked means another migrator holds the advisory lock.
var ErrMigrationLocked = errors.New("another migrator is currently running")

// Migration is one NNN_description.sql file.
type Migration struct {
	Version  string
	Filename string
	Checksum string
	SQL      string
}

// LoadMigrations reads every .sql file at the root of fsys, sorted by name.
// Filenames must look like NNN_description.sql with unique NNN prefixes.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var out []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		name := entry.Name()
		version, err := extractVersion(name)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %s: %s and %s", version, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sum := sha256.Sum256(b)
		out = append(out, Migration{
			Version:  version,
			Filename: name,
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(b),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func extractVersion(filename string) (string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid migration filename %s: expected NNN_description.sql", filename)
	}
	return parts[0], nil
}

// Migrate applies every pending migration in fsys, one transaction per file.
// Already-applied files are skipped when their checksum matches and rejected
// when it does not. It returns the filenames it applied.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, log *zap.Logger) ([]string, error) {
	migrations, err := LoadMigrations(fsys)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for lock: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrationLockID).Scan(&locked); err != nil {
		return nil, fmt.Errorf("query advisory lock: %w", err)
	}
	if !locked {
		return nil, ErrMigrationLocked
	}
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migrationLockID)
	}()

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	var applied []string
	for _, m := range migrations {
		ok, err := applyMigration(ctx, conn.Conn(), m)
		if err != nil {
			return applied, err
		}
		if ok {
			log.Info("migration applied", zap.String("file", m.Filename))
			applied = append(applied, m.Filename)
		} else {
			log.Debug("migration skipped", zap.String("file", m.Filename))
		}
	}
	return applied, nil
}

func applyMigration(ctx context.Context, conn *pgx.Conn, m Migration) (bool, error) {
	var existing string
	err := conn.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", m.Version).Scan(&existing)
	switch {
	case err == nil:
		if existing != m.Checksum {
			return false, fmt.Errorf("checksum mismatch for %s: recorded %s, file %s", m.Filename, existing, m.Checksum)
		}
		return false, nil
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return false, fmt.Errorf("query schema_migrations for %s: %w", m.Filename, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction for %s: %w", m.Filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return false, fmt.Errorf("execute migration %s: %w", m.Filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		m.Version, m.Filename, m.Checksum,
	); err != nil {
		return false, fmt.Errorf("record migration %s: %w", m.Filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit migration %s: %w", m.Filename, err)
	}
	return true, nil
}
