package storage

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// StoreError wraps any persistence failure. Callers treat it as fatal for the run.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type dialect struct {
	name        string
	driver      string
	placeholder sq.PlaceholderFormat
}

var (
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite", placeholder: sq.Question}
	postgresDialect = dialect{name: "postgres", driver: "postgres", placeholder: sq.Dollar}
)

func dialectFor(dsn string) dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgresDialect
	}
	return sqliteDialect
}

// Store is the dedup store: runs, seen items and run items.
type Store struct {
	db      *sqlx.DB
	dialect dialect
	sb      sq.StatementBuilderType
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used for run creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to dsn and applies pending migrations.
// A postgres:// DSN selects Postgres, anything else is a SQLite file path.
func Open(dsn string, opts ...Option) (*Store, error) {
	d := dialectFor(dsn)
	if d.name == sqliteDialect.name {
		if err := ensureDir(dsn); err != nil {
			return nil, &StoreError{Op: "open", Err: err}
		}
	}

	db, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}

	if d.name == sqliteDialect.name {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, &StoreError{Op: "set WAL mode", Err: err}
		}
		db.SetMaxOpenConns(1)
	} else {
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, &StoreError{Op: "ping", Err: err}
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	s := &Store{
		db:      db,
		dialect: d,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.placeholder),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, &StoreError{Op: "migrate", Err: err}
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect reports the backend name ("sqlite" or "postgres").
func (s *Store) Dialect() string {
	return s.dialect.name
}

func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// migrate applies every embedded script of the dialect once, in name order.
// Scripts use IF NOT EXISTS so re-running against an existing store is safe.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	dir := path.Join("migrations", s.dialect.name)
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		query, args, err := s.sb.Select("COUNT(*)").From("schema_migrations").Where(sq.Eq{"version": f}).ToSql()
		if err != nil {
			return fmt.Errorf("build migration check: %w", err)
		}
		var applied int
		if err := s.db.Get(&applied, query, args...); err != nil {
			return fmt.Errorf("check migration %s: %w", f, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile(path.Join(dir, f))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}

		tx, err := s.db.Beginx()
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", f, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		record, args, err := s.sb.Insert("schema_migrations").
			Columns("version", "applied_at").
			Values(f, s.now().UTC().Format(time.RFC3339)).
			ToSql()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build migration record: %w", err)
		}
		if _, err := tx.Exec(record, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", f, err)
		}
	}
	return nil
}

var errNotFound = errors.New("not found")

// IsNotFound reports whether err came from a read helper that matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}
