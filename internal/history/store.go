package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"wxunpack/internal/config"
)

// Run is one recorded unpack invocation.
type Run struct {
	ID           int64
	SessionID    string
	Root         string
	MainPackage  string
	Plugin       bool
	OK           bool
	ArchiveCount int
	Elapsed      time.Duration
	CreatedAt    time.Time
}

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and creates the
// schema when missing.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            session_id TEXT NOT NULL,
            root TEXT NOT NULL,
            main_package TEXT,
            plugin INTEGER NOT NULL DEFAULT 0,
            ok INTEGER NOT NULL DEFAULT 0,
            elapsed_ms INTEGER NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS run_archives (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            archive_path TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_run_archives_run ON run_archives(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// RecordRun inserts a run and its decoded archives in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, archives []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin record run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (session_id, root, main_package, plugin, ok, elapsed_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.SessionID,
		run.Root,
		nullableString(run.MainPackage),
		boolToInt(run.Plugin),
		boolToInt(run.OK),
		run.Elapsed.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for i, archive := range archives {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_archives (run_id, position, archive_path) VALUES (?, ?, ?)`,
			id, i, archive,
		); err != nil {
			return 0, fmt.Errorf("insert run archive: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit record run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT r.id, r.session_id, r.root, r.main_package, r.plugin, r.ok, r.elapsed_ms, r.created_at,
            (SELECT COUNT(1) FROM run_archives a WHERE a.run_id = r.id)
        FROM runs r ORDER BY r.id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			mainPackage sql.NullString
			plugin      int
			ok          int
			elapsedMS   int64
			createdRaw  string
		)
		if err := rows.Scan(&run.ID, &run.SessionID, &run.Root, &mainPackage, &plugin, &ok, &elapsedMS, &createdRaw, &run.ArchiveCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.MainPackage = mainPackage.String
		run.Plugin = plugin != 0
		run.OK = ok != 0
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			run.CreatedAt = created
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Archives returns the decoded archive paths of one run, in decode order.
func (s *Store) Archives(ctx context.Context, runID int64) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT archive_path FROM run_archives WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run archives: %w", err)
	}
	defer rows.Close()

	var archives []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		archives = append(archives, path)
	}
	return archives, rows.Err()
}

// GetRun fetches a run by identifier. Nil when not found.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT r.id, r.session_id, r.root, r.main_package, r.plugin, r.ok, r.elapsed_ms, r.created_at,
            (SELECT COUNT(1) FROM run_archives a WHERE a.run_id = r.id)
        FROM runs r WHERE r.id = ?`,
		id,
	)
	var (
		run         Run
		mainPackage sql.NullString
		plugin      int
		ok          int
		elapsedMS   int64
		createdRaw  string
	)
	err := row.Scan(&run.ID, &run.SessionID, &run.Root, &mainPackage, &plugin, &ok, &elapsedMS, &createdRaw, &run.ArchiveCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.MainPackage = mainPackage.String
	run.Plugin = plugin != 0
	run.OK = ok != 0
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		run.CreatedAt = created
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
