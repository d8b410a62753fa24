package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/textguard/internal/models"
)

// Store is a Workspace persisted in a SQLite database. It also keeps the
// history of scan runs.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the workspace database at dbPath.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Runs are sequential; one connection also keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Names() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM texts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan text name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) Get(name string) (*models.TextResource, error) {
	res := &models.TextResource{}
	err := s.db.QueryRow(`SELECT name, content, source FROM texts WHERE name = ?`, name).
		Scan(&res.Name, &res.Content, &res.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get text %q: %w", name, err)
	}
	return res, nil
}

func (s *Store) Add(res models.TextResource) (string, error) {
	if err := res.Validate(); err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lookupErr error
	name := UniqueName(res.Name, func(n string) bool {
		exists, err := nameExists(tx, n)
		if err != nil {
			lookupErr = err
			return false
		}
		return exists
	})
	if lookupErr != nil {
		return "", lookupErr
	}

	if _, err := tx.Exec(`INSERT INTO texts (name, content, source) VALUES (?, ?, ?)`, name, res.Content, res.Source); err != nil {
		return "", fmt.Errorf("insert text %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return name, nil
}

func (s *Store) Rename(oldName, newName string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := nameExists(tx, oldName)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if oldName == newName {
		return nil
	}

	taken, err := nameExists(tx, newName)
	if err != nil {
		return err
	}
	if taken {
		return ErrExists
	}

	if _, err := tx.Exec(`UPDATE texts SET name = ? WHERE name = ?`, newName, oldName); err != nil {
		return fmt.Errorf("rename %q to %q: %w", oldName, newName, err)
	}
	return tx.Commit()
}

func (s *Store) Remove(name string) error {
	result, err := s.db.Exec(`DELETE FROM texts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove text %q: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove text %q: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nameExists(tx *sql.Tx, name string) (bool, error) {
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM texts WHERE name = ?`, name).Scan(&count); err != nil {
		return false, fmt.Errorf("check text %q: %w", name, err)
	}
	return count > 0, nil
}
