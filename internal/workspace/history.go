package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/textguard/internal/models"
)

// RunRecord is one completed scan run as kept in the history tables
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	Folder         string
	Keywords       []string
	TotalCount     int
	ProcessedFiles int
	Flagged        []models.FlaggedMatch
	Skipped        []models.SkippedFile
}

// NewRunRecord builds a history record with a fresh run ID.
func NewRunRecord(folder string, keywords []string, result models.RunResult, startedAt time.Time) *RunRecord {
	return &RunRecord{
		ID:             uuid.New().String(),
		StartedAt:      startedAt.UTC(),
		Folder:         folder,
		Keywords:       keywords,
		TotalCount:     result.TotalCount,
		ProcessedFiles: result.ProcessedFiles,
		Flagged:        result.Flagged,
		Skipped:        result.Skipped,
	}
}

// RecordRun stores a run together with its flagged matches and skipped files.
func (s *Store) RecordRun(ctx context.Context, rec *RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	keywordsJSON, err := json.Marshal(rec.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, folder, keywords, total_count, processed_files) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt, rec.Folder, string(keywordsJSON), rec.TotalCount, rec.ProcessedFiles,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, f := range rec.Flagged {
		matched, err := json.Marshal(f.Keywords)
		if err != nil {
			return fmt.Errorf("marshal matched keywords: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_flags (run_id, position, container, resource, keywords) VALUES (?, ?, ?, ?, ?)`,
			rec.ID, i, f.Container, f.Resource, string(matched),
		); err != nil {
			return fmt.Errorf("insert flagged match: %w", err)
		}
	}

	for i, sf := range rec.Skipped {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_skips (run_id, position, file_name, error) VALUES (?, ?, ?, ?)`,
			rec.ID, i, sf.FileName, sf.Error,
		); err != nil {
			return fmt.Errorf("insert skipped file: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	query := `SELECT id, started_at, folder, keywords, total_count, processed_files FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []*RunRecord
	for rows.Next() {
		rec := &RunRecord{}
		var keywordsJSON string
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.Folder, &keywordsJSON, &rec.TotalCount, &rec.ProcessedFiles); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(keywordsJSON), &rec.Keywords); err != nil {
			rows.Close()
			return nil, fmt.Errorf("unmarshal keywords: %w", err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Details are loaded after the outer cursor is closed; the store holds one connection.
	for _, rec := range runs {
		if err := s.loadRunDetails(ctx, rec); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) loadRunDetails(ctx context.Context, rec *RunRecord) error {
	flagRows, err := s.db.QueryContext(ctx,
		`SELECT container, resource, keywords FROM run_flags WHERE run_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return fmt.Errorf("query flagged matches: %w", err)
	}
	err = drainRows(flagRows, func() error {
		var f models.FlaggedMatch
		var matched string
		if err := flagRows.Scan(&f.Container, &f.Resource, &matched); err != nil {
			return fmt.Errorf("scan flagged match: %w", err)
		}
		if err := json.Unmarshal([]byte(matched), &f.Keywords); err != nil {
			return fmt.Errorf("unmarshal matched keywords: %w", err)
		}
		rec.Flagged = append(rec.Flagged, f)
		return nil
	})
	if err != nil {
		return err
	}

	skipRows, err := s.db.QueryContext(ctx,
		`SELECT file_name, error FROM run_skips WHERE run_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return fmt.Errorf("query skipped files: %w", err)
	}
	return drainRows(skipRows, func() error {
		var sf models.SkippedFile
		if err := skipRows.Scan(&sf.FileName, &sf.Error); err != nil {
			return fmt.Errorf("scan skipped file: %w", err)
		}
		rec.Skipped = append(rec.Skipped, sf)
		return nil
	})
}

// rowIterator is the part of *sql.Rows that drainRows needs.
type rowIterator interface {
	Next() bool
	Err() error
	Close() error
}

// drainRows calls scan for every row, closes rows and reports any iteration error.
func drainRows(rows rowIterator, scan func() error) error {
	defer rows.Close()
	for rows.Next() {
		if err := scan(); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}
