package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/bean-scene/internal/model"
)

// SubjectCount is the number of usage records for one subject.
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// RecordUsage stores one usage record.
func (s *SQLiteStorage) RecordUsage(ctx context.Context, record model.UsageRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUsage(&record); err != nil {
		return err
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (id, model, provider, subject, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.Model, record.Provider, record.Subject, record.Confidence, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// RecentUsage returns the newest usage records first.
func (s *SQLiteStorage) RecentUsage(ctx context.Context, limit int) ([]model.UsageRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, ErrInvalidPageSize
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, provider, subject, confidence, created_at
		FROM usage_records
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.UsageRecord
	for rows.Next() {
		var r model.UsageRecord
		if err := rows.Scan(&r.ID, &r.Model, &r.Provider, &r.Subject, &r.Confidence, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage records: %w", err)
	}
	return records, nil
}

// UsageBySubject counts usage records per subject created at or after since,
// most frequent first.
func (s *SQLiteStorage) UsageBySubject(ctx context.Context, since time.Time) ([]SubjectCount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, COUNT(*) AS n
		FROM usage_records
		WHERE created_at >= ?
		GROUP BY subject
		ORDER BY n DESC, subject`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query usage by subject: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []SubjectCount
	for rows.Next() {
		var c SubjectCount
		if err := rows.Scan(&c.Subject, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan subject count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject counts: %w", err)
	}
	return counts, nil
}
