package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/lotboard/lot"
)

// ListBuckets returns every bucket with its lot count, oldest first.
func (s *SQLite) ListBuckets(ctx context.Context) ([]lot.Bucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.created_at,
			(SELECT COUNT(*) FROM lots l WHERE l.bucket_id = b.id)
		FROM buckets b
		ORDER BY b.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close()

	out := []lot.Bucket{}
	for rows.Next() {
		var b lot.Bucket
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.LotCount); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) GetBucket(ctx context.Context, id int64) (lot.Bucket, error) {
	var b lot.Bucket
	err := s.db.QueryRowContext(ctx, `
		SELECT b.id, b.name, b.created_at,
			(SELECT COUNT(*) FROM lots l WHERE l.bucket_id = b.id)
		FROM buckets b
		WHERE b.id = ?`, id).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.LotCount)
	if errors.Is(err, sql.ErrNoRows) {
		return lot.Bucket{}, fmt.Errorf("bucket %d: %w", id, lot.ErrNotFound)
	}
	if err != nil {
		return lot.Bucket{}, fmt.Errorf("get bucket %d: %w", id, err)
	}
	return b, nil
}

func (s *SQLite) CreateBucket(ctx context.Context, name string) (lot.Bucket, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return lot.Bucket{}, fmt.Errorf("bucket name is required: %w", lot.ErrInvalid)
	}

	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO buckets (name, created_at) VALUES (?, ?)`, name, now)
	if constraint(err, sqlite3.ErrConstraintUnique) {
		return lot.Bucket{}, fmt.Errorf("bucket %q: %w", name, lot.ErrAlreadyExists)
	}
	if err != nil {
		return lot.Bucket{}, fmt.Errorf("create bucket: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return lot.Bucket{}, fmt.Errorf("create bucket: %w", err)
	}
	return lot.Bucket{ID: id, Name: name, CreatedAt: now}, nil
}

func (s *SQLite) RenameBucket(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("bucket name is required: %w", lot.ErrInvalid)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE buckets SET name = ? WHERE id = ?`, name, id)
	if constraint(err, sqlite3.ErrConstraintUnique) {
		return fmt.Errorf("bucket %q: %w", name, lot.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("rename bucket %d: %w", id, err)
	}
	return affected(res, fmt.Sprintf("bucket %d", id))
}

// DeleteBucket removes an empty bucket.
func (s *SQLite) DeleteBucket(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete bucket %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lots WHERE bucket_id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("count lots in bucket %d: %w", id, err)
	}
	if n > 0 {
		return fmt.Errorf("bucket %d has %d lots: %w", id, n, lot.ErrBucketNotEmpty)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM buckets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bucket %d: %w", id, err)
	}
	if err := affected(res, fmt.Sprintf("bucket %d", id)); err != nil {
		return err
	}
	return tx.Commit()
}

func affected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, lot.ErrNotFound)
	}
	return nil
}
