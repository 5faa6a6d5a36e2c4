package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/pkg/id"
)

const lotColumns = `id, bucket_id, symbol, qty, position_type,
	filled_avg_price, limit_price, stop_price, target_price, cost_basis,
	status, broker_status, time_in_force, client_id,
	disposed_fill_price, dispose_reason, disposed_at,
	created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLot(r scanner) (lot.Lot, error) {
	var (
		l        lot.Lot
		bucket   sql.NullInt64
		status   string
		position string
	)
	err := r.Scan(
		&l.ID, &bucket, &l.Symbol, &l.Qty, &position,
		&l.FilledAvgPrice, &l.LimitPrice, &l.StopPrice, &l.TargetPrice, &l.CostBasis,
		&status, &l.BrokerStatus, &l.TimeInForce, &l.ClientID,
		&l.DisposedFillPrice, &l.DisposeReason, &l.DisposedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return lot.Lot{}, err
	}
	l.BucketID = bucket.Int64
	l.Status = lot.ParseStatus(status)
	l.PositionType = lot.PositionType(position)
	return l, nil
}

func nullBucket(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreateLot inserts l. Missing ids are minted, a missing status becomes
// Pending and a missing position type becomes Long.
func (s *SQLite) CreateLot(ctx context.Context, l lot.Lot) (lot.Lot, error) {
	l.Symbol = lot.NormalizeSymbol(l.Symbol)
	if l.Symbol == "" {
		return lot.Lot{}, fmt.Errorf("symbol is required: %w", lot.ErrInvalid)
	}
	if l.Qty <= 0 {
		return lot.Lot{}, fmt.Errorf("qty must be positive: %w", lot.ErrInvalid)
	}
	switch l.PositionType {
	case "":
		l.PositionType = lot.Long
	case lot.Long, lot.Short:
	default:
		return lot.Lot{}, fmt.Errorf("position type %q: %w", l.PositionType, lot.ErrInvalid)
	}
	if l.ID == "" {
		l.ID = id.NewLotID()
	}
	if l.ClientID == "" {
		l.ClientID = id.NewClientOrderID()
	}
	if l.Status == "" {
		l.Status = lot.Pending
	}
	now := s.now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO lots (`+lotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, nullBucket(l.BucketID), l.Symbol, l.Qty, string(l.PositionType),
		l.FilledAvgPrice, l.LimitPrice, l.StopPrice, l.TargetPrice, l.CostBasis,
		string(l.Status), l.BrokerStatus, l.TimeInForce, l.ClientID,
		l.DisposedFillPrice, l.DisposeReason, l.DisposedAt,
		l.CreatedAt, l.UpdatedAt,
	)
	switch {
	case constraint(err, sqlite3.ErrConstraintForeignKey):
		return lot.Lot{}, fmt.Errorf("bucket %d: %w", l.BucketID, lot.ErrNotFound)
	case constraint(err, sqlite3.ErrConstraintUnique), constraint(err, sqlite3.ErrConstraintPrimaryKey):
		return lot.Lot{}, fmt.Errorf("lot %s: %w", l.ClientID, lot.ErrAlreadyExists)
	case err != nil:
		return lot.Lot{}, fmt.Errorf("create lot: %w", err)
	}
	return l, nil
}

func (s *SQLite) GetLot(ctx context.Context, lotID string) (lot.Lot, error) {
	l, err := scanLot(s.db.QueryRowContext(ctx,
		`SELECT `+lotColumns+` FROM lots WHERE id = ?`, lotID))
	if errors.Is(err, sql.ErrNoRows) {
		return lot.Lot{}, fmt.Errorf("lot %s: %w", lotID, lot.ErrNotFound)
	}
	if err != nil {
		return lot.Lot{}, fmt.Errorf("get lot %s: %w", lotID, err)
	}
	return l, nil
}

func (s *SQLite) GetLotByClientID(ctx context.Context, clientID string) (lot.Lot, error) {
	l, err := scanLot(s.db.QueryRowContext(ctx,
		`SELECT `+lotColumns+` FROM lots WHERE client_id = ?`, clientID))
	if errors.Is(err, sql.ErrNoRows) {
		return lot.Lot{}, fmt.Errorf("order %s: %w", clientID, lot.ErrNotFound)
	}
	if err != nil {
		return lot.Lot{}, fmt.Errorf("get order %s: %w", clientID, err)
	}
	return l, nil
}

// ListLots returns the lots in a bucket, newest first. bucketID 0 lists
// every lot.
func (s *SQLite) ListLots(ctx context.Context, bucketID int64) ([]lot.Lot, error) {
	q := `SELECT ` + lotColumns + ` FROM lots`
	var args []any
	if bucketID != 0 {
		q += ` WHERE bucket_id = ?`
		args = append(args, bucketID)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	out := []lot.Lot{}
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Symbols returns the distinct symbols of lots that are still live.
func (s *SQLite) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT symbol FROM lots
		WHERE status IN (?, ?)
		ORDER BY symbol`, string(lot.Pending), string(lot.Open))
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// transition updates a lot only while it is in status from. When no row
// matches it reports ErrNotFound or, if the lot exists, wrong.
func (s *SQLite) transition(ctx context.Context, lotID string, from lot.Status, wrong error, set string, args ...any) error {
	args = append(args, s.now(), lotID, string(from))
	res, err := s.db.ExecContext(ctx,
		`UPDATE lots SET `+set+`, updated_at = ? WHERE id = ? AND status = ?`, args...)
	if err != nil {
		return fmt.Errorf("update lot %s: %w", lotID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	l, err := s.GetLot(ctx, lotID)
	if err != nil {
		return err
	}
	return fmt.Errorf("lot %s is %s: %w", lotID, l.Status, wrong)
}

// MarkCanceled cancels a Pending lot.
func (s *SQLite) MarkCanceled(ctx context.Context, lotID string) error {
	return s.transition(ctx, lotID, lot.Pending, lot.ErrNotCancelable,
		`status = ?`, string(lot.Canceled))
}

// MarkOpen records the fill of a Pending lot.
func (s *SQLite) MarkOpen(ctx context.Context, lotID string, fill float64) error {
	return s.transition(ctx, lotID, lot.Pending, lot.ErrInvalid,
		`status = ?, filled_avg_price = ?`, string(lot.Open), fill)
}

// MarkDisposed closes an Open lot at fill.
func (s *SQLite) MarkDisposed(ctx context.Context, lotID string, fill float64, reason string, at time.Time) error {
	return s.transition(ctx, lotID, lot.Open, lot.ErrNotLiquidatable,
		`status = ?, disposed_fill_price = ?, dispose_reason = ?, disposed_at = ?`,
		string(lot.Disposed), fill, reason, at.UTC())
}

func (s *SQLite) UpdateBrokerStatus(ctx context.Context, lotID, brokerStatus string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lots SET broker_status = ?, updated_at = ? WHERE id = ?`,
		brokerStatus, s.now(), lotID)
	if err != nil {
		return fmt.Errorf("update broker status %s: %w", lotID, err)
	}
	return affected(res, "lot "+lotID)
}
