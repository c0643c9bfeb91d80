// Package journal keeps a durable record of every adapter invocation so
// pipeline operators can answer "who flipped that flag and when" without
// scraping logs.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"provsync/pkg/db"
)

// Operations recorded by the gateway.
const (
	OpMachineIP      = "machine-ip"
	OpNetbootDisable = "netboot-disable"
	OpPreseedUpsert  = "preseed-upsert"
)

// Entry is one recorded adapter invocation.
type Entry struct {
	ID        uuid.UUID      `json:"id"`
	Operation string         `json:"operation"`
	Target    string         `json:"target"`
	Outcome   string         `json:"outcome"`
	Detail    map[string]any `json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}

// Journal appends entries through gorm and reads them back through the
// pgx pool. A nil *Journal is valid and drops writes, so services without
// a database keep working.
type Journal struct {
	orm  *gorm.DB
	pool *pgxpool.Pool
}

func New(orm *gorm.DB, pool *pgxpool.Pool) (*Journal, error) {
	if orm == nil {
		return nil, errors.New("orm handle is required")
	}
	if pool == nil {
		return nil, errors.New("pgx pool is required")
	}
	return &Journal{orm: orm, pool: pool}, nil
}

// Record appends one entry. The id and timestamp are assigned here.
func (j *Journal) Record(ctx context.Context, operation, target, outcome string, detail map[string]any) error {
	if j == nil {
		return nil
	}

	model := entryModel{
		ID:        uuid.New(),
		Operation: operation,
		Target:    target,
		Outcome:   outcome,
		Detail:    toJSONMap(detail),
		CreatedAt: time.Now().UTC(),
	}
	return j.orm.WithContext(ctx).Create(&model).Error
}

type entryRow struct {
	ID        uuid.UUID      `db:"id"`
	Operation string         `db:"operation"`
	Target    string         `db:"target"`
	Outcome   string         `db:"outcome"`
	Detail    map[string]any `db:"detail"`
	CreatedAt time.Time      `db:"created_at"`
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil {
		return nil, errors.New("journal is not configured")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []entryRow
	err := db.Select(ctx, j.pool, &rows,
		`SELECT id, operation, target, outcome, detail, created_at
		 FROM journal_entries ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toAPI())
	}
	return entries, nil
}

// Get fetches a single entry by id.
func (j *Journal) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	if j == nil {
		return Entry{}, errors.New("journal is not configured")
	}

	var row entryRow
	err := db.Get(ctx, j.pool, &row,
		`SELECT id, operation, target, outcome, detail, created_at
		 FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return Entry{}, err
	}
	return row.toAPI(), nil
}

func (r entryRow) toAPI() Entry {
	detail := r.Detail
	if detail == nil {
		detail = map[string]any{}
	}
	return Entry{
		ID:        r.ID,
		Operation: r.Operation,
		Target:    r.Target,
		Outcome:   r.Outcome,
		Detail:    detail,
		CreatedAt: r.CreatedAt,
	}
}
