// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/slotify/internal/activity"
)

// ErrOwnerRequired is returned by queries that do not name an owner.
var ErrOwnerRequired = errors.New("query must be scoped to an owner")

const activityColumns = `id, owner_id, title, description, type, status, start_time, duration,
	priority, color, created_at, updated_at`

// SQLite implements activity.Repository using SQLite.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a SQLite repository.
type Option func(*SQLite)

// WithClock overrides the clock used for created/updated/deleted timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLite) { s.now = now }
}

// New opens the SQLite database at path and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Create inserts a new activity. The ID is generated when empty, and the created/updated
// timestamps are always assigned by the repository.
func (s *SQLite) Create(ctx context.Context, a *activity.Activity) error {
	if a.OwnerID == "" {
		return ErrOwnerRequired
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := s.now().Truncate(time.Millisecond)

	query := `
		INSERT INTO activities (
			id, owner_id, title, description, type, status, start_time, duration,
			priority, color, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.OwnerID,
		a.Title,
		a.Description,
		a.Type,
		a.Status,
		nullMillis(a.StartTime),
		a.Duration,
		a.Priority,
		nullString(a.Color),
		now.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}

	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// Get retrieves a live activity by ID. Returns nil, nil if not found.
func (s *SQLite) Get(ctx context.Context, id string) (*activity.Activity, error) {
	return getActivity(ctx, s.db, id)
}

// Update applies changes to a single live activity inside a transaction. The merged record
// is validated before anything is written, so a rejected update leaves the row untouched.
func (s *SQLite) Update(ctx context.Context, id string, changes activity.Changes) (*activity.Activity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getActivity(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, activity.ErrNotFound
	}
	if changes.Empty() {
		return current, nil
	}

	updated := changes.Apply(*current)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now().Truncate(time.Millisecond)

	sets, args := changeSet(changes)
	sets = append(sets, "updated_at = ?")
	args = append(args, updated.UpdatedAt.UnixMilli(), id)

	query := `UPDATE activities SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("updating activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing activity update: %w", err)
	}
	return &updated, nil
}

// SoftDelete marks an activity as deleted. The row stays in the table.
func (s *SQLite) SoftDelete(ctx context.Context, id string) error {
	now := s.now().UnixMilli()
	result, err := s.db.ExecContext(ctx,
		`UPDATE activities SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return activity.ErrNotFound
	}
	return nil
}

// Query returns the live activities matching q.
func (s *SQLite) Query(ctx context.Context, q activity.Query) ([]*activity.Activity, error) {
	if q.OwnerID == "" {
		return nil, ErrOwnerRequired
	}

	where := []string{"deleted_at IS NULL", "owner_id = ?"}
	args := []any{q.OwnerID}

	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if len(q.Statuses) > 0 {
		marks := make([]string, len(q.Statuses))
		for i, st := range q.Statuses {
			marks[i] = "?"
			args = append(args, st)
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if !q.From.IsZero() {
		where = append(where, "start_time >= ?")
		args = append(args, q.From.UnixMilli())
	}
	if !q.To.IsZero() {
		where = append(where, "start_time <= ?")
		args = append(args, q.To.UnixMilli())
	}
	if q.IDPrefix != "" {
		where = append(where, "substr(id, 1, ?) = ?")
		args = append(args, len(q.IDPrefix), q.IDPrefix)
	}

	order := "created_at DESC, id"
	if q.Order == activity.OrderStartAsc {
		order = "start_time ASC, created_at ASC, id"
	}

	query := `SELECT ` + activityColumns + ` FROM activities WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY ` + order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*activity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return result, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getActivity(ctx context.Context, q queryer, id string) (*activity.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ? AND deleted_at IS NULL`

	a, err := scanActivity(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanActivity(row scanner) (*activity.Activity, error) {
	var (
		a         activity.Activity
		startTime sql.NullInt64
		color     sql.NullString
		createdAt int64
		updatedAt int64
	)

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Title,
		&a.Description,
		&a.Type,
		&a.Status,
		&startTime,
		&a.Duration,
		&a.Priority,
		&color,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning activity: %w", err)
	}

	if startTime.Valid {
		a.StartTime = time.UnixMilli(startTime.Int64)
	}
	if color.Valid {
		a.Color = color.String
	}
	a.CreatedAt = time.UnixMilli(createdAt)
	a.UpdatedAt = time.UnixMilli(updatedAt)
	return &a, nil
}

func changeSet(c activity.Changes) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if c.Title != nil {
		add("title", *c.Title)
	}
	if c.Description != nil {
		add("description", *c.Description)
	}
	if c.Type != nil {
		add("type", *c.Type)
	}
	if c.Status != nil {
		add("status", *c.Status)
	}
	if c.StartTime != nil {
		add("start_time", nullMillis(*c.StartTime))
	}
	if c.Duration != nil {
		add("duration", *c.Duration)
	}
	if c.Priority != nil {
		add("priority", *c.Priority)
	}
	if c.Color != nil {
		add("color", nullString(*c.Color))
	}
	return sets, args
}

func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
