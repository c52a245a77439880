package activity

import (
	"context"
	"time"
)

// Order selects the sort order of a query.
type Order int

const (
	OrderCreatedDesc Order = iota // newest first
	OrderStartAsc                 // earliest start first
)

// Query selects live (not soft-deleted) activities of one owner.
// Zero-valued fields do not constrain the result.
type Query struct {
	OwnerID  string
	Status   Status
	Statuses []Status  // any of; combined with Status when both are set
	From, To time.Time // inclusive bounds on StartTime
	IDPrefix string
	Order    Order
}

// Changes lists the columns a single-record update writes. Nil fields are left untouched.
// A non-nil StartTime holding the zero time clears the start time.
type Changes struct {
	Title       *string
	Description *string
	Type        *Type
	Status      *Status
	StartTime   *time.Time
	Duration    *int
	Priority    *Priority
	Color       *string
}

// Empty reports whether the changes touch no column.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Type == nil && c.Status == nil &&
		c.StartTime == nil && c.Duration == nil && c.Priority == nil && c.Color == nil
}

// Apply returns a copy of a with the changes applied.
func (c Changes) Apply(a Activity) Activity {
	if c.Title != nil {
		a.Title = *c.Title
	}
	if c.Description != nil {
		a.Description = *c.Description
	}
	if c.Type != nil {
		a.Type = *c.Type
	}
	if c.Status != nil {
		a.Status = *c.Status
	}
	if c.StartTime != nil {
		a.StartTime = *c.StartTime
	}
	if c.Duration != nil {
		a.Duration = *c.Duration
	}
	if c.Priority != nil {
		a.Priority = *c.Priority
	}
	if c.Color != nil {
		a.Color = *c.Color
	}
	return a
}

// Repository defines the storage interface for activities.
type Repository interface {
	// Create inserts a new activity, assigning its ID and timestamps.
	Create(ctx context.Context, a *Activity) error

	// Get retrieves a live activity by ID. Returns nil, nil when none exists.
	Get(ctx context.Context, id string) (*Activity, error)

	// Update writes changes to a single live activity atomically and returns the new record.
	// Returns ErrNotFound if the activity does not exist or was deleted.
	Update(ctx context.Context, id string, changes Changes) (*Activity, error)

	// SoftDelete marks an activity as deleted so no query returns it again.
	// Returns ErrNotFound if the activity does not exist or was already deleted.
	SoftDelete(ctx context.Context, id string) error

	// Query returns the live activities matching q.
	Query(ctx context.Context, q Query) ([]*Activity, error)

	// Close releases any resources held by the repository.
	Close() error
}
