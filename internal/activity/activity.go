// Package activity defines the core domain types for slotify.
package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is wrapped by every error that reports an invariant violation.
var ErrValidation = errors.New("validation error")

// Validation errors.
var (
	ErrEmptyTitle        = fmt.Errorf("%w: title cannot be empty", ErrValidation)
	ErrInvalidType       = fmt.Errorf("%w: type must be 'task', 'event' or 'habit'", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: status must be 'backlog', 'scheduled', 'done' or 'skipped'", ErrValidation)
	ErrInvalidPriority   = fmt.Errorf("%w: priority must be 'low', 'medium' or 'high'", ErrValidation)
	ErrInvalidDuration   = fmt.Errorf("%w: duration must be a positive number of minutes", ErrValidation)
	ErrInvalidColor      = fmt.Errorf("%w: color must be a #RRGGBB hex string", ErrValidation)
	ErrStartTimeMismatch = fmt.Errorf("%w: scheduled activities need a start time and backlog activities must not have one", ErrValidation)
	ErrNotScheduled      = fmt.Errorf("%w: activity is not scheduled", ErrValidation)
)

// Domain errors.
var (
	ErrNotFound = errors.New("activity not found")
)

// DefaultDuration is the duration in minutes given to activities created without one.
const DefaultDuration = 30

// Type classifies an activity.
type Type string

const (
	TypeTask  Type = "task"
	TypeEvent Type = "event"
	TypeHabit Type = "habit"
)

// Types lists every activity type in display order.
var Types = []Type{TypeTask, TypeEvent, TypeHabit}

// Valid returns true if the type is a known value.
func (t Type) Valid() bool {
	switch t {
	case TypeTask, TypeEvent, TypeHabit:
		return true
	default:
		return false
	}
}

// Status is the lifecycle state of an activity.
type Status string

const (
	StatusBacklog   Status = "backlog"
	StatusScheduled Status = "scheduled"
	StatusDone      Status = "done"
	StatusSkipped   Status = "skipped"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusScheduled, StatusDone, StatusSkipped:
		return true
	default:
		return false
	}
}

// Priority ranks activities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParseType parses a type name, case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Activity is a schedulable unit of work owned by a single user.
type Activity struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Type        Type
	Status      Status
	StartTime   time.Time // zero unless the activity has been placed on the grid
	Duration    int       // minutes
	Priority    Priority
	Color       string // optional override, see DisplayColor
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsScheduled returns true if the activity sits on the time grid.
func (a *Activity) IsScheduled() bool {
	return a.Status == StatusScheduled
}

// IsBacklog returns true if the activity is waiting to be scheduled.
func (a *Activity) IsBacklog() bool {
	return a.Status == StatusBacklog
}

// HasStart reports whether a start time is set.
func (a *Activity) HasStart() bool {
	return !a.StartTime.IsZero()
}

// EndTime returns the start time plus the duration. The result may fall on the next day.
func (a *Activity) EndTime() time.Time {
	if !a.HasStart() {
		return time.Time{}
	}
	return a.StartTime.Add(time.Duration(a.Duration) * time.Minute)
}

// CrossesMidnight reports whether the activity ends after the end of its start day.
func (a *Activity) CrossesMidnight() bool {
	if !a.HasStart() {
		return false
	}
	s := a.StartTime
	midnight := time.Date(s.Year(), s.Month(), s.Day()+1, 0, 0, 0, 0, s.Location())
	return a.EndTime().After(midnight)
}

// DisplayColor returns the color override, or the default color for the type.
func (a *Activity) DisplayColor() string {
	if a.Color != "" {
		return a.Color
	}
	return ColorsFor(a.Type).Background
}

// Validate checks the invariants every persisted activity must satisfy.
// Title emptiness is a creation concern and is checked by ValidateTitle.
func (a *Activity) Validate() error {
	if !a.Type.Valid() {
		return ErrInvalidType
	}
	if !a.Status.Valid() {
		return ErrInvalidStatus
	}
	if !a.Priority.Valid() {
		return ErrInvalidPriority
	}
	if a.Duration <= 0 {
		return ErrInvalidDuration
	}
	if err := ValidateColor(a.Color); err != nil {
		return err
	}
	switch a.Status {
	case StatusScheduled:
		if !a.HasStart() {
			return ErrStartTimeMismatch
		}
	case StatusBacklog:
		if a.HasStart() {
			return ErrStartTimeMismatch
		}
	}
	return nil
}

// ValidateTitle rejects titles that are empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Attributes are the user-supplied fields of a new activity.
type Attributes struct {
	Title       string
	Description string
	Type        Type
	Status      Status
	StartTime   time.Time
	Duration    int
	Priority    Priority
	Color       string
}

// WithDefaults fills unset fields: type task, priority medium, a 30 minute duration, and a
// status of scheduled when a start time is given and backlog otherwise.
func (attrs Attributes) WithDefaults() Attributes {
	if attrs.Type == "" {
		attrs.Type = TypeTask
	}
	if attrs.Priority == "" {
		attrs.Priority = PriorityMedium
	}
	if attrs.Duration == 0 {
		attrs.Duration = DefaultDuration
	}
	if attrs.Status == "" {
		if attrs.StartTime.IsZero() {
			attrs.Status = StatusBacklog
		} else {
			attrs.Status = StatusScheduled
		}
	}
	attrs.Title = strings.TrimSpace(attrs.Title)
	attrs.Description = strings.TrimSpace(attrs.Description)
	return attrs
}

// NewActivity builds an unsaved activity for owner from attrs after applying defaults.
func NewActivity(ownerID string, attrs Attributes) (*Activity, error) {
	attrs = attrs.WithDefaults()
	a := &Activity{
		OwnerID:     ownerID,
		Title:       attrs.Title,
		Description: attrs.Description,
		Type:        attrs.Type,
		Status:      attrs.Status,
		StartTime:   attrs.StartTime,
		Duration:    attrs.Duration,
		Priority:    attrs.Priority,
		Color:       strings.ToUpper(attrs.Color),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Patch carries optional edits to the descriptive fields of an activity.
// Setting Color to an empty string clears the override.
type Patch struct {
	Title       *string
	Description *string
	Type        *Type
	Priority    *Priority
	Color       *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Type == nil && p.Priority == nil && p.Color == nil
}

// Validate checks the values carried by the patch.
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidType
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ErrInvalidPriority
	}
	if p.Color != nil {
		if err := ValidateColor(*p.Color); err != nil {
			return err
		}
	}
	return nil
}

// Changes returns the storage changes equivalent to the patch.
func (p Patch) Changes() Changes {
	ch := Changes{Type: p.Type, Priority: p.Priority}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		ch.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		ch.Description = &desc
	}
	if p.Color != nil {
		color := strings.ToUpper(*p.Color)
		ch.Color = &color
	}
	return ch
}
