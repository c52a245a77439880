package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/identity"
	"github.com/javiermolinar/slotify/internal/metrics"
)

// Create inserts a new activity for the current owner and returns its id.
// Without an authenticated owner it does nothing and returns an empty id.
func (s *Store) Create(ctx context.Context, attrs activity.Attributes) (string, error) {
	const op = "create"

	owner, ok := s.owners.OwnerID(ctx)
	if !ok {
		s.skip(op)
		return "", nil
	}

	a, err := activity.NewActivity(owner, attrs)
	if err != nil {
		metrics.RecordWrite(op, metrics.ResultError)
		return "", err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return "", ErrClosed
	}
	if err := s.repo.Create(ctx, a); err != nil {
		metrics.RecordWrite(op, metrics.ResultError)
		if errors.Is(err, activity.ErrValidation) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}

	s.persisted(op, a)
	s.refresh(ctx, owner)
	return a.ID, nil
}

// Schedule places a on the grid at start. The duration is left as it is.
func (s *Store) Schedule(ctx context.Context, a *activity.Activity, start time.Time) error {
	if start.IsZero() {
		return activity.ErrStartTimeMismatch
	}
	status := activity.StatusScheduled
	start = start.Truncate(time.Millisecond)
	return s.apply(ctx, "schedule", a, activity.Changes{Status: &status, StartTime: &start})
}

// Unschedule moves a back to the backlog and clears its start time.
func (s *Store) Unschedule(ctx context.Context, a *activity.Activity) error {
	status := activity.StatusBacklog
	var cleared time.Time
	return s.apply(ctx, "unschedule", a, activity.Changes{Status: &status, StartTime: &cleared})
}

// Reschedule moves a scheduled activity to a new start time.
func (s *Store) Reschedule(ctx context.Context, a *activity.Activity, start time.Time) error {
	if a != nil && !a.IsScheduled() {
		return activity.ErrNotScheduled
	}
	if start.IsZero() {
		return activity.ErrStartTimeMismatch
	}
	start = start.Truncate(time.Millisecond)
	return s.apply(ctx, "reschedule", a, activity.Changes{StartTime: &start})
}

// Resize sets a's duration. Durations shorter than the minimum are raised to it.
func (s *Store) Resize(ctx context.Context, a *activity.Activity, minutes int) error {
	if minutes < s.minDuration {
		minutes = s.minDuration
	}
	return s.apply(ctx, "resize", a, activity.Changes{Duration: &minutes})
}

// Update edits the descriptive fields of a.
func (s *Store) Update(ctx context.Context, a *activity.Activity, patch activity.Patch) error {
	if patch.Empty() {
		return nil
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	return s.apply(ctx, "update", a, patch.Changes())
}

// SetOutcome records that a was done or skipped. The start time is kept.
func (s *Store) SetOutcome(ctx context.Context, a *activity.Activity, status activity.Status) error {
	if status != activity.StatusDone && status != activity.StatusSkipped {
		return activity.ErrInvalidStatus
	}
	if a != nil && !a.HasStart() {
		return activity.ErrNotScheduled
	}
	return s.apply(ctx, "outcome", a, activity.Changes{Status: &status})
}

// SoftDelete removes a from every view. The record is kept in storage.
func (s *Store) SoftDelete(ctx context.Context, a *activity.Activity) error {
	const op = "delete"

	owner, err := s.authorize(ctx, op, a)
	if err != nil || owner == "" {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return ErrClosed
	}
	if err := s.repo.SoftDelete(ctx, a.ID); err != nil {
		return s.failed(op, err)
	}

	s.persisted(op, a)
	s.refresh(ctx, owner)
	return nil
}

// Lookup finds one of the owner's activities by full id or unique id prefix.
func (s *Store) Lookup(ctx context.Context, idOrPrefix string) (*activity.Activity, error) {
	owner, err := identity.Require(ctx, s.owners)
	if err != nil {
		return nil, err
	}
	if idOrPrefix == "" {
		return nil, activity.ErrNotFound
	}

	matches, err := s.repo.Query(ctx, activity.Query{OwnerID: owner, IDPrefix: idOrPrefix})
	if err != nil {
		return nil, fmt.Errorf("%w: lookup: %w", ErrPersistence, err)
	}
	switch len(matches) {
	case 0:
		return nil, activity.ErrNotFound
	case 1:
		return matches[0], nil
	}
	for _, m := range matches {
		if m.ID == idOrPrefix {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, idOrPrefix)
}

// apply runs a single-record update of a and copies the stored result back into a.
func (s *Store) apply(ctx context.Context, op string, a *activity.Activity, changes activity.Changes) error {
	owner, err := s.authorize(ctx, op, a)
	if err != nil || owner == "" {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return ErrClosed
	}
	updated, err := s.repo.Update(ctx, a.ID, changes)
	if err != nil {
		return s.failed(op, err)
	}

	*a = *updated
	s.persisted(op, a)
	s.refresh(ctx, owner)
	return nil
}

// authorize resolves the current owner and checks that a belongs to it. An empty owner with a
// nil error means the write must be skipped silently.
func (s *Store) authorize(ctx context.Context, op string, a *activity.Activity) (string, error) {
	owner, ok := s.owners.OwnerID(ctx)
	if !ok {
		s.skip(op)
		return "", nil
	}
	if a == nil || a.ID == "" || a.OwnerID != owner {
		metrics.RecordWrite(op, metrics.ResultError)
		return "", activity.ErrNotFound
	}
	return owner, nil
}

func (s *Store) skip(op string) {
	metrics.RecordWrite(op, metrics.ResultSkipped)
	s.logger.Debug("skipping write without owner", "op", op)
}

func (s *Store) failed(op string, err error) error {
	metrics.RecordWrite(op, metrics.ResultError)
	if errors.Is(err, activity.ErrValidation) || errors.Is(err, activity.ErrNotFound) {
		return err
	}
	s.logger.Error("write failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func (s *Store) persisted(op string, a *activity.Activity) {
	metrics.RecordWrite(op, metrics.ResultOK)
	metrics.RecordWritePersisted(a.UpdatedAt)
	s.logger.Debug("activity written", "op", op, "id", a.ID, "status", a.Status)
}
