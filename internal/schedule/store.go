// Package schedule is the owner-scoped accessor over the activity collection: live backlog,
// day and week views plus the single-record mutations that move activities between them.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/dateutil"
	"github.com/javiermolinar/slotify/internal/identity"
	"github.com/javiermolinar/slotify/internal/logging"
	"github.com/javiermolinar/slotify/internal/metrics"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

// Store errors.
var (
	ErrPersistence = errors.New("persistence error")
	ErrClosed      = errors.New("schedule store is closed")
	ErrAmbiguousID = errors.New("id prefix matches more than one activity")
)

// Store serves live views and mutations for the owner supplied by an identity provider.
// Writes are serialized; after each successful write every open view of the same owner is
// recomputed, all of them swap contents together, and only then are subscribers notified.
type Store struct {
	repo        activity.Repository
	owners      identity.Provider
	logger      *slog.Logger
	minDuration int

	writeMu sync.Mutex // serializes writes, refreshes and notifications

	mu     sync.RWMutex // guards views and their contents
	views  map[uint64]*View
	nextID uint64
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMinDuration sets the shortest duration Resize will persist, normally the snap increment.
func WithMinDuration(minutes int) Option {
	return func(s *Store) {
		if minutes > 0 {
			s.minDuration = minutes
		}
	}
}

// New creates a Store over repo for the owners reported by owners.
func New(repo activity.Repository, owners identity.Provider, opts ...Option) *Store {
	s := &Store{
		repo:        repo,
		owners:      owners,
		logger:      logging.Discard(),
		minDuration: timegrid.DefaultSnap,
		views:       make(map[uint64]*View),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.owners == nil {
		s.owners = identity.Anonymous
	}
	s.logger = s.logger.With("component", "schedule")
	return s
}

// MinDuration returns the resize floor in minutes.
func (s *Store) MinDuration() int {
	return s.minDuration
}

// BacklogView returns a live view of the owner's backlog, newest first.
func (s *Store) BacklogView(ctx context.Context) (*View, error) {
	return s.open(ctx, KindBacklog, activity.Query{
		Status: activity.StatusBacklog,
		Order:  activity.OrderCreatedDesc,
	})
}

// ViewOption adjusts the predicate of a day or week view.
type ViewOption func(*activity.Query)

// WithOutcomes makes a day or week view also include activities already marked done or
// skipped, which keep their start time.
func WithOutcomes() ViewOption {
	return func(q *activity.Query) {
		q.Status = ""
		q.Statuses = []activity.Status{activity.StatusScheduled, activity.StatusDone, activity.StatusSkipped}
	}
}

// DayView returns a live view of the activities scheduled on day, earliest first.
func (s *Store) DayView(ctx context.Context, day time.Time, opts ...ViewOption) (*View, error) {
	return s.open(ctx, KindDay, rangeQuery(dateutil.StartOfDay(day), dateutil.EndOfDay(day), opts))
}

// WeekView returns a live view of the activities scheduled from weekStart through the end of
// the sixth day after it.
func (s *Store) WeekView(ctx context.Context, weekStart time.Time, opts ...ViewOption) (*View, error) {
	from, to := dateutil.WeekRange(weekStart)
	return s.open(ctx, KindWeek, rangeQuery(from, to, opts))
}

func rangeQuery(from, to time.Time, opts []ViewOption) activity.Query {
	q := activity.Query{
		Status: activity.StatusScheduled,
		From:   from,
		To:     to,
		Order:  activity.OrderStartAsc,
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// WithBacklogView opens the backlog view, runs fn, and releases the view on every path.
func (s *Store) WithBacklogView(ctx context.Context, fn func(*View) error) error {
	v, err := s.BacklogView(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = v.Close() }()
	return fn(v)
}

// WithDayView opens the day view, runs fn, and releases the view on every path.
func (s *Store) WithDayView(ctx context.Context, day time.Time, fn func(*View) error, opts ...ViewOption) error {
	v, err := s.DayView(ctx, day, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = v.Close() }()
	return fn(v)
}

// WithWeekView opens the week view, runs fn, and releases the view on every path.
func (s *Store) WithWeekView(ctx context.Context, weekStart time.Time, fn func(*View) error, opts ...ViewOption) error {
	v, err := s.WeekView(ctx, weekStart, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = v.Close() }()
	return fn(v)
}

func (s *Store) open(ctx context.Context, kind Kind, q activity.Query) (*View, error) {
	v := &View{store: s, kind: kind, subs: make(map[uint64]func(Change))}

	owner, ok := s.owners.OwnerID(ctx)
	if !ok {
		// Unauthenticated views are empty and never refresh.
		s.logger.Debug("opening view without owner", "kind", kind)
		return v, nil
	}
	q.OwnerID = owner
	v.query = q

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return nil, ErrClosed
	}

	list, err := s.repo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s view: %w", ErrPersistence, kind, err)
	}
	v.items = derefActivities(list)

	s.mu.Lock()
	v.id = s.nextID
	s.nextID++
	s.views[v.id] = v
	open := len(s.views)
	s.mu.Unlock()

	metrics.SetOpenViews(open)
	return v, nil
}

func (s *Store) release(v *View) {
	s.mu.Lock()
	if v.closed {
		s.mu.Unlock()
		return
	}
	v.closed = true
	v.subs = make(map[uint64]func(Change))
	if v.query.OwnerID == "" {
		s.mu.Unlock()
		return
	}
	delete(s.views, v.id)
	open := len(s.views)
	s.mu.Unlock()

	metrics.SetOpenViews(open)
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close releases every open view. Further writes fail with ErrClosed.
// The repository is owned by the caller and stays open.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	views := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.closed = true
	s.mu.Unlock()

	for _, v := range views {
		s.release(v)
	}
	return nil
}

type notification struct {
	change Change
	subs   []func(Change)
}

// refresh recomputes every open view of owner and notifies subscribers of the views that
// changed. Must be called with writeMu held.
func (s *Store) refresh(ctx context.Context, owner string) {
	started := time.Now()
	defer func() { metrics.ObserveRefresh(time.Since(started)) }()

	// Notifications describe a write that has already been persisted.
	ctx = context.WithoutCancel(ctx)

	s.mu.RLock()
	targets := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		if v.query.OwnerID == owner {
			targets = append(targets, v)
		}
	}
	s.mu.RUnlock()

	type loaded struct {
		view  *View
		items []activity.Activity
		err   error
	}
	results := make([]loaded, 0, len(targets))
	for _, v := range targets {
		list, err := s.repo.Query(ctx, v.query)
		results = append(results, loaded{view: v, items: derefActivities(list), err: err})
	}

	var pending []notification
	s.mu.Lock()
	for _, r := range results {
		if r.view.closed {
			continue
		}
		if r.err != nil {
			r.view.err = fmt.Errorf("%w: refreshing %s view: %w", ErrPersistence, r.view.kind, r.err)
			s.logger.Warn("refreshing view failed", "kind", r.view.kind, "error", r.err)
			continue
		}
		r.view.err = nil
		ch := diff(r.view.items, r.items)
		r.view.items = r.items
		if ch.Empty() || len(r.view.subs) == 0 {
			continue
		}
		subs := make([]func(Change), 0, len(r.view.subs))
		for _, fn := range r.view.subs {
			subs = append(subs, fn)
		}
		pending = append(pending, notification{change: ch, subs: subs})
	}
	s.mu.Unlock()

	for _, n := range pending {
		for _, fn := range n.subs {
			fn(n.change)
		}
	}
}
