package schedule

import (
	"github.com/javiermolinar/slotify/internal/activity"
)

// Kind identifies which predicate a live view follows.
type Kind int

const (
	KindBacklog Kind = iota
	KindDay
	KindWeek
)

// String returns the view kind name.
func (k Kind) String() string {
	switch k {
	case KindBacklog:
		return "backlog"
	case KindDay:
		return "day"
	case KindWeek:
		return "week"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers: first the initial snapshot, then one diff per write
// that changed the view's contents.
type Change struct {
	Initial  bool
	Snapshot []activity.Activity // full ordered contents after the change
	Added    []activity.Activity
	Removed  []activity.Activity
	Updated  []activity.Activity
}

// Empty reports whether the change carries no difference.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Updated) == 0
}

// View is a live, owner-scoped query result. Contents are replaced by the Store after every
// write; readers always receive copies. A View must be released with Close.
type View struct {
	store *Store
	id    uint64
	kind  Kind
	query activity.Query

	// Guarded by store.mu.
	items   []activity.Activity
	err     error
	subs    map[uint64]func(Change)
	nextSub uint64
	closed  bool
}

// Kind returns the view kind.
func (v *View) Kind() Kind {
	return v.kind
}

// OwnerID returns the owner the view is scoped to, empty for an unauthenticated view.
func (v *View) OwnerID() string {
	return v.query.OwnerID
}

// Snapshot returns a copy of the current contents in view order.
func (v *View) Snapshot() []activity.Activity {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return cloneActivities(v.items)
}

// Len returns the number of activities currently in the view.
func (v *View) Len() int {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return len(v.items)
}

// Err returns the error of the last failed refresh, if the most recent refresh failed.
// The contents keep their last good value in that case.
func (v *View) Err() error {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return v.err
}

// Subscribe registers fn and immediately delivers the initial snapshot to it. Later changes
// are delivered synchronously on the writing goroutine, in write order. fn must not call
// back into the Store; dispatch writes asynchronously instead.
// The returned function unsubscribes.
func (v *View) Subscribe(fn func(Change)) (unsubscribe func()) {
	s := v.store
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if v.closed {
		s.mu.Unlock()
		return func() {}
	}
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	snapshot := cloneActivities(v.items)
	s.mu.Unlock()

	fn(Change{Initial: true, Snapshot: snapshot, Added: cloneActivities(snapshot)})

	return func() {
		s.mu.Lock()
		delete(v.subs, id)
		s.mu.Unlock()
	}
}

// Close releases the view's standing query and drops its subscribers. Close is idempotent.
func (v *View) Close() error {
	v.store.release(v)
	return nil
}

// diff compares two view contents by activity ID.
func diff(before, after []activity.Activity) Change {
	prev := make(map[string]activity.Activity, len(before))
	for _, a := range before {
		prev[a.ID] = a
	}

	var ch Change
	seen := make(map[string]struct{}, len(after))
	for _, a := range after {
		seen[a.ID] = struct{}{}
		old, ok := prev[a.ID]
		switch {
		case !ok:
			ch.Added = append(ch.Added, a)
		case !sameActivity(old, a):
			ch.Updated = append(ch.Updated, a)
		}
	}
	for _, a := range before {
		if _, ok := seen[a.ID]; !ok {
			ch.Removed = append(ch.Removed, a)
		}
	}
	ch.Snapshot = cloneActivities(after)
	return ch
}

func sameActivity(a, b activity.Activity) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.Type == b.Type &&
		a.Status == b.Status &&
		a.StartTime.Equal(b.StartTime) &&
		a.Duration == b.Duration &&
		a.Priority == b.Priority &&
		a.Color == b.Color &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

func cloneActivities(in []activity.Activity) []activity.Activity {
	if len(in) == 0 {
		return nil
	}
	out := make([]activity.Activity, len(in))
	copy(out, in)
	return out
}

func derefActivities(in []*activity.Activity) []activity.Activity {
	out := make([]activity.Activity, 0, len(in))
	for _, a := range in {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}
