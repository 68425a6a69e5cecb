package tracker_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/protomem/activity-tracker/internal/memstore"
	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/tracker"
	"github.com/protomem/activity-tracker/internal/workday"
)

// manualClock is a settable clock for deterministic instants.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// steppingClock advances by step on every read.
type steppingClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

// gatedStore holds the first Atomic call at the gate until released.
type gatedStore struct {
	tracker.Store

	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedStore(inner tracker.Store) *gatedStore {
	return &gatedStore{
		Store:   inner,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) Atomic(ctx context.Context, user model.ID, fn func(tracker.Tx) error) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return s.Store.Atomic(ctx, user, fn)
}

// 2024-05-06 is a Monday.
func may(d, h, m int) time.Time {
	return time.Date(2024, time.May, d, h, m, 0, 0, time.UTC)
}

type fixture struct {
	svc   *tracker.Service
	store *memstore.Store
	clock *manualClock

	user  model.User
	other model.User
	admin model.User

	meeting model.Category
	email   model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	clock := &manualClock{now: may(6, 9, 0)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		store: store,
		clock: clock,
		svc:   tracker.New(logger, store, workday.MustNew(time.UTC, 4*time.Hour), tracker.WithClock(clock)),

		user:  store.AddUser(model.User{Name: "alice"}),
		other: store.AddUser(model.User{Name: "bob"}),
		admin: store.AddUser(model.User{Name: "root", Role: model.RoleAdmin}),

		meeting: store.AddCategory("Meeting"),
		email:   store.AddCategory("Email"),
	}
	return f
}

func (f *fixture) openEntries(userID model.ID) []model.Entry {
	var open []model.Entry
	for _, entry := range f.store.Entries() {
		if entry.User == userID && entry.IsOpen() {
			open = append(open, entry)
		}
	}
	return open
}
