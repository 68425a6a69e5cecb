// Package memstore keeps users, categories, entries and attendance in
// process memory. Write units of work run under one mutex on a copy of the
// state that replaces the live state only when the unit succeeds.
package memstore

import (
	"cmp"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/tracker"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var errReadOnly = errors.New("memstore: write in read-only snapshot")

type attendanceKey struct {
	user model.ID
	date string
}

type state struct {
	users      map[model.ID]model.User
	categories map[model.ID]model.Category
	entries    map[model.ID]model.Entry
	attendance map[attendanceKey]model.Attendance

	lastUserID       model.ID
	lastCategoryID   model.ID
	lastEntryID      model.ID
	lastAttendanceID model.ID
}

func (s *state) clone() *state {
	c := *s
	c.users = maps.Clone(s.users)
	c.categories = maps.Clone(s.categories)
	c.entries = maps.Clone(s.entries)
	c.attendance = maps.Clone(s.attendance)
	return &c
}

type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

var _ tracker.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		state: &state{
			users:      make(map[model.ID]model.User),
			categories: make(map[model.ID]model.Category),
			entries:    make(map[model.ID]model.Entry),
			attendance: make(map[attendanceKey]model.Attendance),
		},
		now: time.Now,
	}
}

func (s *Store) Atomic(ctx context.Context, _ model.ID, fn func(tracker.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{state: work, now: s.now}); err != nil {
		return err
	}

	s.state = work
	return nil
}

func (s *Store) Snapshot(ctx context.Context, fn func(tracker.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&tx{state: s.state, now: s.now, readOnly: true})
}

// AddUser registers a user and returns it with its assigned id.
func (s *Store) AddUser(user model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.lastUserID++
	user.ID = s.state.lastUserID
	user.CreatedAt, user.UpdatedAt = s.now(), s.now()
	if user.Role == "" {
		user.Role = model.RoleRegular
	}
	if user.Status == "" {
		user.Status = model.UserActive
	}
	s.state.users[user.ID] = user
	return user
}

func (s *Store) SetUserStatus(id model.ID, status model.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.state.users[id]
	if !ok {
		return model.NewError("user", model.ErrNotFound)
	}
	user.Status = status
	user.UpdatedAt = s.now()
	s.state.users[id] = user
	return nil
}

func (s *Store) AddCategory(name string) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.lastCategoryID++
	category := model.Category{
		ID:        s.state.lastCategoryID,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
		Name:      name,
	}
	s.state.categories[category.ID] = category
	return category
}

func (s *Store) RenameCategory(id model.ID, name string) error {
	return s.updateCategory(id, func(c *model.Category) { c.Name = name })
}

func (s *Store) DeleteCategory(id model.ID) error {
	return s.updateCategory(id, func(c *model.Category) { c.Deleted = true })
}

func (s *Store) updateCategory(id model.ID, fn func(*model.Category)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, ok := s.state.categories[id]
	if !ok {
		return model.NewError("category", model.ErrNotFound)
	}
	fn(&category)
	category.UpdatedAt = s.now()
	s.state.categories[id] = category
	return nil
}

// Entries returns every stored entry ordered by start time.
func (s *Store) Entries() []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.Entry, 0, len(s.state.entries))
	for _, entry := range s.state.entries {
		entries = append(entries, entry)
	}
	return sortedEntries(entries)
}

func sortedEntries(entries []model.Entry) []model.Entry {
	slices.SortFunc(entries, func(a, b model.Entry) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return entries
}
