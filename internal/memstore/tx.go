package memstore

import (
	"context"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/tracker"
	"golang.org/x/exp/slices"
)

type tx struct {
	state    *state
	now      func() time.Time
	readOnly bool
}

func (t *tx) Users() tracker.UserStore            { return userStore{t} }
func (t *tx) Categories() tracker.CategoryStore   { return categoryStore{t} }
func (t *tx) Entries() tracker.EntryStore         { return entryStore{t} }
func (t *tx) Attendance() tracker.AttendanceStore { return attendanceStore{t} }

func (t *tx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

type userStore struct{ *tx }

func (s userStore) Get(_ context.Context, id model.ID) (model.User, error) {
	user, ok := s.state.users[id]
	if !ok {
		return model.User{}, model.NewError("user", model.ErrNotFound)
	}
	return user, nil
}

type categoryStore struct{ *tx }

func (s categoryStore) Get(_ context.Context, id model.ID) (model.Category, error) {
	category, ok := s.state.categories[id]
	if !ok {
		return model.Category{}, model.NewError("category", model.ErrNotFound)
	}
	return category, nil
}

type entryStore struct{ *tx }

func (s entryStore) Get(_ context.Context, id model.ID) (model.Entry, error) {
	entry, ok := s.state.entries[id]
	if !ok {
		return model.Entry{}, model.NewError("entry", model.ErrNotFound)
	}
	return entry, nil
}

func (s entryStore) GetOpen(_ context.Context, user model.ID) (model.Entry, error) {
	for _, entry := range s.state.entries {
		if entry.User == user && entry.IsOpen() {
			return entry, nil
		}
	}
	return model.Entry{}, model.NewError("entry", model.ErrNotFound)
}

func (s entryStore) ListByUser(_ context.Context, user model.ID, from, to time.Time) ([]model.Entry, error) {
	entries := make([]model.Entry, 0)
	for _, entry := range s.state.entries {
		if entry.User == user && !entry.Start.Before(from) && entry.Start.Before(to) {
			entries = append(entries, entry)
		}
	}
	return sortedEntries(entries), nil
}

func (s entryStore) ListByUsers(_ context.Context, users []model.ID, from, to time.Time) ([]model.Entry, error) {
	entries := make([]model.Entry, 0)
	for _, entry := range s.state.entries {
		if slices.Contains(users, entry.User) && !entry.Start.Before(from) && !entry.Start.After(to) {
			entries = append(entries, entry)
		}
	}
	return sortedEntries(entries), nil
}

func (s entryStore) Insert(ctx context.Context, entry model.Entry) (model.Entry, error) {
	if err := s.writable(); err != nil {
		return model.Entry{}, err
	}

	if entry.IsOpen() {
		if _, err := s.GetOpen(ctx, entry.User); err == nil {
			return model.Entry{}, model.NewError("entry", model.ErrExists)
		}
	}

	s.state.lastEntryID++
	entry.ID = s.state.lastEntryID
	entry.CreatedAt, entry.UpdatedAt = s.now(), s.now()
	s.state.entries[entry.ID] = entry
	return entry, nil
}

func (s entryStore) Close(_ context.Context, id model.ID, end time.Time, durationSeconds int64) error {
	return s.update(id, func(e *model.Entry) {
		e.End = &end
		e.DurationSeconds = &durationSeconds
	})
}

func (s entryStore) UpdateCategory(_ context.Context, id model.ID, category *model.ID, categoryName string) error {
	return s.update(id, func(e *model.Entry) {
		if category != nil {
			c := *category
			category = &c
		}
		e.Category = category
		e.CategoryName = categoryName
		e.IsEdited = true
	})
}

func (s entryStore) Delete(_ context.Context, id model.ID) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.state.entries[id]; !ok {
		return model.NewError("entry", model.ErrNotFound)
	}
	delete(s.state.entries, id)
	return nil
}

func (s entryStore) update(id model.ID, fn func(*model.Entry)) error {
	if err := s.writable(); err != nil {
		return err
	}

	entry, ok := s.state.entries[id]
	if !ok {
		return model.NewError("entry", model.ErrNotFound)
	}
	fn(&entry)
	entry.UpdatedAt = s.now()
	s.state.entries[id] = entry
	return nil
}

type attendanceStore struct{ *tx }

func (s attendanceStore) Get(_ context.Context, user model.ID, date string) (model.Attendance, error) {
	record, ok := s.state.attendance[attendanceKey{user, date}]
	if !ok {
		return model.Attendance{}, model.NewError("attendance", model.ErrNotFound)
	}
	return record, nil
}

func (s attendanceStore) Upsert(_ context.Context, record model.Attendance) (model.Attendance, error) {
	if err := s.writable(); err != nil {
		return model.Attendance{}, err
	}

	key := attendanceKey{record.User, record.Date}
	if current, ok := s.state.attendance[key]; ok {
		record.ID = current.ID
		record.CreatedAt = current.CreatedAt
	} else {
		s.state.lastAttendanceID++
		record.ID = s.state.lastAttendanceID
		record.CreatedAt = s.now()
	}
	record.UpdatedAt = s.now()

	s.state.attendance[key] = record
	return record, nil
}
