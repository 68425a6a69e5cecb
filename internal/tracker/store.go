package tracker

import (
	"context"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
)

// Store hands out units of work over the ledger and attendance records.
//
// Atomic must serialise every call for the same user and apply fn's writes
// all-or-nothing. Snapshot gives a read-only view that does not observe a
// half-applied Atomic call.
type Store interface {
	Atomic(ctx context.Context, user model.ID, fn func(Tx) error) error
	Snapshot(ctx context.Context, fn func(Tx) error) error
}

type Tx interface {
	Users() UserStore
	Categories() CategoryStore
	Entries() EntryStore
	Attendance() AttendanceStore
}

type UserStore interface {
	Get(ctx context.Context, id model.ID) (model.User, error)
}

type CategoryStore interface {
	Get(ctx context.Context, id model.ID) (model.Category, error)
}

type EntryStore interface {
	Get(ctx context.Context, id model.ID) (model.Entry, error)
	// GetOpen returns model.ErrNotFound when the user has no open entry.
	GetOpen(ctx context.Context, user model.ID) (model.Entry, error)
	// ListByUser returns entries with from <= start < to ordered by start.
	ListByUser(ctx context.Context, user model.ID, from, to time.Time) ([]model.Entry, error)
	// ListByUsers returns entries with from <= start <= to ordered by start.
	ListByUsers(ctx context.Context, users []model.ID, from, to time.Time) ([]model.Entry, error)
	Insert(ctx context.Context, entry model.Entry) (model.Entry, error)
	Close(ctx context.Context, id model.ID, end time.Time, durationSeconds int64) error
	UpdateCategory(ctx context.Context, id model.ID, category *model.ID, categoryName string) error
	Delete(ctx context.Context, id model.ID) error
}

type AttendanceStore interface {
	Get(ctx context.Context, user model.ID, date string) (model.Attendance, error)
	Upsert(ctx context.Context, record model.Attendance) (model.Attendance, error)
}
