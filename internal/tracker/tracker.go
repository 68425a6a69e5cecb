// Package tracker owns the session ledger rules: one open entry per user,
// atomic switch/stop, manual backfill, category edits and the daily
// attendance workflow. History and statistics are read-only projections
// built on top of the same store.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/workday"
)

type Service struct {
	logger   *slog.Logger
	store    Store
	calendar workday.Calendar
	clock    Clock
}

type Option func(*Service)

func WithClock(clock Clock) Option {
	return func(s *Service) { s.clock = clock }
}

func New(logger *slog.Logger, store Store, calendar workday.Calendar, opts ...Option) *Service {
	s := &Service{
		logger:   logger.With("module", "tracker"),
		store:    store,
		calendar: calendar,
		clock:    SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Calendar() workday.Calendar { return s.calendar }

func (s *Service) Now() time.Time { return s.clock.Now() }

// Actor loads the calling user. Disabled and deleted users are rejected
// with ErrUserNotActive.
func (s *Service) Actor(ctx context.Context, userID model.ID) (model.User, error) {
	var actor model.User
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		var err error
		actor, err = activeUser(ctx, tx, userID)
		return err
	})
	return actor, err
}

// ActiveSession returns the user's open entry or nil.
func (s *Service) ActiveSession(ctx context.Context, userID model.ID) (*model.Entry, error) {
	var active *model.Entry
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		entry, err := tx.Entries().GetOpen(ctx, userID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil
			}
			return err
		}
		active = &entry
		return nil
	})
	return active, err
}

// Switch closes the open entry, if any, and opens a new one for category.
// Suppressing a switch to the category already running is left to callers.
func (s *Service) Switch(ctx context.Context, userID, categoryID model.ID) (model.Entry, error) {
	var (
		opened model.Entry
		closed *model.Entry
	)
	err := s.store.Atomic(ctx, userID, func(tx Tx) error {
		if _, err := activeUser(ctx, tx, userID); err != nil {
			return err
		}

		category, err := resolveCategory(ctx, tx, categoryID)
		if err != nil {
			return err
		}

		// Read under the user lock so transitions commit in clock order.
		now := s.clock.Now()

		prev, err := closeOpen(ctx, tx, userID, now)
		switch {
		case err == nil:
			closed = &prev
		case !errors.Is(err, model.ErrNoActiveSession):
			return err
		}

		opened, err = tx.Entries().Insert(ctx, model.Entry{
			User:         userID,
			Category:     &category.ID,
			CategoryName: category.Name,
			Start:        now,
		})
		return err
	})
	if err != nil {
		return model.Entry{}, err
	}

	logger := s.logger.With("userId", userID, "entryId", opened.ID, "category", opened.CategoryName)
	if closed != nil {
		logger = logger.With("closedEntryId", closed.ID)
	}
	logger.Info("session switched")

	return opened, nil
}

// Stop closes the user's open entry.
func (s *Service) Stop(ctx context.Context, userID model.ID) (model.Entry, error) {
	var closed model.Entry
	err := s.store.Atomic(ctx, userID, func(tx Tx) error {
		if _, err := activeUser(ctx, tx, userID); err != nil {
			return err
		}

		var err error
		closed, err = closeOpen(ctx, tx, userID, s.clock.Now())
		return err
	})
	if err != nil {
		return model.Entry{}, err
	}

	s.logger.Info("session stopped", "userId", userID, "entryId", closed.ID, "durationSeconds", *closed.DurationSeconds)

	return closed, nil
}

// AddManual backfills a closed zero-length entry at start. Its displayed
// duration comes from the next entry's start, see timeline.Reconstruct.
func (s *Service) AddManual(ctx context.Context, userID, categoryID model.ID, start time.Time) (model.Entry, error) {
	now := s.clock.Now()
	if !start.Before(now) {
		return model.Entry{}, model.NewError("entry", fmt.Errorf("%w: manual start must be in the past", model.ErrInvalidTime))
	}

	var created model.Entry
	err := s.store.Atomic(ctx, userID, func(tx Tx) error {
		if _, err := activeUser(ctx, tx, userID); err != nil {
			return err
		}

		category, err := resolveCategory(ctx, tx, categoryID)
		if err != nil {
			return err
		}

		var zero int64
		end := start
		created, err = tx.Entries().Insert(ctx, model.Entry{
			User:            userID,
			Category:        &category.ID,
			CategoryName:    category.Name,
			Start:           start,
			End:             &end,
			DurationSeconds: &zero,
			IsManual:        true,
		})
		return err
	})
	if err != nil {
		return model.Entry{}, err
	}

	s.logger.Info("manual entry added", "userId", userID, "entryId", created.ID, "startTime", start)

	return created, nil
}

// EditCategory re-points an entry at another category and refreshes its
// name snapshot. Open entries may be edited too; times are never touched.
func (s *Service) EditCategory(ctx context.Context, actorID, entryID, categoryID model.ID) (model.Entry, error) {
	owner, err := s.entryOwner(ctx, entryID)
	if err != nil {
		return model.Entry{}, err
	}

	var edited model.Entry
	err = s.store.Atomic(ctx, owner, func(tx Tx) error {
		entry, err := authorizeEntry(ctx, tx, actorID, entryID)
		if err != nil {
			return err
		}

		category, err := resolveCategory(ctx, tx, categoryID)
		if err != nil {
			return err
		}

		if err := tx.Entries().UpdateCategory(ctx, entry.ID, &category.ID, category.Name); err != nil {
			return err
		}

		edited, err = tx.Entries().Get(ctx, entry.ID)
		return err
	})
	if err != nil {
		return model.Entry{}, err
	}

	s.logger.Info("entry category edited", "actorId", actorID, "entryId", entryID, "category", edited.CategoryName)

	return edited, nil
}

// Delete removes an entry permanently.
func (s *Service) Delete(ctx context.Context, actorID, entryID model.ID) error {
	owner, err := s.entryOwner(ctx, entryID)
	if err != nil {
		return err
	}

	err = s.store.Atomic(ctx, owner, func(tx Tx) error {
		entry, err := authorizeEntry(ctx, tx, actorID, entryID)
		if err != nil {
			return err
		}
		return tx.Entries().Delete(ctx, entry.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("entry deleted", "actorId", actorID, "entryId", entryID, "ownerId", owner)

	return nil
}

func (s *Service) entryOwner(ctx context.Context, entryID model.ID) (model.ID, error) {
	var owner model.ID
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		entry, err := tx.Entries().Get(ctx, entryID)
		if err != nil {
			return err
		}
		owner = entry.User
		return nil
	})
	return owner, err
}

func authorizeEntry(ctx context.Context, tx Tx, actorID, entryID model.ID) (model.Entry, error) {
	actor, err := activeUser(ctx, tx, actorID)
	if err != nil {
		return model.Entry{}, err
	}

	entry, err := tx.Entries().Get(ctx, entryID)
	if err != nil {
		return model.Entry{}, err
	}

	if !actor.CanManage(entry.User) {
		return model.Entry{}, model.NewError("entry", model.ErrForbidden)
	}

	return entry, nil
}

func activeUser(ctx context.Context, tx Tx, userID model.ID) (model.User, error) {
	user, err := tx.Users().Get(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if !user.IsActive() {
		return model.User{}, model.NewError("user", model.ErrUserNotActive)
	}
	return user, nil
}

func resolveCategory(ctx context.Context, tx Tx, categoryID model.ID) (model.Category, error) {
	category, err := tx.Categories().Get(ctx, categoryID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Category{}, model.ErrCategoryNotFound
		}
		return model.Category{}, err
	}
	if category.Deleted {
		return model.Category{}, model.ErrCategoryNotFound
	}
	return category, nil
}

// closeOpen closes the user's open entry at the given instant.
func closeOpen(ctx context.Context, tx Tx, userID model.ID, at time.Time) (model.Entry, error) {
	open, err := tx.Entries().GetOpen(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Entry{}, model.ErrNoActiveSession
		}
		return model.Entry{}, err
	}

	secs := int64(at.Sub(open.Start) / time.Second)
	if secs < 0 {
		secs = 0
	}

	if err := tx.Entries().Close(ctx, open.ID, at, secs); err != nil {
		return model.Entry{}, err
	}

	open.End = &at
	open.DurationSeconds = &secs
	return open, nil
}
