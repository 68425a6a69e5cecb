package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
)

// Leave ends the user's business day: the open entry is closed and the
// day's attendance record is marked as left.
func (s *Service) Leave(ctx context.Context, userID model.ID) (model.Attendance, error) {
	var record model.Attendance
	err := s.store.Atomic(ctx, userID, func(tx Tx) error {
		if _, err := activeUser(ctx, tx, userID); err != nil {
			return err
		}

		now := s.clock.Now()
		date := s.calendar.DateOf(now)

		if _, err := closeOpen(ctx, tx, userID, now); err != nil && !errors.Is(err, model.ErrNoActiveSession) {
			return err
		}

		var err error
		record, err = tx.Attendance().Upsert(ctx, model.Attendance{
			User:    userID,
			Date:    date,
			HasLeft: true,
			LeftAt:  &now,
			IsFixed: false,
		})
		return err
	})
	if err != nil {
		return model.Attendance{}, err
	}

	s.logger.Info("day left", "userId", userID, "date", record.Date)

	return record, nil
}

// Resume reopens today's record. No entry is restarted.
func (s *Service) Resume(ctx context.Context, userID model.ID) (model.Attendance, error) {
	var record model.Attendance
	err := s.store.Atomic(ctx, userID, func(tx Tx) error {
		if _, err := activeUser(ctx, tx, userID); err != nil {
			return err
		}

		date := s.calendar.DateOf(s.clock.Now())

		current, err := tx.Attendance().Get(ctx, userID, date)
		if err != nil {
			return err
		}

		current.HasLeft = false
		current.LeftAt = nil

		record, err = tx.Attendance().Upsert(ctx, current)
		return err
	})
	if err != nil {
		return model.Attendance{}, err
	}

	s.logger.Info("day resumed", "userId", userID, "date", record.Date)

	return record, nil
}

// Fix closes a past business day retroactively at leaveTime.
//
// A still-open entry started before the end of that day is closed at
// leaveTime. When nothing is open and the day ends with a manual entry, a
// zero-length boundary entry is written at leaveTime so the manual entry
// gets an end in the reconstructed timeline.
func (s *Service) Fix(ctx context.Context, actorID, userID model.ID, date string, leaveTime time.Time) (model.Attendance, error) {
	var record model.Attendance
	err := s.store.Atomic(ctx, userID, func(tx Tx) error {
		actor, err := activeUser(ctx, tx, actorID)
		if err != nil {
			return err
		}
		if !actor.CanManage(userID) {
			return model.NewError("attendance", model.ErrForbidden)
		}
		if _, err := activeUser(ctx, tx, userID); err != nil {
			return err
		}

		now := s.clock.Now()

		dayStart, dayEnd, err := s.calendar.Bounds(date)
		if err != nil {
			return invalidTime("%v", err)
		}
		if date >= s.calendar.DateOf(now) {
			return invalidTime("date %s is not in the past", date)
		}
		if leaveTime.After(now) {
			return invalidTime("leave time is in the future")
		}
		if leaveTime.Before(dayStart) {
			return invalidTime("leave time precedes day %s", date)
		}

		entries, err := tx.Entries().ListByUser(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return err
		}

		var last *model.Entry
		if len(entries) > 0 {
			last = &entries[len(entries)-1]
			if !leaveTime.After(last.Start) {
				return invalidTime("leave time must be after the last activity at %s", last.Start.Format(time.RFC3339))
			}
		}

		open, err := tx.Entries().GetOpen(ctx, userID)
		switch {
		case err == nil && open.Start.Before(dayEnd):
			if !leaveTime.After(open.Start) {
				return invalidTime("leave time must be after the open entry start")
			}
			if _, err := closeOpen(ctx, tx, userID, leaveTime); err != nil {
				return err
			}
		case err != nil && !errors.Is(err, model.ErrNotFound):
			return err
		case last != nil && last.IsManual && !last.IsOpen():
			var zero int64
			end := leaveTime
			if _, err := tx.Entries().Insert(ctx, model.Entry{
				User:            userID,
				Start:           leaveTime,
				End:             &end,
				DurationSeconds: &zero,
			}); err != nil {
				return err
			}
		}

		record, err = tx.Attendance().Upsert(ctx, model.Attendance{
			User:    userID,
			Date:    date,
			HasLeft: true,
			LeftAt:  &leaveTime,
			IsFixed: true,
		})
		return err
	})
	if err != nil {
		return model.Attendance{}, err
	}

	s.logger.Info("day fixed", "actorId", actorID, "userId", userID, "date", date, "leftAt", leaveTime)

	return record, nil
}

// CheckStatus reports whether a business day still needs a correction.
func (s *Service) CheckStatus(ctx context.Context, userID model.ID, date string) (model.DailyStatus, error) {
	dayStart, dayEnd, err := s.calendar.Bounds(date)
	if err != nil {
		return model.DailyStatus{}, invalidTime("%v", err)
	}
	today := s.calendar.DateOf(s.clock.Now())

	status := model.DailyStatus{Date: date}
	err = s.store.Snapshot(ctx, func(tx Tx) error {
		if _, err := tx.Users().Get(ctx, userID); err != nil {
			return err
		}

		entries, err := tx.Entries().ListByUser(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.IsOpen() {
				status.HasOpenEntry = true
			}
		}

		record, err := tx.Attendance().Get(ctx, userID, date)
		switch {
		case err == nil:
			status.HasLeft = record.HasLeft
		case !errors.Is(err, model.ErrNotFound):
			return err
		}

		status.NeedsFix = date < today && (status.HasOpenEntry || (len(entries) > 0 && !status.HasLeft))
		return nil
	})
	if err != nil {
		return model.DailyStatus{}, err
	}

	return status, nil
}
