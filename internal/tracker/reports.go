package tracker

import (
	"context"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/stats"
	"github.com/protomem/activity-tracker/internal/timeline"
)

// History returns the reconstructed timeline of one business day.
func (s *Service) History(ctx context.Context, userID model.ID, date string) ([]timeline.Item, error) {
	dayStart, dayEnd, err := s.calendar.Bounds(date)
	if err != nil {
		return nil, model.NewError("history", invalidDate(err))
	}

	var entries []model.Entry
	err = s.store.Snapshot(ctx, func(tx Tx) error {
		if _, err := tx.Users().Get(ctx, userID); err != nil {
			return err
		}

		entries, err = tx.Entries().ListByUser(ctx, userID, dayStart, dayEnd)
		return err
	})
	if err != nil {
		return nil, err
	}

	return timeline.Reconstruct(entries), nil
}

type StatsQuery struct {
	Users       []model.ID
	Start       time.Time
	End         time.Time
	Granularity stats.Granularity
	// Window, when set, replaces Start/End/Granularity; any granularity
	// passed along with it is ignored.
	Window stats.Window
}

// Stats aggregates the selected users' entries. Regular users may only
// query themselves; an empty user list means the actor.
func (s *Service) Stats(ctx context.Context, actorID model.ID, q StatsQuery) (stats.Result, error) {
	loc := s.calendar.Location()

	if q.Window != "" {
		start, end, g, err := q.Window.Range(s.clock.Now(), loc)
		if err != nil {
			return stats.Result{}, err
		}
		q.Start, q.End, q.Granularity = start, end, g
	}
	if q.End.Before(q.Start) {
		return stats.Result{}, model.NewError("stats", invalidRange())
	}
	g, err := stats.CheckRange(q.Start, q.End, q.Granularity, loc)
	if err != nil {
		return stats.Result{}, err
	}
	q.Granularity = g
	if len(q.Users) == 0 {
		q.Users = []model.ID{actorID}
	}

	var entries []model.Entry
	err = s.store.Snapshot(ctx, func(tx Tx) error {
		actor, err := activeUser(ctx, tx, actorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			for _, id := range q.Users {
				if id != actor.ID {
					return model.NewError("stats", model.ErrForbidden)
				}
			}
		}

		entries, err = tx.Entries().ListByUsers(ctx, q.Users, q.Start, q.End)
		return err
	})
	if err != nil {
		return stats.Result{}, err
	}

	return stats.Aggregate(entries, stats.Query{
		Start:       q.Start,
		End:         q.End,
		Granularity: q.Granularity,
		Location:    loc,
	}), nil
}
