// Package workday maps instants to business days.
//
// A business day is a local calendar date shifted by a cutoff: with a 4h
// cutoff, activity at 02:30 local time still belongs to the previous date.
// The cutoff is configuration (WORKDAY_CUTOFF), not an invariant.
package workday

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidCutoff = errors.New("workday: cutoff must be within [0, 24h)")

type Calendar struct {
	loc    *time.Location
	cutoff time.Duration
}

func New(loc *time.Location, cutoff time.Duration) (Calendar, error) {
	if cutoff < 0 || cutoff >= 24*time.Hour {
		return Calendar{}, ErrInvalidCutoff
	}
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc, cutoff: cutoff}, nil
}

// MustNew is New for static configuration in tests and defaults.
func MustNew(loc *time.Location, cutoff time.Duration) Calendar {
	c, err := New(loc, cutoff)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c Calendar) Cutoff() time.Duration { return c.cutoff }

// DateOf returns the business date t belongs to.
func (c Calendar) DateOf(t time.Time) string {
	local := t.In(c.Location())
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location())
	if local.Before(midnight.Add(c.cutoff)) {
		midnight = midnight.AddDate(0, 0, -1)
	}
	return midnight.Format(DateLayout)
}

// Bounds returns the half-open interval [start, end) covered by date.
func (c Calendar) Bounds(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.Location())
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("workday: parse date %q: %w", date, err)
	}
	start := d.Add(c.cutoff)
	end := d.AddDate(0, 0, 1).Add(c.cutoff)
	return start, end, nil
}

func ParseDate(date string) error {
	_, err := time.Parse(DateLayout, date)
	return err
}
