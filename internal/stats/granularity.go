package stats

import (
	"errors"
	"fmt"
	"time"
)

type Granularity string

const (
	Auto  Granularity = ""
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

var ErrUnknownGranularity = errors.New("stats: unknown granularity")

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Auto, Day, Week, Month, Year:
		return g, nil
	default:
		return Auto, fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

const day = 24 * time.Hour

// AutoGranularity picks daily buckets up to 31 days, monthly up to 366
// days and yearly beyond that.
func AutoGranularity(start, end time.Time) Granularity {
	span := end.Sub(start)
	switch {
	case span <= 31*day:
		return Day
	case span <= 366*day:
		return Month
	default:
		return Year
	}
}

var ErrRangeTooLarge = errors.New("stats: range too large for granularity")

// maxBuckets bounds the series length of one query per granularity.
var maxBuckets = map[Granularity]int{
	Day:   366,
	Week:  260,
	Month: 240,
	Year:  100,
}

// CheckRange resolves Auto for [start, end] and rejects ranges that would
// produce more buckets than the granularity allows.
func CheckRange(start, end time.Time, g Granularity, loc *time.Location) (Granularity, error) {
	if g == Auto {
		g = AutoGranularity(start, end)
	}

	limit, ok := maxBuckets[g]
	if !ok {
		return g, fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
	}
	if n := bucketCount(start, end, g, loc); n > limit {
		return g, fmt.Errorf("%w: %d %s buckets, at most %d", ErrRangeTooLarge, n, g, limit)
	}
	return g, nil
}

// bucketCount is len(Buckets(start, end, g, loc)) without building them.
func bucketCount(start, end time.Time, g Granularity, loc *time.Location) int {
	if end.Before(start) {
		return 0
	}

	y1, m1, d1 := g.align(start, loc).Date()
	y2, m2, d2 := end.In(loc).Date()

	switch g {
	case Month:
		return (y2-y1)*12 + int(m2-m1) + 1
	case Year:
		return y2 - y1 + 1
	}

	// Durations saturate past ~292 years, which still exceeds any limit.
	days := int(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC).Sub(time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)) / day)
	if g == Week {
		return days/7 + 1
	}
	return days + 1
}

// align truncates t to the start of its bucket in loc. Weeks start on Monday.
func (g Granularity) align(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	switch g {
	case Week:
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

func (g Granularity) next(t time.Time) time.Time {
	switch g {
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return t.AddDate(0, 1, 0)
	case Year:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func (g Granularity) label(t time.Time) string {
	switch g {
	case Week:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Month:
		return t.Format("2006-01")
	case Year:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// Window is a named fixed reporting range ending now.
type Window string

const (
	Last30Days   Window = "last30days"
	Last12Weeks  Window = "last12weeks"
	Last12Months Window = "last12months"
	Last5Years   Window = "last5years"
)

var ErrUnknownWindow = errors.New("stats: unknown window")

// Range returns the window's [start, end] and its forced granularity.
func (w Window) Range(now time.Time, loc *time.Location) (time.Time, time.Time, Granularity, error) {
	var (
		g     Granularity
		start time.Time
	)

	switch w {
	case Last30Days:
		g = Day
		start = g.align(now, loc).AddDate(0, 0, -29)
	case Last12Weeks:
		g = Week
		start = g.align(now, loc).AddDate(0, 0, -7*11)
	case Last12Months:
		g = Month
		start = g.align(now, loc).AddDate(0, -11, 0)
	case Last5Years:
		g = Year
		start = g.align(now, loc).AddDate(-4, 0, 0)
	default:
		return time.Time{}, time.Time{}, Auto, fmt.Errorf("%w: %q", ErrUnknownWindow, w)
	}

	return start, now, g, nil
}
