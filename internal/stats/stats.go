// Package stats buckets ledger durations into time series and category
// totals for reporting.
package stats

import (
	"cmp"
	"sort"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
	"golang.org/x/exp/slices"
)

type Bucket struct {
	Label string
	Start time.Time
	End   time.Time
}

// Buckets covers [start, end] with calendar-aligned, contiguous buckets.
func Buckets(start, end time.Time, g Granularity, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.UTC
	}
	if g == Auto {
		g = AutoGranularity(start, end)
	}

	var buckets []Bucket
	for cur := g.align(start, loc); !cur.After(end); {
		next := g.next(cur)
		buckets = append(buckets, Bucket{Label: g.label(cur), Start: cur, End: next})
		cur = next
	}
	return buckets
}

type Point struct {
	Label        string `json:"label"`
	TotalMinutes int64  `json:"totalMinutes"`
}

type CategoryTotal struct {
	CategoryName string `json:"categoryName"`
	Minutes      int64  `json:"minutes"`
}

type Query struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
	Location    *time.Location
}

type Result struct {
	Granularity  Granularity     `json:"granularity"`
	Start        time.Time       `json:"rangeStart"`
	End          time.Time       `json:"rangeEnd"`
	TotalSeconds int64           `json:"totalSeconds"`
	TimeSeries   []Point         `json:"timeSeries"`
	ByCategory   []CategoryTotal `json:"byCategory"`
}

// Aggregate sums closed entries starting within [q.Start, q.End]. Open
// entries contribute nothing; entries of several users share buckets.
func Aggregate(entries []model.Entry, q Query) Result {
	g := q.Granularity
	if g == Auto {
		g = AutoGranularity(q.Start, q.End)
	}

	buckets := Buckets(q.Start, q.End, g, q.Location)
	perBucket := make([]int64, len(buckets))
	perCategory := make(map[string]int64)

	var total int64
	for _, entry := range entries {
		if entry.Start.Before(q.Start) || entry.Start.After(q.End) {
			continue
		}

		secs, ok := entry.StoredSeconds()
		if !ok {
			continue
		}

		if i := findBucket(buckets, entry.Start); i >= 0 {
			perBucket[i] += secs
		}
		perCategory[entry.CategoryName] += secs
		total += secs
	}

	series := make([]Point, len(buckets))
	for i, b := range buckets {
		series[i] = Point{Label: b.Label, TotalMinutes: toMinutes(perBucket[i])}
	}

	return Result{
		Granularity:  g,
		Start:        q.Start,
		End:          q.End,
		TotalSeconds: total,
		TimeSeries:   series,
		ByCategory:   categoryTotals(perCategory),
	}
}

func findBucket(buckets []Bucket, t time.Time) int {
	i := sort.Search(len(buckets), func(i int) bool {
		return buckets[i].End.After(t)
	})
	if i == len(buckets) || t.Before(buckets[i].Start) {
		return -1
	}
	return i
}

func categoryTotals(perCategory map[string]int64) []CategoryTotal {
	type pair struct {
		name string
		secs int64
	}

	pairs := make([]pair, 0, len(perCategory))
	for name, secs := range perCategory {
		if secs > 0 {
			pairs = append(pairs, pair{name, secs})
		}
	}

	slices.SortFunc(pairs, func(a, b pair) int {
		if c := cmp.Compare(b.secs, a.secs); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	totals := make([]CategoryTotal, len(pairs))
	for i, p := range pairs {
		totals[i] = CategoryTotal{CategoryName: p.name, Minutes: toMinutes(p.secs)}
	}
	return totals
}

func toMinutes(secs int64) int64 {
	return (secs + 30) / 60
}
