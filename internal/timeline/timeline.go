// Package timeline rebuilds a gapless day view from raw ledger entries.
//
// Stored end times are only trusted for the last entry of a day; every
// other entry ends where the next one starts. The projection is pure and
// is recomputed on every read.
package timeline

import (
	"cmp"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
	"golang.org/x/exp/slices"
)

type Item struct {
	EntryID      model.ID        `json:"entryId"`
	CategoryID   *model.ID       `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Kind         model.EntryKind `json:"kind"`

	Start   time.Time  `json:"startTime"`
	End     *time.Time `json:"endTime"`
	Seconds *int64     `json:"durationSeconds"`
	Active  bool       `json:"active"`
}

func (it Item) Minutes() int64 {
	if it.Seconds == nil {
		return 0
	}
	return (*it.Seconds + 30) / 60
}

// Reconstruct orders entries by start time and derives each entry's
// effective end and duration. The input slice is not modified.
func Reconstruct(entries []model.Entry) []Item {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b model.Entry) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	items := make([]Item, 0, len(sorted))
	for i, entry := range sorted {
		item := Item{
			EntryID:      entry.ID,
			CategoryID:   entry.Category,
			CategoryName: entry.CategoryName,
			Kind:         entry.Kind(),
			Start:        entry.Start,
		}

		switch {
		case i+1 < len(sorted):
			end := sorted[i+1].Start
			secs := nonNegative(int64(end.Sub(entry.Start) / time.Second))
			item.End, item.Seconds = &end, &secs
		case entry.End != nil:
			end := *entry.End
			secs, _ := entry.StoredSeconds()
			item.End, item.Seconds = &end, &secs
		default:
			item.Active = true
		}

		if isBoundary(entry, item) && len(sorted) > 1 {
			continue
		}

		items = append(items, item)
	}

	return items
}

// isBoundary matches the category-less markers written when a past day
// is closed retroactively, once they carry no elapsed time.
func isBoundary(entry model.Entry, it Item) bool {
	return entry.IsBoundaryMarker() && !it.Active && it.Seconds != nil && *it.Seconds == 0
}

// Total sums the effective durations of closed items.
func Total(items []Item) time.Duration {
	var secs int64
	for _, it := range items {
		if it.Seconds != nil {
			secs += *it.Seconds
		}
	}
	return time.Duration(secs) * time.Second
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
