package workday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendar_DateOf(t *testing.T) {
	cal := MustNew(time.UTC, 4*time.Hour)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"morning", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), "2024-03-05"},
		{"just before cutoff", time.Date(2024, 3, 5, 3, 59, 59, 0, time.UTC), "2024-03-04"},
		{"at cutoff", time.Date(2024, 3, 5, 4, 0, 0, 0, time.UTC), "2024-03-05"},
		{"late evening", time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC), "2024-03-05"},
		{"month rollover", time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.DateOf(tt.at))
		})
	}
}

func TestCalendar_DateOf_ZeroCutoff(t *testing.T) {
	cal := MustNew(time.UTC, 0)
	assert.Equal(t, "2024-03-05", cal.DateOf(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-04", cal.DateOf(time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC)))
}

func TestCalendar_DateOf_Location(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	cal := MustNew(loc, 4*time.Hour)

	// 02:00 UTC is 05:00 local, past the cutoff.
	assert.Equal(t, "2024-03-05", cal.DateOf(time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC)))
	// 00:30 UTC is 03:30 local, still the previous business day.
	assert.Equal(t, "2024-03-04", cal.DateOf(time.Date(2024, 3, 5, 0, 30, 0, 0, time.UTC)))
}

func TestCalendar_Bounds(t *testing.T) {
	cal := MustNew(time.UTC, 4*time.Hour)

	start, end, err := cal.Bounds("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 4, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 6, 4, 0, 0, 0, time.UTC), end)

	assert.Equal(t, "2024-03-05", cal.DateOf(start))
	assert.Equal(t, "2024-03-05", cal.DateOf(end.Add(-time.Second)))
	assert.Equal(t, "2024-03-06", cal.DateOf(end))
}

func TestCalendar_Bounds_InvalidDate(t *testing.T) {
	cal := MustNew(time.UTC, 0)
	_, _, err := cal.Bounds("05/03/2024")
	assert.Error(t, err)
}

func TestNew_InvalidCutoff(t *testing.T) {
	_, err := New(time.UTC, 24*time.Hour)
	assert.ErrorIs(t, err, ErrInvalidCutoff)

	_, err = New(time.UTC, -time.Minute)
	assert.ErrorIs(t, err, ErrInvalidCutoff)
}
