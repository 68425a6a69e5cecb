package tracker_test

import (
	"context"
	"testing"

	"github.com/protomem/activity-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeave_ClosesOpenEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Switch(ctx, f.user.ID, f.meeting.ID)
	require.NoError(t, err)

	f.clock.Set(may(6, 17, 0))
	record, err := f.svc.Leave(ctx, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, "2024-05-06", record.Date)
	assert.True(t, record.HasLeft)
	require.NotNil(t, record.LeftAt)
	assert.Equal(t, may(6, 17, 0), *record.LeftAt)
	assert.False(t, record.IsFixed)

	assert.Empty(t, f.openEntries(f.user.ID))
	entries := f.store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(8*3600), *entries[0].DurationSeconds)
}

func TestLeave_WithoutOpenEntry(t *testing.T) {
	f := newFixture(t)

	record, err := f.svc.Leave(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, record.HasLeft)
	assert.Empty(t, f.store.Entries())
}

func TestLeave_AfterMidnightCountsForPreviousDay(t *testing.T) {
	f := newFixture(t)

	f.clock.Set(may(7, 2, 0))
	record, err := f.svc.Leave(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06", record.Date)
}

func TestLeave_UserNotActive(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetUserStatus(f.user.ID, model.UserDeleted))

	_, err := f.svc.Leave(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, model.ErrUserNotActive)
}

func TestResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Resume(ctx, f.user.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Switch(ctx, f.user.ID, f.meeting.ID)
	require.NoError(t, err)
	f.clock.Set(may(6, 12, 0))
	left, err := f.svc.Leave(ctx, f.user.ID)
	require.NoError(t, err)

	f.clock.Set(may(6, 13, 0))
	resumed, err := f.svc.Resume(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, left.ID, resumed.ID)
	assert.False(t, resumed.HasLeft)
	assert.Nil(t, resumed.LeftAt)

	active, err := f.svc.ActiveSession(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, active, "resume must not reopen an entry")

	f.clock.Set(may(6, 18, 0))
	again, err := f.svc.Leave(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, left.ID, again.ID)
	assert.True(t, again.HasLeft)
}

func TestFix_ClosesDanglingEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Switch(ctx, f.user.ID, f.meeting.ID)
	require.NoError(t, err)

	f.clock.Set(may(7, 10, 0))

	status, err := f.svc.CheckStatus(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, model.DailyStatus{Date: "2024-05-06", NeedsFix: true, HasOpenEntry: true}, status)

	record, err := f.svc.Fix(ctx, f.user.ID, f.user.ID, "2024-05-06", may(6, 18, 0))
	require.NoError(t, err)
	assert.True(t, record.HasLeft)
	assert.True(t, record.IsFixed)
	assert.Equal(t, may(6, 18, 0), *record.LeftAt)

	assert.Empty(t, f.openEntries(f.user.ID))

	status, err = f.svc.CheckStatus(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, model.DailyStatus{Date: "2024-05-06", HasLeft: true}, status)

	items, err := f.svc.History(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(9*3600), *items[0].Seconds)
}

func TestFix_LeaveTimeBeforeLastActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Switch(ctx, f.user.ID, f.meeting.ID)
	require.NoError(t, err)
	f.clock.Set(may(7, 10, 0))

	_, err = f.svc.Fix(ctx, f.user.ID, f.user.ID, "2024-05-06", may(6, 8, 0))
	assert.ErrorIs(t, err, model.ErrInvalidTime)

	_, err = f.svc.Fix(ctx, f.user.ID, f.user.ID, "2024-05-06", may(6, 9, 0))
	assert.ErrorIs(t, err, model.ErrInvalidTime, "leave time equal to last start")

	assert.Len(t, f.openEntries(f.user.ID), 1)

	status, err := f.svc.CheckStatus(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	assert.False(t, status.HasLeft)
	assert.True(t, status.NeedsFix)
}

func TestFix_RejectsTodayAndFuture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Set(may(7, 10, 0))

	_, err := f.svc.Fix(ctx, f.user.ID, f.user.ID, "2024-05-07", may(7, 9, 0))
	assert.ErrorIs(t, err, model.ErrInvalidTime)

	_, err = f.svc.Fix(ctx, f.user.ID, f.user.ID, "2024-05-06", may(7, 11, 0))
	assert.ErrorIs(t, err, model.ErrInvalidTime)

	_, err = f.svc.Fix(ctx, f.user.ID, f.user.ID, "bogus", may(6, 18, 0))
	assert.ErrorIs(t, err, model.ErrInvalidTime)
}

func TestFix_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Switch(ctx, f.user.ID, f.meeting.ID)
	require.NoError(t, err)
	f.clock.Set(may(7, 10, 0))

	_, err = f.svc.Fix(ctx, f.other.ID, f.user.ID, "2024-05-06", may(6, 18, 0))
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.svc.Fix(ctx, f.other.ID, f.user.ID, "bogus", may(6, 18, 0))
	assert.ErrorIs(t, err, model.ErrForbidden, "authorization comes before input checks")
	_, err = f.svc.Fix(ctx, f.other.ID, f.user.ID, "2024-05-07", may(7, 9, 0))
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Len(t, f.openEntries(f.user.ID), 1)

	record, err := f.svc.Fix(ctx, f.admin.ID, f.user.ID, "2024-05-06", may(6, 18, 0))
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, record.User)
	assert.True(t, record.IsFixed)
}

func TestFix_ManualLastEntryGetsBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Set(may(7, 10, 0))
	_, err := f.svc.AddManual(ctx, f.user.ID, f.email.ID, may(6, 15, 0))
	require.NoError(t, err)

	status, err := f.svc.CheckStatus(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	assert.True(t, status.NeedsFix)
	assert.False(t, status.HasOpenEntry)

	_, err = f.svc.Fix(ctx, f.user.ID, f.user.ID, "2024-05-06", may(6, 18, 0))
	require.NoError(t, err)

	assert.Len(t, f.store.Entries(), 2)

	items, err := f.svc.History(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Email", items[0].CategoryName)
	assert.Equal(t, may(6, 18, 0), *items[0].End)
	assert.Equal(t, int64(3*3600), *items[0].Seconds)
}

func TestFix_KeepsTodaysOpenEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddManual(ctx, f.user.ID, f.email.ID, may(6, 8, 0))
	require.NoError(t, err)

	f.clock.Set(may(7, 9, 0))
	today, err := f.svc.Switch(ctx, f.user.ID, f.meeting.ID)
	require.NoError(t, err)

	f.clock.Set(may(7, 10, 0))
	_, err = f.svc.Fix(ctx, f.user.ID, f.user.ID, "2024-05-06", may(6, 17, 0))
	require.NoError(t, err)

	open := f.openEntries(f.user.ID)
	require.Len(t, open, 1)
	assert.Equal(t, today.ID, open[0].ID)
}

func TestCheckStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.svc.CheckStatus(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, model.DailyStatus{Date: "2024-05-06", HasOpenEntry: false}, status)

	_, err = f.svc.Switch(ctx, f.user.ID, f.meeting.ID)
	require.NoError(t, err)

	status, err = f.svc.CheckStatus(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	assert.True(t, status.HasOpenEntry)
	assert.False(t, status.NeedsFix, "today never needs a fix")

	f.clock.Set(may(6, 18, 0))
	_, err = f.svc.Leave(ctx, f.user.ID)
	require.NoError(t, err)

	f.clock.Set(may(8, 9, 0))
	status, err = f.svc.CheckStatus(ctx, f.user.ID, "2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, model.DailyStatus{Date: "2024-05-06", HasLeft: true}, status)

	status, err = f.svc.CheckStatus(ctx, f.user.ID, "2024-05-07")
	require.NoError(t, err)
	assert.False(t, status.NeedsFix, "day without activity")

	_, err = f.svc.CheckStatus(ctx, 404, "2024-05-06")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
