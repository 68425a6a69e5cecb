package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/protomem/activity-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	from = time.Date(2024, 5, 6, 4, 0, 0, 0, time.UTC)
	to   = from.Add(24 * time.Hour)
)

func TestLockUserQuery(t *testing.T) {
	query, args, err := lockUserQuery(newBuilder(), 7)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM users WHERE id = $1 FOR UPDATE", query)
	assert.Equal(t, []any{model.ID(7)}, args)
}

func TestOpenEntryQuery(t *testing.T) {
	query, args, err := openEntryQuery(newBuilder(), 3)
	require.NoError(t, err)

	assert.Contains(t, query, "FROM entries")
	assert.Contains(t, query, "end_time IS NULL")
	assert.Contains(t, query, "user_id = $1")
	assert.Contains(t, query, "LIMIT 1")
	assert.Equal(t, []any{model.ID(3)}, args)
}

func TestListByUserQuery(t *testing.T) {
	query, args, err := listByUserQuery(newBuilder(), 3, from, to)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT * FROM entries WHERE user_id = $1 AND start_time >= $2 AND start_time < $3 ORDER BY start_time ASC, id ASC",
		query,
	)
	assert.Equal(t, []any{model.ID(3), from, to}, args)
}

func TestListByUsersQuery(t *testing.T) {
	query, args, err := listByUsersQuery(newBuilder(), []model.ID{1, 2}, from, to)
	require.NoError(t, err)

	assert.Contains(t, query, "user_id IN ($1,$2)")
	assert.Contains(t, query, "start_time >= $3")
	assert.Contains(t, query, "start_time <= $4")
	assert.Contains(t, query, "ORDER BY start_time ASC, id ASC")
	assert.Len(t, args, 4)
}

func TestUpsertAttendanceQuery(t *testing.T) {
	leftAt := from.Add(10 * time.Hour)
	query, args, err := upsertAttendanceQuery(newBuilder(), model.Attendance{
		User: 5, Date: "2024-05-06", HasLeft: true, LeftAt: &leftAt, IsFixed: true,
	})
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO attendance (user_id,work_date,has_left,left_at,is_fixed) VALUES ($1,$2,$3,$4,$5)")
	assert.Contains(t, query, "ON CONFLICT (user_id, work_date) DO UPDATE SET")
	assert.Contains(t, query, "RETURNING *")
	assert.Equal(t, []any{model.ID(5), "2024-05-06", true, &leftAt, true}, args)
}

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

type fakeResult struct{ n int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.n, nil }

func TestExpectAffected(t *testing.T) {
	assert.NoError(t, expectAffected(fakeResult{1}, "entry"))

	err := expectAffected(fakeResult{0}, "entry")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.EqualError(t, err, "entry: not found")
}
