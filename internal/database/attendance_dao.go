package database

import (
	"context"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/activity-tracker/internal/model"
)

type AttendanceDAO struct {
	Logger *slog.Logger
	runner
}

func NewAttendanceDAO(logger *slog.Logger, r runner) *AttendanceDAO {
	return &AttendanceDAO{
		Logger: logger.With("dao", "attendance"),
		runner: r,
	}
}

func (dao *AttendanceDAO) Get(ctx context.Context, user model.ID, date string) (model.Attendance, error) {
	logger := dao.Logger.With("query", "get")

	query, args, err := dao.Builder.
		Select("*").
		From("attendance").
		Where(squirrel.Eq{"user_id": user, "work_date": date}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Attendance{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var record model.Attendance
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&record); err != nil {
		if IsNoRows(err) {
			return model.Attendance{}, model.NewError("attendance", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.Attendance{}, err
	}

	return record, nil
}

// Upsert writes the record for (user, date), creating it on first use.
func (dao *AttendanceDAO) Upsert(ctx context.Context, record model.Attendance) (model.Attendance, error) {
	logger := dao.Logger.With("query", "upsert")

	query, args, err := upsertAttendanceQuery(dao.Builder, record)
	if err != nil {
		return model.Attendance{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var saved model.Attendance
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&saved); err != nil {
		logger.Warn("failed query execute", "error", err)

		return model.Attendance{}, err
	}

	logger.Debug("success query execute", "attendanceId", saved.ID, "date", saved.Date)

	return saved, nil
}

func upsertAttendanceQuery(b squirrel.StatementBuilderType, record model.Attendance) (string, []any, error) {
	return b.Insert("attendance").
		Columns("user_id", "work_date", "has_left", "left_at", "is_fixed").
		Values(record.User, record.Date, record.HasLeft, record.LeftAt, record.IsFixed).
		Suffix(`ON CONFLICT (user_id, work_date) DO UPDATE SET
			has_left = EXCLUDED.has_left,
			left_at = EXCLUDED.left_at,
			is_fixed = EXCLUDED.is_fixed,
			updated_at = now()
		RETURNING *`).
		ToSql()
}
