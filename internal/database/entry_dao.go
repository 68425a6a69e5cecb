package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/protomem/activity-tracker/internal/model"
)

type EntryDAO struct {
	Logger *slog.Logger
	runner
}

func NewEntryDAO(logger *slog.Logger, r runner) *EntryDAO {
	return &EntryDAO{
		Logger: logger.With("dao", "entry"),
		runner: r,
	}
}

func (dao *EntryDAO) Get(ctx context.Context, id model.ID) (model.Entry, error) {
	query, args, err := dao.Builder.
		Select("*").
		From("entries").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Entry{}, err
	}

	return dao.getOne(ctx, dao.Logger.With("query", "get"), query, args)
}

func (dao *EntryDAO) GetOpen(ctx context.Context, user model.ID) (model.Entry, error) {
	query, args, err := openEntryQuery(dao.Builder, user)
	if err != nil {
		return model.Entry{}, err
	}

	return dao.getOne(ctx, dao.Logger.With("query", "getOpen"), query, args)
}

func openEntryQuery(b squirrel.StatementBuilderType, user model.ID) (string, []any, error) {
	return b.Select("*").
		From("entries").
		Where(squirrel.Eq{"user_id": user, "end_time": nil}).
		Limit(1).
		ToSql()
}

func (dao *EntryDAO) getOne(ctx context.Context, logger *slog.Logger, query string, args []any) (model.Entry, error) {
	logger.Debug("build query", "sql", query, "args", args)

	var entry model.Entry
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&entry); err != nil {
		if IsNoRows(err) {
			return model.Entry{}, model.NewError("entry", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.Entry{}, err
	}

	logger.Debug("success query execute", "entry", entry.ID)

	return entry, nil
}

func (dao *EntryDAO) ListByUser(ctx context.Context, user model.ID, from, to time.Time) ([]model.Entry, error) {
	query, args, err := listByUserQuery(dao.Builder, user, from, to)
	if err != nil {
		return nil, err
	}

	return dao.list(ctx, dao.Logger.With("query", "listByUser"), query, args)
}

func listByUserQuery(b squirrel.StatementBuilderType, user model.ID, from, to time.Time) (string, []any, error) {
	return b.Select("*").
		From("entries").
		Where(squirrel.Eq{"user_id": user}).
		Where(squirrel.GtOrEq{"start_time": from}).
		Where(squirrel.Lt{"start_time": to}).
		OrderBy("start_time ASC", "id ASC").
		ToSql()
}

func (dao *EntryDAO) ListByUsers(ctx context.Context, users []model.ID, from, to time.Time) ([]model.Entry, error) {
	if len(users) == 0 {
		return []model.Entry{}, nil
	}

	query, args, err := listByUsersQuery(dao.Builder, users, from, to)
	if err != nil {
		return nil, err
	}

	return dao.list(ctx, dao.Logger.With("query", "listByUsers"), query, args)
}

func listByUsersQuery(b squirrel.StatementBuilderType, users []model.ID, from, to time.Time) (string, []any, error) {
	return b.Select("*").
		From("entries").
		Where(squirrel.Eq{"user_id": users}).
		Where(squirrel.GtOrEq{"start_time": from}).
		Where(squirrel.LtOrEq{"start_time": to}).
		OrderBy("start_time ASC", "id ASC").
		ToSql()
}

func (dao *EntryDAO) list(ctx context.Context, logger *slog.Logger, query string, args []any) ([]model.Entry, error) {
	logger.Debug("build query", "sql", query, "args", args)

	entries := make([]model.Entry, 0)
	if err := sqlx.SelectContext(ctx, dao, &entries, query, args...); err != nil {
		if IsNoRows(err) {
			return []model.Entry{}, nil
		}

		logger.Warn("failed query execute", "error", err)

		return nil, err
	}

	logger.Debug("success query execute", "countEntries", len(entries))

	return entries, nil
}

func (dao *EntryDAO) Insert(ctx context.Context, entry model.Entry) (model.Entry, error) {
	logger := dao.Logger.With("query", "insert")

	query, args, err := dao.Builder.
		Insert("entries").
		Columns(
			"user_id", "category_id", "category_name",
			"start_time", "end_time", "duration_seconds",
			"is_manual", "is_edited",
		).
		Values(
			entry.User, entry.Category, entry.CategoryName,
			entry.Start, entry.End, entry.DurationSeconds,
			entry.IsManual, entry.IsEdited,
		).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return model.Entry{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var inserted model.Entry
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&inserted); err != nil {
		logger.Warn("failed query execute", "error", err)

		if IsUniqueViolation(err) {
			return model.Entry{}, model.NewError("entry", model.ErrExists)
		}
		if IsForeignKeyViolation(err) {
			return model.Entry{}, model.ErrCategoryNotFound
		}

		return model.Entry{}, err
	}

	logger.Debug("success query execute", "insertId", inserted.ID)

	return inserted, nil
}

func (dao *EntryDAO) Close(ctx context.Context, id model.ID, end time.Time, durationSeconds int64) error {
	return dao.update(ctx, dao.Logger.With("query", "close"), id, map[string]any{
		"end_time":         end,
		"duration_seconds": durationSeconds,
	})
}

func (dao *EntryDAO) UpdateCategory(ctx context.Context, id model.ID, category *model.ID, categoryName string) error {
	return dao.update(ctx, dao.Logger.With("query", "updateCategory"), id, map[string]any{
		"category_id":   category,
		"category_name": categoryName,
		"is_edited":     true,
	})
}

func (dao *EntryDAO) update(ctx context.Context, logger *slog.Logger, id model.ID, data map[string]any) error {
	data["updated_at"] = time.Now()

	query, args, err := dao.Builder.
		Update("entries").
		SetMap(data).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	res, err := dao.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Warn("failed query execute", "error", err)

		return err
	}

	return expectAffected(res, "entry")
}

func (dao *EntryDAO) Delete(ctx context.Context, id model.ID) error {
	logger := dao.Logger.With("query", "delete")

	query, args, err := dao.Builder.
		Delete("entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	res, err := dao.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Warn("failed query execute", "error", err)

		return err
	}

	if err := expectAffected(res, "entry"); err != nil {
		return err
	}

	logger.Debug("success query execute", "deleteId", id)

	return nil
}
