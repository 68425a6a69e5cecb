package database

import (
	"context"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/activity-tracker/internal/model"
)

type CategoryDAO struct {
	Logger *slog.Logger
	runner
}

func NewCategoryDAO(logger *slog.Logger, r runner) *CategoryDAO {
	return &CategoryDAO{
		Logger: logger.With("dao", "category"),
		runner: r,
	}
}

// Get returns the category in its current state, deleted ones included.
func (dao *CategoryDAO) Get(ctx context.Context, id model.ID) (model.Category, error) {
	logger := dao.Logger.With("query", "get")

	query, args, err := dao.Builder.
		Select("*").
		From("categories").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Category{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var category model.Category
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&category); err != nil {
		if IsNoRows(err) {
			return model.Category{}, model.NewError("category", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.Category{}, err
	}

	return category, nil
}
