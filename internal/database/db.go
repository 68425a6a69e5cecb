package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/activity-tracker/assets"
	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/tracker"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	_defaultTimeout = 3 * time.Second
	_driverName     = "pgx"
)

type DB struct {
	*sqlx.DB
	Builder squirrel.StatementBuilderType
	Logger  *slog.Logger
}

var _ tracker.Store = (*DB)(nil)

func New(logger *slog.Logger, dsn string, automigrate bool) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), _defaultTimeout)
	defer cancel()

	dsn = dsn + "?sslmode=disable" // disable SSL

	db, err := sqlx.ConnectContext(ctx, _driverName, "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if automigrate {
		if err := migrateUp(dsn); err != nil {
			db.Close()
			return nil, err
		}
		logger.Debug("migrations applied")
	}

	return &DB{
		DB:      db,
		Builder: newBuilder(),
		Logger:  logger.With("module", "database"),
	}, nil
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func migrateUp(dsn string) error {
	iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		return nil
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	}

	return nil
}

// Atomic runs fn in a transaction holding the user's row lock, so transitions
// of one user never interleave. The partial unique index on open entries
// backs this up at the storage level.
func (db *DB) Atomic(ctx context.Context, user model.ID, fn func(tracker.Tx) error) error {
	return db.inTx(ctx, nil, func(tx *sqlx.Tx) error {
		if err := db.lockUser(ctx, tx, user); err != nil {
			return err
		}
		return fn(db.txView(tx))
	})
}

// Snapshot runs fn in a read-only repeatable-read transaction.
func (db *DB) Snapshot(ctx context.Context, fn func(tracker.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	return db.inTx(ctx, opts, func(tx *sqlx.Tx) error {
		return fn(db.txView(tx))
	})
}

func (db *DB) inTx(ctx context.Context, opts *sql.TxOptions, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (db *DB) lockUser(ctx context.Context, tx *sqlx.Tx, user model.ID) error {
	query, args, err := lockUserQuery(db.Builder, user)
	if err != nil {
		return err
	}

	db.Logger.Debug("build query", "sql", query, "args", args)

	var id model.ID
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		if IsNoRows(err) {
			return model.NewError("user", model.ErrNotFound)
		}
		return err
	}

	return nil
}

func lockUserQuery(b squirrel.StatementBuilderType, user model.ID) (string, []any, error) {
	return b.Select("id").
		From("users").
		Where(squirrel.Eq{"id": user}).
		Suffix("FOR UPDATE").
		ToSql()
}

type view struct {
	users      *UserDAO
	categories *CategoryDAO
	entries    *EntryDAO
	attendance *AttendanceDAO
}

func (db *DB) txView(q sqlx.ExtContext) *view {
	r := runner{ExtContext: q, Builder: db.Builder}
	return &view{
		users:      NewUserDAO(db.Logger, r),
		categories: NewCategoryDAO(db.Logger, r),
		entries:    NewEntryDAO(db.Logger, r),
		attendance: NewAttendanceDAO(db.Logger, r),
	}
}

func (v *view) Users() tracker.UserStore            { return v.users }
func (v *view) Categories() tracker.CategoryStore   { return v.categories }
func (v *view) Entries() tracker.EntryStore         { return v.entries }
func (v *view) Attendance() tracker.AttendanceStore { return v.attendance }

// runner is what every DAO executes against: the pool or an open transaction.
type runner struct {
	sqlx.ExtContext
	Builder squirrel.StatementBuilderType
}
