package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/protomem/activity-tracker/internal/database"
	"github.com/protomem/activity-tracker/internal/env"
	"github.com/protomem/activity-tracker/internal/memstore"
	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/tracker"
	"github.com/protomem/activity-tracker/internal/version"
	"github.com/protomem/activity-tracker/internal/workday"
)

var (
	_cfgFile     = flag.String("cfg", "", "path to config file")
	_showVersion = flag.Bool("version", false, "display version and exit")
)

const (
	_storagePostgres = "postgres"
	_storageMemory   = "memory"
)

func main() {
	flag.Parse()

	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	err := run(logger, level)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

type config struct {
	httpHost string
	httpPort int
	storage  string
	logLevel string
	db       struct {
		dsn         string
		automigrate bool
	}
	workday struct {
		timezone string
		cutoff   time.Duration
	}
}

type application struct {
	config  config
	tracker *tracker.Service
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func run(logger *slog.Logger, level *slog.LevelVar) error {
	var cfg config

	if *_cfgFile != "" {
		err := env.Load(*_cfgFile)
		if err != nil {
			return err
		}
	}

	cfg.httpHost = env.GetString("HTTP_HOST", "localhost")
	cfg.httpPort = env.GetInt("HTTP_PORT", 8080)
	cfg.storage = env.GetString("STORAGE", _storagePostgres)
	cfg.logLevel = env.GetString("LOG_LEVEL", "debug")
	cfg.db.dsn = env.GetString("DB_DSN", "postgres:postgres@localhost:5432/postgres")
	cfg.db.automigrate = env.GetBool("DB_AUTOMIGRATE", true)
	cfg.workday.timezone = env.GetString("WORKDAY_TZ", "UTC")
	cfg.workday.cutoff = env.GetDuration("WORKDAY_CUTOFF", 4*time.Hour)

	if *_showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	loc, err := time.LoadLocation(cfg.workday.timezone)
	if err != nil {
		return fmt.Errorf("workday timezone: %w", err)
	}

	calendar, err := workday.New(loc, cfg.workday.cutoff)
	if err != nil {
		return err
	}

	var store tracker.Store
	switch cfg.storage {
	case _storagePostgres:
		db, err := database.New(logger, cfg.db.dsn, cfg.db.automigrate)
		if err != nil {
			return err
		}
		defer db.Close()

		store = db
	case _storageMemory:
		store = seedMemstore(logger)
	default:
		return fmt.Errorf("unknown storage %q", cfg.storage)
	}

	app := &application{
		config:  cfg,
		tracker: tracker.New(logger, store, calendar),
		logger:  logger,
	}

	return app.serveHTTP()
}

// seedMemstore returns an in-memory store with an admin account and a
// starter category set, so a fresh process is usable without a database.
func seedMemstore(logger *slog.Logger) *memstore.Store {
	store := memstore.New()

	admin := store.AddUser(model.User{Name: "admin", Role: model.RoleAdmin})
	for _, name := range []string{"Work", "Meeting", "Email", "Break"} {
		store.AddCategory(name)
	}

	logger.Info("memory storage seeded", "adminId", admin.ID)

	return store
}
