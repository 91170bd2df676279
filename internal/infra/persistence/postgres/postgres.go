package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"jobportal/config"
	"jobportal/internal/domain/lifecycle"
	"jobportal/internal/errors"
	"jobportal/internal/infra/persistence/migrations"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the credential store. The connection is verified, and pending
// migrations applied when storage.autoMigrate is set, in the OnStart hook.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Multi-step writes use txManager.Execute explicitly.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	monitor := &poolMonitor{logger: params.Logger, warnAfter: dbPoolWarnDurationThreshold}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if err := prepare(startCtx, sqlDB, params.Config.Storage.AutoMigrate, params.Logger); err != nil {
				return err
			}
			go monitor.run(monitorCtx, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return errors.WithStack(sqlDB.Close())
		},
	})

	return db, nil
}

func prepare(ctx context.Context, sqlDB *sql.DB, autoMigrate bool, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping PostgreSQL")
	}

	if !autoMigrate {
		return nil
	}
	if err := migrations.Up(ctx, sqlDB); err != nil {
		return err
	}
	logger.Info("Database migrations applied")

	return nil
}

// poolMonitor reports connection pool contention. Logins block on the pool
// under a credential stuffing burst, so waits show up here first.
type poolMonitor struct {
	logger    *slog.Logger
	warnAfter time.Duration
	prev      sql.DBStats
}

func (m *poolMonitor) run(ctx context.Context, sqlDB *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.prev = sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.observe(ctx, sqlDB.Stats())
		}
	}
}

// observe logs the waits accumulated since the previous sample.
func (m *poolMonitor) observe(ctx context.Context, cur sql.DBStats) {
	waits := cur.WaitCount - m.prev.WaitCount
	waited := cur.WaitDuration - m.prev.WaitDuration
	m.prev = cur

	if waits <= 0 {
		return
	}

	level := slog.LevelDebug
	if waited >= m.warnAfter {
		level = slog.LevelWarn
	}

	m.logger.LogAttrs(ctx, level, "Postgres pool wait",
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("openConns", cur.OpenConnections),
		slog.Int("inUseConns", cur.InUse),
		slog.Int("maxOpenConns", cur.MaxOpenConnections),
	)
}
