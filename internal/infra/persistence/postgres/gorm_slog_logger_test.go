package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"jobportal/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newTestGormLogger(debug bool, env string) (*gormSlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Env.Env = env
	cfg.Env.Debug = debug
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return newGormSlogLogger(base, cfg).(*gormSlogLogger), &buf
}

func TestGormSlogLogger_ParamsFilter(t *testing.T) {
	quiet, _ := newTestGormLogger(false, config.EnvDevelopment)
	_, params := quiet.ParamsFilter(context.Background(), "SELECT 1 WHERE token_hash = ?", "$2a$12$secret")
	assert.Nil(t, params)

	prodDebug, _ := newTestGormLogger(true, config.EnvProduction)
	_, params = prodDebug.ParamsFilter(context.Background(), "SELECT 1 WHERE token_hash = ?", "$2a$12$secret")
	assert.Nil(t, params)

	devDebug, _ := newTestGormLogger(true, config.EnvDevelopment)
	_, params = devDebug.ParamsFilter(context.Background(), "SELECT 1 WHERE id = ?", 7)
	assert.Equal(t, []any{7}, params)
}

func TestGormSlogLogger_Trace(t *testing.T) {
	sqlFn := func() (string, int64) { return "SELECT * FROM users", 1 }

	t.Run("errors are logged", func(t *testing.T) {
		l, buf := newTestGormLogger(false, config.EnvProduction)
		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("connection reset"))

		assert.Contains(t, buf.String(), "GORM query failed")
		assert.Contains(t, buf.String(), "connection reset")
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		l, buf := newTestGormLogger(false, config.EnvProduction)
		l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)

		assert.Empty(t, buf.String())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		l, buf := newTestGormLogger(false, config.EnvProduction)
		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)

		assert.Contains(t, buf.String(), "GORM slow query")
	})

	t.Run("fast queries only in debug", func(t *testing.T) {
		l, buf := newTestGormLogger(false, config.EnvProduction)
		l.Trace(context.Background(), time.Now(), sqlFn, nil)
		assert.Empty(t, buf.String())

		l, buf = newTestGormLogger(true, config.EnvDevelopment)
		l.Trace(context.Background(), time.Now(), sqlFn, nil)
		assert.Contains(t, buf.String(), "GORM query")
	})
}
