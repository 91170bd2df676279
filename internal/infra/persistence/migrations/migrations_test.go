package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	"jobportal/internal/errors"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsHaveUpAndDown(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		body, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestSchemaCoversAuthTables(t *testing.T) {
	body, err := fs.ReadFile(Migrations, "00001_create_auth_tables.sql")
	require.NoError(t, err)

	for _, table := range []string{"users", "login_attempts", "password_reset_tokens", "refresh_tokens"} {
		assert.True(t, strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}

func TestUp_UsesEmbeddedRoot(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir

		return nil
	}

	require.NoError(t, Up(context.Background(), nil))
	assert.Equal(t, ".", gotDir)
}

func TestUp_PropagatesFailure(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	boom := errors.New("boom")
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return boom
	}

	err := Up(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestDownAndStatus_UseEmbeddedRoot(t *testing.T) {
	origDown, origStatus := gooseDownContext, gooseStatusContext
	defer func() { gooseDownContext, gooseStatusContext = origDown, origStatus }()

	var dirs []string
	record := func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		dirs = append(dirs, dir)

		return nil
	}
	gooseDownContext = record
	gooseStatusContext = record

	require.NoError(t, Down(context.Background(), nil))
	require.NoError(t, Status(context.Background(), nil))
	assert.Equal(t, []string{".", "."}, dirs)
}
