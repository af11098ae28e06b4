package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/auth"
	"github.com/erazemk/sangam/internal/config"
	"github.com/erazemk/sangam/internal/store"
)

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(newLevelRouter(&out, &errOut, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("slide moved", "slide", "abc")
	logger.Error("storage failed")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "slide moved")
	assert.NotContains(t, out.String(), "storage failed")
	assert.Contains(t, errOut.String(), "storage failed")

	out.Reset()
	logger.With("user", "admin").WithGroup("req").Warn("slow", "ms", 900)
	assert.Contains(t, out.String(), "user=admin")
	assert.Contains(t, out.String(), "req.ms=900")
}

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	require.NoError(t, err)
	b, err := generatePassword(16)
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func TestInitDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sangam.sqlite3")

	database, password, err := initDatabase(path, "admin")
	require.NoError(t, err)
	defer database.Close()

	user, err := store.GetUserByUsername(t.Context(), database, "admin")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "admin", user.Role)

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFlagsOverrideConfig(t *testing.T) {
	root := newRootCmd()
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)

	require.NoError(t, serve.ParseFlags([]string{"--db", "/tmp/flag.sqlite3", "--log-level", "debug"}))

	a := &app{dbPath: "/tmp/flag.sqlite3", logLevel: "debug", addr: ":1"}
	cfg := config.Default()
	a.applyFlags(serve, cfg)

	assert.Equal(t, "/tmp/flag.sqlite3", cfg.Storage.SQLitePath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, config.Default().Addr, cfg.Addr, "unset flags leave the file value")
}

func TestCheckCommandReportsScopes(t *testing.T) {
	t.Setenv("SANGAM_MONGO_URI", "")
	t.Setenv("SANGAM_DB", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "sangam.sqlite3")
	database, _, err := initDatabase(path, "admin")
	require.NoError(t, err)
	database.Close()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"check", "--config", filepath.Join(dir, "none.yaml"), "--db", path})
	require.NoError(t, root.Execute())

	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "0 scope(s) checked"), out.String())
}
