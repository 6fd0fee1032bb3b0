package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWhenNothingConfigured(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DAYLOG_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "23:59:59", cfg.Cutoff)
	assert.Equal(t, 30*time.Minute, cfg.ReminderLead)
	assert.True(t, cfg.CatchUpOnStart)
	assert.Equal(t, "https://api.github.com", cfg.Gist.APIURL)
	assert.Equal(t, "island sync data", cfg.Gist.Marker)
	assert.Equal(t, "island-data.json", cfg.Gist.FileName)
	assert.Equal(t, 15*time.Second, cfg.Gist.Timeout)
	assert.Equal(t, "daylog.db", filepath.Base(cfg.DBPath))
	assert.Equal(t, clock.TimeOfDay{Hour: 23, Minute: 59, Second: 59}, cfg.ArchiveOptions().Cutoff)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/from-file.db
cutoff: "22:00"
reminder_lead: 45m
catch_up_on_start: false
log_level: debug
gist:
  marker: my backup
  timeout: 5s
`)
	t.Setenv("DAYLOG_CONFIG", path)
	t.Setenv("DAYLOG_DB", "/tmp/from-env.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-env.db", cfg.DBPath)
	assert.Equal(t, "22:00", cfg.Cutoff)
	assert.Equal(t, 45*time.Minute, cfg.ReminderLead)
	assert.False(t, cfg.CatchUpOnStart)
	assert.Equal(t, "my backup", cfg.Gist.Marker)
	assert.Equal(t, "island-data.json", cfg.Gist.FileName)
	assert.Equal(t, 5*time.Second, cfg.GistClientConfig().Timeout)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	opts := cfg.ArchiveOptions()
	assert.Equal(t, clock.TimeOfDay{Hour: 22}, opts.Cutoff)
	assert.False(t, opts.CatchUpOnStart)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	t.Setenv("DAYLOG_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	t.Setenv("DAYLOG_CONFIG", writeConfig(t, "cutoff: [unclosed"))

	_, err := Load()
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoad_InvalidEnvDuration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DAYLOG_CONFIG", "")
	t.Setenv("DAYLOG_REMINDER_LEAD", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "DAYLOG_REMINDER_LEAD")
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cutoff = "25:00:00"
	cfg.Timezone = "Mars/Olympus"
	cfg.LogLevel = "loud"
	cfg.Gist.APIURL = "ftp://example"
	cfg.Gist.Timeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"cutoff", "timezone", "log_level", "gist.api_url", "gist.timeout"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestOpenLog_CreatesFileAndAppends(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "nested", "daylog.log")

	w, closeLog, err := cfg.OpenLog()
	require.NoError(t, err)
	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, closeLog())

	w, closeLog, err = cfg.OpenLog()
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, closeLog())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestOpenLog_Stderr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = "stderr"

	w, closeLog, err := cfg.OpenLog()
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
	assert.NoError(t, closeLog())
}
