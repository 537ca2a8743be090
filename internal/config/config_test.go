package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/itemdesk/internal/config"
)

// isolate points every search path at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("ITEMDESK_CONFIG_PATH", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{"API_URL", "TIMEOUT", "MESSAGE_TTL", "THEME", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv("ITEMDESK_"+k, "")
		os.Unsetenv("ITEMDESK_" + k)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	want := &config.Config{
		APIURL:     "http://localhost:8000/api",
		Timeout:    10 * time.Second,
		MessageTTL: 5 * time.Second,
		Theme:      "classic",
		LogLevel:   slog.LevelInfo,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".itemdesk.yaml"), "api_url: http://file:1/api\ntheme: neon\ntimeout: 3s\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("api-url", "", "")
	require.NoError(t, fs.Parse([]string{"--api-url", "http://flag:3/api"}))

	t.Setenv("ITEMDESK_THEME", "mono")
	t.Setenv("ITEMDESK_API_URL", "http://env:2/api")

	cfg, err := config.Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "http://flag:3/api", cfg.APIURL, "flag beats env and file")
	assert.Equal(t, "mono", cfg.Theme, "env beats file")
	assert.Equal(t, 3*time.Second, cfg.Timeout, "file beats default")
	assert.Equal(t, filepath.Join(dir, ".itemdesk.yaml"), cfg.File)
}

func TestLoadUnsetFlagDoesNotOverride(t *testing.T) {
	isolate(t)
	t.Setenv("ITEMDESK_API_URL", "http://env:2/api")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("api-url", "http://flag-default/api", "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := config.Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "http://env:2/api", cfg.APIURL)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := config.Load(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"relative url", map[string]string{"ITEMDESK_API_URL": "/api"}},
		{"ftp url", map[string]string{"ITEMDESK_API_URL": "ftp://host/api"}},
		{"zero timeout", map[string]string{"ITEMDESK_TIMEOUT": "0s"}},
		{"negative ttl", map[string]string{"ITEMDESK_MESSAGE_TTL": "-1s"}},
		{"unknown theme", map[string]string{"ITEMDESK_THEME": "sepia"}},
		{"unknown level", map[string]string{"ITEMDESK_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load("", nil)
			require.Error(t, err)
		})
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", ".itemdesk.yaml")

	require.NoError(t, config.WriteDefault(path, false))

	err := config.WriteDefault(path, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrExists))

	require.NoError(t, config.WriteDefault(path, true))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.MessageTTL)
	assert.Equal(t, path, cfg.File)
}
