package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MOCKSYS_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.RequestTimeout)
	require.Equal(t, "PSU", cfg.UI.CurrencyCode)
	require.NotEmpty(t, cfg.Data.Dir)
	require.Equal(t, filepath.Join(cfg.Data.Dir, "session.json"), cfg.SessionPath())
	require.Equal(t, filepath.Join(cfg.Data.Dir, "history.db"), cfg.HistoryPath())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://bank.example.com"
request_timeout = "3s"

[ui]
currency_code = "EUR"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("MOCKSYS_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://bank.example.com", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.RequestTimeout)
	require.Equal(t, "EUR", cfg.UI.CurrencyCode)
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"not a url\"\n"), 0o644))
	t.Setenv("MOCKSYS_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "url")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("MOCKSYS_CONFIG", path)

	want := Config{
		API:  APIConfig{BaseURL: "http://localhost:9000", RequestTimeout: 5 * time.Second},
		UI:   UIConfig{CurrencyCode: "BGN"},
		Data: DataConfig{Dir: t.TempDir()},
	}
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}
