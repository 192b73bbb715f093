package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mirecekd/diktatOR/config"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "http://localhost:5000/api", cfg.API.URL)
	require.Empty(t, cfg.API.Token)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	data := `addr: ":9090"
api:
  url: https://diktator.example.com/api
  token: secret
`

	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := config.Parse(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "https://diktator.example.com/api", cfg.API.URL)
	require.Equal(t, "secret", cfg.API.Token)
}

func TestParseEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	data := `addr: ":9090"
api:
  url: https://file.example.com/api
`

	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	t.Setenv("DIKTATOR_ADDR", ":7070")
	t.Setenv("DIKTATOR_API_URL", "https://env.example.com/api")
	t.Setenv("DIKTATOR_API_TOKEN", "env-secret")

	cfg, err := config.Parse(path)
	require.NoError(t, err)

	require.Equal(t, ":7070", cfg.Addr)
	require.Equal(t, "https://env.example.com/api", cfg.API.URL)
	require.Equal(t, "env-secret", cfg.API.Token)
}

func TestParseInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0o644))

	_, err := config.Parse(path)
	require.Error(t, err)
}

func TestParseEmptyAPIURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	data := `api:
  url: ""
`

	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := config.Parse(path)
	require.Error(t, err)
}
