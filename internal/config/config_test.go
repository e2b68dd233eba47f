package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "serializer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEqual(t, uuid.Nil, cfg.ClientID)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
mappings: mappings.yaml
client_id: 6f1c2a3e-8d4b-4c1a-9f0e-123456789abc
log:
  level: debug
store:
  driver: sqlite
  dsn: file.db
`)

	cfg, err := load(path, env(map[string]string{
		"SERIALIZER_STORE_DSN":  "other.db",
		"SERIALIZER_LOG_PRETTY": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "mappings.yaml", cfg.Mappings)
	assert.Equal(t, uuid.MustParse("6f1c2a3e-8d4b-4c1a-9f0e-123456789abc"), cfg.ClientID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "other.db", cfg.Store.DSN)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "bad client id", vars: map[string]string{"SERIALIZER_CLIENT_ID": "nope"}},
		{name: "bad pretty", vars: map[string]string{"SERIALIZER_LOG_PRETTY": "maybe"}},
		{name: "unknown driver", vars: map[string]string{"SERIALIZER_STORE_DRIVER": "mongo"}},
		{name: "postgres without dsn", vars: map[string]string{"SERIALIZER_STORE_DRIVER": "postgres"}},
		{name: "bad level", vars: map[string]string{"SERIALIZER_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load("", env(tt.vars))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	assert.Error(t, err)
}
