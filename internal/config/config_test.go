package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xsync.yaml")
	in := Default()
	in.Account.Handle = "jack"
	in.Credentials.BearerToken = "tok"
	in.Sync.IntervalMinutes = 30

	require.NoError(t, Save(path, in))
	out, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "jack", out.Account.Handle)
	assert.Equal(t, "tok", out.Credentials.BearerToken)
	assert.Equal(t, 30, out.Sync.IntervalMinutes)
}

func TestLoadFillsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xsync.yaml")
	require.NoError(t, Save(path, Config{Account: AccountConfig{Handle: "jill"}}))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Sync.IntervalMinutes, cfg.Sync.IntervalMinutes)
	assert.Equal(t, Default().Storage.DBPath, cfg.Storage.DBPath)
	assert.Equal(t, Default().Storage.VaultPath, cfg.Storage.VaultPath)
}

func TestResolveEnvFillsBearerToken(t *testing.T) {
	t.Setenv("X_BEARER_TOKEN", "env-tok")
	var cfg Config
	cfg.ResolveEnv()
	assert.Equal(t, "env-tok", cfg.Credentials.BearerToken)

	// an explicit value wins over env
	cfg = Config{Credentials: CredentialsConfig{BearerToken: "explicit"}}
	cfg.ResolveEnv()
	assert.Equal(t, "explicit", cfg.Credentials.BearerToken)
}
