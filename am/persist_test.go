package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wdlint/errors"
)

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "am.toml")

	require.NoError(t, WriteStarter(path, false))
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "wdlint.db", cfg.Cache.Path)

	err = WriteStarter(path, false)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	require.NoError(t, WriteStarter(path, true))
	assert.FileExists(t, path+".back1")
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cache]\npath = \"a.db\"\n"), 0644))

	require.NoError(t, SetValue(path, "check.country", "de"))
	require.NoError(t, SetValue(path, "cache.ttl_hours", 12))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a.db", cfg.Cache.Path, "other keys are kept")
	assert.Equal(t, "de", cfg.Check.Country)
	assert.Equal(t, 12, cfg.Cache.TTLHours)
}

func TestCreateBackup_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	for _, content := range []string{"one", "two", "three", "four"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		require.NoError(t, createBackup(path))
	}

	for suffix, want := range map[string]string{".back1": "four", ".back2": "three", ".back3": "two"} {
		got, err := os.ReadFile(path + suffix)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), suffix)
	}
}

func TestCreateBackup_NoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, createBackup(path))
	assert.NoFileExists(t, path+".back1")
}
