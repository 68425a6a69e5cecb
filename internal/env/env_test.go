package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	t.Setenv("TT_STRING", "value")
	t.Setenv("TT_INT", "42")
	t.Setenv("TT_BAD_INT", "x")
	t.Setenv("TT_BOOL", "false")
	t.Setenv("TT_DURATION", "90m")

	assert.Equal(t, "value", GetString("TT_STRING", "def"))
	assert.Equal(t, "def", GetString("TT_MISSING", "def"))
	assert.Equal(t, 42, GetInt("TT_INT", 1))
	assert.Equal(t, 1, GetInt("TT_BAD_INT", 1))
	assert.False(t, GetBool("TT_BOOL", true))
	assert.Equal(t, 90*time.Minute, GetDuration("TT_DURATION", time.Hour))
	assert.Equal(t, time.Hour, GetDuration("TT_MISSING", time.Hour))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TT_FROM_FILE=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TT_FROM_FILE") })

	require.NoError(t, Load(path))
	assert.Equal(t, "loaded", GetString("TT_FROM_FILE", ""))
}
