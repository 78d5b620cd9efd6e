package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── 環境変数 ───────── */

func TestGetEnv(t *testing.T) {
	t.Setenv("BH_STRING", "hello")
	t.Setenv("BH_INT", " 42 ")
	t.Setenv("BH_INT_BAD", "forty")
	t.Setenv("BH_FLOAT", "0.25")
	t.Setenv("BH_BOOL", "TRUE")
	t.Setenv("BH_BOOL_BAD", "yes")
	t.Setenv("BH_DURATION", "90s")
	t.Setenv("BH_DURATION_BAD", "soon")
	t.Setenv("BH_LIST", " a, ,b ,")
	t.Setenv("BH_LIST_EMPTY", " , ")

	assert.Equal(t, "hello", GetEnvString("BH_STRING", "x"))
	assert.Equal(t, "x", GetEnvString("BH_UNSET", "x"))

	assert.Equal(t, 42, GetEnvInt("BH_INT", 1))
	assert.Equal(t, 1, GetEnvInt("BH_INT_BAD", 1))
	assert.Equal(t, 1, GetEnvInt("BH_UNSET", 1))

	assert.Equal(t, 0.25, GetEnvFloat("BH_FLOAT", 1))
	assert.Equal(t, 1.0, GetEnvFloat("BH_STRING", 1))

	assert.True(t, GetEnvBool("BH_BOOL", false))
	assert.False(t, GetEnvBool("BH_BOOL_BAD", false))

	assert.Equal(t, 90*time.Second, GetEnvDuration("BH_DURATION", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("BH_DURATION_BAD", time.Second))

	assert.Equal(t, []string{"a", "b"}, GetEnvStringList("BH_LIST", nil))
	assert.Equal(t, []string{"d"}, GetEnvStringList("BH_LIST_EMPTY", []string{"d"}))
}

/* ───────── .env ───────── */

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BH_DOTENV_NEW=from-file\nBH_DOTENV_SET=from-file\n"), 0o600))

	t.Setenv("BH_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("BH_DOTENV_NEW") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))

	assert.Equal(t, "from-file", os.Getenv("BH_DOTENV_NEW"))
	assert.Equal(t, "from-env", os.Getenv("BH_DOTENV_SET"))
}
