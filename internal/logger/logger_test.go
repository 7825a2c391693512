package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug":   LevelDebug,
		"Info":    LevelInfo,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		" error ": LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.EqualError(t, err, "invalid log level: loud")
	_, err = ParseLevel("")
	assert.Error(t, err)
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(9).String())
}

func bufferedLogger(t *testing.T, level Level) (*Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFile, "")
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(level)
	return l, &buf
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	l, buf := bufferedLogger(t, LevelWarn)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("template %s missing", "7")
	l.Error("upload failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] template 7 missing")
	assert.Contains(t, out, "[ERROR] upload failed")
}

func TestNew_ReadsEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.log")
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFile, path)

	l := New()
	assert.Equal(t, LevelDebug, l.level)
	l.Debug("from env")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "closing twice is harmless")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] from env")
}

func TestNew_IgnoresBadLevel(t *testing.T) {
	t.Setenv(EnvLevel, "chatty")
	t.Setenv(EnvFile, "")
	assert.Equal(t, LevelInfo, New().level)
}

func TestLogger_Configure(t *testing.T) {
	l, _ := bufferedLogger(t, LevelInfo)
	path := filepath.Join(t.TempDir(), "deckfill.log")
	defer l.Close()

	require.NoError(t, l.Configure("debug", path))
	l.Debug("configured %d", 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] configured 1")

	assert.Error(t, l.Configure("loud", ""))
	assert.Equal(t, LevelDebug, l.level, "a bad level leaves the logger alone")
}

func TestLogger_Writer(t *testing.T) {
	l, buf := bufferedLogger(t, LevelInfo)

	n, err := l.Writer(LevelWarn).Write([]byte("GET /api/templates 200\n"))
	require.NoError(t, err)
	assert.Equal(t, 23, n)
	assert.Contains(t, buf.String(), "[WARN] GET /api/templates 200\n")

	_, _ = l.Writer(LevelDebug).Write([]byte("dropped"))
	assert.NotContains(t, buf.String(), "dropped")
}

func TestPackageFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := Default
	Default = New()
	t.Cleanup(func() { Default = prev })
	Default.SetOutput(&buf)
	Default.SetLevel(LevelDebug)

	Debug("d %d", 1)
	Info("i %d", 2)
	Warn("w %d", 3)
	Error("e %d", 4)

	for _, want := range []string{"[DEBUG] d 1", "[INFO] i 2", "[WARN] w 3", "[ERROR] e 4"} {
		assert.Contains(t, buf.String(), want)
	}
}
