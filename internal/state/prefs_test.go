package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	assert.Equal(t, Defaults(), Load(""))
	assert.Equal(t, Defaults(), Load(filepath.Join(t.TempDir(), "missing")))
	assert.True(t, Defaults().ShowDetails)
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	require.NoError(t, Save(dir, Prefs{ShowDetails: false}))
	assert.False(t, Load(dir).ShowDetails)

	require.NoError(t, Save(dir, Prefs{ShowDetails: true}))
	assert.True(t, Load(dir).ShowDetails)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files are left behind")
	assert.Equal(t, FileName, entries[0].Name())
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("show_details: [nope"), 0o644))
	assert.Equal(t, Defaults(), Load(dir))
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("other: 1\n"), 0o644))
	assert.True(t, Load(dir).ShowDetails)
}
