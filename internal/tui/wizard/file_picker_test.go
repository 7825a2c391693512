package wizard

import (
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/deckfill/internal/tui/testfixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(f *FilePickerStep) []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.name
	}
	return out
}

func TestFilePicker_FiltersPresentations(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "decks"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".hidden"), 0o755))
	testfixtures.WriteDeck(t, dir, "b.pptx", "x")
	testfixtures.WriteDeck(t, dir, "A.PPTX", "x")
	testfixtures.WriteDeck(t, dir, "notes.txt", "x")

	fp := NewFilePickerStep(dir)
	assert.Equal(t, []string{"..", "decks", "A.PPTX", "b.pptx"}, names(fp))
	assert.Empty(t, fp.SelectedPath(), "parent entry is a directory")
}

func TestFilePicker_NavigateAndSelect(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "decks")
	require.NoError(t, os.Mkdir(sub, 0o755))
	path := testfixtures.WriteDeck(t, sub, "deck.pptx", "x")

	fp := NewFilePickerStep(dir)
	fp.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	fp.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.Equal(t, sub, fp.dir)
	assert.Equal(t, []string{"..", "deck.pptx"}, names(fp))

	fp.Update(tea.KeyPressMsg{Code: 'j', Text: "j"})
	assert.Equal(t, path, fp.SelectedPath())
	cmd := fp.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, FileSelectedMsg{Path: path}, cmd())

	fp.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	assert.Equal(t, dir, fp.dir)
}

func TestFilePicker_JumpAndSizes(t *testing.T) {
	dir := t.TempDir()
	testfixtures.WriteDeck(t, dir, "a.pptx", "12345")
	testfixtures.WriteDeck(t, dir, "b.pptx", "x")

	fp := NewFilePickerStep(dir)
	fp.Update(tea.KeyPressMsg{Code: 'G', Text: "G"})
	assert.Equal(t, filepath.Join(dir, "b.pptx"), fp.SelectedPath())
	fp.Update(tea.KeyPressMsg{Code: 'g', Text: "g"})
	assert.Empty(t, fp.SelectedPath())
	assert.Contains(t, fp.View(), "a.pptx  5 B")
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.5 KB", humanSize(1536))
	assert.Equal(t, "2.0 MB", humanSize(2<<20))
}

func TestFilePicker_EmptyDirectory(t *testing.T) {
	fp := NewFilePickerStep(t.TempDir())
	assert.Contains(t, fp.View(), "No .pptx files in this directory")
}

func TestFilePicker_MissingDirectory(t *testing.T) {
	fp := NewFilePickerStep(filepath.Join(t.TempDir(), "missing"))
	assert.Empty(t, fp.entries)
	assert.Contains(t, fp.View(), "Directory is empty")
}

func TestRenderButtons(t *testing.T) {
	out := renderButtons(60, stepButtons("← Back", false, "Generate", true)...)
	assert.Contains(t, out, "← Back")
	assert.Contains(t, out, "Generate")

	pair := stepButtons("Cancel", true, "Next", false)
	assert.Equal(t, buttonIdle, pair[0].state)
	assert.Equal(t, buttonOff, pair[1].state)
	assert.Empty(t, renderButtons(60))
}
