package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/mockapi"
	"github.com/mark3labs/deckfill/internal/session"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startMock serves a fresh mock backend and isolates config lookup.
func startMock(t *testing.T) (*mockapi.Server, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DECKFILL_SESSION_BACKEND", "memory")
	t.Setenv("DECKFILL_TAB", "")

	mock := mockapi.New()
	ts := httptest.NewServer(mock.Handler())
	t.Cleanup(ts.Close)
	mock.SetBaseURL(ts.URL)
	return mock, ts.URL
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		globalFlags.api = ""
		globalFlags.tab = ""
		globalFlags.dataDir = ""
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTemplatesList(t *testing.T) {
	mock, url := startMock(t)

	out, err := run(t, "templates", "list", "--api", url)
	require.NoError(t, err)
	assert.Contains(t, out, "No templates yet")

	tpl := mock.AddTemplate("Quarterly Review", "", []byte("{{title}}"))
	out, err = run(t, "templates", "list", "--api", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Quarterly Review")
	assert.Contains(t, out, string(tpl.ID))
}

func TestTemplatesShow(t *testing.T) {
	mock, url := startMock(t)
	tpl := mock.AddTemplate("Listing", "", []byte("{{title}} {{list:points}}"))

	out, err := run(t, "templates", "show", string(tpl.ID), "--api", url)
	require.NoError(t, err)
	assert.Contains(t, out, "{{title}}  Text")
	assert.Contains(t, out, "{{points}}  List")
	assert.Contains(t, out, "points: []")
}

func TestTemplatesDeleteAndRestore(t *testing.T) {
	mock, url := startMock(t)
	tpl := mock.AddTemplate("Listing", "", []byte("{{title}}"))

	out, err := run(t, "templates", "delete", string(tpl.ID), "--api", url)
	require.NoError(t, err)
	assert.Contains(t, out, "restored for 30 days")

	out, err = run(t, "templates", "trash", "--api", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Listing")

	out, err = run(t, "templates", "restore", string(tpl.ID), "--api", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored template")
}

func TestGenerate(t *testing.T) {
	mock, url := startMock(t)
	tpl := mock.AddTemplate("Open House", "", []byte("{{title}}|{{list:points}}"))

	dir := t.TempDir()
	valuesPath := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(valuesPath, []byte("title: Welcome\npoints: [Pool, Garden]\n"), 0o644))
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "generate", string(tpl.ID), "--values", valuesPath, "--output", outDir, "--api", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved")

	data, err := os.ReadFile(filepath.Join(outDir, "open-house.pptx"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome|Pool\nGarden", string(data))
}

func TestGenerate_InvalidValues(t *testing.T) {
	mock, url := startMock(t)
	tpl := mock.AddTemplate("Open House", "", []byte("{{title}}|{{list:points}}"))

	valuesPath := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(valuesPath, []byte("title: Welcome\n"), 0o644))

	_, err := run(t, "generate", string(tpl.ID), "--values", valuesPath, "--api", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "points")
}

func TestResolveTab(t *testing.T) {
	t.Setenv("DECKFILL_TAB", "")
	globalFlags.tab = ""
	defer func() { globalFlags.tab = "" }()

	tab, err := resolveTab()
	require.NoError(t, err)
	assert.Equal(t, defaultTab, tab)

	t.Setenv("DECKFILL_TAB", "work")
	tab, err = resolveTab()
	require.NoError(t, err)
	assert.Equal(t, "work", tab)

	globalFlags.tab = "new"
	first, err := resolveTab()
	require.NoError(t, err)
	second, _ := resolveTab()
	assert.NotEqual(t, first, second)
	assert.Len(t, first, 36)

	// Scopes that would collide after key mapping are refused.
	for _, bad := range []string{"a.b", "my tab", "x*"} {
		globalFlags.tab = bad
		_, err := resolveTab()
		assert.ErrorIs(t, err, kv.ErrInvalidScope, bad)
	}
	globalFlags.tab = "a_b"
	tab, err = resolveTab()
	require.NoError(t, err)
	assert.Equal(t, "a_b", tab)
}

func TestSessionShowEmpty(t *testing.T) {
	startMock(t)
	out, err := run(t, "session", "show", "--tab", "empty-tab")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing saved in tab empty-tab.")
}

func TestInspectTab(t *testing.T) {
	ctx := context.Background()
	tab := kv.Scoped(kv.NewMemoryStore(), "tab-1")
	tpl := template.Template{ID: "7", Name: "Listing", Placeholders: []template.Placeholder{
		{Name: "title", Kind: template.KindText},
		{Name: "points", Kind: template.KindList},
	}}
	store := session.NewStore(tab)
	require.NoError(t, store.Initialize(ctx, tpl))
	require.NoError(t, store.SetValue(ctx, "title", template.Text("Hello")))
	require.NoError(t, session.PutHandoff(ctx, tab, session.Handoff{TemplateID: "7"}))

	report, err := inspectTab(ctx, "tab-1", tab)
	require.NoError(t, err)
	require.NotNil(t, report.Session)
	assert.Equal(t, template.ID("7"), report.Session.TemplateID)
	assert.Equal(t, []string{"points"}, report.Missing)
	require.NotNil(t, report.Pending)

	// Inspecting consumes nothing.
	_, err = session.TakeHandoff(ctx, tab)
	assert.NoError(t, err)
}

func TestHighlightJSONPlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, `{"a": 1}`, highlightJSON(&buf, `{"a": 1}`))
}

func TestSetupWritesProjectConfig(t *testing.T) {
	startMock(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := run(t, "setup", "--project", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to: deckfill.yml")

	data, err := os.ReadFile(filepath.Join(dir, "deckfill.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "session_backend: memory")

	_, err = run(t, "setup", "--project")
	assert.Error(t, err, "existing config is kept without --force")
}
