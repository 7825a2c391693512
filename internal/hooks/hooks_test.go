package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll(t *testing.T) {
	vars := Variables{File: "out/deck.pptx", TemplateID: "7", TemplateName: "Listing"}

	cases := map[string]struct {
		hooks []Hook
		want  string
	}{
		"none": {nil, ""},
		"piped": {
			[]Hook{{Command: "echo piped", Pipe: true}},
			"piped\n",
		},
		"not piped": {
			[]Hook{{Command: "echo quiet"}},
			"",
		},
		"mixed keeps order": {
			[]Hook{
				{Command: "echo one", Pipe: true},
				{Command: "echo skipped"},
				{Command: "echo two", Pipe: true},
			},
			"one\n\ntwo\n",
		},
		"placeholders expand": {
			[]Hook{{Command: "echo '{{template_name}} -> {{file}}'", Pipe: true}},
			"Listing -> out/deck.pptx\n",
		},
		"environment is exported": {
			[]Hook{{Command: `echo "$DECKFILL_TEMPLATE_ID"`, Pipe: true}},
			"7\n",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := RunAll(context.Background(), tc.hooks, t.TempDir(), vars)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestHook_RunsInDir(t *testing.T) {
	dir := t.TempDir()
	out, err := Hook{Command: "pwd"}.Run(context.Background(), dir, Variables{})
	require.NoError(t, err)
	resolved, _ := filepath.EvalSymlinks(dir)
	assert.Contains(t, []string{dir + "\n", resolved + "\n"}, out)
}

func TestHook_FailureIsReported(t *testing.T) {
	out, err := Hook{Command: "echo oops >&2; exit 3"}.Run(context.Background(), t.TempDir(), Variables{})
	require.NoError(t, err)
	assert.Contains(t, out, "[hook failed: exit status 3]")
	assert.Contains(t, out, "[stderr]\noops")
}

func TestHook_Timeout(t *testing.T) {
	out, err := Hook{Command: "sleep 5", Timeout: 1}.Run(context.Background(), t.TempDir(), Variables{})
	require.NoError(t, err)
	assert.Contains(t, out, "[hook timed out after 1s]")
}

func TestRunAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunAll(ctx, []Hook{{Command: "echo test", Pipe: true}}, t.TempDir(), Variables{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
	out, err := cfg.PostGenerate(context.Background(), dir, Variables{})
	require.NoError(t, err)
	assert.Empty(t, out, "a nil config runs nothing")

	data := []byte(`version: 1
hooks:
  post_generate:
    - command: echo done
      timeout: 10
      pipe_output: true
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0o644))
	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Hooks.PostGenerate, 1)
	assert.Equal(t, Hook{Command: "echo done", Timeout: 10, Pipe: true}, cfg.Hooks.PostGenerate[0])

	out, err = cfg.PostGenerate(context.Background(), dir, Variables{})
	require.NoError(t, err)
	assert.Equal(t, "done\n", out)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"malformed":     "hooks: [unclosed",
		"empty command": "hooks:\n  post_generate:\n    - timeout: 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0o644))
			_, err := LoadConfig(dir)
			assert.Error(t, err)
		})
	}
}
