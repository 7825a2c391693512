package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/template"
)

// FileExt is the extension of template and generated files.
const FileExt = ".pptx"

// LocalFilename names a downloaded presentation. The service's default
// name is replaced by a slug of the template name.
func LocalFilename(p *api.Presentation, tpl template.Template) string {
	name := filepath.Base(p.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) || name == api.DefaultFilename {
		if s := slug.Make(tpl.Name); s != "" {
			return s + FileExt
		}
		return api.DefaultFilename
	}
	return name
}

// Save writes p into dir and returns the file path.
func Save(dir string, p *api.Presentation, tpl template.Template) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, LocalFilename(p, tpl))
	if err := os.WriteFile(path, p.Data, 0o644); err != nil {
		return "", fmt.Errorf("write presentation: %w", err)
	}
	return path, nil
}

// Fill runs the wizard without a screen: it opens tpl, enters vals and
// generates. Entries are kept in tab if generation fails.
func Fill(ctx context.Context, svc Service, tab kv.Store, tpl template.Template, vals template.Values) (*api.Presentation, error) {
	c := New(svc, tab)
	if err := c.Open(ctx, tpl); err != nil {
		return nil, err
	}
	if c.Step() == StepNoPlaceholders {
		return svc.Generate(ctx, tpl.ID, template.Values{})
	}
	for _, p := range tpl.Placeholders {
		v, ok := vals[p.Name]
		if !ok {
			continue
		}
		if err := c.SetValue(ctx, p.Name, v); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	if err := c.Continue(); err != nil {
		return nil, err
	}
	return c.Generate(ctx)
}
