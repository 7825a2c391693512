package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/deckfill/internal/template"
)

// TrashRetention is how long the service keeps a trashed template
// restorable.
const TrashRetention = 30 * 24 * time.Hour

// DefaultFilename is used when the generate response names no file.
const DefaultFilename = "presentation.pptx"

// TemplateUpdate carries the editable template fields. Nil fields are
// left unchanged.
type TemplateUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SaveRequest is the payload for SaveTemplate.
type SaveRequest struct {
	Filename     string
	Data         []byte
	Name         string
	Description  string
	Placeholders []template.Placeholder
}

// Presentation is a generated file.
type Presentation struct {
	Filename string
	Data     []byte
}

func templatePath(id template.ID) string {
	return "/api/templates/" + url.PathEscape(id.String())
}

// ListTemplates returns live templates.
func (c *Client) ListTemplates(ctx context.Context) ([]template.Template, error) {
	var out []template.Template
	err := c.doJSON(ctx, call{
		op:       "list templates",
		method:   http.MethodGet,
		path:     "/api/templates",
		fallback: "Could not connect to the server to get templates.",
		generic:  true,
	}, &out)
	return out, err
}

// ListTrash returns soft-deleted templates.
func (c *Client) ListTrash(ctx context.Context) ([]template.Template, error) {
	var out []template.Template
	err := c.doJSON(ctx, call{
		op:       "list trash",
		method:   http.MethodGet,
		path:     "/api/templates/trash",
		fallback: "Could not load trashed items from the server.",
		generic:  true,
	}, &out)
	return out, err
}

// GetTemplate returns one template with its placeholders.
func (c *Client) GetTemplate(ctx context.Context, id template.ID) (template.Template, error) {
	var out template.Template
	err := c.doJSON(ctx, call{
		op:       "get template",
		method:   http.MethodGet,
		path:     templatePath(id),
		fallback: "Could not load the template details from the server.",
		generic:  true,
	}, &out)
	return out, err
}

// UpdateTemplate changes a template's name or description.
func (c *Client) UpdateTemplate(ctx context.Context, id template.ID, upd TemplateUpdate) (template.Template, error) {
	body, err := jsonBody(upd)
	if err != nil {
		return template.Template{}, err
	}
	var out template.Template
	err = c.doJSON(ctx, call{
		op:       "update template",
		method:   http.MethodPut,
		path:     templatePath(id),
		body:     body,
		ctype:    "application/json",
		fallback: "Failed to update template.",
	}, &out)
	return out, err
}

// DeleteTemplate moves a template to the trash.
func (c *Client) DeleteTemplate(ctx context.Context, id template.ID) error {
	return c.doJSON(ctx, call{
		op:       "delete template",
		method:   http.MethodDelete,
		path:     templatePath(id),
		fallback: "Failed to delete template.",
	}, nil)
}

// RestoreTemplate brings a template back from the trash. A purged
// template yields an error for which IsGone is true.
func (c *Client) RestoreTemplate(ctx context.Context, id template.ID) error {
	return c.doJSON(ctx, call{
		op:       "restore template",
		method:   http.MethodPost,
		path:     templatePath(id) + "/restore",
		fallback: "Failed to restore template.",
	}, nil)
}

// AnalyzeUpload sends a presentation file and returns the placeholders
// the service found in it.
func (c *Client) AnalyzeUpload(ctx context.Context, filename string, data []byte) ([]template.Placeholder, error) {
	if filename == "" || len(data) == 0 {
		return nil, ErrNoFile
	}
	body, ctype, err := multipartBody([]formFile{{field: "file", filename: filename, data: data}}, nil)
	if err != nil {
		return nil, err
	}
	var out []template.Placeholder
	err = c.doJSON(ctx, call{
		op:       "analyze upload",
		method:   http.MethodPost,
		path:     "/api/upload",
		body:     body,
		ctype:    ctype,
		fallback: "Failed to analyze file.",
	}, &out)
	if out == nil && err == nil {
		out = []template.Placeholder{}
	}
	return out, err
}

// SaveTemplate stores a new template.
func (c *Client) SaveTemplate(ctx context.Context, req SaveRequest) (template.Template, error) {
	if req.Filename == "" || len(req.Data) == 0 {
		return template.Template{}, ErrNoFile
	}
	placeholders := req.Placeholders
	if placeholders == nil {
		placeholders = []template.Placeholder{}
	}
	phJSON, err := json.Marshal(placeholders)
	if err != nil {
		return template.Template{}, fmt.Errorf("encoding placeholders: %w", err)
	}
	fields := [][2]string{
		{"templateName", req.Name},
		{"placeholders", string(phJSON)},
	}
	if req.Description != "" {
		fields = append(fields, [2]string{"description", req.Description})
	}
	body, ctype, err := multipartBody([]formFile{{field: "file", filename: req.Filename, data: req.Data}}, fields)
	if err != nil {
		return template.Template{}, err
	}
	var out template.Template
	err = c.doJSON(ctx, call{
		op:       "save template",
		method:   http.MethodPost,
		path:     "/api/save_template",
		body:     body,
		ctype:    ctype,
		fallback: "Failed to save template.",
	}, &out)
	return out, err
}

// Generate renders a presentation from a template and values.
func (c *Client) Generate(ctx context.Context, id template.ID, values template.Values) (*Presentation, error) {
	if values == nil {
		values = template.Values{}
	}
	body, err := jsonBody(struct {
		TemplateID template.ID     `json:"templateId"`
		Data       template.Values `json:"data"`
	}{id, values})
	if err != nil {
		return nil, err
	}

	const fallback = "Could not generate the presentation file."
	resp, err := c.do(ctx, call{
		op:       "generate",
		method:   http.MethodPost,
		path:     "/api/generate",
		body:     body,
		ctype:    "application/json",
		fallback: fallback,
		generic:  true,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: "generate", Kind: KindNetwork, Status: resp.StatusCode, Message: fallback, Err: err}
	}
	return &Presentation{
		Filename: filenameFrom(resp.Header.Get("Content-Disposition")),
		Data:     data,
	}, nil
}

// filenameFrom extracts the filename parameter of a Content-Disposition
// header, falling back to DefaultFilename.
func filenameFrom(disposition string) string {
	if disposition == "" {
		return DefaultFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return DefaultFilename
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return DefaultFilename
	}
	return name
}
