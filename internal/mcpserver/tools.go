package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/hooks"
	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/session"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/values"
	"github.com/mark3labs/deckfill/internal/workflow"
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list-templates",
			mcp.WithDescription("List the presentation templates available for filling"),
		),
		s.handleListTemplates,
	)

	s.mcp.AddTool(
		mcp.NewTool("show-template",
			mcp.WithDescription("Show a template's placeholders and the JSON schema its values must satisfy"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Template ID")),
		),
		s.handleShowTemplate,
	)

	s.mcp.AddTool(
		mcp.NewTool("generate-presentation",
			mcp.WithDescription("Fill a template with values and save the generated presentation"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Template ID")),
			mcp.WithObject("values", mcp.Required(),
				mcp.Description("Map of placeholder name to value. Lists take an array of strings, images an asset key or URL."),
			),
		),
		s.handleGenerate,
	)

	s.mcp.AddTool(
		mcp.NewTool("search-images",
			mcp.WithDescription("Search the web for images to use in image placeholders"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search terms")),
		),
		s.handleSearchImages,
	)

	s.mcp.AddTool(
		mcp.NewTool("upload-image",
			mcp.WithDescription("Copy an image from a URL into template storage and return its asset key"),
			mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL of the image")),
		),
		s.handleUploadImage,
	)
}

// stringArg extracts a required, non-blank string argument.
func stringArg(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	args := request.GetArguments()
	if args == nil {
		return "", mcp.NewToolResultError("no arguments provided")
	}
	raw, ok := args[name]
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("missing '%s' parameter", name))
	}
	str, ok := raw.(string)
	if !ok || strings.TrimSpace(str) == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' must be a non-empty string", name))
	}
	return strings.TrimSpace(str), nil
}

func (s *Server) handleListTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tpls, err := s.svc.ListTemplates(ctx)
	if err != nil {
		return mcp.NewToolResultError(api.Message(err)), nil
	}
	if len(tpls) == 0 {
		return mcp.NewToolResultText("No templates."), nil
	}

	var b strings.Builder
	for _, tpl := range tpls {
		fmt.Fprintf(&b, "[%s] %s (%d placeholders)\n", tpl.ID, tpl.Name, len(tpl.Placeholders))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleShowTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := stringArg(request, "id")
	if bad != nil {
		return bad, nil
	}
	tpl, err := s.svc.GetTemplate(ctx, template.ID(id))
	if err != nil {
		return mcp.NewToolResultError(api.Message(err)), nil
	}

	out, err := json.MarshalIndent(struct {
		Template template.Template `json:"template"`
		Schema   map[string]any    `json:"values_schema"`
	}{tpl, values.Schema(tpl)}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode template: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := stringArg(request, "id")
	if bad != nil {
		return bad, nil
	}
	raw, ok := request.GetArguments()["values"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("'values' must be an object"), nil
	}

	tpl, err := s.svc.GetTemplate(ctx, template.ID(id))
	if err != nil {
		return mcp.NewToolResultError(api.Message(err)), nil
	}
	vals, err := values.Decode(tpl, raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Each call fills in its own scope so concurrent calls never share entries.
	tab := kv.Scoped(s.opts.Sessions, "mcp-"+uuid.NewString())
	defer func() {
		if err := session.NewStore(tab).Clear(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to clear MCP session: %v", err)
		}
	}()

	p, err := workflow.Fill(ctx, s.svc, tab, tpl, vals)
	if err != nil {
		logger.Warn("MCP generate %s failed: %v", tpl.ID, err)
		return mcp.NewToolResultError(api.Message(err)), nil
	}
	path, err := workflow.Save(s.opts.OutputDir, p, tpl)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Info("MCP generated %s from template %s", path, tpl.ID)

	text := fmt.Sprintf("Saved %s (%d bytes)", path, len(p.Data))
	out, err := s.opts.Hooks.PostGenerate(ctx, s.opts.WorkDir, hooks.Variables{
		File:         path,
		TemplateID:   string(tpl.ID),
		TemplateName: tpl.Name,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s, but hooks were interrupted: %v", text, err)), nil
	}
	if out != "" {
		text += "\n\n" + out
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearchImages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, bad := stringArg(request, "query")
	if bad != nil {
		return bad, nil
	}
	results, err := s.svc.SearchImages(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(api.Message(err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No images found."), nil
	}
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.Original)
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleUploadImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	imageURL, bad := stringArg(request, "url")
	if bad != nil {
		return bad, nil
	}
	key, err := s.svc.UploadAssetFromURL(ctx, imageURL)
	if err != nil {
		return mcp.NewToolResultError(api.Message(err)), nil
	}
	return mcp.NewToolResultText("Asset key: " + key), nil
}
