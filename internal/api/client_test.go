package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/deckfill/internal/template"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)

	c, err := New("http://localhost:5000/", WithTimeout(time.Second))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", c.BaseURL())
}

func TestListTemplates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/templates", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":1,"name":"Listing","created_at":"2025-01-02T03:04:05Z","placeholders":[{"name":"client_name"}]}]`)
	}))

	got, err := c.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, template.ID("1"), got[0].ID)
	require.Equal(t, template.KindText, got[0].Placeholders[0].Kind)
	require.NotNil(t, got[0].CreatedAt)
}

func TestServerErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/templates":
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "A database error occurred."})
		case "/api/save_template":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Template name is required."})
		case "/api/templates/9":
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	ctx := context.Background()

	// Listing hides server text behind the generic message.
	_, err := c.ListTemplates(ctx)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, KindServer, apiErr.Kind)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, "Could not connect to the server to get templates.", apiErr.Error())

	// Validation text is passed through verbatim.
	_, err = c.SaveTemplate(ctx, SaveRequest{Filename: "a.pptx", Data: []byte("x")})
	require.Equal(t, "Template name is required.", Message(err))

	// No error body falls back to the operation's message.
	_, err = c.UpdateTemplate(ctx, "9", TemplateUpdate{})
	require.Equal(t, "Failed to update template.", Message(err))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.ListTrash(context.Background())
	require.True(t, IsNetwork(err))
	require.False(t, IsGone(err))
	require.Equal(t, "Could not load trashed items from the server.", Message(err))
}

func TestRestoreGone(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/templates/5/restore", r.URL.Path)
		writeJSON(w, http.StatusGone, map[string]string{"error": "Template permanently deleted."})
	}))

	err := c.RestoreTemplate(context.Background(), "5")
	require.True(t, IsGone(err))
	require.Equal(t, "Template permanently deleted.", Message(err))
}

func TestAnalyzeUpload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "deck.pptx", hdr.Filename)
		writeJSON(w, http.StatusOK, []map[string]string{{"name": "logo", "type": "image"}, {"name": "title"}})
	}))
	ctx := context.Background()

	_, err := c.AnalyzeUpload(ctx, "", nil)
	require.ErrorIs(t, err, ErrNoFile)

	got, err := c.AnalyzeUpload(ctx, "deck.pptx", []byte("data"))
	require.NoError(t, err)
	require.Equal(t, []template.Placeholder{
		{Name: "logo", Kind: template.KindImage},
		{Name: "title", Kind: template.KindText},
	}, got)
}

func TestSaveTemplate_Form(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Listing", r.FormValue("templateName"))
		require.Equal(t, "For brokers", r.FormValue("description"))
		require.JSONEq(t, `[{"name":"client_name","type":"text"}]`, r.FormValue("placeholders"))
		writeJSON(w, http.StatusCreated, map[string]any{"id": 3, "name": "Listing"})
	}))

	tpl, err := c.SaveTemplate(context.Background(), SaveRequest{
		Filename:     "deck.pptx",
		Data:         []byte("x"),
		Name:         "Listing",
		Description:  "For brokers",
		Placeholders: []template.Placeholder{{Name: "client_name", Kind: template.KindText}},
	})
	require.NoError(t, err)
	require.Equal(t, template.ID("3"), tpl.ID)
}

func TestGenerate(t *testing.T) {
	var disposition string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TemplateID string                     `json:"templateId"`
			Data       map[string]json.RawMessage `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "7", body.TemplateID)
		require.JSONEq(t, `"Acme"`, string(body.Data["client_name"]))
		require.JSONEq(t, `["Park"]`, string(body.Data["nearby_amenities"]))
		if disposition != "" {
			w.Header().Set("Content-Disposition", disposition)
		}
		_, _ = w.Write([]byte("PPTX"))
	}))
	vals := template.Values{
		"client_name":      template.Text("Acme"),
		"nearby_amenities": template.List("Park"),
	}

	disposition = `attachment; filename="Listing_Acme.pptx"`
	p, err := c.Generate(context.Background(), "7", vals)
	require.NoError(t, err)
	require.Equal(t, "Listing_Acme.pptx", p.Filename)
	require.Equal(t, []byte("PPTX"), p.Data)

	disposition = ""
	p, err = c.Generate(context.Background(), "7", vals)
	require.NoError(t, err)
	require.Equal(t, DefaultFilename, p.Filename)
}

func TestFilenameFrom(t *testing.T) {
	require.Equal(t, DefaultFilename, filenameFrom(""))
	require.Equal(t, DefaultFilename, filenameFrom("attachment"))
	require.Equal(t, DefaultFilename, filenameFrom(";;;"))
	require.Equal(t, "a b.pptx", filenameFrom(`attachment; filename="a b.pptx"`))
}

func TestAssets(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/assets/upload":
			writeJSON(w, http.StatusOK, map[string]string{"s3_key": "temp/abc.jpg"})
		case "/api/assets/upload_from_url":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "https://img.example/cat.jpg", body["url"])
			writeJSON(w, http.StatusOK, map[string]string{"s3_key": "temp/cat.jpg"})
		case "/api/assets/view-url":
			writeJSON(w, http.StatusOK, map[string]string{"url": "https://cdn.example/" + r.URL.Query().Get("key")})
		case "/api/images/search":
			require.Equal(t, "cats", r.URL.Query().Get("q"))
			writeJSON(w, http.StatusOK, []ImageResult{{Thumbnail: "t1", Original: "https://img.example/cat.jpg"}})
		case "/api/scrape/images":
			writeJSON(w, http.StatusOK, []string{"https://site.example/a.png"})
		}
	}))
	ctx := context.Background()

	key, err := c.UploadAsset(ctx, "logo.jpg", []byte("img"))
	require.NoError(t, err)
	require.Equal(t, "temp/abc.jpg", key)

	key, err = c.UploadAssetFromURL(ctx, "https://img.example/cat.jpg")
	require.NoError(t, err)
	require.Equal(t, "temp/cat.jpg", key)

	u, err := c.AssetViewURL(ctx, "temp/cat.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/temp/cat.jpg", u)

	results, err := c.SearchImages(ctx, "  cats ")
	require.NoError(t, err)
	require.Len(t, results, 1)

	urls, err := c.ScrapeImages(ctx, "https://site.example")
	require.NoError(t, err)
	require.Equal(t, []string{"https://site.example/a.png"}, urls)
}

func TestClientValidation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
	}))
	ctx := context.Background()

	_, err := c.SearchImages(ctx, "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
	_, err = c.ScrapeImages(ctx, "")
	require.ErrorIs(t, err, ErrEmptyURL)
	_, err = c.UploadAssetFromURL(ctx, "")
	require.ErrorIs(t, err, ErrEmptyURL)
	_, err = c.AssetViewURL(ctx, "")
	require.ErrorIs(t, err, ErrEmptyKey)
	_, err = c.UploadAsset(ctx, "x.jpg", nil)
	require.ErrorIs(t, err, ErrNoFile)
	_, err = c.SaveTemplate(ctx, SaveRequest{Name: "x"})
	require.ErrorIs(t, err, ErrNoFile)
}
