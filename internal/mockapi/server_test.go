package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/deckfill/internal/template"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	s.SetBaseURL(ts.URL)
	return s, ts
}

func uploadBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestAnalyze(t *testing.T) {
	_, ts := newTestServer(t)

	body, ctype := uploadBody(t, "deck.pptx", "Hello {{client_name}} {{image:logo}} {{list:perks}} {{client_name}}", nil)
	resp, err := http.Post(ts.URL+"/api/upload", ctype, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []template.Placeholder
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, []template.Placeholder{
		{Name: "client_name", Kind: template.KindText},
		{Name: "logo", Kind: template.KindImage},
		{Name: "perks", Kind: template.KindList},
	}, got)

	body, ctype = uploadBody(t, "deck.pdf", "x", nil)
	resp2, err := http.Post(ts.URL+"/api/upload", ctype, body)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	require.Contains(t, decodeError(t, resp2), ".pptx")
}

func TestSaveDuplicateName(t *testing.T) {
	s, ts := newTestServer(t)
	s.AddTemplate("Listing", "", []byte("{{title}}"))

	body, ctype := uploadBody(t, "deck.pptx", "{{title}}", map[string]string{
		"templateName": "Listing",
		"placeholders": `[{"name":"title","type":"text"}]`,
	})
	resp, err := http.Post(ts.URL+"/api/save_template", ctype, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "A template with this name already exists.", decodeError(t, resp))
}

func TestTrashLifecycle(t *testing.T) {
	s, ts := newTestServer(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	a := s.AddTemplate("A", "", []byte("{{x}}"))
	b := s.AddTemplate("B", "", []byte("{{y}}"))

	for _, id := range []template.ID{a.ID, b.ID} {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/templates/"+id.String(), nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/templates/trash")
	require.NoError(t, err)
	var trash []template.Template
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trash))
	resp.Body.Close()
	require.Len(t, trash, 2)

	// Purged explicitly.
	s.Purge(a.ID)
	resp, err = http.Post(ts.URL+"/api/templates/"+a.ID.String()+"/restore", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusGone, resp.StatusCode)
	require.Equal(t, "Template permanently deleted and removed from trash.", decodeError(t, resp))
	resp.Body.Close()

	// Past retention.
	now = now.Add(TrashRetention + time.Hour)
	resp, err = http.Post(ts.URL+"/api/templates/"+b.ID.String()+"/restore", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusGone, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/templates/trash")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trash))
	resp.Body.Close()
	require.Empty(t, trash)
}

func TestRestore(t *testing.T) {
	s, ts := newTestServer(t)
	a := s.AddTemplate("A", "", []byte("{{x}}"))

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/templates/"+a.ID.String(), nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/templates/" + a.ID.String())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/templates/"+a.ID.String()+"/restore", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/templates/" + a.ID.String())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerate(t *testing.T) {
	s, ts := newTestServer(t)
	tpl := s.AddTemplate("Market Listing", "", []byte("Client: {{client_name}}\nPerks:\n{{list:perks}}"))

	body := `{"templateId":` + tpl.ID.String() + `,"data":{"client_name":"Acme","perks":["Park","","Gym"]}}`
	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `attachment; filename="market-listing.pptx"`, resp.Header.Get("Content-Disposition"))

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "Client: Acme\nPerks:\nPark\nGym", string(out))
}

func TestAssets(t *testing.T) {
	s, ts := newTestServer(t)

	body, ctype := uploadBody(t, "logo.PNG", "\x89PNG\r\n\x1a\n", nil)
	resp, err := http.Post(ts.URL+"/api/assets/upload", ctype, body)
	require.NoError(t, err)
	var key struct {
		Key string `json:"s3_key"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&key))
	resp.Body.Close()
	require.True(t, strings.HasPrefix(key.Key, "temp/"))
	require.True(t, strings.HasSuffix(key.Key, ".png"))
	_, ok := s.Asset(key.Key)
	require.True(t, ok)

	resp, err = http.Get(ts.URL + "/api/assets/view-url?key=" + key.Key)
	require.NoError(t, err)
	var view struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	require.Equal(t, ts.URL+"/assets/"+key.Key, view.URL)

	resp, err = http.Get(view.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = http.Post(ts.URL+"/api/scrape/images", "application/json", strings.NewReader(`{"url":"ftp://x"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
