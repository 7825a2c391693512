package mockapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gosimple/slug"
	"github.com/mark3labs/deckfill/internal/template"
)

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.sorted(func(r *record) bool { return !r.purged && r.tpl.DeletedAt == nil })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTrash(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.sorted(func(r *record) bool { return r.tpl.DeletedAt != nil && !s.gone(r) })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// lookup returns the record named by the route. mu must be held.
func (s *Server) lookup(r *http.Request) (*record, bool) {
	rec, ok := s.templates[template.ID(mux.Vars(r)["id"])]
	if !ok || rec.purged {
		return nil, false
	}
	return rec, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.lookup(r)
	if !ok || rec.tpl.DeletedAt != nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}
	writeJSON(w, http.StatusOK, rec.tpl)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.lookup(r)
	if !ok || rec.tpl.DeletedAt != nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "Template name cannot be empty.")
			return
		}
		if s.nameTaken(name, rec.tpl.ID) {
			writeError(w, http.StatusConflict, "A template with this name already exists.")
			return
		}
		rec.tpl.Name = name
	}
	if body.Description != nil {
		rec.tpl.Description = strings.TrimSpace(*body.Description)
	}
	writeJSON(w, http.StatusOK, rec.tpl)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.lookup(r)
	if !ok || rec.tpl.DeletedAt != nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}
	now := s.now().UTC()
	rec.tpl.DeletedAt = &now
	writeMessage(w, "Template moved to trash.")
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.templates[template.ID(mux.Vars(r)["id"])]
	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "Template not found.")
	case s.gone(rec):
		writeError(w, http.StatusGone, "Template permanently deleted and removed from trash.")
	case rec.tpl.DeletedAt == nil:
		writeError(w, http.StatusBadRequest, "Template is not in the trash.")
	case s.nameTaken(rec.tpl.Name, rec.tpl.ID):
		writeError(w, http.StatusConflict, "A template with this name already exists.")
	default:
		rec.tpl.DeletedAt = nil
		writeMessage(w, "Template restored successfully.")
	}
}

// readFile pulls the "file" part out of a multipart request.
func readFile(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part in the request.")
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "No selected file.")
		return "", nil, false
	}
	return hdr.Filename, data, true
}

func isPresentation(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pptx")
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	name, data, ok := readFile(w, r)
	if !ok {
		return
	}
	if !isPresentation(name) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload a .pptx file.")
		return
	}
	found := template.Scan(string(data))
	if found == nil {
		found = []template.Placeholder{}
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	fname, data, ok := readFile(w, r)
	if !ok {
		return
	}
	if !isPresentation(fname) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload a .pptx file.")
		return
	}
	name := strings.TrimSpace(r.FormValue("templateName"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "Template name is required.")
		return
	}
	var placeholders []template.Placeholder
	if raw := r.FormValue("placeholders"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &placeholders); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid placeholders data.")
			return
		}
	}
	tpl := template.Template{Placeholders: placeholders}
	if err := tpl.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid placeholders: %v.", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(name, "") {
		writeError(w, http.StatusConflict, "A template with this name already exists.")
		return
	}
	saved := s.insert(name, strings.TrimSpace(r.FormValue("description")), data, placeholders)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateID template.ID     `json:"templateId"`
		Data       template.Values `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	s.mu.Lock()
	rec, ok := s.templates[body.TemplateID]
	if !ok || rec.purged || rec.tpl.DeletedAt != nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}
	tpl, file := rec.tpl, rec.file
	s.mu.Unlock()

	for _, p := range tpl.Placeholders {
		if v, ok := body.Data[p.Name]; ok && !p.Kind.Accepts(v) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value for %s.", p.Name))
			return
		}
	}

	out := template.Render(string(file), body.Data)
	filename := slug.Make(tpl.Name)
	if filename == "" {
		filename = "presentation"
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pptx"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

func newKey(ext string) string {
	ext = strings.ToLower(ext)
	if !imageExts[ext] {
		ext = ".jpg"
	}
	return "temp/" + uuid.NewString() + ext
}

func (s *Server) handleAssetUpload(w http.ResponseWriter, r *http.Request) {
	name, data, ok := readFile(w, r)
	if !ok {
		return
	}
	key := newKey(filepath.Ext(name))
	s.mu.Lock()
	s.assets[key] = asset{data: data, source: name}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"s3_key": key})
}

// parseWebURL accepts absolute http(s) URLs only.
func parseWebURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, false
	}
	return u, true
}

func decodeURLBody(w http.ResponseWriter, r *http.Request) (*url.URL, bool) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		writeError(w, http.StatusBadRequest, "URL is required.")
		return nil, false
	}
	u, ok := parseWebURL(body.URL)
	if !ok {
		writeError(w, http.StatusBadRequest, "Please provide a valid URL starting with http:// or https://.")
		return nil, false
	}
	return u, true
}

func (s *Server) handleAssetFromURL(w http.ResponseWriter, r *http.Request) {
	u, ok := decodeURLBody(w, r)
	if !ok {
		return
	}
	key := newKey(filepath.Ext(u.Path))
	s.mu.Lock()
	s.assets[key] = asset{source: u.String()}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"s3_key": key})
}

func (s *Server) handleViewURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Asset key is required.")
		return
	}
	s.mu.Lock()
	a, ok := s.assets[key]
	base := s.baseURL
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Asset not found.")
		return
	}
	if a.data == nil && a.source != "" {
		writeJSON(w, http.StatusOK, map[string]string{"url": a.source})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": base + "/assets/" + key})
}

func (s *Server) handleAssetBytes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a, ok := s.assets[mux.Vars(r)["key"]]
	s.mu.Unlock()
	if !ok || a.data == nil {
		writeError(w, http.StatusNotFound, "Asset not found.")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(a.data))
	_, _ = w.Write(a.data)
}

type imageResult struct {
	Thumbnail string `json:"thumbnail"`
	Original  string `json:"original"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "Search query is required.")
		return
	}
	base := "https://images.example.com/" + slug.Make(q)
	out := make([]imageResult, 0, 3)
	for i := 1; i <= 3; i++ {
		out = append(out, imageResult{
			Thumbnail: fmt.Sprintf("%s-%d-thumb.jpg", base, i),
			Original:  fmt.Sprintf("%s-%d.jpg", base, i),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	u, ok := decodeURLBody(w, r)
	if !ok {
		return
	}
	root := u.Scheme + "://" + u.Host
	writeJSON(w, http.StatusOK, []string{
		root + "/images/hero.jpg",
		root + "/images/logo.png",
	})
}
