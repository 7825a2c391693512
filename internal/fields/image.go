package fields

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/template"
)

// ErrInvalidImage is returned for files that are not JPG, PNG or GIF.
var ErrInvalidImage = errors.New("invalid file type, please use JPG, PNG, or GIF")

// ErrNoSelection is returned when picking an index that is not listed.
var ErrNoSelection = errors.New("no image at that position")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// AssetService is the part of the API client the picker uses.
type AssetService interface {
	UploadAsset(ctx context.Context, filename string, data []byte) (string, error)
	UploadAssetFromURL(ctx context.Context, imageURL string) (string, error)
	AssetViewURL(ctx context.Context, key string) (string, error)
	SearchImages(ctx context.Context, query string) ([]api.ImageResult, error)
	ScrapeImages(ctx context.Context, pageURL string) ([]string, error)
}

// ImagePicker acquires an image by upload, search or scrape. Every path
// ends in a storage key handed to onPick.
type ImagePicker struct {
	svc    AssetService
	onPick func(key string)

	mu      sync.Mutex
	key     string
	results []api.ImageResult
	scraped []string
}

// NewImagePicker creates a picker holding the current key.
func NewImagePicker(svc AssetService, current string, onPick func(key string)) *ImagePicker {
	if onPick == nil {
		onPick = func(string) {}
	}
	return &ImagePicker{svc: svc, key: current, onPick: onPick}
}

func (p *ImagePicker) Kind() template.Kind { return template.KindImage }

func (p *ImagePicker) Value() template.Value { return template.Text(p.Key()) }

// Key returns the current storage key.
func (p *ImagePicker) Key() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// UploadFile reads and uploads a local image.
func (p *ImagePicker) UploadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	return p.Upload(ctx, filepath.Base(path), data)
}

// Upload sends image bytes to the service.
func (p *ImagePicker) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", api.ErrNoFile
	}
	if !allowedImageTypes[http.DetectContentType(data)] {
		return "", ErrInvalidImage
	}
	key, err := p.svc.UploadAsset(ctx, filename, data)
	if err != nil {
		return "", err
	}
	p.pick(key)
	return key, nil
}

// Search runs a keyword search and remembers the results for picking.
func (p *ImagePicker) Search(ctx context.Context, query string) ([]api.ImageResult, error) {
	results, err := p.svc.SearchImages(ctx, query)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.results = results
	p.mu.Unlock()
	return results, nil
}

// PickSearchResult stores the original image of result i.
func (p *ImagePicker) PickSearchResult(ctx context.Context, i int) (string, error) {
	p.mu.Lock()
	if i < 0 || i >= len(p.results) {
		p.mu.Unlock()
		return "", ErrNoSelection
	}
	src := p.results[i].Original
	p.mu.Unlock()
	return p.fetch(ctx, src)
}

// Scrape lists images on a page and remembers them for picking.
func (p *ImagePicker) Scrape(ctx context.Context, pageURL string) ([]string, error) {
	urls, err := p.svc.ScrapeImages(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.scraped = urls
	p.mu.Unlock()
	return urls, nil
}

// PickScraped stores scraped image i.
func (p *ImagePicker) PickScraped(ctx context.Context, i int) (string, error) {
	p.mu.Lock()
	if i < 0 || i >= len(p.scraped) {
		p.mu.Unlock()
		return "", ErrNoSelection
	}
	src := p.scraped[i]
	p.mu.Unlock()
	return p.fetch(ctx, src)
}

// FetchURL stores an image from an arbitrary URL.
func (p *ImagePicker) FetchURL(ctx context.Context, imageURL string) (string, error) {
	return p.fetch(ctx, imageURL)
}

// Preview returns a viewable URL for the current key.
func (p *ImagePicker) Preview(ctx context.Context) (string, error) {
	return ViewURL(ctx, p.svc, p.Key())
}

// ViewURL resolves an image value to a viewable URL. Values that are
// already http(s) URLs are returned as is.
func ViewURL(ctx context.Context, svc AssetService, key string) (string, error) {
	if key == "" {
		return "", ErrNoSelection
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key, nil
	}
	return svc.AssetViewURL(ctx, key)
}

// Clear forgets the current image.
func (p *ImagePicker) Clear() {
	p.pick("")
}

func (p *ImagePicker) fetch(ctx context.Context, src string) (string, error) {
	key, err := p.svc.UploadAssetFromURL(ctx, src)
	if err != nil {
		return "", err
	}
	p.pick(key)
	return key, nil
}

func (p *ImagePicker) pick(key string) {
	p.mu.Lock()
	p.key = key
	p.mu.Unlock()
	p.onPick(key)
}
