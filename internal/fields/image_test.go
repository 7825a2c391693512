package fields

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/deckfill/internal/api"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeAssets struct {
	uploads []string
	fetched []string
	views   []string
}

func (f *fakeAssets) UploadAsset(_ context.Context, filename string, _ []byte) (string, error) {
	f.uploads = append(f.uploads, filename)
	return "temp/abc.jpg", nil
}

func (f *fakeAssets) UploadAssetFromURL(_ context.Context, u string) (string, error) {
	f.fetched = append(f.fetched, u)
	return "temp/from-url.jpg", nil
}

func (f *fakeAssets) AssetViewURL(_ context.Context, key string) (string, error) {
	f.views = append(f.views, key)
	return "https://cdn.example/" + key, nil
}

func (f *fakeAssets) SearchImages(_ context.Context, q string) ([]api.ImageResult, error) {
	if q == "" {
		return nil, api.ErrEmptyQuery
	}
	return []api.ImageResult{{Thumbnail: "thumb", Original: "https://img.example/" + q + ".jpg"}}, nil
}

func (f *fakeAssets) ScrapeImages(_ context.Context, page string) ([]string, error) {
	return []string{page + "/a.png", page + "/b.png"}, nil
}

func TestImagePicker_AllPathsUseOneCallback(t *testing.T) {
	ctx := context.Background()
	svc := &fakeAssets{}
	var picked []string
	p := NewImagePicker(svc, "", func(key string) { picked = append(picked, key) })

	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))
	key, err := p.UploadFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "temp/abc.jpg", key)
	require.Equal(t, []string{"logo.png"}, svc.uploads)

	results, err := p.Search(ctx, "cats")
	require.NoError(t, err)
	require.Len(t, results, 1)
	_, err = p.PickSearchResult(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"https://img.example/cats.jpg"}, svc.fetched)

	_, err = p.Scrape(ctx, "https://site.example")
	require.NoError(t, err)
	_, err = p.PickScraped(ctx, 1)
	require.NoError(t, err)

	require.Equal(t, []string{"temp/abc.jpg", "temp/from-url.jpg", "temp/from-url.jpg"}, picked)
	require.Equal(t, "temp/from-url.jpg", p.Value().String())

	preview, err := p.Preview(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/temp/from-url.jpg", preview)
}

func TestViewURL(t *testing.T) {
	ctx := context.Background()
	svc := &fakeAssets{}

	u, err := ViewURL(ctx, svc, "temp/abc.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/temp/abc.jpg", u)

	u, err = ViewURL(ctx, svc, "https://img.example/cats.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://img.example/cats.jpg", u)
	require.Equal(t, []string{"temp/abc.jpg"}, svc.views, "full URLs skip the server")

	_, err = ViewURL(ctx, svc, "")
	require.ErrorIs(t, err, ErrNoSelection)
}

func TestImagePicker_Errors(t *testing.T) {
	ctx := context.Background()
	called := false
	p := NewImagePicker(&fakeAssets{}, "temp/old.jpg", func(string) { called = true })

	_, err := p.Upload(ctx, "notes.txt", []byte("plain text"))
	require.ErrorIs(t, err, ErrInvalidImage)

	_, err = p.PickSearchResult(ctx, 0)
	require.ErrorIs(t, err, ErrNoSelection)

	_, err = p.PickScraped(ctx, -1)
	require.ErrorIs(t, err, ErrNoSelection)

	_, err = p.Search(ctx, "")
	require.ErrorIs(t, err, api.ErrEmptyQuery)

	require.False(t, called)
	require.Equal(t, "temp/old.jpg", p.Key())
}
