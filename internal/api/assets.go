package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// ImageResult is one keyword search hit.
type ImageResult struct {
	Thumbnail string `json:"thumbnail"`
	Original  string `json:"original"`
}

type keyResponse struct {
	Key string `json:"s3_key"`
}

// UploadAsset stores an image file and returns its storage key.
func (c *Client) UploadAsset(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" || len(data) == 0 {
		return "", ErrNoFile
	}
	body, ctype, err := multipartBody([]formFile{{field: "file", filename: filename, data: data}}, nil)
	if err != nil {
		return "", err
	}
	var out keyResponse
	err = c.doJSON(ctx, call{
		op:       "upload asset",
		method:   http.MethodPost,
		path:     "/api/assets/upload",
		body:     body,
		ctype:    ctype,
		fallback: "Failed to upload the asset.",
	}, &out)
	return out.Key, err
}

// UploadAssetFromURL has the service fetch an image and returns its
// storage key.
func (c *Client) UploadAssetFromURL(ctx context.Context, imageURL string) (string, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return "", ErrEmptyURL
	}
	body, err := jsonBody(map[string]string{"url": imageURL})
	if err != nil {
		return "", err
	}
	var out keyResponse
	err = c.doJSON(ctx, call{
		op:       "upload asset from url",
		method:   http.MethodPost,
		path:     "/api/assets/upload_from_url",
		body:     body,
		ctype:    "application/json",
		fallback: "Failed to upload the selected image.",
	}, &out)
	return out.Key, err
}

// AssetViewURL exchanges a storage key for a temporary viewable URL.
func (c *Client) AssetViewURL(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	var out struct {
		URL string `json:"url"`
	}
	err := c.doJSON(ctx, call{
		op:       "asset view url",
		method:   http.MethodGet,
		path:     "/api/assets/view-url",
		query:    url.Values{"key": {key}},
		fallback: "Could not load image preview.",
	}, &out)
	return out.URL, err
}

// SearchImages runs a keyword image search.
func (c *Client) SearchImages(ctx context.Context, query string) ([]ImageResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	var out []ImageResult
	err := c.doJSON(ctx, call{
		op:       "search images",
		method:   http.MethodGet,
		path:     "/api/images/search",
		query:    url.Values{"q": {query}},
		fallback: "Failed to search for images.",
	}, &out)
	return out, err
}

// ScrapeImages lists image URLs found on a web page.
func (c *Client) ScrapeImages(ctx context.Context, pageURL string) ([]string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, ErrEmptyURL
	}
	body, err := jsonBody(map[string]string{"url": pageURL})
	if err != nil {
		return nil, err
	}
	var out []string
	err = c.doJSON(ctx, call{
		op:       "scrape images",
		method:   http.MethodPost,
		path:     "/api/scrape/images",
		body:     body,
		ctype:    "application/json",
		fallback: "Could not fetch images from this URL.",
	}, &out)
	return out, err
}
