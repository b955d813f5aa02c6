package etl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/pkg/errors"
)

// DefaultSourceURL is the endpoint the extract step reads from.
const DefaultSourceURL = "https://jsonplaceholder.typicode.com/posts"

// HTTPExtractor issues one GET per call and decodes a JSON array of posts.
type HTTPExtractor struct {
	Client *http.Client
	URL    string
}

func NewHTTPExtractor(client *http.Client, url string) *HTTPExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = DefaultSourceURL
	}
	return &HTTPExtractor{Client: client, URL: url}
}

func (h *HTTPExtractor) Extract(ctx context.Context) ([]models.RawPost, error) {
	// 1. Build the request. The context bounds the whole exchange,
	// body included.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", h.URL)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", h.URL)
	}
	defer resp.Body.Close()

	// 2. Any non-2xx answer fails the step. The body is drained so the
	// connection can be reused.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: h.URL, StatusCode: resp.StatusCode}
	}

	// 3. Decode. A JSON null leaves posts nil (absent), while [] gives
	// an empty, non-nil slice.
	var posts []models.RawPost
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, errors.Wrapf(err, "decode posts from %s", h.URL)
	}

	if posts == nil {
		logger.Warnf("Upstream %s returned no payload", h.URL)
	} else {
		logger.Infof("Extracted %d posts from %s", len(posts), h.URL)
	}
	return posts, nil
}
