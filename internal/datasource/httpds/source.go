package httpds

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"cardetl/internal/datasource"
)

// Source is a remote card export.
type Source struct {
	url    string
	client *Client
}

var _ datasource.Source = (*Source)(nil)

// NewSource returns a Source for url using a client built from cfg.
func NewSource(url string, cfg Config) *Source {
	return &Source{url: url, client: NewClient(cfg)}
}

// URL returns the export address, for logs.
func (s *Source) URL() string { return s.url }

// Open downloads the export and returns the response body. Anything but
// 200 OK is an error.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: %s", s.url, resp.Status)
	}
	log.Printf("httpds: fetching url=%s content_length=%d", s.url, resp.ContentLength)
	return resp.Body, nil
}
