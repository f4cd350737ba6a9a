package httpds

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
)

// Source is a datasource backed by an HTTP GET.
type Source struct {
	client *Client
	url    string
	name   string
}

// NewSource returns a Source fetching rawURL through client.
func NewSource(client *Client, rawURL string) *Source {
	return &Source{client: client, url: rawURL, name: NameFromURL(rawURL)}
}

// Name is the last path segment of the URL (e.g. "train.csv").
func (s *Source) Name() string { return s.name }

// URL returns the configured URL.
func (s *Source) URL() string { return s.url }

// Open issues the GET and returns the response body. Any non-2xx status is
// an error.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpds: get %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: get %s: %s", s.url, resp.Status)
	}
	return resp.Body, nil
}

// NameFromURL derives a display name from a URL: the last non-empty path
// segment, or the host when the path is empty. Unparseable input is
// returned unchanged.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
		return base
	}
	if u.Host != "" {
		return u.Host
	}
	return rawURL
}
