package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Source streams one export with an HTTP GET. It implements
// datasource.Source.
type Source struct {
	c   *Client
	url string
}

// NewSource returns a Source for url fetched through c.
func NewSource(c *Client, url string) *Source {
	return &Source{c: c, url: url}
}

// Name returns the URL.
func (s *Source) Name() string { return s.url }

// Open issues the GET and returns the response body. Any status other than
// 200 is an error.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.c.Get(ctx, s.url, http.Header{"Accept": []string{"text/csv, */*"}})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: %s", s.url, resp.Status)
	}
	return resp.Body, nil
}

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
