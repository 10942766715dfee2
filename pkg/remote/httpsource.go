package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/frond-ui/frond/internal/errors"
)

// HTTPSource fetches JSON documents from an HTTP endpoint. Directive args
// become path segments under the base URL: "$remote.api.users.42" against
// base "https://example.com" requests "https://example.com/users/42".
type HTTPSource struct {
	base   string
	client *http.Client
}

// NewHTTPSource creates an HTTPSource for the given base URL.
func NewHTTPSource(base string) *HTTPSource {
	return &HTTPSource{
		base: strings.TrimSuffix(base, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithClient replaces the underlying HTTP client.
func (s *HTTPSource) WithClient(client *http.Client) *HTTPSource {
	s.client = client
	return s
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, d Directive) (any, error) {
	url := s.base + "/" + strings.Join(d.Args, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New("E003").Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.New("E003").
			WithDetail("Could not reach remote endpoint: " + err.Error()).
			WithSuggestion("Check the remote source base URL and network connectivity")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("E003").
			WithDetailf("Remote endpoint returned status %d for %s", resp.StatusCode, url)
	}

	var value any
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return nil, errors.New("E003").
			WithDetail(fmt.Sprintf("Invalid JSON from %s: %v", url, err))
	}
	return value, nil
}
