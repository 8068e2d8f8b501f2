package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPRunner probes destinations whose probe command is a URL. Any 2xx
// response maps to exit code 0, every other response to 1.
type HTTPRunner struct {
	Client *http.Client
}

// NewHTTPRunner creates an HTTP probe runner with a sane default client
func NewHTTPRunner() *HTTPRunner {
	return &HTTPRunner{
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Execute performs a GET against the URL in command
func (r *HTTPRunner) Execute(ctx context.Context, command string) (int, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, command, nil)
	if err != nil {
		return -1, fmt.Errorf("invalid probe url %q: %w", command, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return -1, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return 0, nil
	}
	return 1, nil
}
