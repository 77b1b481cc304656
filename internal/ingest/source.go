package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/vessel-tracking-service/internal/config"
	"github.com/couchcryptid/vessel-tracking-service/internal/simulator"
)

// Source provides raw CSV text for one ingestion cycle.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// SourceFromConfig picks the primary position source. Synthetic mode wins
// over any configured feed, matching the USE_SYNTHETIC default-true contract;
// a nil return means the Loader runs purely on the generator.
func SourceFromConfig(cfg *config.Config) Source {
	switch {
	case cfg.UseSynthetic:
		return nil
	case cfg.SourceURL != "":
		return NewHTTPSource(cfg.SourceURL, nil)
	case cfg.SourcePath != "":
		return NewFileSource(cfg.SourcePath)
	default:
		return nil
	}
}

// SyntheticSource generates the deterministic MSF HAPPY trajectory. It never
// fails, which makes it the terminal fallback for every other source.
type SyntheticSource struct {
	clock clockwork.Clock
}

// NewSyntheticSource creates a synthetic source driven by the given clock.
func NewSyntheticSource(clock clockwork.Clock) *SyntheticSource {
	return &SyntheticSource{clock: clock}
}

func (s *SyntheticSource) Fetch(_ context.Context) (string, error) {
	return simulator.GenerateCSV(s.clock.Now()), nil
}

// FileSource reads CSV text from a local file on every fetch.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read position file: %w", err)
	}
	return string(data), nil
}

// HTTPSource fetches CSV text from a remote feed URL.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates an HTTP source. A nil client gets a default with a
// 10-second timeout.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{url: url, client: client}
}

func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("build feed request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch position feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch position feed: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read position feed: %w", err)
	}
	return string(data), nil
}
