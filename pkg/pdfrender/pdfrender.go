// Package pdfrender talks to the external report-rendering service. The
// engine hands over a fully resolved plan tree and streams back the PDF; no
// layout logic lives here.
package pdfrender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Renderer turns a resolved plan payload into a PDF byte stream. The caller
// owns closing the stream.
type Renderer interface {
	Render(ctx context.Context, payload interface{}) (io.ReadCloser, error)
}

// HTTPRenderer is the production renderer backed by the report service.
type HTTPRenderer struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// New constructs an HTTP renderer for the given endpoint.
func New(endpoint string, timeout time.Duration, logger zerolog.Logger) (*HTTPRenderer, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("pdf render endpoint must not be empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPRenderer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "pdfrender").Logger(),
	}, nil
}

// Render posts the payload as JSON and returns the PDF stream.
func (r *HTTPRenderer) Render(ctx context.Context, payload interface{}) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode render payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build render request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/pdf")

	response, err := r.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("render service unreachable: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		defer response.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		r.logger.Error().Int("status", response.StatusCode).Bytes("body", snippet).Msg("render service rejected payload")
		return nil, fmt.Errorf("render service returned status %d", response.StatusCode)
	}

	return response.Body, nil
}
