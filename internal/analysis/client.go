package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/guttosm/tickerdesk/internal/domain/dto"
	"github.com/guttosm/tickerdesk/internal/domain/models"
	"github.com/guttosm/tickerdesk/internal/logger"
)

// maxErrorBody caps how much of a non-200 body ends up in error messages.
const maxErrorBody = 512

// Client talks to the remote analysis service.
type Client interface {
	// Analyze posts {market, ticker} and returns the normalized result list.
	Analyze(ctx context.Context, market models.Market, ticker string) ([]models.AnalysisResult, error)
	// Ping checks the service health endpoint.
	Ping(ctx context.Context) error
}

// HTTPClient is the Client used against the real service.
//
// It performs exactly one HTTP call per Analyze; there are no retries.
type HTTPClient struct {
	endpoint  string
	healthURL string
	http      *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the given analysis endpoint.
//
// Parameters:
//   - endpoint: URL receiving the analysis POST.
//   - healthURL: URL probed by Ping; Ping is a no-op when empty.
//   - timeout: per-request timeout; zero disables it.
func NewHTTPClient(endpoint, healthURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint:  endpoint,
		healthURL: healthURL,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Analyze(ctx context.Context, market models.Market, ticker string) ([]models.AnalysisResult, error) {
	payload, err := json.Marshal(dto.AnalyzeRequest{Market: market.String(), Ticker: ticker})
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Kind: KindTransport, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &RequestError{Kind: KindTransport, Err: fmt.Errorf("read body failed: %w", err)}
	}

	logger.L().Debug().
		Str("market", market.String()).
		Str("ticker", ticker).
		Int("status", res.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis response")

	if res.StatusCode != http.StatusOK {
		return nil, &RequestError{
			Kind:       KindStatus,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", truncate(body, maxErrorBody)),
		}
	}

	rs, err := dto.DecodeResultSet(body)
	if err != nil {
		return nil, &RequestError{Kind: KindPayload, StatusCode: res.StatusCode, Err: err}
	}
	return rs.Items, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	if c.healthURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Kind: KindTransport, Err: err}
	}
	defer func() { _ = res.Body.Close() }()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return &RequestError{Kind: KindStatus, StatusCode: res.StatusCode, Err: fmt.Errorf("health check returned %d", res.StatusCode)}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
