package tools

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	scouterr "github.com/abdul-hamid-achik/marketscout/internal/errors"
	"github.com/abdul-hamid-achik/marketscout/internal/logger"
)

// dataSource is the shared HTTP plumbing for a market data provider:
// a per-provider request rate limit and a circuit breaker so a failing
// provider is backed off instead of hammered.
type dataSource struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitBreaker
}

func newDataSource(name string, requestsPerSecond float64) *dataSource {
	return &dataSource{
		name: name,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		breaker: newCircuitBreaker(5, 30*time.Second),
	}
}

// get fetches a URL and returns the response body. Non-200 statuses become
// DataSourceError with retryability derived from the status code.
func (ds *dataSource) get(ctx context.Context, url string) (string, error) {
	if !ds.breaker.Allow() {
		return "", scouterr.DataSourceError(ds.name, http.StatusServiceUnavailable, nil)
	}

	if err := ds.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := ds.httpClient.Do(req)
	if err != nil {
		ds.breaker.RecordFailure()
		return "", scouterr.DataSourceError(ds.name, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ds.breaker.RecordFailure()
		return "", scouterr.DataSourceError(ds.name, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		ds.breaker.RecordFailure()
		logger.Warn("%s returned status %d", ds.name, resp.StatusCode)
		return "", scouterr.DataSourceError(ds.name, resp.StatusCode, nil)
	}

	ds.breaker.RecordSuccess()
	return string(body), nil
}
