// Package distance queries an external service for the shipping distance
// the distance criterion compares against.
package distance

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// HTTPProvider asks a distance service over HTTP. The service answers
// GET {url}?from=DE&to=AT&session=...&user=... with a JSON body holding the
// distance in kilometers under "distance_km" or "data.distance_km".
type HTTPProvider struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewHTTPProvider creates a provider from the distance configuration
func NewHTTPProvider(cfg config.DistanceConfig, logger *zap.Logger) *HTTPProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "storefront/1.0")
	return &HTTPProvider{client: client, url: cfg.URL, logger: logger}
}

// Distance implements checkout.DistanceProvider
func (p *HTTPProvider) Distance(ctx context.Context, q checkout.DistanceQuery) (float64, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"from":    q.FromCountry,
			"to":      q.ToCountry,
			"session": q.SessionID,
			"user":    q.UserID,
		}).
		Get(p.url)
	if err != nil {
		return 0, fmt.Errorf("distance request failed: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("distance service returned %d", resp.StatusCode())
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("distance service returned invalid JSON")
	}
	for _, path := range []string{"distance_km", "data.distance_km"} {
		if v := gjson.GetBytes(body, path); v.Exists() {
			p.logger.Debug("Fetched distance",
				zap.String("from", q.FromCountry),
				zap.String("to", q.ToCountry),
				zap.Float64("km", v.Float()))
			return v.Float(), nil
		}
	}
	return 0, fmt.Errorf("distance missing in response")
}

var _ checkout.DistanceProvider = (*HTTPProvider)(nil)
