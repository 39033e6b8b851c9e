package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"paper-trading/config"
	"paper-trading/pkg/httpclient"
	"paper-trading/pkg/logger"

	"golang.org/x/time/rate"
)

// QuoteRepository is the live source for a ticker's current price.
type QuoteRepository interface {
	CurrentQuote(ctx context.Context, ticker string) (float64, error)
}

type finnhubRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewFinnhubRepository creates a quote source backed by the Finnhub API.
func NewFinnhubRepository(cfg *config.Config, log *logger.Logger) QuoteRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Finnhub.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &finnhubRepository{
		httpClient:     httpclient.New(cfg.Finnhub.BaseURL, cfg.Finnhub.Timeout),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

type finnhubQuoteResponse struct {
	Current       float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
}

func (r *finnhubRepository) CurrentQuote(ctx context.Context, ticker string) (float64, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("failed to wait for finnhub request limit: %w", err)
	}

	queryParams := map[string]string{
		"symbol": ticker,
		"token":  r.cfg.Finnhub.APIKey,
	}

	var quote finnhubQuoteResponse
	resp, err := r.httpClient.Get(ctx, "/quote", queryParams, nil, &quote)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch quote from finnhub: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Finnhub API returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("ticker", ticker),
		)
		return 0, fmt.Errorf("finnhub api returned status: %d", resp.StatusCode)
	}

	if quote.Current <= 0 {
		return 0, fmt.Errorf("finnhub returned no quote for %s", ticker)
	}

	return quote.Current, nil
}
