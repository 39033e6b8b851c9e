package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/pkg/httpclient"
	"paper-trading/pkg/logger"

	"golang.org/x/time/rate"
)

// DailySeriesRepository supplies prior-day prices and company fundamentals.
type DailySeriesRepository interface {
	PreviousClose(ctx context.Context, ticker string) (float64, error)
	CompanyFundamentals(ctx context.Context, ticker string) (*dto.CompanyOverview, error)
}

type alphaVantageRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewAlphaVantageRepository creates a daily-series source backed by AlphaVantage.
func NewAlphaVantageRepository(cfg *config.Config, log *logger.Logger) DailySeriesRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Alpha.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &alphaVantageRepository{
		httpClient:     httpclient.New(cfg.Alpha.BaseURL, cfg.Alpha.Timeout),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

type alphaDailyResponse struct {
	TimeSeries map[string]struct {
		Open  string `json:"1. open"`
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

func (r *alphaVantageRepository) PreviousClose(ctx context.Context, ticker string) (float64, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("failed to wait for alphavantage request limit: %w", err)
	}

	queryParams := map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     ticker,
		"apikey":     r.cfg.Alpha.APIKey,
		"datatype":   "json",
		"outputsize": "compact",
	}

	var daily alphaDailyResponse
	resp, err := r.httpClient.Get(ctx, "/query", queryParams, nil, &daily)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch daily series from alphavantage: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("alphavantage api returned status: %d", resp.StatusCode)
	}
	if len(daily.TimeSeries) < 2 {
		return 0, fmt.Errorf("not enough daily data for %s", ticker)
	}

	dates := make([]string, 0, len(daily.TimeSeries))
	for date := range daily.TimeSeries {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	// Second most recent trading day is "yesterday".
	prev := daily.TimeSeries[dates[1]]
	price, err := strconv.ParseFloat(prev.Open, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid daily price for %s: %w", ticker, err)
	}
	return price, nil
}

type alphaOverviewResponse struct {
	Symbol             string `json:"Symbol"`
	Name               string `json:"Name"`
	Sector             string `json:"Sector"`
	Industry           string `json:"Industry"`
	Description        string `json:"Description"`
	MarketCap          string `json:"MarketCapitalization"`
	RevenueTTM         string `json:"RevenueTTM"`
	PERatio            string `json:"PERatio"`
	ForwardPE          string `json:"ForwardPE"`
	DividendYield      string `json:"DividendYield"`
	DividendPerShare   string `json:"DividendPerShare"`
	EPS                string `json:"EPS"`
	ProfitMargin       string `json:"ProfitMargin"`
	OperatingMarginTTM string `json:"OperatingMarginTTM"`
	Week52High         string `json:"52WeekHigh"`
	Week52Low          string `json:"52WeekLow"`
	MovingAvg50Day     string `json:"50DayMovingAverage"`
	MovingAvg200Day    string `json:"200DayMovingAverage"`
	Beta               string `json:"Beta"`
}

// CompanyFundamentals returns an overview without price information; the
// overview cache fills prices in from the price component.
func (r *alphaVantageRepository) CompanyFundamentals(ctx context.Context, ticker string) (*dto.CompanyOverview, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for alphavantage request limit: %w", err)
	}

	queryParams := map[string]string{
		"function": "OVERVIEW",
		"symbol":   ticker,
		"apikey":   r.cfg.Alpha.APIKey,
	}

	var raw alphaOverviewResponse
	resp, err := r.httpClient.Get(ctx, "/query", queryParams, nil, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overview from alphavantage: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage api returned status: %d", resp.StatusCode)
	}
	if raw.Symbol == "" {
		return nil, fmt.Errorf("alphavantage returned no overview for %s", ticker)
	}

	return &dto.CompanyOverview{
		Symbol:           raw.Symbol,
		Name:             raw.Name,
		Sector:           raw.Sector,
		Industry:         raw.Industry,
		Description:      raw.Description,
		MarketCap:        parseFloatField(raw.MarketCap),
		RevenueTTM:       parseFloatField(raw.RevenueTTM),
		PERatio:          parseFloatField(raw.PERatio),
		ForwardPE:        parseFloatField(raw.ForwardPE),
		DividendYield:    parseFloatField(raw.DividendYield),
		DividendPerShare: parseFloatField(raw.DividendPerShare),
		EPS:              parseFloatField(raw.EPS),
		ProfitMargin:     parseFloatField(raw.ProfitMargin),
		OperatingMargin:  parseFloatField(raw.OperatingMarginTTM),
		Price: dto.PriceInformation{
			Week52High:      parseFloatField(raw.Week52High),
			Week52Low:       parseFloatField(raw.Week52Low),
			MovingAvg50Day:  parseFloatField(raw.MovingAvg50Day),
			MovingAvg200Day: parseFloatField(raw.MovingAvg200Day),
			Beta:            parseFloatField(raw.Beta),
		},
	}, nil
}

// parseFloatField tolerates the "None"/"-" placeholders the API uses.
func parseFloatField(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
