package repository

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/pkg/httpclient"
	"paper-trading/pkg/logger"
)

// SignalRepository fetches trade candidate signals, newest first.
type SignalRepository interface {
	FetchCandidates(ctx context.Context) ([]dto.Signal, error)
}

type redditRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
}

// NewRedditRepository creates a signal source backed by a subreddit Atom feed.
func NewRedditRepository(cfg *config.Config, log *logger.Logger) SignalRepository {
	return &redditRepository{
		httpClient: httpclient.New(cfg.Reddit.FeedURL, cfg.Reddit.Timeout),
		cfg:        cfg,
		logger:     log,
	}
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string `xml:"title"`
	Content   string `xml:"content"`
	Published string `xml:"published"`
	Link      struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

func (r *redditRepository) FetchCandidates(ctx context.Context) ([]dto.Signal, error) {
	headers := map[string]string{
		"Accept":     "application/atom+xml",
		"User-Agent": "paper-trading/1.0",
	}

	resp, err := r.httpClient.Get(ctx, "", nil, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signal feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signal feed returned status: %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.Unmarshal(resp.Body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse signal feed: %w", err)
	}

	signals := make([]dto.Signal, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		publishedAt, err := time.Parse(time.RFC3339, entry.Published)
		if err != nil {
			publishedAt = time.Time{}
		}
		signals = append(signals, dto.Signal{
			Title:       entry.Title,
			Body:        entry.Content,
			URL:         entry.Link.Href,
			PublishedAt: publishedAt,
		})
	}

	r.logger.DebugContext(ctx, "Fetched candidate signals", logger.IntField("count", len(signals)))
	return signals, nil
}
