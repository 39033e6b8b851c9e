package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/pkg/cache"
	"paper-trading/pkg/httpclient"
	"paper-trading/pkg/logger"
)

// DocumentRepository fetches the annual-report sections for a ticker. Sections
// may come back empty; the caller decides whether that disqualifies the ticker.
type DocumentRepository interface {
	FetchSections(ctx context.Context, ticker string) (*dto.FilingSections, error)
}

const keyTickerDirectory = "edgar:ticker_directory"

type secEdgarRepository struct {
	directoryClient   httpclient.HTTPClient
	submissionsClient httpclient.HTTPClient
	archivesClient    httpclient.HTTPClient
	cfg               *config.Config
	logger            *logger.Logger
	inmemoryCache     cache.Cache
}

// NewSecEdgarRepository creates a filing source backed by SEC EDGAR.
func NewSecEdgarRepository(cfg *config.Config, log *logger.Logger, inmemoryCache cache.Cache) DocumentRepository {
	return &secEdgarRepository{
		directoryClient:   httpclient.New(cfg.Edgar.DirectoryURL, cfg.Edgar.Timeout),
		submissionsClient: httpclient.New(cfg.Edgar.SubmissionsBaseURL, cfg.Edgar.Timeout),
		archivesClient:    httpclient.New(cfg.Edgar.ArchivesBaseURL, cfg.Edgar.Timeout),
		cfg:               cfg,
		logger:            log,
		inmemoryCache:     inmemoryCache,
	}
}

type directoryEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
}

type submissionsResponse struct {
	Filings struct {
		Recent struct {
			Form            []string `json:"form"`
			AccessionNumber []string `json:"accessionNumber"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

func (r *secEdgarRepository) headers() map[string]string {
	return map[string]string{
		"User-Agent": r.cfg.Edgar.UserAgent,
		"Accept":     "application/json",
	}
}

func (r *secEdgarRepository) FetchSections(ctx context.Context, ticker string) (*dto.FilingSections, error) {
	cik, err := r.lookupCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	docURL, err := r.latestAnnualReportURL(ctx, cik)
	if err != nil {
		return nil, err
	}

	resp, err := r.archivesClient.Get(ctx, docURL, nil, r.headers(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filing document: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("filing document returned status: %d", resp.StatusCode)
	}

	return extractSections(string(resp.Body)), nil
}

// lookupCIK resolves a ticker through the company directory, which is cached
// because the file is large and changes rarely.
func (r *secEdgarRepository) lookupCIK(ctx context.Context, ticker string) (string, error) {
	directory, found := cache.GetTyped[map[string]int64](r.inmemoryCache, keyTickerDirectory)
	if !found {
		resp, err := r.directoryClient.Get(ctx, "", nil, r.headers(), nil)
		if err != nil {
			return "", fmt.Errorf("failed to fetch ticker directory: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("ticker directory returned status: %d", resp.StatusCode)
		}

		var entries map[string]directoryEntry
		if err := json.Unmarshal(resp.Body, &entries); err != nil {
			return "", fmt.Errorf("failed to parse ticker directory: %w", err)
		}

		directory = make(map[string]int64, len(entries))
		for _, entry := range entries {
			directory[strings.ToUpper(entry.Ticker)] = entry.CIK
		}
		r.inmemoryCache.Set(keyTickerDirectory, directory, r.cfg.Cache.TickerDirectoryTTL)
	}

	cik, ok := directory[strings.ToUpper(ticker)]
	if !ok {
		return "", fmt.Errorf("ticker %s not found in directory", ticker)
	}
	return fmt.Sprintf("%010d", cik), nil
}

func (r *secEdgarRepository) latestAnnualReportURL(ctx context.Context, cik string) (string, error) {
	var submissions submissionsResponse
	resp, err := r.submissionsClient.Get(ctx, fmt.Sprintf("/submissions/CIK%s.json", cik), nil, r.headers(), &submissions)
	if err != nil {
		return "", fmt.Errorf("failed to fetch submissions for CIK %s: %w", cik, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("submissions for CIK %s returned status: %d", cik, resp.StatusCode)
	}

	recent := submissions.Filings.Recent
	for i, form := range recent.Form {
		if form != "10-K" || i >= len(recent.AccessionNumber) || i >= len(recent.PrimaryDocument) {
			continue
		}
		accession := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
		return fmt.Sprintf("/Archives/edgar/data/%s/%s/%s",
			strings.TrimLeft(cik, "0"), accession, recent.PrimaryDocument[i]), nil
	}
	return "", fmt.Errorf("no 10-K found for CIK %s", cik)
}

var (
	tagPattern     = regexp.MustCompile(`(?s)<[^>]*>`)
	spacePattern   = regexp.MustCompile(`[ \t]+`)
	sectionPattern = regexp.MustCompile(`(?i)Item\s+(1A|1|7A|7|\d+[A-Z]?)\.?\s`)
)

// extractSections pulls the Business, Risk Factors and MD&A sections out of a
// filing document by splitting the tag-stripped text on item headings.
func extractSections(html string) *dto.FilingSections {
	text := tagPattern.ReplaceAllString(html, " ")
	text = spacePattern.ReplaceAllString(text, " ")

	sections := dto.FilingSections{}
	matches := sectionPattern.FindAllStringSubmatchIndex(text, -1)

	for i, match := range matches {
		item := strings.ToUpper(text[match[2]:match[3]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[match[1]:end])

		// Later occurrences of an item heading (the real section, after the
		// table of contents) win over earlier, shorter ones.
		switch item {
		case "1":
			if len(body) > len(sections.Business) {
				sections.Business = body
			}
		case "1A":
			if len(body) > len(sections.RiskFactors) {
				sections.RiskFactors = body
			}
		case "7":
			if len(body) > len(sections.MDNA) {
				sections.MDNA = body
			}
		}
	}

	return &sections
}
