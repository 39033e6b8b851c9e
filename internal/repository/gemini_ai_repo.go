package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// AIRepository is the decision oracle. Text and structs in, text and structs
// out; nothing here touches storage.
type AIRepository interface {
	ExtractTickers(ctx context.Context, signal dto.Signal) ([]string, error)
	SummarizeBusiness(ctx context.Context, business string) (string, error)
	SummarizeRisks(ctx context.Context, riskFactors, businessOverview string) (string, error)
	ComposeAnalysis(ctx context.Context, mdna, businessOverview, riskOverview string) (string, error)
	JudgeSentiment(ctx context.Context, signal dto.Signal, fullAnalysis string, overview *dto.CompanyOverview) (*dto.Sentiment, error)
	DecideTrade(ctx context.Context, sentiment *dto.Sentiment, availableCash float64) (*dto.TradeDecision, error)
	ExplainTrade(ctx context.Context, decision *dto.TradeDecision, ticker string) (string, error)
}

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
	validator      *goValidator.Validate
}

// NewGeminiAIRepository creates an oracle backed by the Google Gemini API.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		genAiClient:    genAiClient,
		validator:      goValidator.New(),
	}, nil
}

func (r *geminiAIRepository) generate(ctx context.Context, prompt string) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	r.logger.DebugContext(ctx, "Sending prompt to gemini", logger.IntField("prompt_chars", len(prompt)))

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.BaseModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to send request to gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response from gemini: no content found")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (r *geminiAIRepository) generateJSON(ctx context.Context, prompt string, dest interface{}) error {
	raw, err := r.generate(ctx, prompt)
	if err != nil {
		return err
	}

	jsonString := strings.Trim(raw, "`json\n`")
	if err := json.Unmarshal([]byte(jsonString), dest); err != nil {
		return fmt.Errorf("failed to parse gemini response: %w", err)
	}
	return nil
}

func (r *geminiAIRepository) ExtractTickers(ctx context.Context, signal dto.Signal) ([]string, error) {
	prompt := fmt.Sprintf(`You are given a stock discussion post. List every US stock ticker symbol it discusses.
Respond with a JSON array of uppercase ticker strings and nothing else. Respond with [] if none.

Title: %s

Body: %s`, signal.Title, signal.Body)

	var tickers []string
	if err := r.generateJSON(ctx, prompt, &tickers); err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned, nil
}

func (r *geminiAIRepository) SummarizeBusiness(ctx context.Context, business string) (string, error) {
	prompt := fmt.Sprintf(`Summarize the following Business section of an annual report in a few concise paragraphs.
Focus on what the company sells, to whom, and how it makes money.

%s`, business)
	return r.generate(ctx, prompt)
}

func (r *geminiAIRepository) SummarizeRisks(ctx context.Context, riskFactors, businessOverview string) (string, error) {
	prompt := fmt.Sprintf(`Given this business overview:

%s

Summarize the key risks from the following Risk Factors section, ranked by how much they threaten the business above.

%s`, businessOverview, riskFactors)
	return r.generate(ctx, prompt)
}

func (r *geminiAIRepository) ComposeAnalysis(ctx context.Context, mdna, businessOverview, riskOverview string) (string, error) {
	prompt := fmt.Sprintf(`Business overview:

%s

Risk overview:

%s

Using the Management Discussion and Analysis section below, write a full strengths-and-weaknesses analysis of the company.

%s`, businessOverview, riskOverview, mdna)
	return r.generate(ctx, prompt)
}

func (r *geminiAIRepository) JudgeSentiment(ctx context.Context, signal dto.Signal, fullAnalysis string, overview *dto.CompanyOverview) (*dto.Sentiment, error) {
	overviewJSON, err := json.Marshal(overview)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal overview: %w", err)
	}

	prompt := fmt.Sprintf(`Judge the trading sentiment for the company below.
Respond with JSON only: {"label": "Bullish"|"Bearish"|"Neutral", "reasoning": "..."}.

Discussion post titled %q:
%s

Company analysis:
%s

Company overview:
%s`, signal.Title, signal.Body, fullAnalysis, string(overviewJSON))

	var sentiment dto.Sentiment
	if err := r.generateJSON(ctx, prompt, &sentiment); err != nil {
		return nil, err
	}
	if err := r.validator.Struct(&sentiment); err != nil {
		return nil, fmt.Errorf("invalid sentiment from gemini: %w", err)
	}
	return &sentiment, nil
}

func (r *geminiAIRepository) DecideTrade(ctx context.Context, sentiment *dto.Sentiment, availableCash float64) (*dto.TradeDecision, error) {
	prompt := fmt.Sprintf(`You manage a paper-trading account with $%.2f available cash.
Sentiment: %s. Reasoning: %s

Propose a trade. Respond with JSON only:
{"direction": "Long"|"Short", "amountToInvest": number, "leverage": 1-10,
 "startDate": "YYYY-MM-DD", "endDate": "YYYY-MM-DD",
 "stopLossPct": 1-50, "takeProfitPct": 1-100,
 "summary": "...", "confidence": 0-1}`,
		availableCash, sentiment.Label, sentiment.Reasoning)

	var decision dto.TradeDecision
	if err := r.generateJSON(ctx, prompt, &decision); err != nil {
		return nil, err
	}
	if err := r.validator.Struct(&decision); err != nil {
		return nil, fmt.Errorf("invalid trade decision from gemini: %w", err)
	}
	return &decision, nil
}

func (r *geminiAIRepository) ExplainTrade(ctx context.Context, decision *dto.TradeDecision, ticker string) (string, error) {
	decisionJSON, err := json.Marshal(decision)
	if err != nil {
		return "", fmt.Errorf("failed to marshal decision: %w", err)
	}

	prompt := fmt.Sprintf(`Explain the following executed paper trade on %s to a chat audience in two or three sentences.

%s`, ticker, string(decisionJSON))
	return r.generate(ctx, prompt)
}
