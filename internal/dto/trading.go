package dto

import (
	"strings"
	"time"

	"paper-trading/internal/model"
)

// Signal is one discussion item pulled from the candidate feed.
type Signal struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// FilingSections are the annual-report sections the analysis pipeline needs.
type FilingSections struct {
	Business    string `json:"business"`
	RiskFactors string `json:"risk_factors"`
	MDNA        string `json:"mdna"`
}

// Complete reports whether every required section carries text.
func (f FilingSections) Complete() bool {
	return strings.TrimSpace(f.Business) != "" &&
		strings.TrimSpace(f.RiskFactors) != "" &&
		strings.TrimSpace(f.MDNA) != ""
}

// CompanyAnalysis is the derived three-part text analysis for a ticker.
type CompanyAnalysis struct {
	BusinessOverview string `json:"business_overview"`
	RiskOverview     string `json:"risk_overview"`
	FullAnalysis     string `json:"full_analysis"`
}

type PriceInformation struct {
	Week52High      float64 `json:"week_52_high"`
	Week52Low       float64 `json:"week_52_low"`
	MovingAvg50Day  float64 `json:"moving_avg_50_day"`
	MovingAvg200Day float64 `json:"moving_avg_200_day"`
	Beta            float64 `json:"beta"`
	CurrentPrice    float64 `json:"current_price"`
	PreviousClose   float64 `json:"previous_close"`
	ChangePct       float64 `json:"change_pct"`
}

// CompanyOverview bundles fundamentals with live price information.
type CompanyOverview struct {
	Symbol           string           `json:"symbol"`
	Name             string           `json:"name"`
	Sector           string           `json:"sector"`
	Industry         string           `json:"industry"`
	Description      string           `json:"description"`
	MarketCap        float64          `json:"market_cap"`
	RevenueTTM       float64          `json:"revenue_ttm"`
	PERatio          float64          `json:"pe_ratio"`
	ForwardPE        float64          `json:"forward_pe"`
	DividendYield    float64          `json:"dividend_yield"`
	DividendPerShare float64          `json:"dividend_per_share"`
	EPS              float64          `json:"eps"`
	ProfitMargin     float64          `json:"profit_margin"`
	OperatingMargin  float64          `json:"operating_margin"`
	Price            PriceInformation `json:"price"`
}

// Sentiment is the oracle's judgment of a signal in context.
type Sentiment struct {
	Label     SentimentLabel `json:"label" validate:"required,oneof=Bullish Bearish Neutral"`
	Reasoning string         `json:"reasoning"`
}

// TradeDecision is the oracle's structured trade proposal. Field ranges are
// enforced at the parse boundary before anything touches storage.
type TradeDecision struct {
	Direction      model.Direction `json:"direction" validate:"required,oneof=Long Short"`
	AmountToInvest float64         `json:"amountToInvest" validate:"required,gt=0"`
	Leverage       int             `json:"leverage" validate:"required,min=1,max=10"`
	StartDate      string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string          `json:"endDate" validate:"required,datetime=2006-01-02"`
	StopLossPct    float64         `json:"stopLossPct" validate:"required,gte=1,lte=50"`
	TakeProfitPct  float64         `json:"takeProfitPct" validate:"required,gte=1,lte=100"`
	Summary        string          `json:"summary"`
	Confidence     float64         `json:"confidence" validate:"gte=0,lte=1"`
}

// ClosedPosition summarizes one position closed by a sweep.
type ClosedPosition struct {
	PositionID  uint              `json:"position_id"`
	Ticker      string            `json:"ticker"`
	Direction   model.Direction   `json:"direction"`
	Reason      model.CloseReason `json:"reason"`
	EntryPrice  float64           `json:"entry_price"`
	ClosePrice  float64           `json:"close_price"`
	Leverage    int               `json:"leverage"`
	Invested    float64           `json:"invested"`
	PnLPct      float64           `json:"pnl_pct"`
	PnLAmount   float64           `json:"pnl_amount"`
	FinalValue  float64           `json:"final_value"`
	CloseDate   time.Time         `json:"close_date"`
}

// PositionSummary is one open position as shown in the portfolio snapshot.
type PositionSummary struct {
	Ticker          string          `json:"ticker"`
	Direction       model.Direction `json:"direction"`
	Leverage        int             `json:"leverage"`
	Invested        float64         `json:"invested"`
	EntryPrice      float64         `json:"entry_price"`
	CurrentPrice    float64         `json:"current_price"`
	CurrentValue    float64         `json:"current_value"`
	PnLPct          float64         `json:"pnl_pct"`
	PnLAmount       float64         `json:"pnl_amount"`
	StopLossPct     float64         `json:"stop_loss_pct"`
	TakeProfitPct   float64         `json:"take_profit_pct"`
	NearStopLoss    bool            `json:"near_stop_loss"`
	NearTakeProfit  bool            `json:"near_take_profit"`
	PriceAvailable  bool            `json:"price_available"`
	TargetCloseDate time.Time       `json:"target_close_date"`
}

type PortfolioSnapshot struct {
	AvailableCash float64           `json:"available_cash"`
	InvestedValue float64           `json:"invested_value"`
	TotalValue    float64           `json:"total_value"`
	Positions     []PositionSummary `json:"positions"`
}

// TradeOutcome is the user-facing result of one orchestrator run. A rate-limit
// rejection is a normal outcome, not an error.
type TradeOutcome struct {
	Status      TradeStatus      `json:"status"`
	Explanation string           `json:"explanation,omitempty"`
	Wait        time.Duration    `json:"-"`
	WaitMinutes int              `json:"wait_minutes,omitempty"`
	Closed      []ClosedPosition `json:"closed,omitempty"`
}
