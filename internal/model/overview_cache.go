package model

import "time"

// OverviewCacheEntry caches company fundamentals for a ticker. Prices are
// deliberately absent: they are re-derived from the price cache on every read.
type OverviewCacheEntry struct {
	Ticker           string    `gorm:"primaryKey" json:"ticker"`
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	Sector           string    `json:"sector"`
	Industry         string    `json:"industry"`
	Description      string    `gorm:"type:text" json:"description"`
	MarketCap        float64   `json:"market_cap"`
	RevenueTTM       float64   `json:"revenue_ttm"`
	PERatio          float64   `json:"pe_ratio"`
	ForwardPE        float64   `json:"forward_pe"`
	DividendYield    float64   `json:"dividend_yield"`
	DividendPerShare float64   `json:"dividend_per_share"`
	EPS              float64   `json:"eps"`
	ProfitMargin     float64   `json:"profit_margin"`
	OperatingMargin  float64   `json:"operating_margin"`
	Week52High       float64   `json:"week_52_high"`
	Week52Low        float64   `json:"week_52_low"`
	MovingAvg50Day   float64   `json:"moving_avg_50_day"`
	MovingAvg200Day  float64   `json:"moving_avg_200_day"`
	Beta             float64   `json:"beta"`
	LastUpdated      time.Time `gorm:"not null" json:"last_updated"`
}

func (OverviewCacheEntry) TableName() string {
	return "overview_cache"
}
