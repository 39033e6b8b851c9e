package model

import "time"

// AnalysisCacheEntry caches the three derived analysis texts for a ticker.
// All three are written together under a single stamp.
type AnalysisCacheEntry struct {
	Ticker           string    `gorm:"primaryKey" json:"ticker"`
	BusinessOverview string    `gorm:"type:text" json:"business_overview"`
	RiskOverview     string    `gorm:"type:text" json:"risk_overview"`
	FullAnalysis     string    `gorm:"type:text" json:"full_analysis"`
	LastUpdated      time.Time `gorm:"not null" json:"last_updated"`
}

func (AnalysisCacheEntry) TableName() string {
	return "analysis_cache"
}
