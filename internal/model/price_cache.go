package model

import "time"

// PriceCacheEntry caches the two price fields for a ticker. The fields expire
// independently, so each carries its own update stamp.
type PriceCacheEntry struct {
	Ticker            string     `gorm:"primaryKey" json:"ticker"`
	CurrentPrice      *float64   `json:"current_price"`
	CurrentUpdatedAt  *time.Time `json:"current_updated_at"`
	PreviousClose     *float64   `json:"previous_close"`
	PreviousUpdatedAt *time.Time `json:"previous_updated_at"`
}

func (PriceCacheEntry) TableName() string {
	return "price_cache"
}
