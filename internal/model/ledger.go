package model

import "time"

// LedgerID is the key of the single cash row.
const LedgerID uint = 1

// Ledger holds the account's available cash. There is exactly one row;
// invested value is always derived from open positions, never stored.
type Ledger struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AvailableCash float64   `gorm:"not null" json:"available_cash"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Ledger) TableName() string {
	return "ledger"
}
