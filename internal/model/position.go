package model

import (
	"time"

	"gorm.io/datatypes"
)

type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "stop_loss"
	CloseReasonTakeProfit CloseReason = "take_profit"
	CloseReasonExpired    CloseReason = "expired"
	CloseReasonManual     CloseReason = "manual"
)

// Position is one simulated trade. Rows are append-only: a position is closed
// exactly once and never deleted.
type Position struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Ticker          string         `gorm:"not null;index" json:"ticker"`
	Direction       Direction      `gorm:"not null" json:"direction"`
	AmountInvested  float64        `gorm:"not null" json:"amount_invested"`
	EntryPrice      float64        `gorm:"not null" json:"entry_price"`
	Leverage        int            `gorm:"not null" json:"leverage"`
	OpenDate        time.Time      `gorm:"not null" json:"open_date"`
	TargetCloseDate time.Time      `gorm:"not null" json:"target_close_date"`
	StopLossPct     float64        `gorm:"not null" json:"stop_loss_pct"`
	TakeProfitPct   float64        `gorm:"not null" json:"take_profit_pct"`
	Confidence      float64        `gorm:"not null" json:"confidence"`
	Rationale       string         `gorm:"type:text" json:"rationale"`
	DecisionRaw     datatypes.JSON `json:"decision_raw"`
	Closed          bool           `gorm:"not null;default:false" json:"closed"`
	CloseReason     *CloseReason   `json:"close_reason"`
	ClosePrice      *float64       `json:"close_price"`
	CloseDate       *time.Time     `json:"close_date"`
	FinalValue      *float64       `json:"final_value"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}
