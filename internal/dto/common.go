package dto

import (
	"net/http"
	"time"
)

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) BaseResponse {
	return BaseResponse{Code: code, Message: message, Data: data}
}

func NewBadRequestResponse(message string) BaseResponse {
	return BaseResponse{Code: http.StatusBadRequest, Message: message}
}

func NewInternalErrorResponse(message string) BaseResponse {
	return BaseResponse{Code: http.StatusInternalServerError, Message: message}
}

// CacheStats reports row counts across the persistent caches.
type CacheStats struct {
	PriceEntries      int64 `json:"price_entries"`
	PriceWithPrevious int64 `json:"price_with_previous"`
	OverviewEntries   int64 `json:"overview_entries"`
	OverviewExpired   int64 `json:"overview_expired"`
	AnalysisEntries   int64 `json:"analysis_entries"`
	AnalysisExpired   int64 `json:"analysis_expired"`
}

// GetPositionsParam filters position queries. At least one filter must be set.
type GetPositionsParam struct {
	IDs     []uint
	Tickers []string
	Closed  *bool
	// ActiveOn keeps only rows whose target close date is on or after the
	// given day.
	ActiveOn *time.Time
}
