package dto

type SentimentLabel string

const (
	SentimentBullish SentimentLabel = "Bullish"
	SentimentBearish SentimentLabel = "Bearish"
	SentimentNeutral SentimentLabel = "Neutral"
)

type TradeStatus string

const (
	TradeStatusExecuted    TradeStatus = "executed"
	TradeStatusNoTrade     TradeStatus = "no_trade"
	TradeStatusRateLimited TradeStatus = "rate_limited"
)
