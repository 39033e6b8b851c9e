package telegram

import (
	"fmt"
	"strings"

	"paper-trading/internal/dto"
	"paper-trading/pkg/utils"
)

func formatOutcome(outcome *dto.TradeOutcome) string {
	var sb strings.Builder

	switch outcome.Status {
	case dto.TradeStatusExecuted:
		sb.WriteString("✅ *Trade executed*\n\n")
	case dto.TradeStatusRateLimited:
		sb.WriteString("⏳ *Slow down*\n\n")
	default:
		sb.WriteString("ℹ️ *No trade*\n\n")
	}
	sb.WriteString(outcome.Explanation)

	if len(outcome.Closed) > 0 {
		sb.WriteString("\n\n*Closed this run:*\n")
		for _, closed := range outcome.Closed {
			sb.WriteString(fmt.Sprintf("• %s %s closed as %s at %s (%s)\n",
				closed.Ticker,
				closed.Direction,
				closed.Reason,
				utils.FormatMoney(closed.ClosePrice),
				utils.FormatPercentage(closed.PnLPct),
			))
		}
	}

	return sb.String()
}

func formatPortfolio(snapshot *dto.PortfolioSnapshot) string {
	var sb strings.Builder

	sb.WriteString("📊 *Portfolio*\n\n")
	sb.WriteString(fmt.Sprintf("Cash: %s\n", utils.FormatMoney(snapshot.AvailableCash)))
	sb.WriteString(fmt.Sprintf("Invested: %s\n", utils.FormatMoney(snapshot.InvestedValue)))
	sb.WriteString(fmt.Sprintf("Total: %s\n", utils.FormatMoney(snapshot.TotalValue)))

	if len(snapshot.Positions) == 0 {
		sb.WriteString("\nNo open positions.")
		return sb.String()
	}

	sb.WriteString("\n*Open positions:*\n")
	for _, position := range snapshot.Positions {
		sb.WriteString(fmt.Sprintf("• %s %s %dx, in %s",
			position.Ticker,
			position.Direction,
			position.Leverage,
			utils.FormatMoney(position.Invested),
		))
		if position.PriceAvailable {
			sb.WriteString(fmt.Sprintf(", now %s (%s)",
				utils.FormatMoney(position.CurrentValue),
				utils.FormatPercentage(position.PnLPct),
			))
			if position.NearStopLoss {
				sb.WriteString(" ⚠️ near stop loss")
			}
			if position.NearTakeProfit {
				sb.WriteString(" 🎯 near take profit")
			}
		} else {
			sb.WriteString(", price unavailable")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
