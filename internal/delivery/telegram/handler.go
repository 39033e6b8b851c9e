package telegram

import (
	"context"
	"strconv"
	"time"

	"paper-trading/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) WithContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(t.ctx, 5*time.Minute)
		defer cancel()

		return handler(ctx, c)
	}
}

func (t *TelegramBotHandler) RegisterHandlers() {
	t.bot.Handle("/start", t.WithContext(t.handleStart))
	t.bot.Handle("/trade", t.WithContext(t.handleTrade))
	t.bot.Handle("/portfolio", t.WithContext(t.handlePortfolio))
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	message := `Welcome to the paper-trading bot.

/trade - scan the signal feed and maybe open one trade
/portfolio - show cash and open positions
/start - show this message again`
	return c.Send(message)
}

func (t *TelegramBotHandler) handleTrade(ctx context.Context, c telebot.Context) error {
	userID := strconv.FormatInt(c.Sender().ID, 10)

	outcome, err := t.service.TradingService.RunForUser(ctx, userID)
	if err != nil {
		t.log.ErrorContext(ctx, "Trading run failed", logger.ErrorField(err))
		return c.Send("Something went wrong while running the trade, please try again later.")
	}

	return c.Send(formatOutcome(outcome), telebot.ModeMarkdown)
}

func (t *TelegramBotHandler) handlePortfolio(ctx context.Context, c telebot.Context) error {
	snapshot, err := t.service.PortfolioService.Snapshot(ctx)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to build portfolio snapshot", logger.ErrorField(err))
		return c.Send("Something went wrong while building the portfolio report.")
	}

	return c.Send(formatPortfolio(snapshot), telebot.ModeMarkdown)
}
