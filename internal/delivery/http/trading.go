package http

import (
	"net/http"

	"paper-trading/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupTrading(base *echo.Group) {
	v1 := base.Group("/v1/trade")
	{
		v1.POST("/run", h.RunTrade)
	}
}

type runTradeRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// RunTrade triggers one user-invoked trading run. A cooldown rejection comes
// back as 429 with the remaining wait.
func (h *HttpAPIHandler) RunTrade(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(runTradeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	outcome, err := h.service.TradingService.RunForUser(ctx, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to run trade"))
	}

	status := http.StatusOK
	if outcome.Status == dto.TradeStatusRateLimited {
		status = http.StatusTooManyRequests
	}
	return c.JSON(status, dto.NewBaseResponse(status, outcome.Explanation, outcome))
}
