package http

import (
	"net/http"

	"paper-trading/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPortfolio(base *echo.Group) {
	v1 := base.Group("/v1/portfolio")
	{
		v1.GET("", h.GetPortfolio)
	}
}

func (h *HttpAPIHandler) GetPortfolio(c echo.Context) error {
	snapshot, err := h.service.PortfolioService.Snapshot(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to build portfolio snapshot"))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "Portfolio snapshot", snapshot))
}
