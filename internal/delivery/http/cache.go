package http

import (
	"net/http"
	"strings"

	"paper-trading/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupCache(base *echo.Group) {
	v1 := base.Group("/v1/cache")
	{
		v1.GET("/stats", h.GetCacheStats)
		v1.DELETE("/:ticker", h.ClearCacheTicker)
	}
}

func (h *HttpAPIHandler) GetCacheStats(c echo.Context) error {
	stats, err := h.service.CacheAdminService.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to read cache stats"))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "Cache stats", stats))
}

func (h *HttpAPIHandler) ClearCacheTicker(c echo.Context) error {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	if ticker == "" {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("ticker is required"))
	}

	if err := h.service.CacheAdminService.ClearTicker(c.Request().Context(), ticker); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to clear cache"))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "Cache cleared", nil))
}
