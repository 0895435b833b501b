package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"market-tips/internal/dto"
	"market-tips/internal/model"
	"market-tips/pkg/logger"
	"market-tips/pkg/trace"
	"market-tips/pkg/utils"

	"github.com/labstack/echo/v4"
)

const (
	defaultTipLimit = 10
	maxTipLimit     = 100
)

func (h *HttpAPIHandler) SetupTips(api *echo.Group) {
	api.GET("/tips", h.GetTips)
	api.GET("/tip-history", h.GetTipHistory)
	api.GET("/market-data", h.GetMarketData)
	api.POST("/tips/generate", h.GenerateTips, h.jwtMiddleware())
}

// GetTips returns generated tips newest first with optional filters.
func (h *HttpAPIHandler) GetTips(c echo.Context) error {
	param := model.GetTipsParam{
		Limit: defaultTipLimit,
	}

	if assetType := c.QueryParam("asset_type"); assetType != "" {
		if !dto.AssetType(assetType).Valid() {
			return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("asset_type must be crypto or stock", "BAD_REQUEST"))
		}
		param.AssetType = assetType
	}
	if daysStr := c.QueryParam("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("days must be a positive integer", "BAD_REQUEST"))
		}
		param.Since = time.Now().UTC().AddDate(0, 0, -days)
	}
	if skipStr := c.QueryParam("skip"); skipStr != "" {
		skip, err := strconv.Atoi(skipStr)
		if err != nil || skip < 0 {
			return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("skip must be a non-negative integer", "BAD_REQUEST"))
		}
		param.Skip = skip
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > maxTipLimit {
			return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("limit must be between 1 and 100", "BAD_REQUEST"))
		}
		param.Limit = limit
	}

	tips, total, err := h.service.AnalysisService.GetTips(c.Request().Context(), param)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.PaginatedResponse{
		Message: "OK",
		Data:    tips,
		Total:   total,
		Skip:    param.Skip,
		Limit:   param.Limit,
	})
}

// GetTipHistory returns tips from the past N days (default 7, max 90).
func (h *HttpAPIHandler) GetTipHistory(c echo.Context) error {
	days := 7
	if daysStr := c.QueryParam("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 || parsed > 90 {
			return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("days must be between 1 and 90", "BAD_REQUEST"))
		}
		days = parsed
	}

	param := model.GetTipsParam{
		Since: time.Now().UTC().AddDate(0, 0, -days),
		Limit: maxTipLimit,
	}
	tips, total, err := h.service.AnalysisService.GetTips(c.Request().Context(), param)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.PaginatedResponse{
		Message: "OK",
		Data:    tips,
		Total:   total,
		Limit:   param.Limit,
	})
}

// GetMarketData returns the latest snapshot per symbol, optionally
// filtered by a comma-separated symbols parameter.
func (h *HttpAPIHandler) GetMarketData(c echo.Context) error {
	snapshots, err := h.service.AggregatorService.GetLatestSnapshots(c.Request().Context())
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if symbolsParam := c.QueryParam("symbols"); symbolsParam != "" {
		wanted := strings.Split(symbolsParam, ",")
		filtered := snapshots[:0]
		for _, snapshot := range snapshots {
			if utils.ContainsString(wanted, snapshot.Symbol) {
				filtered = append(filtered, snapshot)
			}
		}
		snapshots = filtered
	}

	return c.JSON(http.StatusOK, dto.NewBaseResponse("OK", snapshots))
}

// GenerateTips triggers a manual delivery run in the background and
// returns the trace ID to follow it with.
func (h *HttpAPIHandler) GenerateTips(c echo.Context) error {
	traceID := trace.FromContext(c.Request().Context())
	if traceID == "" {
		traceID = trace.NewTraceID()
	}

	runCtx := trace.WithContext(context.Background(), traceID)
	utils.GoSafe(func() {
		if err := h.service.SchedulerService.ExecuteDelivery(runCtx, dto.DeliveryManual); err != nil {
			h.logger.ErrorContext(runCtx, "Manual delivery failed", logger.ErrorField(err))
		}
	})

	return c.JSON(http.StatusAccepted, dto.NewBaseResponse("Delivery started", map[string]string{
		"trace_id": traceID,
	}))
}
