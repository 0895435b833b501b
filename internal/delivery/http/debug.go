package http

import (
	"fmt"
	"net/http"
	"strconv"

	"market-tips/internal/dto"
	"market-tips/pkg/eventstore"

	"github.com/labstack/echo/v4"
)

const defaultEventLimit = 50

func (h *HttpAPIHandler) SetupDebug(debug *echo.Group) {
	debug.GET("/status", h.DebugStatus)
	debug.GET("/execution-history", h.DebugExecutionHistory)
	debug.GET("/fetch-history", h.DebugFetchHistory)
	debug.GET("/delivery-history", h.DebugDeliveryHistory)
	debug.GET("/errors", h.DebugErrors)
	debug.GET("/metrics", h.DebugMetrics)
	debug.GET("/trace/:id", h.DebugTrace)
}

func (h *HttpAPIHandler) DebugStatus(c echo.Context) error {
	m := h.service.MetricsService.Calculate()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "running",
		"uptime_seconds": m.UptimeSeconds,
		"events_stored":  h.events.Len(),
		"scheduler": map[string]string{
			"morning_time": h.cfg.Scheduler.MorningTime,
			"evening_time": h.cfg.Scheduler.EveningTime,
			"timezone":     h.cfg.Scheduler.Timezone,
		},
	})
}

func (h *HttpAPIHandler) DebugExecutionHistory(c echo.Context) error {
	return h.eventsByType(c, eventstore.TypeDeliveryComplete)
}

func (h *HttpAPIHandler) DebugFetchHistory(c echo.Context) error {
	return h.eventsByType(c, eventstore.TypeFetchComplete)
}

func (h *HttpAPIHandler) DebugErrors(c echo.Context) error {
	return h.eventsByType(c, eventstore.TypeError)
}

// DebugDeliveryHistory returns the newest per-attempt delivery log rows.
func (h *HttpAPIHandler) DebugDeliveryHistory(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("limit must be a positive integer", "BAD_REQUEST"))
	}
	logs, err := h.service.EmailService.RecentDeliveries(c.Request().Context(), limit)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse("OK", logs))
}

func (h *HttpAPIHandler) DebugMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.MetricsService.Calculate())
}

func (h *HttpAPIHandler) DebugTrace(c echo.Context) error {
	traceID := c.Param("id")
	events := h.events.ByTrace(traceID)
	if len(events) == 0 {
		return c.JSON(http.StatusNotFound, dto.NewErrorResponse("No events for trace", "TRACE_NOT_FOUND"))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse("OK", events))
}

func (h *HttpAPIHandler) eventsByType(c echo.Context, eventType string) error {
	limit, err := limitParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("limit must be a positive integer", "BAD_REQUEST"))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse("OK", h.events.ByType(eventType, limit)))
}

func limitParam(c echo.Context) (int, error) {
	limitStr := c.QueryParam("limit")
	if limitStr == "" {
		return defaultEventLimit, nil
	}
	parsed, err := strconv.Atoi(limitStr)
	if err != nil || parsed < 1 {
		return 0, fmt.Errorf("invalid limit %q", limitStr)
	}
	return parsed, nil
}
