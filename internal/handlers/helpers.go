package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/mykafka"
)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(400, "invalid id")
	}
	return uint(id), nil
}

// publish fires an event and logs failures without failing the request.
func publish(c echo.Context, p mykafka.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", topic, "error", err)
	}
}

func pageMeta(page, limit int, total int64) map[string]any {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return map[string]any{
		"currentPage": page,
		"totalPages":  totalPages,
		"total":       total,
	}
}
