package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/service/search"
	"github.com/herbvita/shop_backend/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func NewSearchHandler(es *elasticsearch.Client, index string) *SearchHandler {
	return &SearchHandler{ES: es, Index: index}
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	ctx := c.Request().Context()
	total, products, err := search.Search(ctx, h.ES, h.Index, q, c.QueryParam("category"), from, limit)
	if err != nil {
		logging.FromContext(ctx).Error("product search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"meta":     pageMeta(page, limit, total),
	})
}
