package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/herbvita/shop_backend/internal/logging"
	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/mykafka"
	"github.com/herbvita/shop_backend/internal/service/settlement"
	"github.com/herbvita/shop_backend/internal/util"
)

type OrderHandler struct {
	Svc      *settlement.Service
	Producer mykafka.Publisher
}

type createOrderRequest struct {
	Items         []settlement.ItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string                   `json:"payment_method" validate:"required"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Svc.CreateOrder(ctx, userID, req.Items, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrValidation):
			l.Warn("order_create_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, settlement.ErrProductNotFound):
			l.Warn("order_create_failed", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			l.Error("order_create_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to create order")
		}
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(userID), map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  userID,
		"total":   order.TotalAmount,
	})

	l.Info("order_created", "order_id", order.ID, "total", order.TotalAmount)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Svc.ListOrders(ctx, &userID, "", offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch orders")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"meta":   pageMeta(page, limit, total),
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}
	orderID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetUserOrder(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, settlement.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_cancel")

	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}
	orderID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.CancelOwn(ctx, orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, settlement.ErrTerminalStatus):
			return echo.NewHTTPError(http.StatusConflict, "order can no longer be cancelled")
		default:
			l.Error("order_cancel_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to cancel order")
		}
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(userID), map[string]any{
		"type":    "order_cancelled",
		"orderID": order.ID,
		"userID":  userID,
	})

	return c.JSON(http.StatusOK, order)
}
