package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/mail"
	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/mykafka"
	"github.com/herbvita/shop_backend/internal/service/settlement"
	"github.com/herbvita/shop_backend/internal/util"
)

type AdminOrderHandler struct {
	DB       *gorm.DB
	Svc      *settlement.Service
	Mailer   mail.Sender
	Producer mykafka.Publisher
}

func (h *AdminOrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var status models.OrderStatus
	if s := c.QueryParam("status"); s != "" {
		parsed, ok := models.ParseOrderStatus(s)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status filter")
		}
		status = parsed
	}

	orders, total, err := h.Svc.ListOrders(ctx, nil, status, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch orders")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"meta":   pageMeta(page, limit, total),
	})
}

func (h *AdminOrderHandler) GetOrder(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, settlement.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminOrderHandler) ListUserOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Svc.ListOrders(ctx, &userID, "", offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch user orders")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"meta":   pageMeta(page, limit, total),
	})
}

// UpdateStatus advances an order and emails the owner about the change.
func (h *AdminOrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_order_status")

	orderID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	order, err := h.Svc.ChangeStatus(ctx, orderID, models.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, settlement.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, settlement.ErrTerminalStatus):
			return echo.NewHTTPError(http.StatusConflict, "order status can no longer change")
		default:
			l.Error("status_update_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update order status")
		}
	}

	var owner models.User
	if err := h.DB.WithContext(ctx).First(&owner, order.UserID).Error; err == nil {
		subject, body := mail.OrderStatusBody(owner.Name, order.ID, string(order.Status))
		if err := h.Mailer.SendEmail(owner.Email, subject, body); err != nil {
			l.Error("status_email_failed", "error", err)
		}
	}

	notification := models.Notification{
		UserID:  order.UserID,
		Message: fmt.Sprintf("Your order #%d is now %s", order.ID, order.Status),
	}
	if err := h.DB.WithContext(ctx).Create(&notification).Error; err != nil {
		l.Error("notification_create_failed", "error", err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(order.UserID), map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"status":  order.Status,
	})

	l.Info("status_updated", "order_id", order.ID, "new_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *AdminOrderHandler) SalesTrends(c echo.Context) error {
	trends, err := h.Svc.SalesTrends(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch sales trends")
	}
	return c.JSON(http.StatusOK, trends)
}

func (h *AdminOrderHandler) TopProducts(c echo.Context) error {
	limit := parseIntDefault(c.QueryParam("limit"), 10)
	tops, err := h.Svc.TopProducts(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch top products")
	}
	return c.JSON(http.StatusOK, tops)
}

func (h *AdminOrderHandler) DeleteOrder(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteOrder(c.Request().Context(), orderID); err != nil {
		if errors.Is(err, settlement.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete order")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "order deleted successfully"})
}
