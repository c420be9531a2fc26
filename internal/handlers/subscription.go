package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/util"
)

type SubscriptionHandler struct {
	DB *gorm.DB
}

type subscriptionRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Frequency string `json:"frequency"  validate:"required,oneof=monthly quarterly yearly"`
}

func nextDeliveryDate(frequency string, from time.Time) time.Time {
	switch frequency {
	case "quarterly":
		return from.AddDate(0, 3, 0)
	case "yearly":
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

func (h *SubscriptionHandler) CreateSubscription(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var req subscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, req.ProductID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	sub := models.Subscription{
		UserID:           userID,
		ProductID:        req.ProductID,
		Frequency:        req.Frequency,
		NextDeliveryDate: nextDeliveryDate(req.Frequency, time.Now()),
		Status:           "active",
	}
	if err := h.DB.WithContext(ctx).Create(&sub).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create subscription")
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) GetUserSubscriptions(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).
		Model(&models.Subscription{}).
		Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch subscriptions")
	}

	var subs []models.Subscription
	if err := q.Offset(offset).Limit(limit).Find(&subs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch subscriptions")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"subscriptions": subs,
		"meta":          pageMeta(page, limit, total),
	})
}

// UpdateSubscription changes the frequency and recomputes the next delivery
// date. Owner-scoped.
func (h *SubscriptionHandler) UpdateSubscription(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req subscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var sub models.Subscription
	if err := h.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sub).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
	}

	sub.Frequency = req.Frequency
	sub.NextDeliveryDate = nextDeliveryDate(req.Frequency, time.Now())
	if err := h.DB.WithContext(ctx).Save(&sub).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update subscription")
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) setStatus(c echo.Context, status, message string) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Model(&models.Subscription{}).
		Where("id = ? AND user_id = ? AND status <> ?", id, userID, "cancelled").
		Update("status", status)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update subscription")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

func (h *SubscriptionHandler) PauseSubscription(c echo.Context) error {
	return h.setStatus(c, "paused", "subscription paused successfully")
}

func (h *SubscriptionHandler) ResumeSubscription(c echo.Context) error {
	return h.setStatus(c, "active", "subscription resumed successfully")
}

func (h *SubscriptionHandler) CancelSubscription(c echo.Context) error {
	return h.setStatus(c, "cancelled", "subscription cancelled successfully")
}
