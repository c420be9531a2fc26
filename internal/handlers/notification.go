package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/models"
)

type NotificationHandler struct {
	DB *gorm.DB
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var notifications []models.Notification
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch notifications")
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to mark notification as read")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	if err := h.DB.WithContext(c.Request().Context()).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to mark notifications as read")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "all notifications marked as read"})
}
