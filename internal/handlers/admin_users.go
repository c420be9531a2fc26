package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/mykafka"
	"github.com/herbvita/shop_backend/internal/util"
)

type AdminUserHandler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
}

func (h *AdminUserHandler) ListUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.User{})
	if role := c.QueryParam("role"); role != "" {
		parsed, ok := models.ParseRole(role)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role filter")
		}
		q = q.Where("role = ?", parsed)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch users")
	}

	var users []models.User
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch users")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users": users,
		"meta":  pageMeta(page, limit, total),
	})
}

func (h *AdminUserHandler) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_user_role")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil || req.Role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role is required")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	user.Role = role
	if err := h.DB.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update user role")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_role_changed",
		"userID": user.ID,
		"role":   role,
	})

	l.Info("role_updated", "user_id", user.ID, "role", role)
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes the account immediately. There is no soft delete and no
// recovery window. Orders stay behind as accounting records.
func (h *AdminUserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_user_delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, model := range []any{
			&models.CartItem{},
			&models.SavedProduct{},
			&models.Notification{},
			&models.Subscription{},
		} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		l.Error("delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete user")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(id), map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})

	l.Info("user_deleted", "user_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted successfully"})
}
