package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/mail"
	"github.com/herbvita/shop_backend/internal/models"
)

type NewsletterHandler struct {
	DB     *gorm.DB
	Mailer mail.Sender
}

func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var existing models.NewsletterSubscriber
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email already subscribed")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to subscribe")
	}

	sub := models.NewsletterSubscriber{Email: req.Email, SubscribedAt: time.Now()}
	if err := h.DB.WithContext(ctx).Create(&sub).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to subscribe")
	}

	if h.Mailer != nil {
		subject, body := mail.NewsletterWelcomeBody(req.Email)
		if err := h.Mailer.SendEmail(req.Email, subject, body); err != nil {
			logging.FromContext(ctx).Error("newsletter welcome email failed", "error", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "subscribed to newsletter successfully"})
}

func (h *NewsletterHandler) Unsubscribe(c echo.Context) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res := h.DB.WithContext(c.Request().Context()).
		Where("email = ?", req.Email).
		Delete(&models.NewsletterSubscriber{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to unsubscribe")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "email is not subscribed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "unsubscribed successfully"})
}
