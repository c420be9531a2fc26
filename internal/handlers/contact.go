package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/mail"
	"github.com/herbvita/shop_backend/internal/models"
)

type ContactHandler struct {
	DB     *gorm.DB
	Mailer mail.Sender
}

type contactRequest struct {
	Name    string `json:"name"    validate:"required,min=2,max=50"`
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
}

func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := h.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to submit contact form")
	}

	if h.Mailer != nil {
		subject, body := mail.ContactConfirmationBody(req.Name)
		if err := h.Mailer.SendEmail(req.Email, subject, body); err != nil {
			logging.FromContext(ctx).Error("contact confirmation email failed", "error", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "contact form submitted successfully"})
}
