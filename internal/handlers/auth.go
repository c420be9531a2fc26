package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/hash"
	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/mail"
	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/mykafka"
	"github.com/herbvita/shop_backend/internal/service/referral"
	"github.com/herbvita/shop_backend/internal/service/token"
)

const resetTokenTTL = time.Hour

type AuthHandler struct {
	DB          *gorm.DB
	Tokens      *token.Service
	Referrals   *referral.Service
	Mailer      mail.Sender
	Producer    mykafka.Publisher
	FrontendURL string
}

type registerRequest struct {
	Name         string `json:"name"          validate:"required,min=3,max=50"`
	Email        string `json:"email"         validate:"required,email"`
	Password     string `json:"password"      validate:"required,min=6"`
	Role         string `json:"role"          validate:"omitempty,oneof=user distributor admin"`
	ReferralCode string `json:"referralCode"  validate:"omitempty,len=6"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		l.Warn("register_failed", "status", 400, "reason", "duplicate email")
		return echo.NewHTTPError(http.StatusBadRequest, "user already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var referredBy *string
	if req.ReferralCode != "" {
		referrer, err := h.Referrals.ResolveReferrer(ctx, req.ReferralCode)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if referrer == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid referral code")
		}
		referredBy = &req.ReferralCode
	}

	role := models.RoleUser
	if req.Role != "" {
		role, _ = models.ParseRole(req.Role)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
		ReferredBy:   referredBy,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user already registered")
	}

	if err := h.startSession(c, &user); err != nil {
		return err
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("register_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	// Unknown email and wrong password answer identically.
	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		l.Warn("login_failed", "status", 400)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 400)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email or password")
	}

	if err := h.startSession(c, &user); err != nil {
		return err
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("login_successful", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) startSession(c echo.Context, user *models.User) error {
	access, accessExp, err := h.Tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}
	refresh, refreshExp, err := h.Tokens.IssueRefreshToken(user.ID, user.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}
	h.Tokens.AttachSessionCookies(c, access, accessExp, refresh, refreshExp)
	return nil
}

// Refresh mints a fresh token pair off a valid refresh cookie. Any failure
// means the client has to log in again.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(token.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token is required")
	}

	claims, err := h.Tokens.VerifyRefreshToken(cookie.Value)
	if err != nil {
		h.Tokens.ClearSessionCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	userID, err := token.UserID(claims.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	access, accessExp, err := h.Tokens.IssueAccessToken(userID, role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}
	refresh, refreshExp, err := h.Tokens.IssueRefreshToken(userID, role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}
	h.Tokens.AttachSessionCookies(c, access, accessExp, refresh, refreshExp)

	return c.JSON(http.StatusOK, echo.Map{"accessToken": access})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	h.Tokens.ClearSessionCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_forgot_password")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	resetToken := hex.EncodeToString(buf)
	expires := time.Now().Add(resetTokenTTL)

	if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{
			"reset_password_token":   resetToken,
			"reset_password_expires": expires,
		}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", h.FrontendURL, resetToken)
	subject, body := mail.PasswordResetBody(resetURL)
	if err := h.Mailer.SendEmail(user.Email, subject, body); err != nil {
		l.Error("reset_email_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process forgot password request")
	}

	l.Info("reset_email_sent", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset email sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	resetToken := c.Param("token")
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	var user models.User
	err := h.DB.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expires > ?", resetToken, time.Now()).
		First(&user).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// The reset token is single-use: cleared in the same write.
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{
			"password_hash":          pwHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reset password")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password reset successfully"})
}
