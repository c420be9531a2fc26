package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/herbvita/shop_backend/internal/logging"
	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/mykafka"
	"github.com/herbvita/shop_backend/internal/service/referral"
)

type ReferralHandler struct {
	Svc      *referral.Service
	Producer mykafka.Publisher
}

func (h *ReferralHandler) OptIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "referral_opt_in")

	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	code, err := h.Svc.OptIn(ctx, userID)
	if err != nil {
		if errors.Is(err, referral.ErrAlreadyEnrolled) {
			l.Warn("opt_in_failed", "status", 400, "reason", "already enrolled")
			return echo.NewHTTPError(http.StatusBadRequest, "already enrolled in the referral program")
		}
		l.Error("opt_in_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to enroll")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(userID), map[string]any{
		"type":   "referral_opt_in",
		"userID": userID,
	})

	l.Info("opt_in_successful", "user_id", userID)
	return c.JSON(http.StatusOK, echo.Map{"referral_code": code})
}

func (h *ReferralHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	stats, err := h.Svc.Stats(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch referral data")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *ReferralHandler) Withdraw(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "referral_withdraw")

	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	amount, err := h.Svc.Withdraw(ctx, userID)
	if err != nil {
		if errors.Is(err, referral.ErrInsufficientBalance) {
			l.Warn("withdraw_failed", "status", 400, "reason", "below minimum")
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("withdraw_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process withdrawal")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(userID), map[string]any{
		"type":   "withdrawal_requested",
		"userID": userID,
		"amount": amount,
	})

	l.Info("withdraw_successful", "user_id", userID, "amount", amount)
	return c.JSON(http.StatusOK, echo.Map{"message": "withdrawal request sent", "amount": amount})
}
