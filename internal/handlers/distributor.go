package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/util"
)

type DistributorHandler struct {
	DB *gorm.DB
}

type distributorApplyRequest struct {
	BusinessName string `json:"business_name" validate:"required,min=2,max=100"`
	Phone        string `json:"phone"         validate:"required,min=7,max=20"`
	Address      string `json:"address"       validate:"required,min=5,max=200"`
}

func (h *DistributorHandler) Apply(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var req distributorApplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var existing models.Distributor
	err = h.DB.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "you have already applied")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to apply")
	}

	dist := models.Distributor{
		UserID:       userID,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
		Address:      req.Address,
		Status:       "pending",
	}
	if err := h.DB.WithContext(ctx).Create(&dist).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to apply")
	}
	return c.JSON(http.StatusCreated, dist)
}

func (h *DistributorHandler) ListDistributors(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Distributor{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch distributors")
	}

	var dists []models.Distributor
	if err := q.Offset(offset).Limit(limit).Find(&dists).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch distributors")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"distributors": dists,
		"meta":         pageMeta(page, limit, total),
	})
}

func (h *DistributorHandler) GetDistributor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var dist models.Distributor
	if err := h.DB.WithContext(c.Request().Context()).First(&dist, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "distributor not found")
	}
	return c.JSON(http.StatusOK, dist)
}

// UpdateStatus moves an application between pending, approved and rejected.
// Approval promotes the applicant to the distributor role.
func (h *DistributorHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=pending approved rejected"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var dist models.Distributor
	if err := h.DB.WithContext(ctx).First(&dist, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "distributor not found")
	}

	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&dist).Update("status", req.Status).Error; err != nil {
			return err
		}
		if req.Status == "approved" {
			return tx.Model(&models.User{}).
				Where("id = ? AND role = ?", dist.UserID, models.RoleUser).
				Update("role", models.RoleDistributor).Error
		}
		return nil
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update distributor status")
	}
	return c.JSON(http.StatusOK, dist)
}

func (h *DistributorHandler) DeleteDistributor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).Delete(&models.Distributor{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete distributor")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "distributor not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "distributor deleted successfully"})
}
