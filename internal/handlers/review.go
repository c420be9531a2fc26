package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/util"
)

type ReviewHandler struct {
	DB *gorm.DB
}

type reviewRequest struct {
	ProductID *uint  `json:"product_id"`
	Name      string `json:"name"    validate:"required,min=2,max=50"`
	Rating    int    `json:"rating"  validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,max=500"`
	Image     string `json:"image"`
}

// CreateReview stores the review unapproved; it stays hidden until an admin
// approves it.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	if req.ProductID != nil {
		var product models.Product
		if err := h.DB.WithContext(ctx).First(&product, *req.ProductID).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
	}

	review := models.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		Name:      req.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Image:     req.Image,
	}
	if err := h.DB.WithContext(ctx).Create(&review).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create review")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "review submitted, pending approval",
		"review":  review,
	})
}

func (h *ReviewHandler) GetReviews(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).
		Model(&models.Review{}).
		Where("is_approved = ?", true)
	if productID := c.QueryParam("product_id"); productID != "" {
		q = q.Where("product_id = ?", productID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch reviews")
	}

	var reviews []models.Review
	if err := q.Order("rating DESC, likes DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch reviews")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"reviews": reviews,
		"meta":    pageMeta(page, limit, total),
	})
}

func (h *ReviewHandler) LikeReview(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	res := h.DB.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("likes", gorm.Expr("likes + 1"))
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to like review")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "review not found")
	}

	var review models.Review
	if err := h.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to like review")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review liked", "likes": review.Likes})
}

func (h *ReviewHandler) ApproveReview(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	res := h.DB.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("is_approved", true)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to approve review")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "review not found")
	}

	var review models.Review
	if err := h.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to approve review")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review approved", "review": review})
}

// DeleteReview lets a user withdraw their own review while it is still
// pending; admins may delete any review.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}
	role, _ := mw.RoleFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var review models.Review
	if err := h.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "review not found")
	}

	if !role.IsAdmin() {
		if review.UserID != userID {
			return echo.NewHTTPError(http.StatusForbidden, "cannot delete another user's review")
		}
		if review.IsApproved {
			return echo.NewHTTPError(http.StatusForbidden, "approved reviews can only be removed by an admin")
		}
	}

	if err := h.DB.WithContext(ctx).Delete(&review).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete review")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted successfully"})
}
