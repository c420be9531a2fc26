package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/mykafka"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
}

type cartItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  uint `json:"quantity"   validate:"omitempty,min=1"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var items []models.CartItem
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).
		Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch cart")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request().Context()

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, req.ProductID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var item models.CartItem
	err = h.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, req.ProductID).
		First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update cart")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{UserID: userID, ProductID: req.ProductID, Quantity: req.Quantity}
		if err := h.DB.WithContext(ctx).Create(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update cart")
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update cart")
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(userID), map[string]any{
		"type":      "item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

// DeleteOneFromCart decrements the quantity by one and removes the row when it
// reaches zero.
func (h *CartHandler) DeleteOneFromCart(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	productID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var item models.CartItem
	if err := h.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "item not found in cart")
	}

	if item.Quantity > 1 {
		item.Quantity--
		if err := h.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update cart")
		}
	} else {
		if err := h.DB.WithContext(ctx).Delete(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update cart")
		}
		item.Quantity = 0
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(userID), map[string]any{
		"type":      "item_removed",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, echo.Map{"product_id": productID, "quantity": item.Quantity})
}

func (h *CartHandler) SaveProduct(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id" validate:"required"`
	}
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

	var existing models.SavedProduct
	err = h.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, req.ProductID).
		First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusOK, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save product")
	}

	saved := models.SavedProduct{UserID: userID, ProductID: req.ProductID}
	if err := h.DB.WithContext(ctx).Create(&saved).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save product")
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *CartHandler) GetSavedProducts(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var saved []models.SavedProduct
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).
		Find(&saved).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch saved products")
	}
	return c.JSON(http.StatusOK, echo.Map{"saved_products": saved})
}

func (h *CartHandler) UnsaveProduct(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	productID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.SavedProduct{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to remove saved product")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "saved product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product removed from saved list"})
}
