package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/mykafka"
	"github.com/herbvita/shop_backend/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
}

type productRequest struct {
	Name          string   `json:"name"        validate:"required,min=3,max=100"`
	Description   string   `json:"description" validate:"required,min=10"`
	Price         float64  `json:"price"       validate:"required,min=0"`
	Category      string   `json:"category"    validate:"required"`
	Benefits      []string `json:"benefits"`
	Ingredients   []string `json:"ingredients"`
	Images        []string `json:"images"`
	Stock         uint     `json:"stock"`
	IsBestseller  bool     `json:"is_bestseller"`
	DiscountBadge string   `json:"discount_badge"`
}

var productCategories = map[string]bool{
	"Detox":          true,
	"Weight Loss":    true,
	"Women's Health": true,
	"Other":          true,
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Product{})
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	switch c.QueryParam("sort") {
	case "price-asc":
		q = q.Order("price ASC")
	case "price-desc":
		q = q.Order("price DESC")
	case "rating":
		q = q.Order("rating DESC")
	default:
		q = q.Order("id ASC")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch products")
	}

	var items []models.Product
	if err := q.Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch products")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": items,
		"meta":     pageMeta(page, limit, total),
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.WithContext(c.Request().Context()).First(&product, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, product)
}

// Suggestions feeds the storefront's typeahead with up to five name matches.
func (h *ProductHandler) Suggestions(c echo.Context) error {
	q := c.QueryParam("q")

	var products []models.Product
	if err := h.DB.WithContext(c.Request().Context()).
		Where("name LIKE ?", "%"+q+"%").
		Limit(5).
		Select("id", "name").
		Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch suggestions")
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !productCategories[req.Category] {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}

	prod := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		Benefits:      req.Benefits,
		Ingredients:   req.Ingredients,
		Images:        req.Images,
		Stock:         req.Stock,
		IsBestseller:  req.IsBestseller,
		DiscountBadge: req.DiscountBadge,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !productCategories[req.Category] {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}

	var prod models.Product
	if err := h.DB.WithContext(c.Request().Context()).First(&prod, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	prod.Name = req.Name
	prod.Description = req.Description
	prod.Price = req.Price
	prod.Category = req.Category
	prod.Benefits = req.Benefits
	prod.Ingredients = req.Ingredients
	prod.Images = req.Images
	prod.Stock = req.Stock
	prod.IsBestseller = req.IsBestseller
	prod.DiscountBadge = req.DiscountBadge

	if err := h.DB.WithContext(c.Request().Context()).Save(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).Delete(&models.Product{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}
