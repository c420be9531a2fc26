package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herbvita/shop_backend/internal/models"
)

func newProductHandler(t *testing.T) (*ProductHandler, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	return &ProductHandler{DB: newTestDB(t), Producer: pub}, pub
}

func TestGetProductsPaginationAndFilter(t *testing.T) {
	h, _ := newProductHandler(t)
	e := newTestEcho()

	for i := 0; i < 12; i++ {
		createTestProduct(t, h.DB, "Detox Tea", float64(100+i))
	}
	other := &models.Product{Name: "Vita Caps", Description: "caps", Price: 50, Category: "Other"}
	require.NoError(t, h.DB.Create(other).Error)

	c, rec := jsonRequest(e, http.MethodGet, "/api/products?page=2&limit=10", nil, nil)
	require.NoError(t, h.GetProducts(c))
	body := decodeBody(t, rec)
	require.Len(t, body["products"], 3)

	meta := body["meta"].(map[string]any)
	require.EqualValues(t, 2, meta["currentPage"])
	require.EqualValues(t, 2, meta["totalPages"])
	require.EqualValues(t, 13, meta["total"])

	c, rec = jsonRequest(e, http.MethodGet, "/api/products?category=Other", nil, nil)
	require.NoError(t, h.GetProducts(c))
	require.Len(t, decodeBody(t, rec)["products"], 1)
}

func TestGetProductsSortByPrice(t *testing.T) {
	h, _ := newProductHandler(t)
	e := newTestEcho()
	createTestProduct(t, h.DB, "Mid", 200)
	createTestProduct(t, h.DB, "Cheap", 100)
	createTestProduct(t, h.DB, "Pricey", 300)

	c, rec := jsonRequest(e, http.MethodGet, "/api/products?sort=price-asc", nil, nil)
	require.NoError(t, h.GetProducts(c))

	products := decodeBody(t, rec)["products"].([]any)
	first := products[0].(map[string]any)
	require.Equal(t, "Cheap", first["name"])
}

func TestAdminProductCRUD(t *testing.T) {
	h, pub := newProductHandler(t)
	e := newTestEcho()

	c, rec := jsonRequest(e, http.MethodPost, "/api/admin/products", map[string]any{
		"name":        "Detox Tea",
		"description": "a cleansing herbal blend",
		"price":       250.0,
		"category":    "Detox",
		"stock":       5,
	}, nil)
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, pub.events, 1)
	require.Equal(t, "product_events", pub.events[0].Topic)

	c, rec = jsonRequest(e, http.MethodPut, "/api/admin/products/1", map[string]any{
		"name":        "Detox Tea Plus",
		"description": "a cleansing herbal blend, now stronger",
		"price":       300.0,
		"category":    "Detox",
		"stock":       5,
	}, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateProduct(c))
	require.Equal(t, "Detox Tea Plus", decodeBody(t, rec)["name"])

	c, _ = jsonRequest(e, http.MethodDelete, "/api/admin/products/1", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteProduct(c))

	var count int64
	require.NoError(t, h.DB.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count)
	require.Len(t, pub.events, 3)
}

func TestDeleteProductNotFound(t *testing.T) {
	h, _ := newProductHandler(t)
	e := newTestEcho()

	c, _ := jsonRequest(e, http.MethodDelete, "/api/admin/products/42", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("42")
	code, _ := httpStatus(t, h.DeleteProduct(c))
	require.Equal(t, http.StatusNotFound, code)
}
