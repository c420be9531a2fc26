package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herbvita/shop_backend/internal/models"
)

func newCartHandler(t *testing.T) *CartHandler {
	t.Helper()
	return &CartHandler{DB: newTestDB(t), Producer: &fakePublisher{}}
}

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	h := newCartHandler(t)
	e := newTestEcho()
	user := createTestUser(t, h.DB, "a@example.com", "secret123", models.RoleUser)
	tea := createTestProduct(t, h.DB, "Detox Tea", 250)

	for range 2 {
		c, rec := jsonRequest(e, http.MethodPost, "/api/cart", map[string]any{
			"product_id": tea.ID,
			"quantity":   1,
		}, user)
		require.NoError(t, h.AddToCart(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var item models.CartItem
	require.NoError(t, h.DB.Where("user_id = ?", user.ID).First(&item).Error)
	require.EqualValues(t, 2, item.Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	h := newCartHandler(t)
	e := newTestEcho()
	user := createTestUser(t, h.DB, "a@example.com", "secret123", models.RoleUser)

	c, _ := jsonRequest(e, http.MethodPost, "/api/cart", map[string]any{
		"product_id": 9999,
	}, user)
	code, _ := httpStatus(t, h.AddToCart(c))
	require.Equal(t, http.StatusNotFound, code)
}

func TestDeleteOneFromCart(t *testing.T) {
	h := newCartHandler(t)
	e := newTestEcho()
	user := createTestUser(t, h.DB, "a@example.com", "secret123", models.RoleUser)
	tea := createTestProduct(t, h.DB, "Detox Tea", 250)

	require.NoError(t, h.DB.Create(&models.CartItem{UserID: user.ID, ProductID: tea.ID, Quantity: 2}).Error)

	del := func() (int, map[string]any, error) {
		c, rec := jsonRequest(e, http.MethodDelete, "/api/cart/1", nil, user)
		c.SetParamNames("id")
		c.SetParamValues("1")
		err := h.DeleteOneFromCart(c)
		if err != nil {
			return 0, nil, err
		}
		return rec.Code, decodeBody(t, rec), nil
	}

	code, body, err := del()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, body["quantity"])

	_, body, err = del()
	require.NoError(t, err)
	require.EqualValues(t, 0, body["quantity"])

	var count int64
	require.NoError(t, h.DB.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)

	_, _, err = del()
	status, _ := httpStatus(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func TestSavedProducts(t *testing.T) {
	h := newCartHandler(t)
	e := newTestEcho()
	user := createTestUser(t, h.DB, "a@example.com", "secret123", models.RoleUser)
	tea := createTestProduct(t, h.DB, "Detox Tea", 250)

	c, rec := jsonRequest(e, http.MethodPost, "/api/saved-products", map[string]any{
		"product_id": tea.ID,
	}, user)
	require.NoError(t, h.SaveProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// saving twice is idempotent
	c, rec = jsonRequest(e, http.MethodPost, "/api/saved-products", map[string]any{
		"product_id": tea.ID,
	}, user)
	require.NoError(t, h.SaveProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, h.DB.Model(&models.SavedProduct{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	c, rec = jsonRequest(e, http.MethodGet, "/api/saved-products", nil, user)
	require.NoError(t, h.GetSavedProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, _ = jsonRequest(e, http.MethodDelete, "/api/saved-products/1", nil, user)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UnsaveProduct(c))

	require.NoError(t, h.DB.Model(&models.SavedProduct{}).Count(&count).Error)
	require.Zero(t, count)
}
