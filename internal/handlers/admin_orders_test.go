package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/service/settlement"
)

func newAdminOrderHandler(t *testing.T) (*AdminOrderHandler, *fakePublisher, *fakeSender) {
	t.Helper()
	db := newTestDB(t)
	pub := &fakePublisher{}
	sender := &fakeSender{}
	h := &AdminOrderHandler{DB: db, Svc: &settlement.Service{DB: db}, Mailer: sender, Producer: pub}
	return h, pub, sender
}

func seedOrder(t *testing.T, h *AdminOrderHandler, userID uint) *models.Order {
	t.Helper()
	tea := createTestProduct(t, h.DB, "Detox Tea", 100)
	order, err := h.Svc.CreateOrder(context.Background(), userID, []settlement.ItemRequest{
		{ProductID: tea.ID, Quantity: 1},
	}, "cash")
	require.NoError(t, err)
	return order
}

func TestAdminUpdateStatusEmailsOwner(t *testing.T) {
	h, pub, sender := newAdminOrderHandler(t)
	e := newTestEcho()
	owner := createTestUser(t, h.DB, "owner@example.com", "secret123", models.RoleUser)
	seedOrder(t, h, owner.ID)

	c, rec := jsonRequest(e, http.MethodPatch, "/api/admin/orders/1/status", map[string]any{
		"status": "completed",
	}, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "completed", decodeBody(t, rec)["status"])

	require.Len(t, sender.sent, 1)
	require.Equal(t, owner.Email, sender.sent[0].To)
	require.Len(t, pub.events, 1)
	require.Equal(t, "order_events", pub.events[0].Topic)

	// terminal orders reject further changes
	c, _ = jsonRequest(e, http.MethodPatch, "/api/admin/orders/1/status", map[string]any{
		"status": "cancelled",
	}, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	code, _ := httpStatus(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusConflict, code)

}

func TestAdminUpdateStatusRejectsUnknown(t *testing.T) {
	h, _, _ := newAdminOrderHandler(t)
	e := newTestEcho()
	owner := createTestUser(t, h.DB, "owner@example.com", "secret123", models.RoleUser)
	seedOrder(t, h, owner.ID)

	c, _ := jsonRequest(e, http.MethodPatch, "/api/admin/orders/1/status", map[string]any{
		"status": "shipped",
	}, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	code, _ := httpStatus(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAdminListOrdersStatusFilter(t *testing.T) {
	h, _, _ := newAdminOrderHandler(t)
	e := newTestEcho()
	owner := createTestUser(t, h.DB, "owner@example.com", "secret123", models.RoleUser)
	seedOrder(t, h, owner.ID)

	c, rec := jsonRequest(e, http.MethodGet, "/api/admin/orders?status=pending", nil, nil)
	require.NoError(t, h.ListOrders(c))
	require.Len(t, decodeBody(t, rec)["orders"], 1)

	c, _ = jsonRequest(e, http.MethodGet, "/api/admin/orders?status=shipped", nil, nil)
	code, _ := httpStatus(t, h.ListOrders(c))
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAdminDeleteOrder(t *testing.T) {
	h, _, _ := newAdminOrderHandler(t)
	e := newTestEcho()
	owner := createTestUser(t, h.DB, "owner@example.com", "secret123", models.RoleUser)
	seedOrder(t, h, owner.ID)

	c, _ := jsonRequest(e, http.MethodDelete, "/api/admin/orders/1", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteOrder(c))

	var orders, items int64
	require.NoError(t, h.DB.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, h.DB.Model(&models.OrderItem{}).Count(&items).Error)
	require.Zero(t, orders)
	require.Zero(t, items)
}
