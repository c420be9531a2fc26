package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herbvita/shop_backend/internal/models"
)

func TestAdminListUsers(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	h := &AdminUserHandler{DB: db, Producer: pub}
	e := newTestEcho()
	createTestUser(t, db, "a@example.com", "secret123", models.RoleUser)
	createTestUser(t, db, "b@example.com", "secret123", models.RoleAdmin)

	c, rec := jsonRequest(e, http.MethodGet, "/api/admin/users", nil, nil)
	require.NoError(t, h.ListUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body["users"], 2)
	// password hashes never leave the server
	require.NotContains(t, rec.Body.String(), "password")

	c, rec = jsonRequest(e, http.MethodGet, "/api/admin/users?role=admin", nil, nil)
	require.NoError(t, h.ListUsers(c))
	require.Len(t, decodeBody(t, rec)["users"], 1)

	c, _ = jsonRequest(e, http.MethodGet, "/api/admin/users?role=superuser", nil, nil)
	code, _ := httpStatus(t, h.ListUsers(c))
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAdminUpdateUserRole(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	h := &AdminUserHandler{DB: db, Producer: pub}
	e := newTestEcho()
	user := createTestUser(t, db, "a@example.com", "secret123", models.RoleUser)

	c, rec := jsonRequest(e, http.MethodPatch, "/api/admin/users/1/role", map[string]any{
		"role": "distributor",
	}, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateRole(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "distributor", decodeBody(t, rec)["role"])

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, models.RoleDistributor, reloaded.Role)
	require.Len(t, pub.events, 1)
	require.Equal(t, "user_events", pub.events[0].Topic)

	c, _ = jsonRequest(e, http.MethodPatch, "/api/admin/users/1/role", map[string]any{
		"role": "superuser",
	}, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	code, msg := httpStatus(t, h.UpdateRole(c))
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "unknown role", msg)

	c, _ = jsonRequest(e, http.MethodPatch, "/api/admin/users/999/role", map[string]any{
		"role": "admin",
	}, nil)
	c.SetParamNames("id")
	c.SetParamValues("999")
	code, _ = httpStatus(t, h.UpdateRole(c))
	require.Equal(t, http.StatusNotFound, code)
}

func TestAdminDeleteUserIsImmediate(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	h := &AdminUserHandler{DB: db, Producer: pub}
	e := newTestEcho()
	user := createTestUser(t, db, "a@example.com", "secret123", models.RoleUser)
	tea := createTestProduct(t, db, "Detox Tea", 100)
	require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, ProductID: tea.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.Notification{UserID: user.ID, Message: "hi"}).Error)

	c, rec := jsonRequest(e, http.MethodDelete, "/api/admin/users/1", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var users, carts, notifs int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Count(&carts).Error)
	require.NoError(t, db.Model(&models.Notification{}).Count(&notifs).Error)
	require.Zero(t, users)
	require.Zero(t, carts)
	require.Zero(t, notifs)
	require.Len(t, pub.events, 1)

	c, _ = jsonRequest(e, http.MethodDelete, "/api/admin/users/1", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	code, _ := httpStatus(t, h.DeleteUser(c))
	require.Equal(t, http.StatusNotFound, code)
}
