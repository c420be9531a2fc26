package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herbvita/shop_backend/internal/models"
)

func seedNotification(t *testing.T, h *NotificationHandler, userID uint, message string) *models.Notification {
	t.Helper()
	n := &models.Notification{UserID: userID, Message: message}
	require.NoError(t, h.DB.Create(n).Error)
	return n
}

func TestNotificationsAreOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	h := &NotificationHandler{DB: db}
	e := newTestEcho()
	alice := createTestUser(t, db, "alice@example.com", "secret123", models.RoleUser)
	bob := createTestUser(t, db, "bob@example.com", "secret123", models.RoleUser)
	seedNotification(t, h, alice.ID, "order update")
	seedNotification(t, h, bob.ID, "other user's news")

	c, rec := jsonRequest(e, http.MethodGet, "/api/notifications", nil, alice)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "order update")
	require.NotContains(t, rec.Body.String(), "other user's news")
}

func TestMarkNotificationRead(t *testing.T) {
	db := newTestDB(t)
	h := &NotificationHandler{DB: db}
	e := newTestEcho()
	alice := createTestUser(t, db, "alice@example.com", "secret123", models.RoleUser)
	bob := createTestUser(t, db, "bob@example.com", "secret123", models.RoleUser)
	n := seedNotification(t, h, alice.ID, "order update")

	c, rec := jsonRequest(e, http.MethodPatch, "/api/notifications/1/read", nil, alice)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.MarkRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, n.ID).Error)
	require.True(t, reloaded.IsRead)

	// another user cannot touch it
	c, _ = jsonRequest(e, http.MethodPatch, "/api/notifications/1/read", nil, bob)
	c.SetParamNames("id")
	c.SetParamValues("1")
	code, _ := httpStatus(t, h.MarkRead(c))
	require.Equal(t, http.StatusNotFound, code)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	db := newTestDB(t)
	h := &NotificationHandler{DB: db}
	e := newTestEcho()
	alice := createTestUser(t, db, "alice@example.com", "secret123", models.RoleUser)
	bob := createTestUser(t, db, "bob@example.com", "secret123", models.RoleUser)
	seedNotification(t, h, alice.ID, "one")
	seedNotification(t, h, alice.ID, "two")
	untouched := seedNotification(t, h, bob.ID, "three")

	c, rec := jsonRequest(e, http.MethodPatch, "/api/notifications/read-all", nil, alice)
	require.NoError(t, h.MarkAllRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var unread int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", alice.ID, false).
		Count(&unread).Error)
	require.Zero(t, unread)

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, untouched.ID).Error)
	require.False(t, reloaded.IsRead)
}

func TestStatusChangeCreatesNotification(t *testing.T) {
	h, _, _ := newAdminOrderHandler(t)
	e := newTestEcho()
	owner := createTestUser(t, h.DB, "owner@example.com", "secret123", models.RoleUser)
	seedOrder(t, h, owner.ID)

	c, _ := jsonRequest(e, http.MethodPatch, "/api/admin/orders/1/status", map[string]any{
		"status": "completed",
	}, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateStatus(c))

	var notifications []models.Notification
	require.NoError(t, h.DB.Where("user_id = ?", owner.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Contains(t, notifications[0].Message, "completed")
	require.False(t, notifications[0].IsRead)
}
