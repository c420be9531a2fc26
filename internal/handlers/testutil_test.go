package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/config"
	"github.com/herbvita/shop_backend/internal/hash"
	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/models"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
	return e
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, role models.Role) *models.User {
	t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Name: "Test User", Email: email, PasswordHash: pwHash, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Description: "test product", Price: price, Category: "Detox", Stock: 10}
	require.NoError(t, db.Create(p).Error)
	return p
}

// jsonRequest builds an echo context carrying a JSON body, optionally
// authenticated as the given user.
func jsonRequest(e *echo.Echo, method, target string, body any, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		mw.SetUserContext(c, user.ID, user.Role)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func httpStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	msg, _ := httpErr.Message.(string)
	return httpErr.Code, msg
}

type fakePublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	Topic string
	Key   string
	Event any
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

type fakeSender struct {
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (s *fakeSender) SendEmail(to, subject, body string) error {
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
