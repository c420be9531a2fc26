package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/logging"
	"github.com/herbvita/shop_backend/internal/models"
)

const fallbackReply = "I couldn't process your request. Please contact support."

// ChatbotHandler answers store questions from the database first and only
// falls back to the external inference API when no rule matches.
type ChatbotHandler struct {
	DB     *gorm.DB
	APIURL string
	APIKey string
	Client *http.Client
}

func NewChatbotHandler(db *gorm.DB, apiURL, apiKey string) *ChatbotHandler {
	return &ChatbotHandler{
		DB:     db,
		APIURL: apiURL,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

type chatbotRequest struct {
	Inputs string `json:"inputs"  validate:"required,min=1"`
	UserID *uint  `json:"user_id"`
}

func (h *ChatbotHandler) Chat(c echo.Context) error {
	var req chatbotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"reply": "invalid input format"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"reply": "invalid input format"})
	}

	ctx := c.Request().Context()
	message := strings.ToLower(req.Inputs)

	if strings.Contains(message, "product") || strings.Contains(message, "buy") {
		return c.JSON(http.StatusOK, echo.Map{"reply": h.productReply(c, req.Inputs)})
	}

	if req.UserID != nil && (strings.Contains(message, "order") || strings.Contains(message, "status")) {
		return c.JSON(http.StatusOK, echo.Map{"reply": h.orderReply(c, *req.UserID)})
	}

	if req.UserID != nil && strings.Contains(message, "account") {
		return c.JSON(http.StatusOK, echo.Map{"reply": h.accountReply(c, *req.UserID)})
	}

	reply, err := h.aiReply(c, req.Inputs)
	if err != nil {
		logging.FromContext(ctx).Error("chatbot ai fallback failed", "error", err)
		return c.JSON(http.StatusOK, echo.Map{"reply": fallbackReply})
	}
	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}

func (h *ChatbotHandler) productReply(c echo.Context, message string) string {
	ctx := c.Request().Context()

	var product models.Product
	err := h.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(message)+"%").
		First(&product).Error
	if err == nil {
		return fmt.Sprintf("Yes! We have %s. It costs Ksh %.2f. Would you like to buy it?", product.Name, product.Price)
	}

	var suggestions []models.Product
	if err := h.DB.WithContext(ctx).Limit(2).Find(&suggestions).Error; err != nil || len(suggestions) == 0 {
		return "Sorry, we don't have that product in stock."
	}
	names := make([]string, len(suggestions))
	for i, p := range suggestions {
		names[i] = p.Name
	}
	return fmt.Sprintf("Sorry, we don't have that product in stock. You might like %s.", strings.Join(names, " or "))
}

func (h *ChatbotHandler) orderReply(c echo.Context, userID uint) string {
	var order models.Order
	err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return "No orders found for your account. Would you like to place a new order?"
	}
	return fmt.Sprintf("Your last order status is: %s. Need help? Contact support.", order.Status)
}

func (h *ChatbotHandler) accountReply(c echo.Context, userID uint) string {
	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).First(&user, userID).Error; err != nil {
		return "User not found. Please log in or create an account to access your details."
	}
	return fmt.Sprintf("You are logged in as %s. Need assistance? Contact support.", user.Name)
}

func (h *ChatbotHandler) aiReply(c echo.Context, message string) (string, error) {
	if h.APIURL == "" {
		return "", fmt.Errorf("no inference endpoint configured")
	}

	payload := map[string]any{
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are an online store assistant. If the question is not related to our store, reply: 'I only provide store-related information.'",
			},
			{"role": "user", "content": message},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, h.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.APIKey)
	}

	resp, err := h.Client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference api returned %s", resp.Status)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in inference response")
	}
	return parsed.Choices[0].Message.Content, nil
}
