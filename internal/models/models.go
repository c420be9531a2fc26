package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleUser        Role = "user"
	RoleDistributor Role = "distributor"
	RoleAdmin       Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleDistributor, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// StringList is stored as a JSON array so it works on both postgres and the
// sqlite test database.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("cannot scan %T into StringList", src)
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         Role   `gorm:"not null;default:user"    json:"role"`

	ReferralCode        *string `gorm:"uniqueIndex"    json:"referral_code,omitempty"`
	ReferredBy          *string `gorm:"index"          json:"referred_by,omitempty"`
	ReferralRewards     float64 `gorm:"not null;default:0" json:"referral_rewards"`
	WithdrawableBalance float64 `gorm:"not null;default:0" json:"withdrawable_balance"`

	ResetPasswordToken   *string    `gorm:"index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string     `gorm:"not null"                 json:"name"`
	Description   string     `gorm:"not null"                 json:"description"`
	Price         float64    `gorm:"not null"                 json:"price"`
	Category      string     `gorm:"not null;index"           json:"category"`
	Benefits      StringList `gorm:"type:text"                json:"benefits"`
	Ingredients   StringList `gorm:"type:text"                json:"ingredients"`
	Images        StringList `gorm:"type:text"                json:"images"`
	Stock         uint       `gorm:"default:0"                json:"stock"`
	IsBestseller  bool       `gorm:"default:false"            json:"is_bestseller"`
	DiscountBadge string     `gorm:"default:''"               json:"discount_badge"`
	Rating        float64    `gorm:"default:0"                json:"rating"`
	CreatedAt     time.Time  `json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                  json:"id"`
	UserID    uint `gorm:"index;not null"              json:"user_id"`
	ProductID uint `gorm:"not null"                    json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

type SavedProduct struct {
	ID        uint `gorm:"primaryKey"     json:"id"`
	UserID    uint `gorm:"index;not null" json:"user_id"`
	ProductID uint `gorm:"not null"       json:"product_id"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// Terminal reports whether no further status transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type Order struct {
	ID            uint        `gorm:"primaryKey"        json:"id"`
	UserID        uint        `gorm:"index;not null"    json:"user_id"`
	Items         []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount   float64     `gorm:"not null"          json:"total_amount"`
	Status        OrderStatus `gorm:"not null;default:pending;index" json:"status"`
	PaymentMethod string      `gorm:"not null"          json:"payment_method"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderItem carries the product name and unit price snapshotted at checkout.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                 json:"id"`
	OrderID   uint    `gorm:"index;not null"             json:"order_id"`
	ProductID uint    `gorm:"not null"                   json:"product_id"`
	Name      string  `gorm:"not null"                   json:"name"`
	Quantity  uint    `gorm:"default:1;check:quantity>0" json:"quantity"`
	UnitPrice float64 `gorm:"not null"                   json:"unit_price"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey"     json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	ProductID  *uint     `gorm:"index"          json:"product_id,omitempty"`
	Name       string    `gorm:"not null"       json:"name"`
	Rating     int       `gorm:"not null;check:rating>=1 AND rating<=5" json:"rating"`
	Comment    string    `gorm:"not null;size:500" json:"comment"`
	Image      string    `json:"image,omitempty"`
	IsApproved bool      `gorm:"default:false;index" json:"is_approved"`
	Likes      uint      `gorm:"default:0"      json:"likes"`
	CreatedAt  time.Time `json:"created_at"`
}

type BlogPost struct {
	ID        uint          `gorm:"primaryKey"     json:"id"`
	Title     string        `gorm:"not null"       json:"title"`
	Content   string        `gorm:"not null"       json:"content"`
	AuthorID  uint          `gorm:"index;not null" json:"author_id"`
	Author    string        `gorm:"not null"       json:"author"`
	Category  string        `gorm:"not null;index" json:"category"`
	Comments  []BlogComment `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type BlogComment struct {
	ID         uint      `gorm:"primaryKey"     json:"id"`
	BlogPostID uint      `gorm:"index;not null" json:"blog_post_id"`
	Name       string    `gorm:"not null"       json:"name"`
	Comment    string    `gorm:"not null;size:500" json:"comment"`
	IsApproved bool      `gorm:"default:false"  json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

type Subscription struct {
	ID               uint      `gorm:"primaryKey"     json:"id"`
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	ProductID        uint      `gorm:"not null"       json:"product_id"`
	Frequency        string    `gorm:"not null"       json:"frequency"`
	NextDeliveryDate time.Time `gorm:"not null"       json:"next_delivery_date"`
	Status           string    `gorm:"not null;default:active" json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type Distributor struct {
	ID           uint      `gorm:"primaryKey"           json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	BusinessName string    `gorm:"not null"             json:"business_name"`
	Phone        string    `gorm:"not null"             json:"phone"`
	Address      string    `gorm:"not null"             json:"address"`
	Status       string    `gorm:"not null;default:pending;index" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	Message   string    `gorm:"not null"            json:"message"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NewsletterSubscriber struct {
	ID           uint      `gorm:"primaryKey"      json:"id"`
	Email        string    `gorm:"unique;not null" json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null"   json:"name"`
	Email     string    `gorm:"not null"   json:"email"`
	Message   string    `gorm:"not null"   json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
