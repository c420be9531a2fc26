package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/models"
)

type Config struct {
	Env  string
	Port int

	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	JWT_SECRET     string
	REFRESH_SECRET string

	KAFKA_ADDRESS string

	FRONTEND_URL string

	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USER     string
	SMTP_PASSWORD string
	EMAIL_FROM    string

	WITHDRAWAL_MIN float64

	CHATBOT_API_URL string
	CHATBOT_API_KEY string

	LOG_LEVEL string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		Env:  EnvDefault("APP_ENV", "development"),
		Port: EnvIntDefault("PORT", 8080),

		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),

		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_SECRET"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		FRONTEND_URL: EnvDefault("FRONTEND_URL", "http://localhost:5173"),

		SMTP_HOST:     os.Getenv("SMTP_HOST"),
		SMTP_PORT:     EnvIntDefault("SMTP_PORT", 587),
		SMTP_USER:     os.Getenv("SMTP_USER"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		EMAIL_FROM:    os.Getenv("EMAIL_FROM"),

		WITHDRAWAL_MIN: EnvFloatDefault("WITHDRAWAL_MIN", 1000),

		CHATBOT_API_URL: os.Getenv("CHATBOT_API_URL"),
		CHATBOT_API_KEY: os.Getenv("CHATBOT_API_KEY"),

		LOG_LEVEL: EnvDefault("LOG_LEVEL", "info"),
	}

	MustNonEmpty(config.JWT_SECRET, "JWT_SECRET")
	MustNonEmpty(config.REFRESH_SECRET, "REFRESH_SECRET")

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB access: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.SavedProduct{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.BlogPost{},
		&models.BlogComment{},
		&models.Subscription{},
		&models.Distributor{},
		&models.Notification{},
		&models.NewsletterSubscriber{},
		&models.ContactMessage{},
	)
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
