package mail

import (
	"fmt"
	"net/smtp"

	"github.com/herbvita/shop_backend/internal/config"
)

// Sender is implemented by EmailService and by test fakes. Delivery failures
// are reported but callers treat mail as best-effort.
type Sender interface {
	SendEmail(to, subject, body string) error
}

type EmailService struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTP_HOST,
		port:     cfg.SMTP_PORT,
		user:     cfg.SMTP_USER,
		password: cfg.SMTP_PASSWORD,
		from:     cfg.EMAIL_FROM,
	}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	if s.host == "" || s.user == "" {
		return fmt.Errorf("SMTP not configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=utf-8\r\n"+
		"\r\n"+
		"%s\r\n", to, subject, body))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}

func PasswordResetBody(resetURL string) (subject, body string) {
	subject = "Password Reset Request"
	body = fmt.Sprintf("You requested a password reset. Click the link below to reset your password:\n\n%s", resetURL)
	return subject, body
}

func OrderStatusBody(name string, orderID uint, status string) (subject, body string) {
	subject = "Your Order Status Has Been Updated"
	body = fmt.Sprintf("Hi %s,\n\nThe status of your order (ID: %d) has been updated to: %s.\n\nThank you for shopping with us!", name, orderID, status)
	return subject, body
}

func NewsletterWelcomeBody(email string) (subject, body string) {
	subject = "Welcome to Our Newsletter!"
	body = fmt.Sprintf("Thank you for subscribing to our newsletter, %s.", email)
	return subject, body
}

func ContactConfirmationBody(name string) (subject, body string) {
	subject = "Thank You for Contacting Us!"
	body = fmt.Sprintf("Hi %s,\n\nWe received your message and will get back to you shortly.", name)
	return subject, body
}
