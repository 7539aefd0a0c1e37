// Package notification delivers temporary passwords by email. It
// implements the auth.Notifier contract.
package notification

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type EmailService struct {
	config EmailConfig
}

func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendTemporaryPassword(to, temporaryPassword string) error {
	subject := "Your Temporary Password"
	body := fmt.Sprintf(`<html><body>
		<h2>Your Temporary Password</h2>
		<p>A temporary password has been issued for your account:</p>
		<p><strong>%s</strong></p>
		<p>Sign in with it and change your password immediately.</p>
		<p>If you did not request this, contact your administrator.</p>
	</body></html>`, temporaryPassword)
	return s.sendEmail(to, subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	return smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
}

// LogNotifier is the fallback notifier used when SMTP is not
// configured. It logs that a temporary password was issued without
// logging the password itself.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) SendTemporaryPassword(to, temporaryPassword string) error {
	n.Logger.Warn("SMTP not configured; temporary password not delivered", "to", to)
	return nil
}
