// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// Template names understood by Send
const (
	TemplateSignup             = "signup"
	TemplateForgotPassword     = "forgotpassword"
	TemplateEnrollmentDecision = "enrollment_decision"
)

// Sender delivers a templated notification to a recipient. Failures propagate
// to the caller as opaque errors; callers decide whether delivery is
// best-effort.
type Sender interface {
	Send(template, recipient string, data map[string]string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

type smtpSender struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTP-backed Sender
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) Sender {
	return &smtpSender{config: config, logger: logger}
}

func (s *smtpSender) Send(template, recipient string, data map[string]string) error {
	subject, body, err := render(template, data)
	if err != nil {
		return err
	}

	// Without credentials, log instead of sending (development mode)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("template", template).
			Str("recipient", recipient).
			Msg("SMTP credentials not configured, mail not sent")
		return nil
	}

	msg := []byte("From: " + s.config.FromName + " <" + s.config.FromEmail + ">\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + body)

	addr := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	return smtp.SendMail(addr, auth, s.config.FromEmail, []string{recipient}, msg)
}

func render(template string, data map[string]string) (subject, body string, err error) {
	switch template {
	case TemplateSignup:
		subject = "Account Created - " + data["name"]
		body = fmt.Sprintf(`<html><body>
			<p>Hello %s,</p>
			<p>An account has been created for you with the role <strong>%s</strong>.</p>
			<p>Your temporary password is: <strong>%s</strong></p>
			<p>Please change it after your first login.</p>
			</body></html>`, data["name"], data["role"], data["password"])
	case TemplateForgotPassword:
		subject = "Reset Password - " + data["name"]
		body = fmt.Sprintf(`<html><body>
			<p>Hello %s,</p>
			<p>Use this token to reset your password: <strong>%s</strong></p>
			<p>The token expires in 10 minutes.</p>
			</body></html>`, data["name"], data["token"])
	case TemplateEnrollmentDecision:
		subject = "Enrollment Update - " + data["course"]
		body = fmt.Sprintf(`<html><body>
			<p>Hello %s,</p>
			<p>Your enrollment in <strong>%s</strong> is now <strong>%s</strong>.</p>
			</body></html>`, data["name"], data["course"], data["status"])
	default:
		return "", "", fmt.Errorf("mailer: unknown template %q", template)
	}
	return subject, body, nil
}
