// Package email sends transactional mail over SMTP. Handlers depend on
// the Sender interface; the gomail-backed implementation is wired in main.
package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/hostelhq/hms/internal/config"
	"github.com/hostelhq/hms/internal/model"
)

// Template names understood by Send.
const (
	TemplateWelcome    = "welcome"
	TemplateForgotPass = "forgotPassword"
	TemplateVerifyCode = "emailVerification"
)

// Sender delivers one templated message to a user. The payload is
// template-specific: a site URL for welcome mail, a reset URL for
// forgotPassword, the 6-digit code for emailVerification. A non-nil error
// means the message was not handed to the mail server.
type Sender interface {
	Send(template string, to model.User, payload string) error
}

// SMTPSender sends mail through a single SMTP account using gomail.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPSender builds a sender from the loaded configuration.
func NewSMTPSender(cfg config.Config) *SMTPSender {
	return &SMTPSender{
		from:   cfg.EmailFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
	}
}

// Send renders the named template and delivers it. Unknown template names
// are an error so a typo never silently drops mail.
func (s *SMTPSender) Send(template string, to model.User, payload string) error {
	var subject, body string
	switch template {
	case TemplateWelcome:
		subject = "Welcome to HMS! 👋"
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Welcome to HMS, we're glad to have you!</p>"+
				"<p>Visit your profile at <a href=%q>%s</a>.</p>",
			to.FirstName, payload, payload)
	case TemplateForgotPass:
		subject = "Your password reset token (valid for only 10 minutes)"
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Forgot your password? Submit a PATCH request with your "+
				"new password to: <a href=%q>%s</a>.</p>"+
				"<p>If you didn't forget your password, please ignore this email.</p>",
			to.FirstName, payload, payload)
	case TemplateVerifyCode:
		subject = "Email Verification Code"
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your email verification code is <b>%s</b>. "+
				"It expires in 10 minutes.</p>",
			to.FirstName, payload)
	default:
		return fmt.Errorf("email: unknown template %q", template)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}
