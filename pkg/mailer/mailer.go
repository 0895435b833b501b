package mailer

import (
	"context"
	"fmt"
	"market-tips/config"
	"market-tips/pkg/httpclient"
	"net/http"
	"time"

	"gopkg.in/gomail.v2"
)

// Message is one outbound email with HTML and plain-text bodies.
type Message struct {
	Recipient string
	Subject   string
	HTMLBody  string
	TextBody  string
}

// Sender performs a single delivery attempt. Retry policy lives with the caller.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender selects the transport from config.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Transport {
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			return nil, fmt.Errorf("mailgun transport requires domain and api key")
		}
		return NewMailgunSender(cfg), nil
	case "smtp", "":
		return NewSMTPSender(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email transport: %s", cfg.Transport)
	}
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender sends through an SMTP relay with STARTTLS.
func NewSMTPSender(cfg config.EmailConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderPassword),
		from:   cfg.SenderEmail,
	}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	m.AddAlternative("text/html", msg.HTMLBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.Recipient, err)
	}
	return nil
}

type mailgunSender struct {
	client httpclient.HTTPClient
	domain string
	from   string
}

// NewMailgunSender sends through the Mailgun HTTP API.
func NewMailgunSender(cfg config.EmailConfig) Sender {
	return &mailgunSender{
		client: httpclient.NewWithBasicAuth("https://api.mailgun.net/v3", 10*time.Second, "api", cfg.MailgunAPIKey),
		domain: cfg.MailgunDomain,
		from:   cfg.SenderEmail,
	}
}

func (m *mailgunSender) Send(ctx context.Context, msg Message) error {
	form := map[string]string{
		"from":    m.from,
		"to":      msg.Recipient,
		"subject": msg.Subject,
		"text":    msg.TextBody,
		"html":    msg.HTMLBody,
	}

	resp, err := m.client.PostForm(ctx, fmt.Sprintf("/%s/messages", m.domain), form, nil, nil)
	if err != nil {
		return fmt.Errorf("mailgun send to %s: %w", msg.Recipient, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailgun api returned status %d: %s", resp.StatusCode, string(resp.Body))
	}
	return nil
}
