package notify

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"github.com/quicklaunchweb/leadrelay/pkg/logging"
)

// SMTPSender implements EmailSender over a direct SMTP connection via
// go-mail, for tenants that deliver through their own relay instead of
// SendGrid.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	logger   *logging.Logger
}

// NewSMTPSender creates an SMTP-backed sender. Returns nil when no host is
// configured.
func NewSMTPSender(host string, port int, username, password string, logger *logging.Logger) *SMTPSender {
	if host == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		logger:   logger,
	}
}

// Send delivers the message over SMTP.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	m := gomail.NewMsg()

	fromName, fromAddr := splitAddress(msg.From)
	if fromName != "" {
		if err := m.FromFormat(fromName, fromAddr); err != nil {
			return fmt.Errorf("notify: smtp from: %w", err)
		}
	} else {
		if err := m.From(fromAddr); err != nil {
			return fmt.Errorf("notify: smtp from: %w", err)
		}
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("notify: smtp to: %w", err)
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return fmt.Errorf("notify: smtp bcc: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("notify: smtp reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("notify: smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Error("smtp send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: smtp send failed: %w", err)
	}

	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject)
	return nil
}

var _ EmailSender = (*SMTPSender)(nil)
