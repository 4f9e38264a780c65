package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// =====================================================
// SMTP Delivery via go-mail
// =====================================================

const defaultDialTimeout = 10 * time.Second

// Mailer is the production Transport. Every call builds a fresh client from
// the request's credentials because each run can target a different server.
type Mailer struct {
	dialTimeout time.Duration
}

// NewMailer creates a Mailer with the default dial timeout.
func NewMailer() *Mailer {
	return &Mailer{dialTimeout: defaultDialTimeout}
}

// SetDialTimeout overrides how long connection and handshake may take.
func (m *Mailer) SetDialTimeout(d time.Duration) {
	if d > 0 {
		m.dialTimeout = d
	}
}

func (m *Mailer) client(creds Credentials) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(creds.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(creds.Username),
		mail.WithPassword(creds.Password),
		mail.WithTimeout(m.dialTimeout),
	}
	if creds.UseTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return mail.NewClient(creds.Host, opts...)
}

// Verify opens and closes an authenticated session without sending.
func (m *Mailer) Verify(ctx context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	c, err := m.client(creds)
	if err != nil {
		return fmt.Errorf("building smtp client: %w", err)
	}
	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("connecting to %s:%d: %w", creds.Host, creds.Port, err)
	}
	return c.Close()
}

// Send delivers one message. A server-side rejection is reported in the
// Result rather than as an error.
func (m *Mailer) Send(ctx context.Context, creds Credentials, msg *Message) (*Result, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if msg == nil || msg.To == "" {
		return nil, fmt.Errorf("message has no recipient")
	}

	mm := mail.NewMsg()
	if msg.FromName != "" {
		if err := mm.FromFormat(msg.FromName, msg.From); err != nil {
			return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
		}
	} else {
		if err := mm.From(msg.From); err != nil {
			return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
		}
	}
	if err := mm.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	// Strip CR/LF from the subject to prevent header injection.
	mm.Subject(strings.NewReplacer("\r", "", "\n", "").Replace(msg.Subject))
	mm.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		mm.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}
	mm.SetMessageID()

	c, err := m.client(creds)
	if err != nil {
		return nil, fmt.Errorf("building smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, mm); err != nil {
		return &Result{Success: false, ErrorDetail: err.Error()}, nil
	}

	id := strings.Trim(mm.GetMessageID(), "<>")
	if id == "" {
		id = uuid.NewString()
	}
	return &Result{Success: true, MessageID: id}, nil
}
