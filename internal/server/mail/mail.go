// Package mail delivers verification and password reset codes. The content is
// rendered once by a Composer and handed to a transport: SMTP, Amazon SES, or
// the log for local development.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

// Sender is the outbound mail capability the account services use.
type Sender interface {
	SendVerificationCode(ctx context.Context, email, name, code string) error
	SendResetCode(ctx context.Context, email, name, code string) error
}

// Message is a rendered email.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport puts a rendered Message on the wire.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// Composer renders code mails and passes them to a Transport.
type Composer struct {
	transport Transport
	from      string
	codeTTL   time.Duration
}

// NewComposer returns a Sender that renders mails from `from` stating that
// codes are valid for codeTTL.
func NewComposer(t Transport, from string, codeTTL time.Duration) *Composer {
	return &Composer{transport: t, from: from, codeTTL: codeTTL}
}

func (c *Composer) SendVerificationCode(ctx context.Context, email, name, code string) error {
	return c.send(ctx, verificationMail, email, name, code)
}

func (c *Composer) SendResetCode(ctx context.Context, email, name, code string) error {
	return c.send(ctx, resetMail, email, name, code)
}

func (c *Composer) send(ctx context.Context, kind mailKind, email, name, code string) error {
	msg, err := render(kind, mailData{Name: name, Code: code, Minutes: int(c.codeTTL.Minutes())})
	if err != nil {
		return err
	}
	msg.From = c.from
	msg.To = email

	if err := c.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("send %s mail: %w", kind, err)
	}
	return nil
}

// New builds the Sender selected by cfg.MailDriver.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (Sender, error) {
	var t Transport

	switch cfg.MailDriver {
	case config.MailDriverLog, "":
		t = NewLogTransport(logger)
	case config.MailDriverSMTP:
		t = NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	case config.MailDriverSES:
		ses, err := NewSESTransport(ctx, cfg.SESRegion, cfg.SESEndpoint, cfg.SESAccessKey, cfg.SESSecretKey)
		if err != nil {
			return nil, fmt.Errorf("ses init: %w", err)
		}
		t = ses
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}

	return NewComposer(t, cfg.MailFrom, cfg.CodeTTL), nil
}
