package mail

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogTransport writes mails to the log instead of sending them. Development
// only: the code ends up in the log output.
type LogTransport struct {
	logger logging.Logger
}

func NewLogTransport(logger logging.Logger) *LogTransport {
	return &LogTransport{logger: logger.With("module", "mail")}
}

func (t *LogTransport) Deliver(ctx context.Context, msg Message) error {
	t.logger.Info(ctx, "mail delivered to log",
		"to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
