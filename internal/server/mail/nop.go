package mail

import (
	"context"

	"github.com/rcabrera/citywatch/internal/logging"
)

// NopMailer is the fallback when no SMTP host is configured: it logs each
// message it drops and reports success.
type NopMailer struct {
	log logging.Logger
}

func NewNopMailer(log logging.Logger) *NopMailer {
	return &NopMailer{log: log}
}

func (m *NopMailer) Send(ctx context.Context, msg Message) error {
	m.log.Debug(ctx, "mail delivery disabled, dropping message", "to", msg.To, "subject", msg.Subject)
	return nil
}
