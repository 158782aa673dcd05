package mail

import (
	"context"
	"sync"
)

// MemoryMailer records messages instead of delivering them. Used by tests
// and when no SMTP host is configured.
type MemoryMailer struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, makes every Send fail.
	Err error
}

func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

func (m *MemoryMailer) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages. Test helper.
func (m *MemoryMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
