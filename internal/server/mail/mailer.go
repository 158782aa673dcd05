// Package mail is the outbound notification collaborator. Delivery is
// best-effort: send failures are logged by the caller and never fail the
// request that triggered them.
package mail

import "context"

// Message is one outbound email. HTML may be empty, in which case only the
// text body is sent.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
