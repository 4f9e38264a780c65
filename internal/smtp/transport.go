package smtp

import "context"

// Message is one fully rendered email ready for handoff to the server.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
	Text     string
}

// Result reports the outcome of a single delivery attempt.
type Result struct {
	Success   bool
	MessageID string
	// ErrorDetail carries the server's rejection text when Success is false.
	ErrorDetail string
}

// Transport hands messages to an SMTP server. Verify proves the credentials
// can open an authenticated session without sending anything; Send delivers
// one message. Send returns an error only for invalid input; a rejected
// delivery comes back as a Result with Success false so a run can keep going.
type Transport interface {
	Verify(ctx context.Context, creds Credentials) error
	Send(ctx context.Context, creds Credentials, msg *Message) (*Result, error)
}
