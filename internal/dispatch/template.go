package dispatch

import (
	"errors"
	"fmt"
)

// ErrInvalidTemplate means the email content is missing a required field.
var ErrInvalidTemplate = errors.New("invalid email template")

// Template is the message content for a run, before personalization. Engine
// selects the substitution syntax: empty or "simple" for {key} placeholders,
// "liquid" for full Liquid templates.
type Template struct {
	From     string `json:"from"`
	FromName string `json:"fromName"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	Engine   string `json:"engine"`
}

// Validate checks the fields every send needs.
func (t Template) Validate() error {
	switch {
	case t.From == "":
		return fmt.Errorf("%w: missing from address", ErrInvalidTemplate)
	case t.Subject == "":
		return fmt.Errorf("%w: missing subject", ErrInvalidTemplate)
	case t.HTML == "":
		return fmt.Errorf("%w: missing html body", ErrInvalidTemplate)
	}
	return nil
}
