package recipient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// =====================================================
// Recipient Resolution
// =====================================================

var (
	// ErrInvalidInput means the recipients payload had a shape we do not accept.
	ErrInvalidInput = errors.New("invalid recipients input")
	// ErrNoRecipients means the input was well formed but yielded zero usable
	// addresses.
	ErrNoRecipients = errors.New("no valid recipients")
)

// Recipient is a single send target with its personalization variables.
// Email is always a non-empty string containing "@"; variable keys are
// lowercase.
type Recipient struct {
	Email     string            `json:"email"`
	Variables map[string]string `json:"variables"`
}

// Entry is one element of a structured recipients payload. It accepts either
// a bare address string or an object carrying per-recipient data.
type Entry struct {
	Email string            `json:"email"`
	Data  map[string]string `json:"data"`
}

// UnmarshalJSON accepts "a@x.com" as shorthand for {"email": "a@x.com"}.
func (e *Entry) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var addr string
		if err := json.Unmarshal(b, &addr); err != nil {
			return err
		}
		e.Email = addr
		e.Data = nil
		return nil
	}

	type plain Entry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// fieldKind tags the shape of the free-form recipients field.
type fieldKind int

const (
	kindNone fieldKind = iota
	kindText
	kindList
)

// Field holds the polymorphic recipients value: absent, a comma-separated
// string, or an array of addresses.
type Field struct {
	kind fieldKind
	text string
	list []string
}

// Text wraps a comma-separated recipients string.
func Text(s string) Field {
	return Field{kind: kindText, text: s}
}

// List wraps an array of recipient addresses.
func List(ss []string) Field {
	return Field{kind: kindList, list: ss}
}

// IsZero reports whether no recipients value was supplied.
func (f Field) IsZero() bool {
	return f.kind == kindNone
}

// ParseField decodes the raw JSON of a recipients field. null and absent
// payloads decode to the zero Field; anything other than a string or an
// array of strings is ErrInvalidInput.
func ParseField(raw json.RawMessage) (Field, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Field{}, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return Text(text), nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return List(list), nil
	}

	return Field{}, fmt.Errorf("%w: expected string or array of strings", ErrInvalidInput)
}

// Resolve turns raw recipient input into the final dispatch list. A
// structured payload takes priority over the free-form field; within the
// free-form field a string is split on commas and an array is taken as-is.
// Entries without an "@" are dropped.
func Resolve(field Field, structured []Entry) ([]Recipient, error) {
	if len(structured) > 0 {
		return fromStructured(structured)
	}

	switch field.kind {
	case kindText:
		return fromText(field.text)
	case kindList:
		return fromList(field.list)
	default:
		return nil, ErrInvalidInput
	}
}

func fromStructured(entries []Entry) ([]Recipient, error) {
	out := make([]Recipient, 0, len(entries))
	for _, e := range entries {
		addr := strings.TrimSpace(e.Email)
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		vars := make(map[string]string, len(e.Data))
		for k, v := range e.Data {
			vars[strings.ToLower(strings.TrimSpace(k))] = v
		}
		out = append(out, Recipient{Email: addr, Variables: vars})
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	return out, nil
}

func fromText(text string) ([]Recipient, error) {
	parts := strings.Split(text, ",")
	out := make([]Recipient, 0, len(parts))
	for _, p := range parts {
		addr := strings.TrimSpace(p)
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		out = append(out, Recipient{Email: addr, Variables: map[string]string{}})
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	return out, nil
}

func fromList(list []string) ([]Recipient, error) {
	out := make([]Recipient, 0, len(list))
	for _, item := range list {
		addr := strings.TrimSpace(item)
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		out = append(out, Recipient{Email: addr, Variables: map[string]string{}})
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	return out, nil
}
