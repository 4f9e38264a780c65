package smtp

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials means the SMTP configuration is missing a required
// field or carries an unusable value.
var ErrInvalidCredentials = errors.New("invalid smtp credentials")

// Credentials is the per-request SMTP account used for a send run. The JSON
// field names follow the client payload, so "secure" toggles implicit TLS.
type Credentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	UseTLS   bool   `json:"secure"`
	Username string `json:"user"`
	Password string `json:"password"`
}

// Validate checks that every field required to open a session is present.
func (c Credentials) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: missing host", ErrInvalidCredentials)
	case c.Port <= 0:
		return fmt.Errorf("%w: missing or invalid port", ErrInvalidCredentials)
	case c.Username == "":
		return fmt.Errorf("%w: missing user", ErrInvalidCredentials)
	case c.Password == "":
		return fmt.Errorf("%w: missing password", ErrInvalidCredentials)
	}
	return nil
}
