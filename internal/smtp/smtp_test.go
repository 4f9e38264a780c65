package smtp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialsValidate(t *testing.T) {
	valid := Credentials{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "hunter2",
	}

	tests := []struct {
		name    string
		mutate  func(*Credentials)
		wantErr bool
	}{
		{"valid", func(c *Credentials) {}, false},
		{"valid with tls", func(c *Credentials) { c.UseTLS = true; c.Port = 465 }, false},
		{"missing host", func(c *Credentials) { c.Host = "" }, true},
		{"zero port", func(c *Credentials) { c.Port = 0 }, true},
		{"negative port", func(c *Credentials) { c.Port = -1 }, true},
		{"missing user", func(c *Credentials) { c.Username = "" }, true},
		{"missing password", func(c *Credentials) { c.Password = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMailerRejectsInvalidInput(t *testing.T) {
	m := NewMailer()
	ctx := context.Background()

	err := m.Verify(ctx, Credentials{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Send(ctx, Credentials{}, &Message{To: "a@x.com"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	creds := Credentials{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"}
	_, err = m.Send(ctx, creds, nil)
	assert.Error(t, err)

	_, err = m.Send(ctx, creds, &Message{})
	assert.Error(t, err)
}

func TestMailerSetDialTimeout(t *testing.T) {
	m := NewMailer()
	m.SetDialTimeout(3 * time.Second)
	assert.Equal(t, 3*time.Second, m.dialTimeout)

	// Non-positive values keep the current timeout.
	m.SetDialTimeout(0)
	assert.Equal(t, 3*time.Second, m.dialTimeout)
}
