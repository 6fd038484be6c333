package client

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/hoodctl/internal/hood"
)

const (
	DefaultAttempts     = 2
	DefaultBackoff      = time.Second
	DefaultCommandDelay = 100 * time.Millisecond
	DefaultSettleDelay  = 200 * time.Millisecond
)

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLegacyPIN sets the PIN prefixed to legacy commands.
func WithLegacyPIN(pin string) Option {
	return func(c *Client) {
		if pin != "" {
			c.pin = pin
		}
	}
}

// WithAttempts sets how many read cycles UpdateDevice runs before giving up.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithBackoff sets the pause between UpdateDevice attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// WithCommandDelay sets the pause between acquiring a session and writing a command.
func WithCommandDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.commandDelay = d
		}
	}
}

// WithSettleDelay sets the wait between a command and the status read in ExecuteWithStatus.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.settleDelay = d
		}
	}
}

func defaults(c *Client) {
	c.logger = logrus.New()
	c.pin = hood.DefaultLegacyPIN
	c.attempts = DefaultAttempts
	c.backoff = DefaultBackoff
	c.commandDelay = DefaultCommandDelay
	c.settleDelay = DefaultSettleDelay
}
