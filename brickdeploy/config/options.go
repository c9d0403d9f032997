package config

import "time"

type Option func(*Config)

// WithHost returns an Option that sets the brick host.
func WithHost(host string) Option {
	return func(c *Config) {
		c.Brick.Host = host
	}
}

// WithPort returns an Option that sets the SSH port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Brick.Port = port
	}
}

// WithUser returns an Option that sets the login user.
func WithUser(user string) Option {
	return func(c *Config) {
		c.Brick.User = user
	}
}

// WithPassword returns an Option that sets the login and sudo password.
func WithPassword(password string) Option {
	return func(c *Config) {
		c.Brick.Password = password
	}
}

// WithTimeout returns an Option that sets the connection timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Brick.Timeout = timeout
	}
}

func (c *Config) Apply(options ...Option) {
	for _, option := range options {
		option(c)
	}
}
