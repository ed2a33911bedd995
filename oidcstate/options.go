package oidcstate

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	now    func() time.Time
	random io.Reader
	logger zerolog.Logger
}

func serviceDefaults() serviceOptions {
	return serviceOptions{
		now:    time.Now,
		random: rand.Reader,
		logger: log.Logger,
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRandom overrides the source used for the signing secret and nonces. It
// must be cryptographically secure outside of tests.
func WithRandom(r io.Reader) Option {
	return func(o *serviceOptions) {
		if r != nil {
			o.random = r
		}
	}
}

// WithLogger sets the logger used for issue, rejection and sweep events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = l
	}
}

// GenerateOption configures a single GenerateSecureState call.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	redirectURI *string
}

// WithRedirectURI attaches a post-authentication redirect to the state.
func WithRedirectURI(uri string) GenerateOption {
	return func(o *generateOptions) {
		o.redirectURI = &uri
	}
}
