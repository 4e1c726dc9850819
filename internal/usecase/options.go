package usecase

import (
	"time"

	"github.com/kessa99/task-manager-back/internal/domain"
)

type options struct {
	passwordPolicy func(string) error
	now            func() time.Time
}

type Option func(*options)

// WithPasswordPolicy replaces domain.ValidatePassword.
func WithPasswordPolicy(fn func(string) error) Option {
	return func(o *options) { o.passwordPolicy = fn }
}

// WithClock overrides the wall clock used for invitation expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) options {
	o := options{
		passwordPolicy: domain.ValidatePassword,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
