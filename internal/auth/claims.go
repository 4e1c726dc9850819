package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kessa99/task-manager-back/internal/domain"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

var errWrongKind = errors.New("wrong token kind")

// Claims is implemented by the two token variants.
type Claims interface {
	Kind() TokenKind
	UserID() string
}

// AccessClaims carries the identity snapshot used to authorize API calls.
type AccessClaims struct {
	Type      TokenKind   `json:"type"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Verified  bool        `json:"verified"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) Kind() TokenKind { return c.Type }
func (c *AccessClaims) UserID() string  { return c.Subject }

// Validate is called by the jwt parser after the registered claims checks.
func (c *AccessClaims) Validate() error {
	if c.Type != KindAccess {
		return errWrongKind
	}
	if c.Subject == "" {
		return jwt.ErrTokenInvalidSubject
	}
	return nil
}

// RefreshClaims only identifies the subject; it carries no email or role.
type RefreshClaims struct {
	Type TokenKind `json:"type"`
	jwt.RegisteredClaims
}

func (c *RefreshClaims) Kind() TokenKind { return c.Type }
func (c *RefreshClaims) UserID() string  { return c.Subject }

func (c *RefreshClaims) Validate() error {
	if c.Type != KindRefresh {
		return errWrongKind
	}
	if c.Subject == "" {
		return jwt.ErrTokenInvalidSubject
	}
	return nil
}

// kindOnly reads just the discriminator.
type kindOnly struct {
	Type TokenKind `json:"type"`
	jwt.RegisteredClaims
}
