package domain

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxEmailLen        = 255
	minPasswordLen     = 8
	maxPasswordBytes   = 72 // bcrypt input limit
	minInvitationToken = 16
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lower-cases raw, then validates the result.
func NormalizeEmail(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case e == "":
		return "", ErrEmailRequired
	case len(e) > maxEmailLen:
		return "", ErrEmailTooLong
	case !emailPattern.MatchString(e):
		return "", ErrEmailInvalidFormat
	}
	return e, nil
}

// ValidatePassword is the default password policy.
func ValidatePassword(p string) error {
	if p == "" {
		return ErrPasswordRequired
	}
	if len([]rune(p)) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if len(p) > maxPasswordBytes {
		return ErrPasswordTooLong
	}

	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrPasswordWeak
	}
	return nil
}

// ValidateInvitationToken rejects values that cannot be a generated token.
func ValidateInvitationToken(token string) error {
	t := strings.TrimSpace(token)
	if t == "" {
		return ErrTokenRequired
	}
	if len(t) < minInvitationToken {
		return ErrTokenTooShort
	}
	return nil
}
