package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kessa99/task-manager-back/internal/domain"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	TokenTypeBearer = "bearer"
)

type TokenConfig struct {
	Secret     []byte
	Algorithm  string // HS256, HS384 or HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Pair is what login, refresh and invitation acceptance hand back to the client.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Tokens issues and decodes signed access and refresh tokens. It holds no
// mutable state after construction.
type Tokens struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Tokens)

// WithClock overrides the wall clock used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(t *Tokens) { t.now = now }
}

func NewTokens(cfg TokenConfig, opts ...Option) (*Tokens, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token engine: empty signing secret")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token engine: unsupported signing algorithm %q", alg)
	}

	t := &Tokens{
		secret:     cfg.Secret,
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	if t.accessTTL <= 0 {
		t.accessTTL = DefaultAccessTTL
	}
	if t.refreshTTL <= 0 {
		t.refreshTTL = DefaultRefreshTTL
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Tokens) AccessTTL() time.Duration { return t.accessTTL }

func (t *Tokens) IssueAccess(u *domain.User) (string, error) {
	now := t.now()
	claims := &AccessClaims{
		Type:      KindAccess,
		Email:     u.Email,
		Role:      u.Role,
		Verified:  u.Verified,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}
	return t.sign(claims)
}

func (t *Tokens) IssueRefresh(u *domain.User) (string, error) {
	now := t.now()
	claims := &RefreshClaims{
		Type: KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
	}
	return t.sign(claims)
}

func (t *Tokens) IssuePair(u *domain.User) (*Pair, error) {
	access, err := t.IssueAccess(u)
	if err != nil {
		return nil, err
	}
	refresh, err := t.IssueRefresh(u)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int(t.accessTTL.Seconds()),
	}, nil
}

func (t *Tokens) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// ParseAccess verifies signature, algorithm, expiry and the "access" discriminator.
func (t *Tokens) ParseAccess(raw string) (*AccessClaims, error) {
	c := &AccessClaims{}
	if _, err := t.parser().ParseWithClaims(raw, c, t.key); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseRefresh verifies signature, algorithm, expiry and the "refresh" discriminator.
func (t *Tokens) ParseRefresh(raw string) (*RefreshClaims, error) {
	c := &RefreshClaims{}
	if _, err := t.parser().ParseWithClaims(raw, c, t.key); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode returns the typed claims of a valid, unexpired token, or false for
// anything malformed, tampered, expired or signed with another algorithm.
func (t *Tokens) Decode(raw string) (Claims, bool) {
	kind, ok := t.Kind(raw)
	if !ok {
		return nil, false
	}
	switch kind {
	case KindAccess:
		c, err := t.ParseAccess(raw)
		if err != nil {
			return nil, false
		}
		return c, true
	case KindRefresh:
		c, err := t.ParseRefresh(raw)
		if err != nil {
			return nil, false
		}
		return c, true
	}
	return nil, false
}

// IsExpired is true when the token cannot be decoded or its expiry has passed.
func (t *Tokens) IsExpired(raw string) bool {
	_, ok := t.Decode(raw)
	return !ok
}

// Kind reads the discriminator of a correctly signed token without checking
// its expiry, so callers can tell "wrong type" apart from "expired".
func (t *Tokens) Kind(raw string) (TokenKind, bool) {
	var c kindOnly
	if _, err := t.parser(jwt.WithoutClaimsValidation()).ParseWithClaims(raw, &c, t.key); err != nil {
		return "", false
	}
	switch c.Type {
	case KindAccess, KindRefresh:
		return c.Type, true
	}
	return "", false
}

func (t *Tokens) parser(extra ...jwt.ParserOption) *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
		// exp is inclusive: a token is still valid at exactly its expiry instant.
		jwt.WithLeeway(time.Nanosecond),
	}
	return jwt.NewParser(append(opts, extra...)...)
}

func (t *Tokens) key(_ *jwt.Token) (any, error) {
	return t.secret, nil
}
