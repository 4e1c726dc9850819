package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kessa99/task-manager-back/internal/auth"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/events"
	"github.com/kessa99/task-manager-back/internal/usecase"
)

type authFixture struct {
	db          *memDB
	clock       *testClock
	tokens      *auth.Tokens
	revocations *memRevocations
	events      *fakePublisher
	uc          *usecase.AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		db:          newMemDB(),
		clock:       newTestClock(),
		revocations: &memRevocations{},
		events:      &fakePublisher{},
	}
	f.tokens = newTokens(t, f.clock)

	uc, err := usecase.NewAuthUsecase(memUsers{f.db}, f.revocations, testHasher, f.tokens, f.events, discardLogger())
	if err != nil {
		t.Fatalf("new auth usecase: %v", err)
	}
	f.uc = uc
	return f
}

func (f *authFixture) register(t *testing.T, addr, password string) *domain.User {
	t.Helper()
	u, err := f.uc.Register(context.Background(), usecase.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     addr,
		Password:  password,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

// ---- Register ----

func TestRegister_CreatesUnverifiedMember(t *testing.T) {
	f := newAuthFixture(t)

	u := f.register(t, "  A@X.com ", "Secret1!")

	if u.Email != "a@x.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if u.Verified {
		t.Error("expected registered user to be unverified")
	}
	if u.Role != domain.RoleMember {
		t.Errorf("expected default role MEMBER, got %s", u.Role)
	}
	if u.PasswordHash == "Secret1!" || !testHasher.Verify("Secret1!", u.PasswordHash) {
		t.Error("expected a bcrypt hash of the password")
	}
	if len(f.events.types) != 1 || f.events.types[0] != events.UserRegistered {
		t.Errorf("expected user.registered event, got %v", f.events.types)
	}
}

func TestRegister_RejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "Secret1!")

	_, err := f.uc.Register(context.Background(), usecase.RegisterInput{Email: "A@X.COM", Password: "Secret1!"})
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.RegisterInput
		want  error
	}{
		{"bad email", usecase.RegisterInput{Email: "nope", Password: "Secret1!"}, domain.ErrEmailInvalidFormat},
		{"weak password", usecase.RegisterInput{Email: "a@x.com", Password: "secret12"}, domain.ErrPasswordWeak},
		{"unknown role", usecase.RegisterInput{Email: "a@x.com", Password: "Secret1!", Role: "ADMIN"}, domain.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, err := f.uc.Register(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(f.db.users) != 0 {
				t.Fatal("expected no user to be stored")
			}
		})
	}
}

func TestRegister_CustomPasswordPolicy(t *testing.T) {
	db := newMemDB()
	policyErr := domain.ErrPasswordWeak.WithMessage("company policy")
	uc, err := usecase.NewAuthUsecase(memUsers{db}, nil, testHasher, newTokens(t, newTestClock()), events.Nop{}, discardLogger(),
		usecase.WithPasswordPolicy(func(string) error { return policyErr }))
	if err != nil {
		t.Fatalf("new auth usecase: %v", err)
	}

	_, err = uc.Register(context.Background(), usecase.RegisterInput{Email: "a@x.com", Password: "Secret1!"})
	if !errors.Is(err, domain.ErrPasswordWeak) || err.Error() != "company policy" {
		t.Fatalf("expected injected policy error, got %v", err)
	}
}

// ---- Login ----

func TestLogin_Scenario(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "Secret1!")

	pair, err := f.uc.Login(context.Background(), "a@x.com", "Secret1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if pair.TokenType != "bearer" {
		t.Errorf("expected bearer token type, got %q", pair.TokenType)
	}

	_, err = f.uc.Login(context.Background(), "a@x.com", "Wrong1!!")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmailAndBadPasswordAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "Secret1!")

	_, errUnknown := f.uc.Login(context.Background(), "ghost@x.com", "Secret1!")
	_, errBadPass := f.uc.Login(context.Background(), "a@x.com", "Wrong1!!")

	if errUnknown != errBadPass {
		t.Fatalf("expected identical errors, got %v and %v", errUnknown, errBadPass)
	}
}

// ---- Refresh ----

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "Secret1!")
	pair, _ := f.uc.Login(context.Background(), "a@x.com", "Secret1!")

	_, err := f.uc.Refresh(context.Background(), pair.AccessToken)
	if !errors.Is(err, domain.ErrInvalidTokenType) {
		t.Fatalf("expected ErrInvalidTokenType, got %v", err)
	}
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.uc.Refresh(context.Background(), "not.a.token")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefresh_AccessExpiresBeforeRefresh(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "Secret1!")
	pair, err := f.uc.Login(context.Background(), "a@x.com", "Secret1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.Advance(auth.DefaultAccessTTL + time.Minute)

	if !f.tokens.IsExpired(pair.AccessToken) {
		t.Fatal("expected access token to be expired")
	}
	if _, err := f.uc.CurrentUser(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired for old access token, got %v", err)
	}

	fresh, err := f.uc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if f.tokens.IsExpired(fresh.AccessToken) {
		t.Fatal("expected the new access token to be valid")
	}
	if _, err := f.uc.CurrentUser(context.Background(), fresh.AccessToken); err != nil {
		t.Fatalf("current user with new token: %v", err)
	}

	// No rotation: the presented refresh token keeps working.
	if _, err := f.uc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
}

func TestRefresh_ExpiredRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "Secret1!")
	pair, _ := f.uc.Login(context.Background(), "a@x.com", "Secret1!")

	f.clock.Advance(auth.DefaultRefreshTTL + auth.DefaultAccessTTL)

	_, err := f.uc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefresh_UserGone(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "a@x.com", "Secret1!")
	pair, _ := f.uc.Login(context.Background(), "a@x.com", "Secret1!")

	delete(f.db.users, u.ID)

	_, err := f.uc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ---- Logout ----

func TestLogout_RevokesRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "Secret1!")
	pair, _ := f.uc.Login(context.Background(), "a@x.com", "Secret1!")

	if err := f.uc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err := f.uc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestLogout_WithoutRevocationStoreIsNoop(t *testing.T) {
	db := newMemDB()
	clock := newTestClock()
	tokens := newTokens(t, clock)
	uc, err := usecase.NewAuthUsecase(memUsers{db}, nil, testHasher, tokens, events.Nop{}, discardLogger())
	if err != nil {
		t.Fatalf("new auth usecase: %v", err)
	}
	u := seedUser(t, db, "a@x.com", "Secret1!", domain.RoleMember, true)
	pair, _ := tokens.IssuePair(u)

	if err := uc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := uc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("refresh after no-op logout: %v", err)
	}
}

// ---- CurrentUser ----

func TestCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "a@x.com", "Secret1!")
	pair, _ := f.uc.Login(context.Background(), "a@x.com", "Secret1!")

	got, err := f.uc.CurrentUser(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected %s, got %s", u.ID, got.ID)
	}

	tests := map[string]struct {
		token string
		want  error
	}{
		"missing":       {"", domain.ErrUnauthenticated},
		"garbage":       {"garbage", domain.ErrInvalidToken},
		"refresh token": {pair.RefreshToken, domain.ErrInvalidTokenType},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := f.uc.CurrentUser(context.Background(), tt.token); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
