package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/auth"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/transport/http/handler"
	"github.com/kessa99/task-manager-back/internal/usecase"
)

type fakeAuthUsecase struct {
	register func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	login    func(ctx context.Context, email, password string) (*auth.Pair, error)
	refresh  func(ctx context.Context, raw string) (*auth.Pair, error)
	logout   func(ctx context.Context, raw string) error
}

func (f *fakeAuthUsecase) Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
	return f.register(ctx, input)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*auth.Pair, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) Refresh(ctx context.Context, raw string) (*auth.Pair, error) {
	return f.refresh(ctx, raw)
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, raw string) error {
	return f.logout(ctx, raw)
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	h := handler.NewAuthHandler(uc, discard)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/me", authAs(member), h.Me)
	return r
}

var testPair = &auth.Pair{AccessToken: "a.b.c", RefreshToken: "d.e.f", TokenType: auth.TokenTypeBearer, ExpiresIn: 1800}

func TestRegister_Created(t *testing.T) {
	var got usecase.RegisterInput
	uc := &fakeAuthUsecase{register: func(_ context.Context, in usecase.RegisterInput) (*domain.User, error) {
		got = in
		return &domain.User{ID: "u-1", FirstName: in.FirstName, LastName: in.LastName, Email: "ada@example.com", Role: domain.RoleMember}, nil
	}}

	w, env := do(t, newAuthEngine(uc), http.MethodPost, "/auth/register",
		`{"first_name":"Ada","last_name":"Lovelace","email":"Ada@Example.com","password":"Secret1!"}`)

	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if got.Email != "Ada@Example.com" || got.Role != "" {
		t.Errorf("unexpected input %+v", got)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("response must not carry password material")
	}

	var user map[string]any
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatal(err)
	}
	if user["verified"] != false || user["role"] != "MEMBER" {
		t.Errorf("unexpected user %v", user)
	}
}

func TestRegister_MissingNamesIs422(t *testing.T) {
	uc := &fakeAuthUsecase{}

	w, env := do(t, newAuthEngine(uc), http.MethodPost, "/auth/register", `{"email":"a@example.com","password":"Secret1!"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if len(env.Errors) != 2 || env.Errors[0].Field != "first_name" {
		t.Errorf("unexpected errors %+v", env.Errors)
	}
}

func TestRegister_DuplicateIs409(t *testing.T) {
	uc := &fakeAuthUsecase{register: func(context.Context, usecase.RegisterInput) (*domain.User, error) {
		return nil, domain.ErrUserAlreadyExists
	}}

	w, env := do(t, newAuthEngine(uc), http.MethodPost, "/auth/register",
		`{"first_name":"A","last_name":"B","email":"a@example.com","password":"Secret1!"}`)

	if w.Code != http.StatusConflict || firstCode(env) != "USER_ALREADY_EXISTS" {
		t.Errorf("status = %d code = %s", w.Code, firstCode(env))
	}
	if env.Errors[0].Field != "email" {
		t.Errorf("field = %q, want email", env.Errors[0].Field)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"success", nil, http.StatusOK},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"store failure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{login: func(context.Context, string, string) (*auth.Pair, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return testPair, nil
			}}

			w, env := do(t, newAuthEngine(uc), http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"x"}`)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.err != nil {
				return
			}

			var pair auth.Pair
			if err := json.Unmarshal(env.Data, &pair); err != nil {
				t.Fatal(err)
			}
			if pair != *testPair {
				t.Errorf("pair = %+v", pair)
			}
		})
	}
}

func TestRefresh_MapsTokenErrors(t *testing.T) {
	tests := map[*domain.Error]int{
		domain.ErrInvalidTokenType: http.StatusUnauthorized,
		domain.ErrTokenExpired:     http.StatusUnauthorized,
		domain.ErrTokenRevoked:     http.StatusUnauthorized,
		domain.ErrUserNotFound:     http.StatusNotFound,
	}
	for want, status := range tests {
		t.Run(want.Code, func(t *testing.T) {
			uc := &fakeAuthUsecase{refresh: func(context.Context, string) (*auth.Pair, error) { return nil, want }}

			w, env := do(t, newAuthEngine(uc), http.MethodPost, "/auth/refresh", `{"refresh_token":"x.y.z"}`)
			if w.Code != status || firstCode(env) != want.Code {
				t.Errorf("status = %d code = %s", w.Code, firstCode(env))
			}
		})
	}
}

func TestRefresh_RequiresToken(t *testing.T) {
	w, env := do(t, newAuthEngine(&fakeAuthUsecase{}), http.MethodPost, "/auth/refresh", `{}`)

	if w.Code != http.StatusUnprocessableEntity || env.Errors[0].Field != "refresh_token" {
		t.Errorf("status = %d errors = %+v", w.Code, env.Errors)
	}
}

func TestLogout(t *testing.T) {
	var revoked string
	uc := &fakeAuthUsecase{logout: func(_ context.Context, raw string) error {
		revoked = raw
		return nil
	}}

	w, _ := do(t, newAuthEngine(uc), http.MethodPost, "/auth/logout", `{"refresh_token":"x.y.z"}`)

	if w.Code != http.StatusOK || revoked != "x.y.z" {
		t.Errorf("status = %d revoked = %q", w.Code, revoked)
	}
}

func TestMe(t *testing.T) {
	w, env := do(t, newAuthEngine(&fakeAuthUsecase{}), http.MethodGet, "/auth/me", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var user map[string]any
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatal(err)
	}
	if user["id"] != member.ID || user["email"] != member.Email {
		t.Errorf("unexpected user %v", user)
	}
}
