package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/transport/http/middleware"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	response.UseJSONFieldNames()
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	owner  = &domain.User{ID: "11111111-1111-4111-8111-111111111111", FirstName: "Olga", LastName: "Owner", Email: "owner@example.com", Role: domain.RoleOwner, Verified: true}
	member = &domain.User{ID: "22222222-2222-4222-8222-222222222222", FirstName: "Max", LastName: "Member", Email: "member@example.com", Role: domain.RoleMember, Verified: true}
)

// staticUser authenticates every bearer token as the same user.
type staticUser struct{ user *domain.User }

func (s staticUser) CurrentUser(context.Context, string) (*domain.User, error) {
	return s.user, nil
}

func authAs(u *domain.User) gin.HandlerFunc {
	return middleware.Authenticate(staticUser{u}, discard)
}

type envelope struct {
	Success bool                  `json:"success"`
	Data    json.RawMessage       `json:"data"`
	Message *string               `json:"message"`
	Errors  []response.ErrorEntry `json:"errors"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode body %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func firstCode(env envelope) string {
	if len(env.Errors) == 0 {
		return ""
	}
	return env.Errors[0].Code
}
