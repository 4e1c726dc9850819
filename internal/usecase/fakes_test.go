package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kessa99/task-manager-back/internal/auth"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/email"
	"github.com/kessa99/task-manager-back/internal/events"
)

// ---- in-memory stores ----

// memDB backs every fake repository. The fake TxManager snapshots it and
// restores the snapshot when the transaction function fails.
type memDB struct {
	mu          sync.Mutex
	users       map[string]domain.User
	tasks       map[string]domain.Task
	assigns     map[string]domain.Assign
	invitations map[string]domain.Invitation

	// failAssign, when set, is returned by assignment creation.
	failAssign error
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[string]domain.User{},
		tasks:       map[string]domain.Task{},
		assigns:     map[string]domain.Assign{},
		invitations: map[string]domain.Invitation{},
	}
}

type memTx struct{ db *memDB }

func (m memTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.db.mu.Lock()
	users, tasks := maps.Clone(m.db.users), maps.Clone(m.db.tasks)
	assigns, invitations := maps.Clone(m.db.assigns), maps.Clone(m.db.invitations)
	m.db.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.db.mu.Lock()
		m.db.users, m.db.tasks, m.db.assigns, m.db.invitations = users, tasks, assigns, invitations
		m.db.mu.Unlock()
		return err
	}
	return nil
}

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.db.users[c.ID] = c
	return &c, nil
}

func (r memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, addr string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, addr) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) List(_ context.Context) ([]*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.User
	for _, u := range r.db.users {
		out = append(out, &u)
	}
	return out, nil
}

func (r memUsers) SetVerified(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Verified = true
	r.db.users[id] = u
	return &u, nil
}

type memTasks struct{ db *memDB }

// withAssignees must be called with the lock held.
func (r memTasks) withAssignees(t domain.Task) *domain.Task {
	t.AssignedTo = []string{}
	for _, a := range r.db.assigns {
		if a.TaskID == t.ID {
			t.AssignedTo = append(t.AssignedTo, a.UserID)
		}
	}
	return &t
}

func (r memTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *t
	c.ID = uuid.NewString()
	r.db.tasks[c.ID] = c
	return r.withAssignees(c), nil
}

func (r memTasks) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return r.withAssignees(t), nil
}

func (r memTasks) List(_ context.Context) ([]*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.db.tasks {
		out = append(out, r.withAssignees(t))
	}
	return out, nil
}

func (r memTasks) ListForUser(_ context.Context, userID string) ([]*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.db.tasks {
		if full := r.withAssignees(t); full.IsAssignedTo(userID) {
			out = append(out, full)
		}
	}
	return out, nil
}

func (r memTasks) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tasks[t.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	r.db.tasks[t.ID] = *t
	return r.withAssignees(*t), nil
}

func (r memTasks) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.db.tasks, id)
	for aid, a := range r.db.assigns {
		if a.TaskID == id {
			delete(r.db.assigns, aid)
		}
	}
	return nil
}

type memAssigns struct{ db *memDB }

func (r memAssigns) Create(_ context.Context, a *domain.Assign) (*domain.Assign, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failAssign != nil {
		return nil, r.db.failAssign
	}
	for _, existing := range r.db.assigns {
		if existing.TaskID == a.TaskID && existing.UserID == a.UserID {
			return nil, domain.ErrAssignmentAlreadyExists
		}
	}
	c := *a
	c.ID = uuid.NewString()
	r.db.assigns[c.ID] = c
	return &c, nil
}

func (r memAssigns) FindByID(_ context.Context, id string) (*domain.Assign, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.assigns[id]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	return &a, nil
}

func (r memAssigns) List(_ context.Context) ([]*domain.Assign, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Assign
	for _, a := range r.db.assigns {
		out = append(out, &a)
	}
	return out, nil
}

func (r memAssigns) ListForUser(_ context.Context, userID string) ([]*domain.Assign, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Assign
	for _, a := range r.db.assigns {
		if a.UserID == userID {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r memAssigns) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.assigns[id]; !ok {
		return domain.ErrAssignmentNotFound
	}
	delete(r.db.assigns, id)
	return nil
}

type memInvitations struct{ db *memDB }

func (r memInvitations) Create(_ context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.invitations {
		if !existing.Accepted && existing.TaskID == inv.TaskID && strings.EqualFold(existing.Email, inv.Email) {
			return nil, domain.ErrInvitationAlreadyExists
		}
	}
	c := *inv
	c.ID = uuid.NewString()
	r.db.invitations[c.ID] = c
	return &c, nil
}

func (r memInvitations) FindByID(_ context.Context, id string) (*domain.Invitation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	inv, ok := r.db.invitations[id]
	if !ok {
		return nil, domain.ErrInvitationNotFound
	}
	return &inv, nil
}

func (r memInvitations) FindByToken(_ context.Context, token string) (*domain.Invitation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, inv := range r.db.invitations {
		if inv.Token == token {
			return &inv, nil
		}
	}
	return nil, domain.ErrInvitationNotFound
}

func (r memInvitations) FindByEmail(_ context.Context, addr string) ([]*domain.Invitation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Invitation
	for _, inv := range r.db.invitations {
		if strings.EqualFold(inv.Email, addr) {
			out = append(out, &inv)
		}
	}
	return out, nil
}

func (r memInvitations) ListPending(_ context.Context, now time.Time) ([]*domain.Invitation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Invitation
	for _, inv := range r.db.invitations {
		if inv.IsValid(now) {
			out = append(out, &inv)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Invitation) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r memInvitations) MarkAccepted(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	inv, ok := r.db.invitations[id]
	if !ok || inv.Accepted {
		return domain.ErrInvitationAlreadyAccepted
	}
	inv.Accepted = true
	r.db.invitations[id] = inv
	return nil
}

func (r memInvitations) Delete(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.invitations[id]; !ok {
		return false, nil
	}
	delete(r.db.invitations, id)
	return true, nil
}

func (r memInvitations) DeleteExpiredPending(_ context.Context, addr, taskID string, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, inv := range r.db.invitations {
		if !inv.Accepted && inv.TaskID == taskID && strings.EqualFold(inv.Email, addr) && inv.ExpiresAt.Before(now) {
			delete(r.db.invitations, id)
		}
	}
	return nil
}

func (r memInvitations) PurgeExpired(_ context.Context, cutoff time.Time, limit int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for id, inv := range r.db.invitations {
		if n == limit {
			break
		}
		if !inv.Accepted && inv.ExpiresAt.Before(cutoff) {
			delete(r.db.invitations, id)
			n++
		}
	}
	return n, nil
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *memRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Time{}
	}
	r.revoked[tokenID] = until
	return nil
}

func (r *memRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// ---- side-effect fakes ----

type fakeNotifier struct {
	mu          sync.Mutex
	invitations []email.Invitation
	welcomes    []string
	err         error
}

func (n *fakeNotifier) SendInvitation(_ context.Context, inv email.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invitations = append(n.invitations, inv)
	return n.err
}

func (n *fakeNotifier) SendWelcome(_ context.Context, to, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, to)
	return n.err
}

type fakePublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.Type)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTokens(t *testing.T, clock *testClock) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens(auth.TokenConfig{Secret: []byte(testJWTKey), Algorithm: "HS256"}, auth.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	return tokens
}

var testHasher = auth.NewHasher(4)

// seedUser stores a user with the given password and returns it.
func seedUser(t *testing.T, db *memDB, addr, password string, role domain.Role, verified bool) *domain.User {
	t.Helper()
	hash, err := testHasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := memUsers{db}.Create(context.Background(), &domain.User{
		FirstName:    "Test",
		LastName:     string(role),
		Email:        addr,
		PasswordHash: hash,
		Verified:     verified,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedTask(t *testing.T, db *memDB, title string) *domain.Task {
	t.Helper()
	task, err := memTasks{db}.Create(context.Background(), &domain.Task{
		Title:    title,
		Status:   domain.TaskTodo,
		Priority: domain.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}
