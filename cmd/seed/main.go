// seed creates an owner, a member, a task and an assignment in the local dev
// database. Re-running it reuses whatever already exists.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kessa99/task-manager-back/internal/auth"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/infrastructure/postgres"
)

const (
	ownerEmail   = "owner@test.local"
	memberEmail  = "member@test.local"
	seedPassword = "Password1"
	seedTask     = "Seed task: review the onboarding checklist"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := postgres.Migrate(dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{URL: dbURL, MaxConns: 2})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	tasks := postgres.NewTaskRepository(pool)
	assigns := postgres.NewAssignRepository(pool)
	hasher := auth.NewHasher(10)

	owner, err := ensureUser(ctx, users, hasher, "Olivia", "Owner", ownerEmail, domain.RoleOwner)
	if err != nil {
		log.Fatalf("seed owner: %v", err)
	}
	member, err := ensureUser(ctx, users, hasher, "Marc", "Member", memberEmail, domain.RoleMember)
	if err != nil {
		log.Fatalf("seed member: %v", err)
	}

	task, err := ensureTask(ctx, tasks)
	if err != nil {
		log.Fatalf("seed task: %v", err)
	}

	_, err = assigns.Create(ctx, &domain.Assign{TaskID: task.ID, UserID: member.ID})
	if err != nil && !errors.Is(err, domain.ErrAssignmentAlreadyExists) {
		log.Fatalf("seed assignment: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Owner:    %s / %s  (id %s)\n", ownerEmail, seedPassword, owner.ID)
	fmt.Printf("  Member:   %s / %s  (id %s)\n", memberEmail, seedPassword, member.ID)
	fmt.Printf("  Task:     %s  (id %s)\n", task.Title, task.ID)
	fmt.Println()
	fmt.Println("Log in as the owner:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", ownerEmail, seedPassword)
	fmt.Println()
	fmt.Println("Then invite someone to the task:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/invitations -H \"Authorization: Bearer $JWT\" \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' -d '{\"email\":\"new@test.local\",\"task_id\":\"%s\"}'\n", task.ID)
	fmt.Println()
	fmt.Println("With EMAIL_PROVIDER=log the acceptance link is printed in the server log.")
}

func ensureUser(ctx context.Context, users *postgres.UserRepository, hasher *auth.Hasher, first, last, email string, role domain.Role) (*domain.User, error) {
	u, err := users.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		return nil, err
	}
	return users.Create(ctx, &domain.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
		Verified:     true,
		Role:         role,
	})
}

func ensureTask(ctx context.Context, tasks *postgres.TaskRepository) (*domain.Task, error) {
	all, err := tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.Title == seedTask {
			return t, nil
		}
	}
	return tasks.Create(ctx, &domain.Task{
		Title:       seedTask,
		Description: "Created by cmd/seed.",
		Status:      domain.TaskTodo,
		Priority:    domain.PriorityMedium,
	})
}
