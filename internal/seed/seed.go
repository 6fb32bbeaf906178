// Package seed loads demo users and todos through the service layer.
package seed

import (
	"context" // Request scoped operations
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"time"    // Relative due dates

	"todo_system/internal/domain"  // Importing domain models
	"todo_system/internal/service" // Business services

	"github.com/sirupsen/logrus" // Logging library
)

// DemoPassword is shared by every seeded account
const DemoPassword = "password123"

type demoUser struct {
	username string
	email    string
	todos    []service.CreateTodoInput
}

func demoData(now time.Time) []demoUser {
	days := func(n int) *time.Time {
		t := now.Add(time.Duration(n) * 24 * time.Hour).UTC()
		return &t
	}
	text := func(s string) *string { return &s }
	priority := func(p domain.Priority) *domain.Priority { return &p }
	done := true

	return []demoUser{
		{
			username: "john_doe",
			email:    "john@example.com",
			todos: []service.CreateTodoInput{
				{
					Title:       "Complete project documentation",
					Description: text("Write comprehensive documentation for the todo app"),
					Priority:    priority(domain.PriorityHigh),
					DueDate:     days(7),
				},
				{
					Title:       "Review code changes",
					Description: text("Review pull requests from team members"),
					Priority:    priority(domain.PriorityMedium),
					IsCompleted: &done,
				},
				{
					Title:       "Buy groceries",
					Description: text("Milk, bread, eggs, and fruits"),
					Priority:    priority(domain.PriorityLow),
					DueDate:     days(2),
				},
			},
		},
		{
			username: "jane_smith",
			email:    "jane@example.com",
			todos: []service.CreateTodoInput{
				{
					Title:       "Prepare presentation",
					Description: text("Create slides for quarterly review"),
					Priority:    priority(domain.PriorityHigh),
					DueDate:     days(3),
				},
			},
		},
	}
}

// Run registers the demo users and their todos. Users that already exist are
// skipped together with their todos, so running twice is harmless.
func Run(ctx context.Context, auth service.AuthService, todos service.TodoService) (int, error) {
	created := 0
	for _, u := range demoData(time.Now()) {
		user, err := auth.Register(ctx, service.RegisterInput{
			Username: u.username,
			Email:    u.email,
			Password: DemoPassword,
		})
		if errors.Is(err, domain.ErrConflict) {
			logrus.WithField("username", u.username).Info("Seed user exists, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed user %s: %w", u.username, err)
		}
		for _, input := range u.todos {
			if _, err := todos.Create(ctx, input, user.ID); err != nil {
				return created, fmt.Errorf("seed todo %q: %w", input.Title, err)
			}
			created++
		}
	}
	return created, nil
}
