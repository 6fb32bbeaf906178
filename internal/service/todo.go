package service

import (
	"context" // Request scoped operations
	"errors"  // Error matching
	"strings" // String manipulation
	"time"    // Time durations

	"todo_system/internal/domain"     // Importing domain models
	"todo_system/internal/repository" // Data access
	"todo_system/internal/utils"      // JWT and cache helpers

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// DeleteMessage confirms a successful delete.
const DeleteMessage = "Todo deleted successfully"

// CreateTodoInput carries the fields of a new todo. Nil pointers take defaults.
type CreateTodoInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    *domain.Priority
	IsCompleted *bool
}

// UpdateTodoInput is a partial patch; only non-nil fields are applied.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *domain.Priority
	IsCompleted *bool
}

// TodoService defines owner-scoped todo operations.
type TodoService interface {
	Create(ctx context.Context, input CreateTodoInput, ownerID uint) (*domain.Todo, error)
	List(ctx context.Context, ownerID uint, filter domain.TodoFilter) (*domain.TodoPage, error)
	Get(ctx context.Context, id, ownerID uint) (*domain.Todo, error)
	Update(ctx context.Context, id uint, input UpdateTodoInput, ownerID uint) (*domain.Todo, error)
	Delete(ctx context.Context, id, ownerID uint) (string, error)
}

type todoService struct {
	todos    repository.TodoRepository
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewTodoService creates a new TodoService. A nil Redis client disables list caching.
func NewTodoService(todos repository.TodoRepository, rdb *redis.Client, cacheTTL time.Duration) TodoService {
	return &todoService{
		todos:    todos,
		rdb:      rdb,
		cacheTTL: cacheTTL,
	}
}

func (s *todoService) Create(ctx context.Context, input CreateTodoInput, ownerID uint) (*domain.Todo, error) {
	title := strings.TrimSpace(input.Title)
	verr := &domain.ValidationError{}
	if title == "" {
		verr.Add("title", "is required")
	}
	if input.Priority != nil && !input.Priority.Valid() {
		verr.Add("priority", "must be one of: low medium high")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		Title:       title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    domain.PriorityMedium,
		UserID:      ownerID,
	}
	if input.Priority != nil {
		todo.Priority = *input.Priority
	}
	if input.IsCompleted != nil {
		todo.IsCompleted = *input.IsCompleted
	}

	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)

	logrus.WithFields(logrus.Fields{
		"user_id": ownerID,
		"todo_id": todo.ID,
	}).Info("Todo created")
	return todo, nil
}

func (s *todoService) List(ctx context.Context, ownerID uint, filter domain.TodoFilter) (*domain.TodoPage, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}

	cacheKey, cacheable := s.listCacheKey(ctx, ownerID, filter)
	if cacheable {
		var cached domain.TodoPage
		found, err := utils.GetCache(ctx, s.rdb, cacheKey, &cached)
		switch {
		case err != nil && found:
			// Stored page no longer decodes; evict it and let the next read repopulate
			logrus.WithFields(logrus.Fields{"user_id": ownerID, "error": err.Error()}).Warn("Evicting corrupt todo cache entry")
			if err := utils.DeleteCache(ctx, s.rdb, cacheKey); err != nil {
				logrus.WithFields(logrus.Fields{"user_id": ownerID, "error": err.Error()}).Warn("Todo cache eviction failed")
			}
			cacheable = false
		case err != nil:
			logrus.WithFields(logrus.Fields{"user_id": ownerID, "error": err.Error()}).Warn("Todo cache read failed")
		case found:
			return &cached, nil
		}
	}

	todos, total, err := s.todos.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	page := domain.NewTodoPage(todos, total, filter.Page, filter.Limit) // Build page metadata

	if cacheable {
		if err := utils.SetCache(ctx, s.rdb, cacheKey, page, s.cacheTTL); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": ownerID, "error": err.Error()}).Warn("Todo cache write failed")
		}
	}
	return &page, nil
}

func (s *todoService) Get(ctx context.Context, id, ownerID uint) (*domain.Todo, error) {
	todo, err := s.todos.FindByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return todo, nil
}

func (s *todoService) Update(ctx context.Context, id uint, input UpdateTodoInput, ownerID uint) (*domain.Todo, error) {
	verr := &domain.ValidationError{}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		verr.Add("title", "must not be empty")
	}
	if input.Priority != nil && !input.Priority.Valid() {
		verr.Add("priority", "must be one of: low medium high")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	todo, err := s.Get(ctx, id, ownerID) // Also enforces ownership
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		todo.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		todo.Description = input.Description
	}
	if input.DueDate != nil {
		todo.DueDate = input.DueDate
	}
	if input.Priority != nil {
		todo.Priority = *input.Priority
	}
	if input.IsCompleted != nil {
		todo.IsCompleted = *input.IsCompleted
	}

	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return todo, nil
}

func (s *todoService) Delete(ctx context.Context, id, ownerID uint) (string, error) {
	todo, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	if err := s.todos.Delete(ctx, todo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	s.invalidate(ctx, ownerID)

	logrus.WithFields(logrus.Fields{
		"user_id": ownerID,
		"todo_id": id,
	}).Info("Todo deleted")
	return DeleteMessage, nil
}

// listCacheKey resolves the versioned cache key; false means skip the cache.
func (s *todoService) listCacheKey(ctx context.Context, ownerID uint, filter domain.TodoFilter) (string, bool) {
	if s.rdb == nil {
		return "", false
	}
	version, err := utils.GetVersion(ctx, s.rdb, utils.TodoVersionKey(ownerID))
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": ownerID, "error": err.Error()}).Warn("Todo cache version read failed")
		return "", false
	}
	return utils.TodoListKey(ownerID, version, filter.CacheKey()), true
}

func (s *todoService) invalidate(ctx context.Context, ownerID uint) {
	if s.rdb == nil {
		return
	}
	if err := utils.BumpVersion(ctx, s.rdb, utils.TodoVersionKey(ownerID)); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": ownerID, "error": err.Error()}).Warn("Todo cache invalidation failed")
	}
}
