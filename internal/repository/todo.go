package repository

import (
	"context" // Request scoped operations
	"fmt"     // Error wrapping
	"strings" // String manipulation

	"todo_system/internal/domain" // Importing domain models

	"golang.org/x/sync/errgroup" // Concurrent count and page
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Order clauses
)

// TodoRepository defines owner-scoped todo persistence. Every lookup filters
// by user id, so rows of other users behave as if they did not exist.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id, userID uint) (*domain.Todo, error)
	List(ctx context.Context, userID uint, filter domain.TodoFilter) ([]domain.Todo, int64, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, todo *domain.Todo) error
}

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository instance.
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil { // Insert todo
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

func (r *todoRepository) FindByID(ctx context.Context, id, userID uint) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&todo).Error // Owner scoped lookup
	if err != nil {
		return nil, fmt.Errorf("failed to find todo %d for user %d: %w", id, userID, err)
	}
	return &todo, nil
}

// List expects a normalized filter. The count and the page are read concurrently.
func (r *todoRepository) List(ctx context.Context, userID uint, filter domain.TodoFilter) ([]domain.Todo, int64, error) {
	var (
		total int64
		todos []domain.Todo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.filtered(gctx, userID, filter).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count todos for user %d: %w", userID, err)
		}
		return nil
	})
	g.Go(func() error {
		err := r.filtered(gctx, userID, filter).
			Order(clause.OrderByColumn{Column: clause.Column{Name: filter.SortColumn()}, Desc: filter.Descending()}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: filter.Descending()}).
			Offset(filter.Offset()).
			Limit(filter.Limit).
			Find(&todos).Error
		if err != nil {
			return fmt.Errorf("failed to list todos for user %d: %w", userID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}

// likeEscaper makes LIKE wildcards in a search term match literally
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// filtered starts a fresh query with the owner scope and every filter predicate ANDed.
func (r *todoRepository) filtered(ctx context.Context, userID uint, filter domain.TodoFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("user_id = ?", userID)
	switch filter.Status {
	case domain.StatusCompleted:
		query = query.Where("is_completed = ?", true)
	case domain.StatusPending:
		query = query.Where("is_completed = ?", false)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!'", pattern) // '!' avoids backslash quoting differences between drivers
	}
	return query
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if err := r.db.WithContext(ctx).Save(todo).Error; err != nil { // Persist every column
		return fmt.Errorf("failed to update todo %d: %w", todo.ID, err)
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, todo *domain.Todo) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", todo.UserID).Delete(&domain.Todo{}, todo.ID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete todo %d: %w", todo.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete todo %d: %w", todo.ID, gorm.ErrRecordNotFound)
	}
	return nil
}
