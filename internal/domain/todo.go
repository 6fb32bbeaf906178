package domain

import "time"

// Priority of a todo item
type Priority string

// Allowed priorities
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the enumerated priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo Model
type Todo struct {
	ID          uint       `json:"id" gorm:"primaryKey"`                                             // Primary key
	Title       string     `json:"title" gorm:"size:255;not null"`                                   // Required title
	Description *string    `json:"description" gorm:"type:text"`                                     // Optional description
	IsCompleted bool       `json:"isCompleted" gorm:"not null;default:false"`                        // Completion flag
	DueDate     *time.Time `json:"dueDate"`                                                          // Optional due date
	Priority    Priority   `json:"priority" gorm:"type:varchar(10);not null;default:'medium';index"` // low, medium or high
	UserID      uint       `json:"userId" gorm:"not null;index"`                                     // Foreign key to the owning User
	CreatedAt   time.Time  `json:"createdAt"`                                                        // Set by the store on insert
	UpdatedAt   time.Time  `json:"updatedAt"`                                                        // Set by the store on update
}

// TodoPage is one window of a filtered todo listing
type TodoPage struct {
	Data       []Todo `json:"data"`       // Todos on this page
	Total      int64  `json:"total"`      // Count matching the filter, ignoring pagination
	Page       int    `json:"page"`       // Current page, 1-indexed
	Limit      int    `json:"limit"`      // Page size
	TotalPages int    `json:"totalPages"` // ceil(total/limit)
}

// NewTodoPage computes page metadata for a result window
func NewTodoPage(todos []Todo, total int64, page, limit int) TodoPage {
	if todos == nil {
		todos = []Todo{}
	}
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++ // Partial last page
	}
	return TodoPage{
		Data:       todos,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(totalPages),
	}
}
