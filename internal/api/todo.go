package api

import (
	"errors"   // Error matching
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Due date parsing

	"todo_system/internal/domain"     // Importing domain models
	"todo_system/internal/middleware" // Authenticated user lookup
	"todo_system/internal/service"    // Todo service

	"github.com/gin-gonic/gin" // Gin web framework
)

// CreateTodoRequest is the payload of POST /todos
type CreateTodoRequest struct {
	Title       string           `json:"title" binding:"required,max=255"`                   // Required title
	Description *string          `json:"description"`                                        // Optional description
	DueDate     *string          `json:"dueDate"`                                            // ISO date or date-time
	Priority    *domain.Priority `json:"priority" binding:"omitempty,oneof=low medium high"` // Defaults to medium
	IsCompleted *bool            `json:"isCompleted"`                                        // Defaults to false
}

// UpdateTodoRequest is the payload of PATCH /todos/:id; absent fields keep their value
type UpdateTodoRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	DueDate     *string          `json:"dueDate"`
	Priority    *domain.Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	IsCompleted *bool            `json:"isCompleted"`
}

// ListTodosQuery is the query string of GET /todos
type ListTodosQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=completed pending"`
	Priority  string `form:"priority" binding:"omitempty,oneof=low medium high"`
	Search    string `form:"search"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	Limit     int    `form:"limit,default=10" binding:"min=1"`
	SortBy    string `form:"sortBy,default=createdAt"`
	SortOrder string `form:"sortOrder,default=DESC"`
}

// DeleteResponse confirms a delete
type DeleteResponse struct {
	Message string `json:"message"`
}

// CreateTodoHandler godoc
// @Summary Create a todo
// @Tags todos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateTodoRequest true "New todo"
// @Success 201 {object} domain.Todo
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /todos [post]
func CreateTodoHandler(todos service.TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}
		var req CreateTodoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindingError(err))
			return
		}
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			respondError(c, err)
			return
		}
		todo, err := todos.Create(c.Request.Context(), service.CreateTodoInput{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     dueDate,
			Priority:    req.Priority,
			IsCompleted: req.IsCompleted,
		}, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, todo)
	}
}

// ListTodosHandler godoc
// @Summary List todos
// @Description Filtered, searched, sorted and paginated list of the caller's todos
// @Tags todos
// @Security BearerAuth
// @Produce json
// @Param status query string false "completed or pending"
// @Param priority query string false "low, medium or high"
// @Param search query string false "Substring of title"
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size, default 10"
// @Param sortBy query string false "Todo field, default createdAt"
// @Param sortOrder query string false "ASC or DESC, default DESC"
// @Success 200 {object} domain.TodoPage
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /todos [get]
func ListTodosHandler(todos service.TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}
		var q ListTodosQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			respondError(c, queryBindingError(c, err))
			return
		}
		filter := domain.TodoFilter{
			Status:    q.Status,
			Priority:  domain.Priority(q.Priority),
			Search:    q.Search,
			Page:      q.Page,
			Limit:     q.Limit,
			SortBy:    q.SortBy,
			SortOrder: q.SortOrder,
		}
		// Reject unknown sort fields before the service is reached
		if err := filter.Normalize(); err != nil {
			respondError(c, err)
			return
		}
		page, err := todos.List(c.Request.Context(), userID, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetTodoHandler godoc
// @Summary Get a todo
// @Tags todos
// @Security BearerAuth
// @Produce json
// @Param id path int true "Todo id"
// @Success 200 {object} domain.Todo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /todos/{id} [get]
func GetTodoHandler(todos service.TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, id, ok := ownerAndID(c)
		if !ok {
			return
		}
		todo, err := todos.Get(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, todo)
	}
}

// UpdateTodoHandler godoc
// @Summary Update a todo
// @Description Partial update; omitted fields keep their value
// @Tags todos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Todo id"
// @Param request body UpdateTodoRequest true "Fields to change"
// @Success 200 {object} domain.Todo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /todos/{id} [patch]
func UpdateTodoHandler(todos service.TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, id, ok := ownerAndID(c)
		if !ok {
			return
		}
		var req UpdateTodoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindingError(err))
			return
		}
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			respondError(c, err)
			return
		}
		todo, err := todos.Update(c.Request.Context(), id, service.UpdateTodoInput{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     dueDate,
			Priority:    req.Priority,
			IsCompleted: req.IsCompleted,
		}, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, todo)
	}
}

// DeleteTodoHandler godoc
// @Summary Delete a todo
// @Tags todos
// @Security BearerAuth
// @Produce json
// @Param id path int true "Todo id"
// @Success 200 {object} DeleteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /todos/{id} [delete]
func DeleteTodoHandler(todos service.TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, id, ok := ownerAndID(c)
		if !ok {
			return
		}
		msg, err := todos.Delete(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, DeleteResponse{Message: msg})
	}
}

// ownerAndID reads the caller and the :id path parameter, responding on failure
func ownerAndID(c *gin.Context) (uint, uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return 0, 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, domain.NewValidationError("id", "must be a positive integer"))
		return 0, 0, false
	}
	return userID, uint(id), true
}

// dueDateLayouts are the accepted ISO 8601 shapes, most specific first
var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.NewValidationError("dueDate", "must be an ISO 8601 date string")
}

// queryBindingError names the query parameter that failed numeric coercion
func queryBindingError(c *gin.Context, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		for _, param := range []string{"page", "limit"} {
			if c.Query(param) == numErr.Num {
				return domain.NewValidationError(param, fmt.Sprintf("%q is not a number", numErr.Num))
			}
		}
	}
	return bindingError(err)
}
