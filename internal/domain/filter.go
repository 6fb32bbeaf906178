package domain

import (
	"fmt"     // Message formatting
	"math"    // Offset bounds
	"strings" // String manipulation
)

// List defaults
const (
	DefaultPage      = 1
	DefaultLimit     = 10
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "DESC"
)

// Status filter values
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// sortColumns maps the JSON field names clients sort by to table columns
var sortColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
	"isCompleted": "is_completed",
	"dueDate":     "due_date",
	"priority":    "priority",
	"userId":      "user_id",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// TodoFilter selects and orders a page of an owner's todos
type TodoFilter struct {
	Status    string   // completed, pending or empty
	Priority  Priority // exact match or empty
	Search    string   // substring of title, case-insensitive
	Page      int      // 1-indexed page
	Limit     int      // page size
	SortBy    string   // JSON field name
	SortOrder string   // ASC or DESC
}

// Normalize fills defaults and validates every field, reporting all problems at once
func (f *TodoFilter) Normalize() error {
	verr := &ValidationError{}

	if f.Page == 0 {
		f.Page = DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.SortBy == "" {
		f.SortBy = DefaultSortBy
	}
	if f.SortOrder == "" {
		f.SortOrder = DefaultSortOrder
	}
	f.SortOrder = strings.ToUpper(f.SortOrder)
	f.Search = strings.TrimSpace(f.Search)

	if f.Status != "" && f.Status != StatusCompleted && f.Status != StatusPending {
		verr.Add("status", "must be one of: completed pending")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		verr.Add("priority", "must be one of: low medium high")
	}
	if f.Page < 1 {
		verr.Add("page", "must be at least 1")
	}
	if f.Limit < 1 {
		verr.Add("limit", "must be at least 1")
	}
	if f.Page >= 1 && f.Limit >= 1 && f.Page-1 > math.MaxInt/f.Limit {
		verr.Add("page", "is too large for the requested limit") // (page-1)*limit must fit in an int
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		verr.Add("sortBy", fmt.Sprintf("unknown field %q", f.SortBy))
	}
	if f.SortOrder != "ASC" && f.SortOrder != "DESC" {
		verr.Add("sortOrder", "must be one of: ASC DESC")
	}
	return verr.OrNil()
}

// SortColumn returns the table column for SortBy; call after Normalize
func (f TodoFilter) SortColumn() string {
	return sortColumns[f.SortBy]
}

// Descending reports the sort direction
func (f TodoFilter) Descending() bool {
	return f.SortOrder == "DESC"
}

// Offset is the number of rows skipped before the page
func (f TodoFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// CacheKey identifies the filter inside a per-user cache namespace
func (f TodoFilter) CacheKey() string {
	return fmt.Sprintf("status=%s:priority=%s:search=%q:page=%d:limit=%d:sort=%s:%s",
		f.Status, f.Priority, f.Search, f.Page, f.Limit, f.SortBy, f.SortOrder)
}
