package api

import (
	"encoding/json" // JSON decode errors
	"errors"        // Error matching
	"fmt"           // Message formatting
	"io"            // Empty body detection
	"net/http"      // HTTP status codes
	"reflect"       // Field kinds
	"strconv"       // Query coercion errors
	"strings"       // String manipulation

	"todo_system/internal/domain"     // Error taxonomy
	"todo_system/internal/middleware" // Request context keys

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding validation errors
	"github.com/sirupsen/logrus"             // Logging library
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string            `json:"error"`            // Human readable summary
	Fields map[string]string `json:"fields,omitempty"` // Field-level messages for 400s
}

// respondError maps a service error onto the HTTP error taxonomy
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Username or email already exists"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Todo not found"})
	default:
		_ = c.Error(err)
		logrus.WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(middleware.RequestIDKey),
			"error":      err.Error(),
		}).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// bindingError converts gin binding failures into a ValidationError
func bindingError(err error) *domain.ValidationError {
	verr := &domain.ValidationError{}

	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var numErr *strconv.NumError

	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			verr.Add(jsonFieldName(fe), fieldMessage(fe))
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		verr.Add(field, "must be of type "+typeErr.Type.String())
	case errors.As(err, &syntaxErr):
		verr.Add("body", "malformed JSON")
	case errors.As(err, &numErr):
		verr.Add("query", fmt.Sprintf("%q is not a number", numErr.Num))
	case errors.Is(err, io.EOF):
		verr.Add("body", "is required")
	default:
		verr.Add("body", err.Error())
	}
	return verr
}

// jsonFieldName prefers the json/form tag name registered on the validator
func jsonFieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return name
	}
	return strings.ToLower(fe.StructField())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func isUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
