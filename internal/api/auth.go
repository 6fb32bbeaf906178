package api

import (
	"net/http" // HTTP status codes

	"todo_system/internal/middleware" // Authenticated user lookup
	"todo_system/internal/service"    // Auth service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"` // Unique username
	Email    string `json:"email" binding:"required,email,max=255"`   // Unique email
	Password string `json:"password" binding:"required,min=6,max=72"` // bcrypt reads at most 72 bytes
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// RegisterHandler godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "New user"
// @Success 201 {object} domain.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func RegisterHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindingError(err))
			return
		}
		user, err := auth.Register(c.Request.Context(), service.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// LoginHandler godoc
// @Summary Log in
// @Description Verifies credentials and returns a bearer token with the user profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} service.LoginResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func LoginHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindingError(err))
			return
		}
		result, err := auth.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if isUnauthorized(err) {
				// Same body whether the username or the password was wrong
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ProfileHandler godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func ProfileHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}
		user, err := auth.Profile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
