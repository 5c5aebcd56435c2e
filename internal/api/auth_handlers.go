package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/taskflow/internal/service"
	"github.com/taskflow/taskflow/pkg/auth"
)

// AuthHandlers serves the registration, login and logout endpoints.
type AuthHandlers struct {
	auth *service.AuthService
}

// NewAuthHandlers creates auth handlers.
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: authService}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var authFieldNames = map[string]string{
	"Email":    "email",
	"Password": "password",
}

var authMessages = map[string]string{
	"Email.required":    "Email is required",
	"Password.required": "Password is required",
}

// Register handles POST /register.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationFailed(c, bindingErrors(err, authFieldNames, authMessages))
		return
	}

	_, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken), errors.Is(err, auth.ErrInvalidEmail):
			respondValidationFailed(c, fieldErrors{"email": {err.Error()}})
			return
		case errors.Is(err, auth.ErrWeakPassword):
			respondValidationFailed(c, fieldErrors{"password": {err.Error()}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Registration successful",
	})
}

// Login handles POST /login.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationFailed(c, bindingErrors(err, authFieldNames, authMessages))
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "Invalid email or password",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}

// Logout handles POST /logout; it revokes every token of the caller.
func (h *AuthHandlers) Logout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
