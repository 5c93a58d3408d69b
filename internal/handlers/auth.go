package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gridstore/bridge/internal/middleware"
	"github.com/gridstore/bridge/internal/services"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	userService *services.UserService
	jwtConfig   middleware.JWTConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtConfig: middleware.JWTConfig{
			Secret:     jwtSecret,
			Expiration: 24 * time.Hour,
		},
	}
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.Email, h.jwtConfig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Email: user.Email, Token: token})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.Email, h.jwtConfig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Email: user.Email, Token: token})
}

// Profile handles getting the authenticated user's profile
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Activate handles marking a user account as activated
func (h *AuthHandler) Activate(c *gin.Context) {
	if err := h.userService.Activate(c.Request.Context(), c.Param("email")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activated": true})
}
