package handlers

import (
	"crypto/subtle"
	"net/http"

	"transient-cache-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// AuthHandler issues tokens for the cache admin API.
type AuthHandler struct {
	issuer   *auth.Issuer
	password []byte
}

// NewAuthHandler returns a handler that accepts any username with the
// shared admin password.
func NewAuthHandler(issuer *auth.Issuer, adminPassword string) *AuthHandler {
	return &AuthHandler{issuer: issuer, password: []byte(adminPassword)}
}

// Login handles the login endpoint
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), h.password) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
		return
	}

	clientID := "admin:" + req.Username
	token, err := h.issuer.GenerateToken(clientID, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		ClientID: clientID,
		Username: req.Username,
		Message:  "Login successful",
	})
}
