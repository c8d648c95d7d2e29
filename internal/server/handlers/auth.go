package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/service/auth"
)

const (
	authCookie = "auth_token"
	claimsKey  = "auth_claims"
)

// AuthHandler serves /api/auth and guards the rest of the API.
type AuthHandler struct {
	svc          *auth.Service
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler constructs the auth handler. secureCookie marks the session cookie
// Secure and should be true outside development.
func NewAuthHandler(svc *auth.Service, secureCookie bool, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, secureCookie: secureCookie, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// RequireAuth rejects requests without a valid auth_token cookie and stores the
// claims on the context.
func (h *AuthHandler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(authCookie)
		if err != nil || token == "" {
			WriteError(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		claims, err := h.svc.Parse(token)
		if err != nil {
			WriteError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Check reports whether an admin account exists.
func (h *AuthHandler) Check(c *gin.Context) {
	status, err := h.svc.Status(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Setup creates the default admin account once.
func (h *AuthHandler) Setup(c *gin.Context) {
	creds, err := h.svc.Setup(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Admin user created successfully",
		"defaultCredentials": creds,
	})
}

// CreateAdmin adds another admin account.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if _, err := h.svc.CreateAdmin(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin user created successfully"})
}

// Login sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(authCookie, token, int(h.svc.TTL().Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged in successfully"})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(authCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ChangePassword updates the signed-in admin's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	claims, ok := c.MustGet(claimsKey).(*auth.Claims)
	if !ok {
		WriteError(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), claims.Username, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
