package handlers

import (
	"log"

	"github.com/gin-gonic/gin"

	"hms-server/internal/middleware"
	"hms-server/internal/services"
	"hms-server/internal/session"
	"hms-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Users   *services.UserService
	Revoker session.Revoker
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *services.UserService, revoker session.Revoker) *AuthHandler {
	return &AuthHandler{Users: users, Revoker: revoker}
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !utils.BindJSON(c, &req) {
		return
	}

	res, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "User registered successfully", res)
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	res, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Login successful", res)
}

// Me returns the caller's own record.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Not authorized")
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// Logout revokes the token used for this request.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaimsFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Not authorized")
		return
	}

	if err := h.Revoker.Revoke(c.Request.Context(), claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		log.Printf("logout: %v", err)
		utils.InternalServerError(c, "Server error")
		return
	}
	utils.Success(c, "Logged out successfully", nil)
}
