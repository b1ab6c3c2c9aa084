package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"hms-server/internal/models"
	"hms-server/internal/services"
	"hms-server/internal/session"
	"hms-server/internal/utils"
)

// Context keys set by AuthMiddleware.
const (
	ctxUser   = "user"
	ctxUserID = "userID"
	ctxRole   = "userRole"
	ctxClaims = "claims"
)

// UserLookup resolves a token's user id to a live record.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware creates a middleware for JWT authentication. The token must
// be valid, not revoked, and belong to a user that still exists.
func AuthMiddleware(issuer *utils.TokenIssuer, users UserLookup, revoker session.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			utils.Unauthorized(c, "Not authorized, no token")
			return
		}

		claims, err := issuer.Validate(tokenString)
		if err != nil {
			utils.Unauthorized(c, "Not authorized, token failed")
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Printf("auth: revocation check failed: %v", err)
			utils.InternalServerError(c, "Server error")
			return
		}
		if revoked {
			utils.Unauthorized(c, "Not authorized, token revoked")
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Unauthorized(c, "Not authorized, user not found")
			return
		}
		if err != nil {
			log.Printf("auth: user lookup failed: %v", err)
			utils.InternalServerError(c, "Server error")
			return
		}

		// Set user information in context for downstream handlers
		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Set(ctxRole, user.Role)
		c.Set(ctxClaims, claims)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.InternalServerError(c, "User role not found in context. AuthMiddleware might be missing.")
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, fmt.Sprintf("User role '%s' is not authorized to access this route", role))
	}
}

// CurrentUser returns the user resolved by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ctxUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get(ctxRole)
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}

// GetClaimsFromContext returns the validated token claims.
func GetClaimsFromContext(c *gin.Context) (*utils.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
