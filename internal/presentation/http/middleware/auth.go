package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/sangkips/clinic-billing/pkg/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextDoctorID    = "doctor_id"
	ContextDoctorEmail = "doctor_email"
	ContextDoctorRoles = "doctor_roles"
	ContextDoctorToken = "doctor_token"
)

// AuthMiddleware creates a JWT authentication middleware. The raw token is
// kept so calls to the practice backend act as the same doctor.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Error(c, apperror.ErrTokenExpired)
			} else {
				response.Error(c, apperror.ErrInvalidToken)
			}
			c.Abort()
			return
		}

		c.Set(ContextDoctorID, claims.DoctorID)
		c.Set(ContextDoctorEmail, claims.Email)
		c.Set(ContextDoctorRoles, claims.Roles)
		c.Set(ContextDoctorToken, tokenString)

		c.Next()
	}
}

// GetDoctorID returns the authenticated doctor id, or "".
func GetDoctorID(c *gin.Context) string {
	return c.GetString(ContextDoctorID)
}
