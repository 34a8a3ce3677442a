package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/apierror"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

// Gin context keys set by Auth.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// TokenVerifier is satisfied by service.AuthService.
type TokenVerifier interface {
	VerifyToken(token string) (*service.Claims, error)
}

// Auth verifies the bearer JWT and puts the user id in the gin and logger contexts.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			log.Debug("authentication failed: missing or malformed authorization header")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c), ""))
			return
		}

		claims, err := verifier.VerifyToken(token)
		if err != nil {
			log.Debug("authentication failed: token rejected", logger.Err(err))
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c), "Token is invalid or expired"))
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserEmail, claims.Email)

		ctx := logger.WithUserID(c.Request.Context(), claims.Subject)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
