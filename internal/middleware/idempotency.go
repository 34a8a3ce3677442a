package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/apierror"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the cache.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"

	maxIdempotencyKeyLen = 255
)

// idempotencyBodyWriter captures the response body for caching.
type idempotencyBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyBodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response for a repeated
// (Idempotency-Key, method and concrete path, user), so one key reused
// against /entries/A and /entries/B never crosses resources. Only POST, PUT and PATCH are considered,
// and requests without the header pass straight through. Must run after Auth.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		log := logger.FromContext(c.Request.Context())
		requestID := apierror.GetRequestID(c)

		if len(key) > maxIdempotencyKeyLen {
			apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, "Idempotency-Key must be at most 255 characters", ""))
			return
		}

		userID := UserID(c)
		if userID == "" {
			log.Warn("idempotency check failed: no user_id in context")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID, "Authentication required for idempotent requests"))
			return
		}

		route := method + " " + c.Request.URL.Path

		existing, err := repo.Get(c.Request.Context(), key, route, userID)
		if err != nil {
			// proceed without idempotency rather than block the write
			log.Error("failed to check idempotency key", logger.Err(err), logger.String("key", key))
			c.Next()
			return
		}

		if existing != nil {
			log.Info("replaying idempotent response",
				logger.String("key", key),
				logger.String("route", route),
				logger.Int("status_code", existing.StatusCode),
			)
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.StatusCode, "application/json; charset=utf-8", existing.ResponseBody)
			c.Abort()
			return
		}

		blw := &idempotencyBodyWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		if err := repo.Store(c.Request.Context(), key, route, userID, blw.body.Bytes(), status); err != nil {
			log.Warn("failed to store idempotency key", logger.Err(err), logger.String("key", key))
			return
		}
		log.Debug("stored idempotency key",
			logger.String("key", key),
			logger.String("route", route),
			logger.Int("status_code", status),
		)
	}
}
