package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/repository"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// Required rejects requests without a key.
	Required bool
	Logger   *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a request whose key was
// already processed for the same doctor. Only 2xx responses are stored, so
// a failed submission can be retried with the same key.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			if config.Required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		doctorID := GetDoctorID(c)
		if doctorID == "" {
			response.Error(c, apperror.ErrUnauthorized)
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Failed to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		endpoint := c.Request.Method + " " + c.Request.URL.Path
		requestHash := hashRequest(endpoint, body)

		existing, err := config.Repo.GetByKey(c.Request.Context(), idempotencyKey, doctorID)
		if err != nil {
			logger.Warn("idempotency lookup failed", zap.String("doctor_id", doctorID), zap.Error(err))
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}

		if existing != nil && !existing.IsExpired() {
			if existing.RequestHash != "" && existing.RequestHash != requestHash {
				response.Error(c, apperror.NewValidationError("Idempotency-Key was already used for a different request"))
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:          idempotencyKey,
			DoctorID:     doctorID,
			Endpoint:     endpoint,
			RequestHash:  requestHash,
			ResponseCode: c.Writer.Status(),
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Create(c.Request.Context(), ikey); err != nil {
			logger.Warn("failed to store idempotency key", zap.String("doctor_id", doctorID), zap.Error(err))
		}
	}
}

func hashRequest(endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
