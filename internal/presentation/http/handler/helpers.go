package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/presentation/http/middleware"
	"github.com/sangkips/clinic-billing/pkg/apperror"
)

// GetDoctorSession builds the caller's session from the Gin context. It
// fails with apperror.ErrUnauthorized when no doctor is authenticated.
func GetDoctorSession(c *gin.Context) (entity.DoctorSession, error) {
	doctorID := c.GetString(middleware.ContextDoctorID)
	if doctorID == "" {
		return entity.DoctorSession{}, apperror.ErrUnauthorized
	}
	return entity.DoctorSession{
		DoctorID: doctorID,
		Email:    c.GetString(middleware.ContextDoctorEmail),
		Token:    c.GetString(middleware.ContextDoctorToken),
	}, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}
