package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/presentation/http/middleware"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDoctorSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("unauthenticated", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		_, err := GetDoctorSession(c)

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("authenticated", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(middleware.ContextDoctorID, "doc-1")
		c.Set(middleware.ContextDoctorEmail, "doc@example.com")
		c.Set(middleware.ContextDoctorToken, "tok")

		sess, err := GetDoctorSession(c)

		require.NoError(t, err)
		assert.Equal(t, "doc-1", sess.DoctorID)
		assert.Equal(t, "doc@example.com", sess.Email)
		assert.Equal(t, "tok", sess.Token)
	})
}

func TestParseDate(t *testing.T) {
	got, ok := parseDate("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	got, ok = parseDate("")
	assert.True(t, ok)
	assert.Nil(t, got)

	_, ok = parseDate("yesterday")
	assert.False(t, ok)
}
