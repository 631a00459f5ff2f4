package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/application/service"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/response"
)

// PreferenceHandler handles per-doctor preferences
type PreferenceHandler struct {
	prefs *service.PreferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(prefs *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

// GetInvoiceDefaults handles reading the invoice defaults
func (h *PreferenceHandler) GetInvoiceDefaults(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	defaults, err := h.prefs.GetInvoiceDefaults(c.Request.Context(), sess.DoctorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice defaults retrieved successfully", defaults)
}

// SaveInvoiceDefaults handles updating the invoice defaults
func (h *PreferenceHandler) SaveInvoiceDefaults(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.InvoiceDefaultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	defaults, err := h.prefs.SaveInvoiceDefaults(c.Request.Context(), sess.DoctorID, entity.InvoiceDefaults{
		Currency: req.Currency,
		Method:   req.Method,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice defaults saved", defaults)
}

// GetSuggestions handles reading the recent service names
func (h *PreferenceHandler) GetSuggestions(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	names, err := h.prefs.GetSuggestions(c.Request.Context(), sess.DoctorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Suggestions retrieved successfully", names)
}

// AddSuggestion handles remembering a service name
func (h *PreferenceHandler) AddSuggestion(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	names, err := h.prefs.AddSuggestion(c.Request.Context(), sess.DoctorID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Suggestion saved", names)
}
