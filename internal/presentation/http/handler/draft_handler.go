package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/application/service"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/response"
)

// DraftHandler handles the invoice editor endpoints.
type DraftHandler struct {
	editor *service.EditorService
	render *service.RenderService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(editor *service.EditorService, render *service.RenderService) *DraftHandler {
	return &DraftHandler{editor: editor, render: render}
}

// Open handles starting a new editing session
func (h *DraftHandler) Open(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.editor.Open(c.Request.Context(), sess, service.OpenInput{
		PatientID:   req.PatientID,
		LockPatient: req.LockPatient,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Draft opened", view)
}

// Get handles fetching a draft with its totals
func (h *DraftHandler) Get(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.editor.Get(sess.DoctorID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft retrieved successfully", view)
}

// Close handles discarding a draft
func (h *DraftHandler) Close(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.editor.Close(sess.DoctorID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft closed", nil)
}

// UpdateDetails handles changes to the invoice level fields
func (h *DraftHandler) UpdateDetails(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.editor.UpdateDetails(sess.DoctorID, c.Param("id"), service.DetailsInput{
		Currency:        req.Currency,
		DiscountPercent: req.DiscountPercent,
		TaxPercent:      req.TaxPercent,
		Method:          req.Method,
		Notes:           req.Notes,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft updated successfully", view)
}

// SelectPatient handles choosing the billed patient
func (h *DraftHandler) SelectPatient(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.SelectPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.editor.SelectPatient(c.Request.Context(), sess.DoctorID, c.Param("id"), req.PatientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient selected", view)
}

// SearchPatients handles the patient lookup of a draft
func (h *DraftHandler) SearchPatients(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.SearchRequest
	_ = c.ShouldBindQuery(&req)

	patients, err := h.editor.SearchPatients(c.Request.Context(), sess.DoctorID, c.Param("id"), req.Query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patients retrieved successfully", patients)
}

// SearchCatalog handles the catalog lookup of a draft
func (h *DraftHandler) SearchCatalog(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.SearchRequest
	_ = c.ShouldBindQuery(&req)

	services, err := h.editor.SearchCatalog(c.Request.Context(), sess.DoctorID, c.Param("id"), req.Query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Services retrieved successfully", services)
}

// AddItem handles appending a blank line item
func (h *DraftHandler) AddItem(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, item, err := h.editor.AddItem(sess.DoctorID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item added", gin.H{"item": item, "draft": view})
}

// UpdateItem handles editing one field of a line item
func (h *DraftHandler) UpdateItem(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.editor.UpdateItemField(sess.DoctorID, c.Param("id"), c.Param("itemId"), req.Field, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated", view)
}

// SelectService handles filling a line item from the catalog
func (h *DraftHandler) SelectService(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.SelectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.editor.SelectCatalogService(c.Request.Context(), sess.DoctorID, c.Param("id"), c.Param("itemId"), req.ServiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service selected", view)
}

// RemoveItem handles deleting a line item
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.editor.RemoveItem(sess.DoctorID, c.Param("id"), c.Param("itemId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed", view)
}

// Submit handles turning the draft into a stored payment
func (h *DraftHandler) Submit(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payment, err := h.editor.Submit(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully!", payment)
}

// Preview handles the read-only rendering of a draft
func (h *DraftHandler) Preview(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	rendering, err := h.render.DraftPreview(sess.DoctorID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice preview", rendering)
}

// PDF handles downloading a draft as PDF
func (h *DraftHandler) PDF(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.render.DraftPDF(sess.DoctorID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.File(c, "invoice-"+c.Param("id")+".pdf", "application/pdf", data)
}

// Print handles printing the receipt of a draft
func (h *DraftHandler) Print(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.render.PrintDraft(c.Request.Context(), sess.DoctorID, c.Param("id"))
	respondPrinted(c, receipt, err)
}

// Share handles emailing the draft PDF
func (h *DraftHandler) Share(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ShareDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.render.ShareDraft(c.Request.Context(), sess.DoctorID, c.Param("id"), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice shared successfully", nil)
}
