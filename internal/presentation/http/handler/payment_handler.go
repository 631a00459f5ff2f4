package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/application/service"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/clinic-billing/pkg/pagination"
)

// PaymentHandler handles stored payment endpoints
type PaymentHandler struct {
	payments *service.PaymentService
	render   *service.RenderService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *service.PaymentService, render *service.RenderService) *PaymentHandler {
	return &PaymentHandler{payments: payments, render: render}
}

// List handles listing payments
func (h *PaymentHandler) List(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.PaymentFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	filter, ok := paymentFilter(req)
	if !ok {
		response.BadRequest(c, "Invalid date filter")
		return
	}

	result, err := h.payments.ListPayments(c.Request.Context(), sess, filter, &pagination.PaginationParams{
		Page:    req.Page,
		PerPage: req.PerPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Payments retrieved successfully", result)
}

// Summary handles the collected totals
func (h *PaymentHandler) Summary(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.payments.Summary(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment summary retrieved successfully", summary)
}

// Export handles downloading the filtered payments as a spreadsheet
func (h *PaymentHandler) Export(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.PaymentFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	filter, ok := paymentFilter(req)
	if !ok {
		response.BadRequest(c, "Invalid date filter")
		return
	}

	data, err := h.payments.ExportPayments(c.Request.Context(), sess, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.File(c, "payments.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Get handles fetching a single payment
func (h *PaymentHandler) Get(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment retrieved successfully", payment)
}

// Update handles editing a stored payment
func (h *PaymentHandler) Update(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	in := service.UpdatePaymentInput{
		Status:   req.Status,
		Notes:    req.Notes,
		Method:   req.Method,
		Discount: req.Discount,
		Tax:      req.Tax,
	}
	if req.Services != nil {
		in.Services = make([]service.PaymentLineInput, 0, len(req.Services))
		for _, s := range req.Services {
			in.Services = append(in.Services, service.PaymentLineInput{
				ID:       s.ID,
				Name:     s.Name,
				Price:    s.Price,
				Quantity: s.Quantity,
			})
		}
	}

	payment, err := h.payments.UpdatePayment(c.Request.Context(), sess, c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment updated successfully", payment)
}

// Delete handles deleting a payment
func (h *PaymentHandler) Delete(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.payments.DeletePayment(c.Request.Context(), sess, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment deleted successfully", nil)
}

// Preview handles the read-only rendering of a payment
func (h *PaymentHandler) Preview(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	rendering, err := h.render.PaymentPreview(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice preview", rendering)
}

// PDF handles downloading a payment as PDF
func (h *PaymentHandler) PDF(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.render.PaymentPDF(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.File(c, "invoice-"+c.Param("id")+".pdf", "application/pdf", data)
}

// Print handles printing the receipt of a payment
func (h *PaymentHandler) Print(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.render.PrintPayment(c.Request.Context(), sess, c.Param("id"))
	respondPrinted(c, receipt, err)
}

func paymentFilter(req request.PaymentFilterRequest) (entity.PaymentFilter, bool) {
	start, ok := parseDate(req.StartDate)
	if !ok {
		return entity.PaymentFilter{}, false
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		return entity.PaymentFilter{}, false
	}
	return entity.PaymentFilter{
		PatientName: req.PatientName,
		Status:      req.Status,
		Method:      req.Method,
		StartDate:   start,
		EndDate:     end,
	}, true
}
