package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/application/service"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint(c.Request.Context())
	if err != nil {
		// Return the receipt data anyway (useful when printer type is "none")
		response.OK(c, "Test print completed (printer may be disabled)", gin.H{
			"receipt": receipt,
			"warning": err.Error(),
		})
		return
	}

	response.OK(c, "Test page sent to printer", gin.H{
		"receipt": receipt,
	})
}

// respondPrinted reports a print attempt. A receipt built before the
// printer failed is still returned with a warning.
func respondPrinted(c *gin.Context, receipt *entity.Receipt, err error) {
	if err != nil {
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt printed successfully", gin.H{
		"receipt": receipt,
	})
}
