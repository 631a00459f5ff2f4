package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-billing/internal/application/service"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/clinic-billing/pkg/pagination"
)

// ServiceHandler handles the billable service catalog
type ServiceHandler struct {
	catalog *service.CatalogService
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(catalog *service.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// List handles listing catalog services
func (h *ServiceHandler) List(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ServiceFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.catalog.ListServices(c.Request.Context(), sess, service.CatalogFilter{
		Status: req.Status,
		Search: req.Search,
	}, &pagination.PaginationParams{
		Page:    req.Page,
		PerPage: req.PerPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Services retrieved successfully", result)
}

// Create handles adding a catalog service
func (h *ServiceHandler) Create(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	svc, err := h.catalog.CreateService(c.Request.Context(), sess, serviceInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Service added successfully", svc)
}

// Update handles editing a catalog service
func (h *ServiceHandler) Update(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	svc, err := h.catalog.UpdateService(c.Request.Context(), sess, c.Param("id"), serviceInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service updated successfully", svc)
}

// Export handles downloading the filtered catalog
func (h *ServiceHandler) Export(c *gin.Context) {
	sess, err := GetDoctorSession(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ServiceFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	export, err := h.catalog.ExportServices(c.Request.Context(), sess, service.CatalogFilter{
		Status: req.Status,
		Search: req.Search,
	}, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.File(c, export.Filename, export.ContentType, export.Data)
}

func serviceInput(req request.ServiceRequest) entity.CatalogServiceInput {
	return entity.CatalogServiceInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Disabled:    req.Disabled,
	}
}
