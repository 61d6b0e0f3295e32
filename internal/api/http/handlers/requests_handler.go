package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/garageops/dispatch-service/internal/api/dto"
	"github.com/garageops/dispatch-service/internal/auth"
	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/repository"
	"github.com/garageops/dispatch-service/internal/service"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// RequestsHandler manages service request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.CreateRequest(c.UserContext(), principal.User.ID, service.CreateRequestInput{
		Yard:                  req.Yard,
		CarDetails:            req.CarDetails,
		ServiceType:           req.ServiceType,
		Description:           req.Description,
		PreferredWindow:       req.PreferredWindow,
		EstimatedDurationMins: req.EstimatedDurationMins,
		TravelBufferMins:      req.TravelBufferMins,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestDetail(request)})
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	filter := parseRequestFilter(c)
	// Customers only ever see their own requests.
	if principal.Role == domain.RoleCustomer {
		id := principal.User.ID
		filter.CustomerID = &id
	}

	requests, err := h.service.ListRequests(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceRequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewRequestSummary(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	request, err := h.service.GetRequest(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if principal.Role == domain.RoleCustomer && request.CustomerID != principal.User.ID {
		return apperrors.NewForbidden("not your request")
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestDetail(request)})
}

// SubmitReport POST /requests/:id/report.
func (h *RequestsHandler) SubmitReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.SubmitReport(c.UserContext(), c.Params("id"), principal.User.ID, service.ReportInput{
		InspectionNotes: req.InspectionNotes,
		PartsUsed:       req.PartsUsed,
		LaborHours:      req.LaborHours,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestDetail(request)})
}

// Cancel POST /requests/:id/cancel.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	request, err := h.service.GetRequest(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if principal.Role == domain.RoleCustomer && request.CustomerID != principal.User.ID {
		return apperrors.NewForbidden("not your request")
	}

	updated, err := h.service.CancelRequest(c.UserContext(), request.ID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestDetail(updated)})
}

// Delete DELETE /requests/:id.
func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteRequest(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseRequestFilter(c *fiber.Ctx) repository.RequestFilter {
	filter := repository.RequestFilter{}
	if v := strings.TrimSpace(c.Query("customer_id")); v != "" {
		filter.CustomerID = &v
	}
	if v := strings.TrimSpace(c.Query("technician_id")); v != "" {
		filter.AssignedTechnician = &v
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, domain.RequestStatus(part))
			}
		}
	}
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.ParseInt(c.Query("offset"), 10, 64); err == nil && v > 0 {
		filter.Offset = v
	}
	return filter
}
