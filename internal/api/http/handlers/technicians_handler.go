package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/garageops/dispatch-service/internal/api/dto"
	"github.com/garageops/dispatch-service/internal/auth"
	"github.com/garageops/dispatch-service/internal/service"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// TechniciansHandler manages technician profile endpoints.
type TechniciansHandler struct {
	service *service.TechnicianService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(technicianService *service.TechnicianService) *TechniciansHandler {
	return &TechniciansHandler{service: technicianService}
}

// Create POST /technicians.
func (h *TechniciansHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	tech, err := h.service.CreateProfile(c.UserContext(), service.CreateProfileInput{
		UserID:       req.UserID,
		Location:     req.Location,
		Skills:       req.Skills,
		WorkHours:    req.WorkHours,
		MaxDailyJobs: req.MaxDailyJobs,
		Rating:       req.Rating,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTechnicianResponse(tech)})
}

// List GET /technicians.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.Query("offset"), 10, 64)

	techs, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(techs))
	for i := range techs {
		items = append(items, dto.NewTechnicianResponse(&techs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /technicians/:id.
func (h *TechniciansHandler) Get(c *fiber.Ctx) error {
	tech, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTechnicianResponse(tech)})
}

// Me GET /technicians/me. Creates a default profile on first call so a
// technician account is always schedulable.
func (h *TechniciansHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	tech, err := h.service.GetOrCreateProfile(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTechnicianResponse(tech)})
}
