package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/garageops/dispatch-service/internal/api/dto"
	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/repository"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// PartsHandler manages the parts catalog.
type PartsHandler struct {
	parts repository.PartRepository
}

// NewPartsHandler constructs handler.
func NewPartsHandler(parts repository.PartRepository) *PartsHandler {
	return &PartsHandler{parts: parts}
}

// Create POST /parts.
func (h *PartsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.Price < 0 {
		return apperrors.NewValidationError("name required and price must be non-negative", nil)
	}

	part := &domain.Part{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Unit:        req.Unit,
	}
	if err := h.parts.Create(c.UserContext(), part); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": part})
}

// List GET /parts.
func (h *PartsHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.Query("offset"), 10, 64)

	parts, err := h.parts.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": parts})
}

// Get GET /parts/:id.
func (h *PartsHandler) Get(c *fiber.Ctx) error {
	part, err := h.parts.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": part})
}

// Update PUT /parts/:id.
func (h *PartsHandler) Update(c *fiber.Ctx) error {
	part, err := h.parts.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	var req dto.CreatePartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) != "" {
		part.Name = req.Name
	}
	part.Description = req.Description
	part.Price = req.Price
	part.Stock = req.Stock
	part.Unit = req.Unit

	if err := h.parts.Update(c.UserContext(), part); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": part})
}

// Delete DELETE /parts/:id.
func (h *PartsHandler) Delete(c *fiber.Ctx) error {
	if err := h.parts.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
