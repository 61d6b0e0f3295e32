package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/garageops/dispatch-service/internal/api/dto"
	"github.com/garageops/dispatch-service/internal/auth"
	"github.com/garageops/dispatch-service/internal/service"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// AutomationsHandler exposes the dispatch engine operations. Routes are
// registered behind a manager/admin role guard.
type AutomationsHandler struct {
	dispatch *service.DispatchService
	quotes   *service.QuoteService
}

// NewAutomationsHandler constructs handler.
func NewAutomationsHandler(dispatchService *service.DispatchService, quoteService *service.QuoteService) *AutomationsHandler {
	return &AutomationsHandler{dispatch: dispatchService, quotes: quoteService}
}

// Triage POST /automations/requests/:id/triage.
func (h *AutomationsHandler) Triage(c *fiber.Ctx) error {
	result, err := h.dispatch.TriageRequest(c.UserContext(), c.Params("id"), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Assign POST /automations/requests/:id/assign.
func (h *AutomationsHandler) Assign(c *fiber.Ctx) error {
	request, err := h.dispatch.AssignJob(c.UserContext(), c.Params("id"), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestDetail(request)})
}

// Schedule POST /automations/requests/:id/schedule.
func (h *AutomationsHandler) Schedule(c *fiber.Ctx) error {
	result, err := h.dispatch.ScheduleJob(c.UserContext(), c.Params("id"), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// GenerateQuote POST /automations/requests/:id/quote.
func (h *AutomationsHandler) GenerateQuote(c *fiber.Ctx) error {
	request, err := h.quotes.GenerateQuote(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestDetail(request)})
}

// ApproveQuote POST /automations/requests/:id/approve-quote.
func (h *AutomationsHandler) ApproveQuote(c *fiber.Ctx) error {
	var req dto.ApproveQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.quotes.ApproveQuote(c.UserContext(), c.Params("id"), req.Approved, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Close POST /automations/requests/:id/close.
func (h *AutomationsHandler) Close(c *fiber.Ctx) error {
	result, err := h.quotes.CloseJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

func actorID(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User != nil {
		return principal.User.ID
	}
	return ""
}
