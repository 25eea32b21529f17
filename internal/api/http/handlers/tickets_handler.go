package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskflow/helpdesk-api/internal/api/dto"
	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/service"
	"github.com/deskflow/helpdesk-api/internal/validation"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets?date=&startDate=&endDate=. Timestamps with a positive
// offset should escape the plus sign (%2B); an unescaped one decodes to a space,
// which is also accepted.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	params := service.TicketQueryParams{
		Date:      optionalQuery(c, "date"),
		StartDate: optionalQuery(c, "startDate"),
		EndDate:   optionalQuery(c, "endDate"),
	}
	tickets, err := h.service.List(c.UserContext(), auth.ActorFromContext(c), params)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req validation.CreateTicketParams
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), auth.ActorFromContext(c), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// TakeTicket POST /tickets/:id/take.
func (h *TicketsHandler) TakeTicket(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Take(c.UserContext(), auth.ActorFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CompleteTicket POST /tickets/:id/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req validation.UpdateTicketParams
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Complete(c.UserContext(), auth.ActorFromContext(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CancelTicket POST /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req validation.UpdateTicketParams
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Cancel(c.UserContext(), auth.ActorFromContext(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CancelInProgress POST /tickets/cancel-in-progress.
func (h *TicketsHandler) CancelInProgress(c *fiber.Ctx) error {
	result, err := h.service.CancelInProgress(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CancellationResult{Message: result.Message, Count: result.Count}})
}
