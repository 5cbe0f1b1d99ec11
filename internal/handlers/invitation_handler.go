package handlers

import (
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InvitationHandler struct {
	invitations *services.InvitationService
}

func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// ids resolves the caller and the calendar and invitation path parameters.
// A false result means the response has been written.
func (h *InvitationHandler) ids(c *fiber.Ctx, withInvitation bool) (self, calendarID, invitationID uuid.UUID, ok bool, err error) {
	self, uerr := middleware.UserID(c)
	if uerr != nil {
		return self, calendarID, invitationID, false, unauthorized(c)
	}
	calendarID, ok = paramID(c, "id")
	if !ok {
		return self, calendarID, invitationID, false, notFound(c, "calendar")
	}
	if withInvitation {
		invitationID, ok = paramID(c, "invId")
		if !ok {
			return self, calendarID, invitationID, false, notFound(c, "invitation")
		}
	}
	return self, calendarID, invitationID, true, nil
}

func (h *InvitationHandler) ListForCalendar(c *fiber.Ctx) error {
	self, calendarID, _, ok, err := h.ids(c, false)
	if !ok {
		return err
	}
	resp, err := h.invitations.ListForCalendar(c.UserContext(), self, calendarID)
	if err != nil {
		return fail(c, "invitation.list", err)
	}
	return c.JSON(resp)
}

func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	self, calendarID, _, ok, err := h.ids(c, false)
	if !ok {
		return err
	}
	var req dto.CreateInvitationRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.invitations.Create(c.UserContext(), self, calendarID, &req)
	if err != nil {
		return fail(c, "invitation.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *InvitationHandler) Get(c *fiber.Ctx) error {
	self, calendarID, invitationID, ok, err := h.ids(c, true)
	if !ok {
		return err
	}
	resp, err := h.invitations.Get(c.UserContext(), self, calendarID, invitationID)
	if err != nil {
		return fail(c, "invitation.get", err)
	}
	return c.JSON(resp)
}

func (h *InvitationHandler) Respond(c *fiber.Ctx) error {
	self, calendarID, invitationID, ok, err := h.ids(c, true)
	if !ok {
		return err
	}
	var req dto.RespondInvitationRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.invitations.Respond(c.UserContext(), self, calendarID, invitationID, &req)
	if err != nil {
		return fail(c, "invitation.respond", err)
	}
	return c.JSON(resp)
}

func (h *InvitationHandler) Delete(c *fiber.Ctx) error {
	self, calendarID, invitationID, ok, err := h.ids(c, true)
	if !ok {
		return err
	}
	if err := h.invitations.Delete(c.UserContext(), self, calendarID, invitationID); err != nil {
		return fail(c, "invitation.delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *InvitationHandler) ListPending(c *fiber.Ctx) error {
	self, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	resp, err := h.invitations.ListPending(c.UserContext(), self)
	if err != nil {
		return fail(c, "invitation.pending", err)
	}
	return c.JSON(resp)
}
