package handlers

import (
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/ics"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CalendarHandler struct {
	calendars    *services.CalendarService
	participants *services.ParticipantService
}

func NewCalendarHandler(calendars *services.CalendarService, participants *services.ParticipantService) *CalendarHandler {
	return &CalendarHandler{calendars: calendars, participants: participants}
}

func (h *CalendarHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateCalendarRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.calendars.Create(c.UserContext(), userID, &req)
	if err != nil {
		return fail(c, "calendar.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CalendarHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	resp, err := h.calendars.List(c.UserContext(), userID, c.QueryInt("page", 1))
	if err != nil {
		return fail(c, "calendar.list", err)
	}
	return c.JSON(resp)
}

func (h *CalendarHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return notFound(c, "calendar")
	}
	resp, err := h.calendars.Get(c.UserContext(), userID, id)
	if err != nil {
		return fail(c, "calendar.get", err)
	}
	return c.JSON(resp)
}

func (h *CalendarHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return notFound(c, "calendar")
	}
	var req dto.UpdateCalendarRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.calendars.Update(c.UserContext(), userID, id, &req)
	if err != nil {
		return fail(c, "calendar.update", err)
	}
	return c.JSON(resp)
}

// Delete deletes the calendar for its creator and leaves it for a participant.
func (h *CalendarHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return notFound(c, "calendar")
	}

	left, err := h.calendars.Delete(c.UserContext(), userID, id)
	if err != nil {
		return fail(c, "calendar.delete", err)
	}
	if left {
		return c.JSON(dto.MessageResponse{Message: "You have left the calendar"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CalendarHandler) Leave(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return notFound(c, "calendar")
	}

	if err := h.participants.Leave(c.UserContext(), userID, id); err != nil {
		return fail(c, "calendar.leave", err)
	}
	return c.JSON(dto.MessageResponse{Message: "You have left the calendar"})
}

func (h *CalendarHandler) Finalize(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return notFound(c, "calendar")
	}
	var req dto.FinalizeCalendarRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.calendars.Finalize(c.UserContext(), userID, id, &req)
	if err != nil {
		return fail(c, "calendar.finalize", err)
	}
	return c.JSON(resp)
}

func (h *CalendarHandler) Export(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return notFound(c, "calendar")
	}

	cal, err := h.calendars.Export(c.UserContext(), userID, id)
	if err != nil {
		return fail(c, "calendar.export", err)
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="calendar-`+id.String()+`.ics"`)
	return c.SendString(ics.Render(cal))
}
