package handlers

import (
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TimeSlotHandler struct {
	timeslots *services.TimeSlotService
}

func NewTimeSlotHandler(timeslots *services.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{timeslots: timeslots}
}

type slotPath struct {
	self, calendarID, dayID, slotID uuid.UUID
}

// path resolves the caller and the :cid/:did[/:tsId] parameters. A false
// result means the response has been written.
func (h *TimeSlotHandler) path(c *fiber.Ctx, withSlot bool) (slotPath, bool, error) {
	var p slotPath
	var err error
	if p.self, err = middleware.UserID(c); err != nil {
		return p, false, unauthorized(c)
	}
	var ok bool
	if p.calendarID, ok = paramID(c, "cid"); !ok {
		return p, false, notFound(c, "calendar")
	}
	if p.dayID, ok = paramID(c, "did"); !ok {
		return p, false, notFound(c, "day")
	}
	if withSlot {
		if p.slotID, ok = paramID(c, "tsId"); !ok {
			return p, false, notFound(c, "time slot")
		}
	}
	return p, true, nil
}

func (h *TimeSlotHandler) Create(c *fiber.Ctx) error {
	p, ok, err := h.path(c, false)
	if !ok {
		return err
	}
	var req dto.CreateTimeSlotRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.timeslots.Create(c.UserContext(), p.self, p.calendarID, p.dayID, &req)
	if err != nil {
		return fail(c, "timeslot.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *TimeSlotHandler) List(c *fiber.Ctx) error {
	p, ok, err := h.path(c, false)
	if !ok {
		return err
	}
	resp, err := h.timeslots.List(c.UserContext(), p.self, p.calendarID, p.dayID)
	if err != nil {
		return fail(c, "timeslot.list", err)
	}
	return c.JSON(resp)
}

func (h *TimeSlotHandler) Get(c *fiber.Ctx) error {
	p, ok, err := h.path(c, true)
	if !ok {
		return err
	}
	resp, err := h.timeslots.Get(c.UserContext(), p.self, p.calendarID, p.dayID, p.slotID)
	if err != nil {
		return fail(c, "timeslot.get", err)
	}
	return c.JSON(resp)
}

func (h *TimeSlotHandler) Update(c *fiber.Ctx) error {
	p, ok, err := h.path(c, true)
	if !ok {
		return err
	}
	var req dto.UpdateTimeSlotRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.timeslots.Update(c.UserContext(), p.self, p.calendarID, p.dayID, p.slotID, &req)
	if err != nil {
		return fail(c, "timeslot.update", err)
	}
	return c.JSON(resp)
}

func (h *TimeSlotHandler) Delete(c *fiber.Ctx) error {
	p, ok, err := h.path(c, true)
	if !ok {
		return err
	}
	if err := h.timeslots.Delete(c.UserContext(), p.self, p.calendarID, p.dayID, p.slotID); err != nil {
		return fail(c, "timeslot.delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
