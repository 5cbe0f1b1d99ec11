package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ContactHandler struct {
	contacts *services.ContactService
	identity *services.IdentityService
}

func NewContactHandler(contacts *services.ContactService, identity *services.IdentityService) *ContactHandler {
	return &ContactHandler{contacts: contacts, identity: identity}
}

func toContactResponse(ct *models.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:        ct.ID,
		UserA:     ct.UserAID,
		UserB:     ct.UserBID,
		Status:    string(ct.Status),
		BlockedBy: ct.BlockedByID,
		CreatedAt: ct.CreatedAt,
		UpdatedAt: ct.UpdatedAt,
	}
}

func toUserList(users []models.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, services.UserResponse(&users[i]))
	}
	return out
}

func (h *ContactHandler) Add(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UsernameRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ct, err := h.contacts.RequestAdd(c.UserContext(), userID, req.Username)
	if err != nil {
		return fail(c, "contact.add", err)
	}
	return c.Status(fiber.StatusCreated).JSON(toContactResponse(ct))
}

func (h *ContactHandler) list(c *fiber.Ctx, fn func(context.Context, uuid.UUID) ([]models.User, error), action string) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	users, err := fn(c.UserContext(), userID)
	if err != nil {
		return fail(c, action, err)
	}
	return c.JSON(toUserList(users))
}

func (h *ContactHandler) Friends(c *fiber.Ctx) error {
	return h.list(c, h.contacts.ListFriends, "contact.friends")
}

func (h *ContactHandler) Incoming(c *fiber.Ctx) error {
	return h.list(c, h.contacts.ListIncoming, "contact.incoming")
}

func (h *ContactHandler) Outgoing(c *fiber.Ctx) error {
	return h.list(c, h.contacts.ListOutgoing, "contact.outgoing")
}

func (h *ContactHandler) Search(c *fiber.Ctx) error {
	return h.list(c, h.identity.Search, "contact.search")
}

// act runs a username-targeted transition and answers with a message.
func (h *ContactHandler) act(c *fiber.Ctx, action, message string, fn func(ctx context.Context, self uuid.UUID, target string) error) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UsernameRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if err := fn(c.UserContext(), userID, req.Username); err != nil {
		return fail(c, action, err)
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

func (h *ContactHandler) Accept(c *fiber.Ctx) error {
	return h.act(c, "contact.accept", "Friend request accepted", func(ctx context.Context, self uuid.UUID, target string) error {
		_, err := h.contacts.Accept(ctx, self, target)
		return err
	})
}

func (h *ContactHandler) Reject(c *fiber.Ctx) error {
	return h.act(c, "contact.reject", "Friend request rejected", func(ctx context.Context, self uuid.UUID, target string) error {
		_, err := h.contacts.Reject(ctx, self, target)
		return err
	})
}

func (h *ContactHandler) Block(c *fiber.Ctx) error {
	return h.act(c, "contact.block", "User blocked", func(ctx context.Context, self uuid.UUID, target string) error {
		_, err := h.contacts.Block(ctx, self, target)
		return err
	})
}

func (h *ContactHandler) Unblock(c *fiber.Ctx) error {
	return h.act(c, "contact.unblock", "User unblocked", h.contacts.Unblock)
}

func (h *ContactHandler) Unadd(c *fiber.Ctx) error {
	return h.act(c, "contact.unadd", "Contact removed", h.contacts.Unadd)
}
