package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListLogs pages through persisted system logs, newest first.
func (h *AdminHandler) ListLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	query := h.db.WithContext(c.UserContext()).Model(&models.SystemLog{})
	if level := strings.ToUpper(c.Query("level")); level != "" {
		query = query.Where("level = ?", level)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, "admin.logs", err)
	}
	logs := make([]models.SystemLog, 0, limit)
	if err := query.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return fail(c, "admin.logs", err)
	}

	return c.JSON(dto.LogListResponse{Total: total, Limit: limit, Offset: offset, Logs: logs})
}
