package dto

import "github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"

type LogListResponse struct {
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Logs   []models.SystemLog `json:"logs"`
}
