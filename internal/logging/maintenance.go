package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// PurgeLogs deletes system logs written before cutoff.
func PurgeLogs(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// PurgeRefreshTokens deletes refresh tokens that are revoked or expired at now.
func PurgeRefreshTokens(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("revoked = ? OR expires_at < ?", true, now).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// RunMaintenance performs one purge pass.
func RunMaintenance(db *gorm.DB, retentionDays int, now time.Time) {
	logs, err := PurgeLogs(db, now.AddDate(0, 0, -retentionDays))
	if err != nil {
		slog.Error("log cleanup failed", "action", "maintenance.logs", "error", err)
	}
	tokens, err := PurgeRefreshTokens(db, now)
	if err != nil {
		slog.Error("refresh token cleanup failed", "action", "maintenance.tokens", "error", err)
	}
	if logs > 0 || tokens > 0 {
		slog.Info("maintenance completed", "action", "maintenance", "logs_deleted", logs, "tokens_deleted", tokens)
	}
}

// StartMaintenance schedules RunMaintenance on schedule (standard cron syntax
// or descriptors such as @daily). Stop the returned scheduler on shutdown.
func StartMaintenance(db *gorm.DB, schedule string, retentionDays int) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		RunMaintenance(db, retentionDays, time.Now())
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
