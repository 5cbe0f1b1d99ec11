package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// Attach makes the global logger also persist ERROR+ records to db. Stop the
// returned handler on shutdown to flush the last batch.
func Attach(db *gorm.DB) *DBHandler {
	dbHandler := NewDBHandler(db)
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), dbHandler)))
	return dbHandler
}
