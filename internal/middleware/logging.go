package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/wattcount/internal/models"
)

// Logging logs every run of an operation: its name, the caller, the
// duration and any error. Persistence failures log at Error, other failures
// at Warn.
func Logging(operation string) Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context) error {
			start := time.Now()

			// RequireAuth fills the slot when it runs further in.
			userID := GetUserID(ctx)
			err := next(context.WithValue(ctx, callerKey, &userID))

			duration := time.Since(start).Milliseconds()
			switch {
			case err == nil:
				slog.Info("Command ok",
					"operation", operation,
					"user_id", userID,
					"duration_ms", duration,
				)
			case errors.Is(err, models.ErrPersistence):
				slog.Error("Command error",
					"operation", operation,
					"error", err,
					"user_id", userID,
					"duration_ms", duration,
				)
			default:
				slog.Warn("Command error",
					"operation", operation,
					"error", err,
					"user_id", userID,
					"duration_ms", duration,
				)
			}
			return err
		}
	}
}
