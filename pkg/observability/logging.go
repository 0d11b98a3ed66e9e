package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cadbridge/pkg/domain"
)

// LogHooks logs every host call at debug level and failed calls at warn.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnCallReturn: func(ctx context.Context, e *domain.CallEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "Host call failed",
					"kind", e.Kind,
					"name", e.Name,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "Host call",
				"kind", e.Kind,
				"name", e.Name,
				"duration", e.Duration,
			)
		},
	}
}
