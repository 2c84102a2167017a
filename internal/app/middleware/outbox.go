package middleware

import (
	"context"
	"log/slog"

	"rara/internal/app/commands"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
)

// OutboxFlush wakes the relay once a state-changing command has committed, so
// booking and listing notifications go out without waiting for the next poll.
// Read-only commands (messaging) record no events and skip the flush. A flush
// error is logged, not returned: the records are already stored and the
// relay's poll still delivers them.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if ro, ok := cmd.(uow.ReadOnlyCommand); ok && ro.ReadOnly() {
				return res, nil
			}
			if err := box.Flush(ctx); err != nil && logger != nil {
				logger.WarnContext(ctx, "outbox flush failed", "command", cmd.Key(), "err", err)
			}
			return res, nil
		})
	}
}
