package middleware

import (
	"context"

	"rara/internal/app/commands"
	"rara/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// ReadOnlyAware opens read units for commands that declare themselves read-only.
func ReadOnlyAware(cmd commands.Command) uow.TxOptions {
	if ro, ok := cmd.(uow.ReadOnlyCommand); ok {
		return uow.TxOptions{ReadOnly: ro.ReadOnly()}
	}
	return uow.TxOptions{}
}

// Transaction runs each command inside one unit of work, committed on success.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	if optsProvider == nil {
		optsProvider = ReadOnlyAware
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, ok := uow.FromContext(ctx); ok {
				return nextFn(ctx, cmd)
			}
			unit, err := factory.Begin(ctx, optsProvider(cmd))
			if err != nil {
				return nil, err
			}
			execCtx := uow.Bind(ctx, unit)
			committed := false
			defer func() {
				if !committed {
					_ = unit.Rollback(execCtx)
				}
			}()

			res, err := nextFn(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, err
			}
			committed = true
			return res, nil
		})
	}
}
