package availability

import (
	"context"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/outbox"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainavailability "rara/internal/domain/availability"
	"rara/internal/domain/shared/daterange"
)

const (
	addBlockKey    = "availability.add_block"
	removeBlockKey = "availability.remove_block"
	listBlocksKey  = "availability.list_blocks"
)

// AddBlockCommand marks days unavailable on the host's own calendar.
type AddBlockCommand struct {
	BlockID    string `validate:"required"`
	Actor      access.Actor
	PropertyID string `validate:"required"`
	From       string `validate:"required"`
	To         string `validate:"required"`
	Note       string `validate:"max=280"`
}

func (c AddBlockCommand) Key() string          { return addBlockKey }
func (c AddBlockCommand) Caller() access.Actor { return c.Actor }

type RemoveBlockCommand struct {
	Actor      access.Actor
	PropertyID string `validate:"required"`
	BlockID    string `validate:"required"`
}

func (c RemoveBlockCommand) Key() string          { return removeBlockKey }
func (c RemoveBlockCommand) Caller() access.Actor { return c.Actor }

type ListBlocksQuery struct {
	Actor      access.Actor
	PropertyID string `validate:"required"`
}

func (q ListBlocksQuery) Key() string          { return listBlocksKey }
func (q ListBlocksQuery) Caller() access.Actor { return q.Actor }

type BlocksHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *BlocksHandler) Add(ctx context.Context, cmd AddBlockCommand) (dto.Block, error) {
	r, err := daterange.Parse(cmd.From, cmd.To)
	if err != nil {
		return dto.Block{}, err
	}
	if err := r.Limit(daterange.MaxWindowDays); err != nil {
		return dto.Block{}, err
	}
	var result dto.Block
	err = uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := support.Now(h.Clock)
		p, err := support.LoadOwnedProperty(ctx, unit, cmd.PropertyID, cmd.Actor, false)
		if err != nil {
			return err
		}
		schedule, calendar, _, err := support.LoadSchedule(ctx, unit, p.ID, now)
		if err != nil {
			return err
		}
		if err := schedule.CheckHostBlock(r); err != nil {
			return err
		}
		block, err := calendar.AddBlock(domainavailability.BlockID(cmd.BlockID), r, cmd.Note, now)
		if err != nil {
			return err
		}
		if err := unit.Calendars().Save(ctx, calendar); err != nil {
			return err
		}
		if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, calendar); err != nil {
			return err
		}
		result = dto.MapBlock(block)
		return nil
	})
	return result, err
}

func (h *BlocksHandler) Remove(ctx context.Context, cmd RemoveBlockCommand) (dto.BlockCollection, error) {
	var result dto.BlockCollection
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := support.LoadOwnedProperty(ctx, unit, cmd.PropertyID, cmd.Actor, false)
		if err != nil {
			return err
		}
		calendar, err := unit.Calendars().Calendar(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := calendar.RemoveBlock(domainavailability.BlockID(cmd.BlockID), support.Now(h.Clock)); err != nil {
			return err
		}
		if err := unit.Calendars().Save(ctx, calendar); err != nil {
			return err
		}
		if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, calendar); err != nil {
			return err
		}
		result = dto.MapBlocks(calendar.Blocks)
		return nil
	})
	return result, err
}

func (h *BlocksHandler) List(ctx context.Context, q ListBlocksQuery) (dto.BlockCollection, error) {
	var result dto.BlockCollection
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := support.LoadOwnedProperty(ctx, unit, q.PropertyID, q.Actor, true)
		if err != nil {
			return err
		}
		calendar, err := unit.Calendars().Calendar(ctx, p.ID)
		if err != nil {
			return err
		}
		result = dto.MapBlocks(calendar.Blocks)
		return nil
	})
	return result, err
}

func (h *BlocksHandler) AddHandler() commands.Handler[AddBlockCommand, dto.Block] {
	return commands.HandlerFunc[AddBlockCommand, dto.Block](h.Add)
}

func (h *BlocksHandler) RemoveHandler() commands.Handler[RemoveBlockCommand, dto.BlockCollection] {
	return commands.HandlerFunc[RemoveBlockCommand, dto.BlockCollection](h.Remove)
}

func (h *BlocksHandler) ListHandler() queries.Handler[ListBlocksQuery, dto.BlockCollection] {
	return queries.HandlerFunc[ListBlocksQuery, dto.BlockCollection](h.List)
}
