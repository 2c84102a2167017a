package properties

import (
	"context"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainproperty "rara/internal/domain/property"
)

const updatePropertyKey = "properties.update"

// UpdatePropertyCommand carries an owner edit; nil fields are left unchanged.
type UpdatePropertyCommand struct {
	PropertyID    string `validate:"required"`
	Actor         access.Actor
	Title         *string  `validate:"omitempty,min=1,max=140"`
	Type          *string  `validate:"omitempty,min=1,max=60"`
	Location      *string  `validate:"omitempty,min=1,max=200"`
	Lat           *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lng           *float64 `validate:"omitempty,gte=-180,lte=180"`
	PricePerNight *int64   `validate:"omitempty,gt=0,lte=1000000000000"`
	MaxGuests     *int     `validate:"omitempty,gte=1"`
	Bedrooms      *int     `validate:"omitempty,gte=0"`
	Beds          *int     `validate:"omitempty,gte=0"`
	Bathrooms     *int     `validate:"omitempty,gte=0"`
	Description   *string  `validate:"omitempty,max=5000"`
	Amenities     []string `validate:"omitempty,dive,max=60"`
	Images        []string `validate:"omitempty,dive,url"`
	Rules         []string `validate:"omitempty,dive,max=200"`
}

func (c UpdatePropertyCommand) Key() string          { return updatePropertyKey }
func (c UpdatePropertyCommand) Caller() access.Actor { return c.Actor }

type UpdatePropertyHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *UpdatePropertyHandler) Handle(ctx context.Context, cmd UpdatePropertyCommand) (dto.Property, error) {
	var result dto.Property
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := support.LoadOwnedProperty(ctx, unit, cmd.PropertyID, cmd.Actor, false)
		if err != nil {
			return err
		}
		patch := domainproperty.Patch{
			Title:         cmd.Title,
			Type:          cmd.Type,
			Location:      cmd.Location,
			PricePerNight: cmd.PricePerNight,
			MaxGuests:     cmd.MaxGuests,
			Bedrooms:      cmd.Bedrooms,
			Beds:          cmd.Beds,
			Bathrooms:     cmd.Bathrooms,
			Description:   cmd.Description,
			Amenities:     cmd.Amenities,
			Images:        cmd.Images,
			Rules:         cmd.Rules,
		}
		if cmd.Lat != nil || cmd.Lng != nil {
			coords := p.Coords
			if cmd.Lat != nil {
				coords.Lat = *cmd.Lat
			}
			if cmd.Lng != nil {
				coords.Lng = *cmd.Lng
			}
			patch.Coords = &coords
		}
		if err := p.Update(patch, support.Now(h.Clock)); err != nil {
			return err
		}
		if err := unit.Properties().Save(ctx, p); err != nil {
			return err
		}
		if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, p); err != nil {
			return err
		}
		result = dto.MapProperty(p)
		return nil
	})
	return result, err
}

var _ commands.Handler[UpdatePropertyCommand, dto.Property] = (*UpdatePropertyHandler)(nil)
