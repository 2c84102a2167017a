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
	"rara/internal/domain/shared/money"
	domainuser "rara/internal/domain/user"
)

const createPropertyKey = "properties.create"

type CreatePropertyCommand struct {
	PropertyID    string `validate:"required"`
	Actor         access.Actor
	Title         string   `validate:"required,max=140"`
	Type          string   `validate:"required,max=60"`
	Location      string   `validate:"required,max=200"`
	Lat           float64  `validate:"gte=-90,lte=90"`
	Lng           float64  `validate:"gte=-180,lte=180"`
	PricePerNight int64    `validate:"gt=0,lte=1000000000000"`
	Currency      string   `validate:"omitempty,len=3"`
	MaxGuests     int      `validate:"gte=1"`
	Bedrooms      int      `validate:"gte=0"`
	Beds          int      `validate:"gte=0"`
	Bathrooms     int      `validate:"gte=0"`
	Description   string   `validate:"max=5000"`
	Amenities     []string `validate:"dive,max=60"`
	Images        []string `validate:"dive,url"`
	Rules         []string `validate:"dive,max=200"`
}

func (c CreatePropertyCommand) Key() string          { return createPropertyKey }
func (c CreatePropertyCommand) Caller() access.Actor { return c.Actor }

// CreatePropertyHandler lists a new property for review and makes the caller a host.
type CreatePropertyHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *CreatePropertyHandler) Handle(ctx context.Context, cmd CreatePropertyCommand) (dto.Property, error) {
	var result dto.Property
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := support.Now(h.Clock)
		owner, err := unit.Users().ByID(ctx, domainuser.ID(cmd.Actor.ID))
		if err != nil {
			return err
		}
		currency := cmd.Currency
		if currency == "" {
			currency = money.DefaultCurrency
		}
		p, err := domainproperty.New(domainproperty.CreateParams{
			ID:            domainproperty.ID(cmd.PropertyID),
			Title:         cmd.Title,
			Type:          cmd.Type,
			Location:      cmd.Location,
			Coords:        domainproperty.Coords{Lat: cmd.Lat, Lng: cmd.Lng},
			PricePerNight: money.Money{Amount: cmd.PricePerNight, Currency: currency},
			MaxGuests:     cmd.MaxGuests,
			Bedrooms:      cmd.Bedrooms,
			Beds:          cmd.Beds,
			Bathrooms:     cmd.Bathrooms,
			Description:   cmd.Description,
			Host: domainproperty.Host{
				ID:          string(owner.ID),
				Name:        owner.Name(),
				Avatar:      owner.Avatar,
				JoinYear:    owner.JoinYear(),
				IsSuperhost: owner.Superhost,
			},
			Amenities: cmd.Amenities,
			Images:    cmd.Images,
			Rules:     cmd.Rules,
			Now:       now,
		})
		if err != nil {
			return err
		}
		if err := unit.Properties().Add(ctx, p); err != nil {
			return err
		}
		if !owner.HasRole(domainuser.RoleHost) {
			if err := owner.EnsureRole(domainuser.RoleHost, now); err != nil {
				return err
			}
			if err := unit.Users().Save(ctx, owner); err != nil {
				return err
			}
		}
		if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, p); err != nil {
			return err
		}
		result = dto.MapProperty(p)
		return nil
	})
	return result, err
}

var _ commands.Handler[CreatePropertyCommand, dto.Property] = (*CreatePropertyHandler)(nil)
