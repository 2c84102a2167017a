package properties

import (
	"context"

	"rara/internal/app/access"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainproperty "rara/internal/domain/property"
)

const getPropertyKey = "properties.get"

// GetPropertyQuery loads one listing. Unpublished listings are visible to
// their host and admins only; everyone else gets NotFound.
type GetPropertyQuery struct {
	PropertyID string `validate:"required"`
	Viewer     access.Actor
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

type GetPropertyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPropertyHandler) Handle(ctx context.Context, q GetPropertyQuery) (dto.Property, error) {
	var result dto.Property
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := unit.Properties().ByID(ctx, domainproperty.ID(q.PropertyID))
		if err != nil {
			return err
		}
		if !p.Bookable() && !p.OwnedBy(q.Viewer.ID) && !q.Viewer.IsAdmin() {
			return domainproperty.ErrNotFound
		}
		result = dto.MapProperty(p)
		return nil
	})
	return result, err
}

var _ queries.Handler[GetPropertyQuery, dto.Property] = (*GetPropertyHandler)(nil)
