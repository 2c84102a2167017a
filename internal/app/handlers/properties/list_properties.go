package properties

import (
	"context"
	"errors"

	"rara/internal/app/access"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainproperty "rara/internal/domain/property"
	domainuser "rara/internal/domain/user"
)

var ErrUnknownStatus = errors.New("properties: unknown listing status")

const (
	listHostPropertiesKey  = "properties.list_host"
	listAdminPropertiesKey = "properties.list_admin"
)

// ListHostPropertiesQuery returns the caller's own listings in every status.
type ListHostPropertiesQuery struct {
	Actor access.Actor
}

func (q ListHostPropertiesQuery) Key() string          { return listHostPropertiesKey }
func (q ListHostPropertiesQuery) Caller() access.Actor { return q.Actor }

// ListAdminPropertiesQuery is the moderation queue, optionally narrowed to one status.
type ListAdminPropertiesQuery struct {
	Actor  access.Actor
	Status string
}

func (q ListAdminPropertiesQuery) Key() string                   { return listAdminPropertiesKey }
func (q ListAdminPropertiesQuery) Caller() access.Actor          { return q.Actor }
func (q ListAdminPropertiesQuery) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type ListPropertiesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPropertiesHandler) HandleHost(ctx context.Context, q ListHostPropertiesQuery) (dto.PropertyCollection, error) {
	return h.list(ctx, domainproperty.Filter{HostID: q.Actor.ID})
}

func (h *ListPropertiesHandler) HandleAdmin(ctx context.Context, q ListAdminPropertiesQuery) (dto.PropertyCollection, error) {
	if !q.Actor.IsAdmin() {
		return dto.PropertyCollection{}, access.ErrForbidden
	}
	if q.Status != "" && !domainproperty.Status(q.Status).Valid() {
		return dto.PropertyCollection{}, ErrUnknownStatus
	}
	return h.list(ctx, domainproperty.Filter{Status: domainproperty.Status(q.Status)})
}

func (h *ListPropertiesHandler) list(ctx context.Context, filter domainproperty.Filter) (dto.PropertyCollection, error) {
	var result dto.PropertyCollection
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		list, err := unit.Properties().List(ctx, filter)
		if err != nil {
			return err
		}
		result = dto.MapProperties(list)
		return nil
	})
	return result, err
}

// Host and Admin adapt the handler to the query bus.
func (h *ListPropertiesHandler) Host() queries.Handler[ListHostPropertiesQuery, dto.PropertyCollection] {
	return queries.HandlerFunc[ListHostPropertiesQuery, dto.PropertyCollection](h.HandleHost)
}

func (h *ListPropertiesHandler) Admin() queries.Handler[ListAdminPropertiesQuery, dto.PropertyCollection] {
	return queries.HandlerFunc[ListAdminPropertiesQuery, dto.PropertyCollection](h.HandleAdmin)
}
