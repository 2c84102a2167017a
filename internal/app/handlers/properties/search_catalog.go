package properties

import (
	"context"
	"strings"
	"time"

	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	"rara/internal/domain/pricing"
	domainproperty "rara/internal/domain/property"
	"rara/internal/domain/shared/daterange"
)

const searchCatalogKey = "properties.search"

// SearchCatalogQuery filters the public catalog. Only published listings are
// returned; From/To, when both set, must be bookable.
type SearchCatalogQuery struct {
	Location  string
	Type      string
	Guests    int   `validate:"gte=0"`
	MinPrice  int64 `validate:"gte=0"`
	MaxPrice  int64 `validate:"gte=0"`
	Amenities []string
	From      string
	To        string
	Keywords  []string
	Limit     int `validate:"gte=0,lte=200"`
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.PropertyCollection, error) {
	var stay *daterange.DateRange
	if q.From != "" || q.To != "" {
		r, err := daterange.Parse(q.From, q.To)
		if err != nil {
			return dto.PropertyCollection{}, err
		}
		if r.Nights() > pricing.MaxNights {
			return dto.PropertyCollection{}, pricing.ErrStayTooLong
		}
		stay = &r
	}
	var matched []*domainproperty.Property
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		list, err := unit.Properties().List(ctx, domainproperty.Filter{Status: domainproperty.StatusPublished})
		if err != nil {
			return err
		}
		today := support.Now(h.Clock)
		for _, p := range list {
			if !q.matches(p) {
				continue
			}
			if stay != nil {
				schedule, _, _, err := support.LoadSchedule(ctx, unit, p.ID, today)
				if err != nil {
					return err
				}
				if schedule.CheckStay(*stay) != nil {
					continue
				}
			}
			matched = append(matched, p)
			if q.Limit > 0 && len(matched) == q.Limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return dto.PropertyCollection{}, err
	}
	return dto.MapProperties(matched), nil
}

func (q SearchCatalogQuery) matches(p *domainproperty.Property) bool {
	if loc := strings.TrimSpace(q.Location); loc != "" && !containsFold(p.Location, loc) {
		return false
	}
	if t := strings.TrimSpace(q.Type); t != "" && !strings.EqualFold(p.Type, t) {
		return false
	}
	if q.Guests > 0 && p.MaxGuests < q.Guests {
		return false
	}
	if q.MinPrice > 0 && p.PricePerNight.Amount < q.MinPrice {
		return false
	}
	if q.MaxPrice > 0 && p.PricePerNight.Amount > q.MaxPrice {
		return false
	}
	if !p.HasAmenities(q.Amenities) {
		return false
	}
	return matchesKeywords(p, q.Keywords)
}

// matchesKeywords is true when any keyword occurs in the listing's searchable text.
func matchesKeywords(p *domainproperty.Property, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.Join(append([]string{p.Title, p.Type, p.Location, p.Description}, p.Amenities...), " ")
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" && containsFold(haystack, kw) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

var _ queries.Handler[SearchCatalogQuery, dto.PropertyCollection] = (*SearchCatalogHandler)(nil)
