package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "rara/internal/domain/property"
	"rara/internal/domain/reviews"
	"rara/internal/domain/shared/money"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(propertiesCollection)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return nil, domainproperty.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) List(ctx context.Context, filter domainproperty.Filter) ([]*domainproperty.Property, error) {
	query := bson.M{}
	if filter.HostID != "" {
		query["host.id"] = filter.HostID
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []propertyDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainproperty.Property, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

func (r *PropertyRepository) Add(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	doc.Version = p.Version + 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return saveError(err)
	}
	p.Version = doc.Version
	return nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	doc.Version = p.Version + 1
	if err := upsertVersioned(ctx, r.col, doc.ID, p.Version, doc); err != nil {
		return err
	}
	p.Version = doc.Version
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id domainproperty.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainproperty.ErrNotFound
	}
	return nil
}

type propertyDocument struct {
	ID            string                `bson:"_id"`
	Title         string                `bson:"title"`
	Type          string                `bson:"type"`
	Location      string                `bson:"location"`
	Coords        domainproperty.Coords `bson:"coords"`
	Status        string                `bson:"status"`
	PricePerNight money.Money           `bson:"price_per_night"`
	Rating        float64               `bson:"rating"`
	ReviewsCount  int                   `bson:"reviews_count"`
	MaxGuests     int                   `bson:"max_guests"`
	Bedrooms      int                   `bson:"bedrooms"`
	Beds          int                   `bson:"beds"`
	Bathrooms     int                   `bson:"bathrooms"`
	Description   string                `bson:"description"`
	Host          domainproperty.Host   `bson:"host"`
	Amenities     []string              `bson:"amenities"`
	Images        []string              `bson:"images"`
	Rules         []string              `bson:"rules"`
	Reviews       []reviews.Review      `bson:"reviews"`
	CreatedAt     time.Time             `bson:"created_at"`
	UpdatedAt     time.Time             `bson:"updated_at"`
	Version       int64                 `bson:"version"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	return propertyDocument{
		ID:            string(p.ID),
		Title:         p.Title,
		Type:          p.Type,
		Location:      p.Location,
		Coords:        p.Coords,
		Status:        string(p.Status),
		PricePerNight: p.PricePerNight,
		Rating:        p.Rating,
		ReviewsCount:  p.ReviewsCount,
		MaxGuests:     p.MaxGuests,
		Bedrooms:      p.Bedrooms,
		Beds:          p.Beds,
		Bathrooms:     p.Bathrooms,
		Description:   p.Description,
		Host:          p.Host,
		Amenities:     p.Amenities,
		Images:        p.Images,
		Rules:         p.Rules,
		Reviews:       p.Reviews,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	return &domainproperty.Property{
		ID:            domainproperty.ID(d.ID),
		Title:         d.Title,
		Type:          d.Type,
		Location:      d.Location,
		Coords:        d.Coords,
		Status:        domainproperty.Status(d.Status),
		PricePerNight: d.PricePerNight,
		Rating:        d.Rating,
		ReviewsCount:  d.ReviewsCount,
		MaxGuests:     d.MaxGuests,
		Bedrooms:      d.Bedrooms,
		Beds:          d.Beds,
		Bathrooms:     d.Bathrooms,
		Description:   d.Description,
		Host:          d.Host,
		Amenities:     d.Amenities,
		Images:        d.Images,
		Rules:         d.Rules,
		Reviews:       d.Reviews,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
		Version:       d.Version,
	}
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)
