package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "rara/internal/domain/booking"
	"rara/internal/domain/pricing"
	domainproperty "rara/internal/domain/property"
	"rara/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	if err := upsertVersioned(ctx, r.col, doc.ID, b.Version, doc); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	query := bson.M{}
	if filter.GuestID != "" {
		query["guest.id"] = filter.GuestID
	}
	if filter.HostID != "" {
		query["host.id"] = filter.HostID
	}
	if filter.PropertyID != "" {
		query["property_id"] = string(filter.PropertyID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make(bson.A, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID            string                 `bson:"_id"`
	PropertyID    string                 `bson:"property_id"`
	PropertyTitle string                 `bson:"property_title"`
	Guest         domainbooking.Party    `bson:"guest"`
	Host          domainbooking.Party    `bson:"host"`
	Range         rangeDocument          `bson:"range"`
	Price         pricing.PriceBreakdown `bson:"price"`
	Status        string                 `bson:"status"`
	CreatedAt     time.Time              `bson:"created_at"`
	UpdatedAt     time.Time              `bson:"updated_at"`
	Version       int64                  `bson:"version"`
}

// rangeDocument stores days as YYYY-MM-DD so they never shift across zones.
type rangeDocument struct {
	CheckIn  string `bson:"check_in"`
	CheckOut string `bson:"check_out"`
}

func newRangeDocument(r daterange.DateRange) rangeDocument {
	return rangeDocument{CheckIn: r.CheckIn.Format(daterange.DayLayout), CheckOut: r.CheckOut.Format(daterange.DayLayout)}
}

func (d rangeDocument) toRange() daterange.DateRange {
	checkIn, _ := time.Parse(daterange.DayLayout, d.CheckIn)
	checkOut, _ := time.Parse(daterange.DayLayout, d.CheckOut)
	return daterange.DateRange{CheckIn: checkIn, CheckOut: checkOut}
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		PropertyTitle: b.PropertyTitle,
		Guest:         b.Guest,
		Host:          b.Host,
		Range:         newRangeDocument(b.Range),
		Price:         b.Price,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:            domainbooking.ID(d.ID),
		PropertyID:    domainproperty.ID(d.PropertyID),
		PropertyTitle: d.PropertyTitle,
		Guest:         d.Guest,
		Host:          d.Host,
		Range:         d.Range.toRange(),
		Price:         d.Price,
		Status:        domainbooking.Status(d.Status),
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
		Version:       d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
