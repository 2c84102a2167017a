package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainavailability "rara/internal/domain/availability"
	domainproperty "rara/internal/domain/property"
)

type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection(calendarsCollection)}
}

func (r *CalendarRepository) Calendar(ctx context.Context, id domainproperty.ID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CalendarRepository) Save(ctx context.Context, c *domainavailability.Calendar) error {
	doc := newCalendarDocument(c)
	doc.Version = c.Version + 1
	if err := upsertVersioned(ctx, r.col, doc.ID, c.Version, doc); err != nil {
		return err
	}
	c.Version = doc.Version
	return nil
}

func (r *CalendarRepository) Delete(ctx context.Context, id domainproperty.ID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

type blockDocument struct {
	ID        string        `bson:"id"`
	Range     rangeDocument `bson:"range"`
	Note      string        `bson:"note"`
	CreatedAt time.Time     `bson:"created_at"`
}

type calendarDocument struct {
	ID        string          `bson:"_id"`
	Blocks    []blockDocument `bson:"blocks"`
	UpdatedAt time.Time       `bson:"updated_at"`
	Version   int64           `bson:"version"`
}

func newCalendarDocument(c *domainavailability.Calendar) calendarDocument {
	blocks := make([]blockDocument, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		blocks = append(blocks, blockDocument{ID: string(b.ID), Range: newRangeDocument(b.Range), Note: b.Note, CreatedAt: b.CreatedAt})
	}
	return calendarDocument{ID: string(c.PropertyID), Blocks: blocks, UpdatedAt: c.UpdatedAt, Version: c.Version}
}

func (d calendarDocument) toAggregate() *domainavailability.Calendar {
	c := domainavailability.NewCalendar(domainproperty.ID(d.ID))
	for _, b := range d.Blocks {
		c.Blocks = append(c.Blocks, domainavailability.Block{
			ID:        domainavailability.BlockID(b.ID),
			Range:     b.Range.toRange(),
			Note:      b.Note,
			CreatedAt: b.CreatedAt.UTC(),
		})
	}
	c.UpdatedAt = d.UpdatedAt.UTC()
	c.Version = d.Version
	return c
}

var _ domainavailability.Repository = (*CalendarRepository)(nil)
