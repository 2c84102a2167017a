package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"rara/internal/domain/property"
	"rara/internal/domain/shared/daterange"
	"rara/internal/domain/shared/events"
)

var (
	ErrOverlappingBlock = errors.New("availability: range overlaps an existing host block")
	ErrBlockNotFound    = errors.New("availability: block not found")
)

type BlockID string

// Block is a host-curated range of unavailable days.
type Block struct {
	ID        BlockID
	Range     daterange.DateRange
	Note      string
	CreatedAt time.Time
}

// Calendar holds the host's manual blocks for one property. Its version is
// bumped by every reservation write so concurrent writers on a property conflict.
type Calendar struct {
	PropertyID property.ID
	Blocks     []Block
	Version    int64
	UpdatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	// Calendar returns the stored calendar or an empty one for a property without blocks.
	Calendar(ctx context.Context, id property.ID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
	Delete(ctx context.Context, id property.ID) error
}

func NewCalendar(id property.ID) *Calendar {
	return &Calendar{PropertyID: id}
}

// AddBlock appends a manual block; the caller checks it against bookings first.
func (c *Calendar) AddBlock(id BlockID, r daterange.DateRange, note string, now time.Time) (Block, error) {
	if err := r.Validate(); err != nil {
		return Block{}, err
	}
	for _, b := range c.Blocks {
		if b.Range.Overlaps(r) {
			return Block{}, ErrOverlappingBlock
		}
	}
	block := Block{ID: id, Range: r, Note: strings.TrimSpace(note), CreatedAt: now.UTC()}
	c.Blocks = append(c.Blocks, block)
	c.UpdatedAt = now.UTC()
	c.Record(Blocked{PropertyID: c.PropertyID, BlockID: id, From: r.CheckIn, To: r.CheckOut, At: c.UpdatedAt})
	return block, nil
}

func (c *Calendar) RemoveBlock(id BlockID, now time.Time) error {
	idx := -1
	for i, b := range c.Blocks {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrBlockNotFound
	}
	removed := c.Blocks[idx]
	c.Blocks = append(c.Blocks[:idx], c.Blocks[idx+1:]...)
	c.UpdatedAt = now.UTC()
	c.Record(Released{PropertyID: c.PropertyID, BlockID: removed.ID, From: removed.Range.CheckIn, To: removed.Range.CheckOut, At: c.UpdatedAt})
	return nil
}

// Touch marks the calendar as written by a reservation change.
func (c *Calendar) Touch(now time.Time) {
	c.UpdatedAt = now.UTC()
}

func (c *Calendar) Ranges() []daterange.DateRange {
	out := make([]daterange.DateRange, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		out = append(out, b.Range)
	}
	return out
}

func (c *Calendar) Clone() *Calendar {
	return &Calendar{
		PropertyID: c.PropertyID,
		Blocks:     append([]Block(nil), c.Blocks...),
		Version:    c.Version,
		UpdatedAt:  c.UpdatedAt,
	}
}
