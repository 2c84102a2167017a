package dto

import (
	"time"

	domainavailability "rara/internal/domain/availability"
	"rara/internal/domain/shared/daterange"
)

type Availability struct {
	PropertyID  string   `json:"propertyId"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Today       string   `json:"today"`
	BlockedDays []string `json:"blockedDays"`
}

type Block struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type BlockCollection struct {
	Items []Block `json:"items"`
}

func FormatDays(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(daterange.DayLayout))
	}
	return out
}

func MapBlock(b domainavailability.Block) Block {
	return Block{
		ID:        string(b.ID),
		From:      b.Range.CheckIn.Format(daterange.DayLayout),
		To:        b.Range.CheckOut.Format(daterange.DayLayout),
		Note:      b.Note,
		CreatedAt: b.CreatedAt,
	}
}

func MapBlocks(list []domainavailability.Block) BlockCollection {
	items := make([]Block, 0, len(list))
	for _, b := range list {
		items = append(items, MapBlock(b))
	}
	return BlockCollection{Items: items}
}
