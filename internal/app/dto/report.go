package dto

type Occupancy struct {
	PropertyID   string   `json:"propertyId"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	Nights       int      `json:"nights"`
	BookedNights int      `json:"bookedNights"`
	Rate         float64  `json:"occupancyRate"`
	BlockedDays  []string `json:"blockedDays"`
}

type MonthlyEarnings struct {
	Month  string `json:"month"`
	Amount int64  `json:"amount"`
}

type Earnings struct {
	PropertyID string            `json:"propertyId"`
	Currency   string            `json:"currency"`
	Completed  int64             `json:"completed"`
	Upcoming   int64             `json:"upcoming"`
	Total      int64             `json:"total"`
	Monthly    []MonthlyEarnings `json:"monthly"`
}
