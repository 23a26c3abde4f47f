package domain

import "time"

type Competition struct {
	ID                uint      `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	TotalTickets      int       `json:"total_tickets"`
	TicketsSold       int       `json:"tickets_sold"`
	MaxTicketsPerUser int       `json:"max_tickets_per_user"`
	TicketPrice       int64     `json:"ticket_price"` // minor currency units
	DrawDate          time.Time `json:"draw_date"`
	IsLive            bool      `json:"is_live"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TicketStatusSummary is the aggregate view of a competition's ledger.
// The _meta field names are a stable wire contract consumed by
// external dashboards.
type TicketStatusSummary struct {
	Available int               `json:"available"`
	Reserved  int               `json:"reserved"`
	Purchased int               `json:"purchased"`
	Meta      TicketSummaryMeta `json:"_meta"`
}

type TicketSummaryMeta struct {
	SoldCount      int       `json:"soldCount"`
	ReservedCount  int       `json:"reservedCount"`
	AvailableCount int       `json:"availableCount"`
	Timestamp      time.Time `json:"timestamp"`
}
