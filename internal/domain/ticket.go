package domain

// TicketState is the lifecycle of a single ticket number within a
// competition. Exactly one ledger row exists per (competition, number).
type TicketState string

const (
	TicketAvailable TicketState = "available"
	TicketReserved  TicketState = "reserved"
	TicketPurchased TicketState = "purchased"
)
