package domain

import "time"

type ClaimStatus string

const (
	ClaimPending ClaimStatus = "pending"
	ClaimClaimed ClaimStatus = "claimed"
	ClaimExpired ClaimStatus = "expired"
)

type Winner struct {
	ID            uint        `json:"id"`
	CompetitionID uint        `json:"competition_id"`
	EntryID       uint        `json:"entry_id"`
	UserID        uint        `json:"user_id"`
	TicketNumber  int         `json:"ticket_number"`
	ClaimStatus   ClaimStatus `json:"claim_status"`
	DrawnAt       time.Time   `json:"drawn_at"`
	ClaimedAt     *time.Time  `json:"claimed_at,omitempty"`
}
