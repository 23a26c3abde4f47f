package domain

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

const FailureReasonExpired = "reservation_expired"

// Entry is a user's purchase attempt. It is created pending at
// reservation time and transitions exactly once, to completed or
// failed. The ticket numbers it references belong to the ledger until
// the entry completes.
type Entry struct {
	ID              uint          `json:"id"`
	Reference       string        `json:"reference"`
	UserID          uint          `json:"user_id"`
	CompetitionID   uint          `json:"competition_id"`
	TicketCount     int           `json:"ticket_count"`
	SelectedNumbers []int         `json:"selected_numbers"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentRef      string        `json:"payment_ref,omitempty"`
	FailureReason   string        `json:"failure_reason,omitempty"`
	ReservedUntil   time.Time     `json:"reserved_until"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (e *Entry) IsFinalized() bool {
	return e.PaymentStatus == PaymentCompleted || e.PaymentStatus == PaymentFailed
}
