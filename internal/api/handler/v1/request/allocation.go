package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type AllocateTicketsRequest struct {
	UserID           uint  `json:"user_id" binding:"required"`
	TicketCount      int   `json:"ticket_count" binding:"required,min=1"`
	PreferredNumbers []int `json:"preferred_numbers"`
}

func (req *AllocateTicketsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.UserID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.TicketCount, validation.Required, validation.Min(1)),
		validation.Field(&req.PreferredNumbers, validation.Each(validation.Min(1))),
	)
}

type ConfirmPaymentRequest struct {
	PaymentRef string `json:"payment_ref" binding:"required"`
}

func (req *ConfirmPaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PaymentRef, validation.Required, validation.Length(1, 255)),
	)
}

type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (req *FailPaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reason, validation.Required, validation.Length(1, 255)),
	)
}
