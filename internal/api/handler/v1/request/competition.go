package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateCompetitionRequest struct {
	Title             string `json:"title" binding:"required"`
	Description       string `json:"description"`
	TotalTickets      int    `json:"total_tickets" binding:"required,min=1"`
	MaxTicketsPerUser int    `json:"max_tickets_per_user" binding:"required,min=1"`
	TicketPrice       int64  `json:"ticket_price" binding:"required,min=1"`
	DrawDate          string `json:"draw_date" binding:"required" format:"DD/MM/YYYY"`
}

func (req *CreateCompetitionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.TotalTickets, validation.Required, validation.Min(1)),
		validation.Field(&req.MaxTicketsPerUser, validation.Required, validation.Min(1)),
		validation.Field(&req.TicketPrice, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.DrawDate, validation.Required),
	)
}
