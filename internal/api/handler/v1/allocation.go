package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rafflehq/raffle-api/internal/api/handler/v1/request"
	"github.com/rafflehq/raffle-api/internal/api/handler/v1/response"
	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/service"
)

type AllocationService interface {
	Allocate(ctx context.Context, competitionID, userID uint, count int, preferred []int) (domain.Entry, error)
	GetEntry(ctx context.Context, entryID uint) (domain.Entry, error)
	GetUserEntries(ctx context.Context, userID uint) ([]domain.Entry, error)
}

type FinalizerService interface {
	ConfirmPayment(ctx context.Context, entryID uint, paymentRef string) (domain.Entry, error)
	FailPayment(ctx context.Context, entryID uint, reason string) (domain.Entry, error)
}

type AllocationHandler struct {
	svc  AllocationService
	fSvc FinalizerService
}

func NewAllocationHandler(svc AllocationService, fSvc FinalizerService) *AllocationHandler {
	return &AllocationHandler{
		svc:  svc,
		fSvc: fSvc,
	}
}

// HandleAllocateTickets godoc
// @Summary      Allocate tickets
// @Description  Reserves ticket numbers for a user and opens a pending entry
// @Tags         allocation
// @Accept       json
// @Produce      json
// @Param        competitionID  path      int                             true  "Competition ID"
// @Param        input          body      request.AllocateTicketsRequest  true  "Allocation details"
// @Success      201            {object}  domain.Entry
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      422            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /competitions/{competitionID}/allocate [post]
func (h *AllocationHandler) HandleAllocateTickets(ctx *gin.Context) {
	competitionID, err := strconv.ParseUint(ctx.Param("competitionID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid competition ID: %w", err)))
		return
	}

	var input request.AllocateTicketsRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.Allocate(ctx.Request.Context(), uint(competitionID), input.UserID, input.TicketCount, input.PreferredNumbers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompetitionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("competition", "ID", competitionID))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", input.UserID))
		case errors.Is(err, service.ErrInvalidSelection):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrCompetitionClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrSoldOut):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrAllocationExhausted):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrLimitExceeded):
			response.RenderErr(ctx, response.ErrUnprocessableEntity(err))
		default:
			err = fmt.Errorf("HandleAllocateTickets -> h.svc.Allocate -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, entry)
}

// HandleGetEntry godoc
// @Summary      Get an entry
// @Description  Retrieves a single entry with its reserved numbers and payment state
// @Tags         entries
// @Produce      json
// @Param        entryID  path      int  true  "Entry ID"
// @Success      200      {object}  domain.Entry
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /entries/{entryID} [get]
func (h *AllocationHandler) HandleGetEntry(ctx *gin.Context) {
	entryID, err := strconv.ParseUint(ctx.Param("entryID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid entry ID: %w", err)))
		return
	}

	entry, err := h.svc.GetEntry(ctx.Request.Context(), uint(entryID))
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("entry", "ID", entryID))
			return
		}

		err = fmt.Errorf("HandleGetEntry -> h.svc.GetEntry -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

// HandleGetUserEntries godoc
// @Summary      List a user's entries
// @Description  Retrieves all entries made by a user across competitions
// @Tags         entries
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {array}   domain.Entry
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users/{userID}/entries [get]
func (h *AllocationHandler) HandleGetUserEntries(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid user ID: %w", err)))
		return
	}

	entries, err := h.svc.GetUserEntries(ctx.Request.Context(), uint(userID))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
			return
		}

		err = fmt.Errorf("HandleGetUserEntries -> h.svc.GetUserEntries -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

// HandleConfirmPayment godoc
// @Summary      Confirm an entry's payment
// @Description  Finalizes a pending entry, flipping its reserved numbers to purchased
// @Tags         entries
// @Accept       json
// @Produce      json
// @Param        entryID  path      int                           true  "Entry ID"
// @Param        input    body      request.ConfirmPaymentRequest true  "Payment confirmation"
// @Success      200      {object}  domain.Entry
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      410      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /entries/{entryID}/confirm [post]
func (h *AllocationHandler) HandleConfirmPayment(ctx *gin.Context) {
	entryID, err := strconv.ParseUint(ctx.Param("entryID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid entry ID: %w", err)))
		return
	}

	var input request.ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.fSvc.ConfirmPayment(ctx.Request.Context(), uint(entryID), input.PaymentRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			response.RenderErr(ctx, response.ErrNotFound("entry", "ID", entryID))
		case errors.Is(err, service.ErrReservationExpired):
			response.RenderErr(ctx, response.ErrGone(err))
		case errors.Is(err, service.ErrAlreadyFinalized):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrPaymentMismatch):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleConfirmPayment -> h.fSvc.ConfirmPayment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

// HandleFailPayment godoc
// @Summary      Fail an entry's payment
// @Description  Marks a pending entry as failed and releases its reserved numbers
// @Tags         entries
// @Accept       json
// @Produce      json
// @Param        entryID  path      int                        true  "Entry ID"
// @Param        input    body      request.FailPaymentRequest true  "Failure details"
// @Success      200      {object}  domain.Entry
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /entries/{entryID}/fail [post]
func (h *AllocationHandler) HandleFailPayment(ctx *gin.Context) {
	entryID, err := strconv.ParseUint(ctx.Param("entryID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid entry ID: %w", err)))
		return
	}

	var input request.FailPaymentRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.fSvc.FailPayment(ctx.Request.Context(), uint(entryID), input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			response.RenderErr(ctx, response.ErrNotFound("entry", "ID", entryID))
		case errors.Is(err, service.ErrAlreadyFinalized):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleFailPayment -> h.fSvc.FailPayment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, entry)
}
