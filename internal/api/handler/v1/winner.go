package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rafflehq/raffle-api/internal/api/handler/v1/response"
	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/service"
)

type WinnerService interface {
	DrawWinner(ctx context.Context, competitionID uint) (domain.Winner, error)
	ClaimWinner(ctx context.Context, winnerID uint) (domain.Winner, error)
	GetWinners(ctx context.Context, competitionID uint) ([]domain.Winner, error)
}

type WinnerHandler struct {
	svc WinnerService
}

func NewWinnerHandler(svc WinnerService) *WinnerHandler {
	return &WinnerHandler{
		svc: svc,
	}
}

// HandleDrawWinner godoc
// @Summary      Draw a winner
// @Description  Picks a random purchased ticket as the winning number for a competition
// @Tags         winners
// @Produce      json
// @Param        competitionID  path      int  true  "Competition ID"
// @Success      201            {object}  domain.Winner
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /competitions/{competitionID}/draw [post]
func (h *WinnerHandler) HandleDrawWinner(ctx *gin.Context) {
	competitionID, err := strconv.ParseUint(ctx.Param("competitionID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid competition ID: %w", err)))
		return
	}

	winner, err := h.svc.DrawWinner(ctx.Request.Context(), uint(competitionID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompetitionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("competition", "ID", competitionID))
		case errors.Is(err, service.ErrNoPurchasedTickets):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleDrawWinner -> h.svc.DrawWinner -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, winner)
}

// HandleGetWinners godoc
// @Summary      List winners
// @Description  Retrieves all winners drawn for a competition
// @Tags         winners
// @Produce      json
// @Param        competitionID  path      int  true  "Competition ID"
// @Success      200            {array}   domain.Winner
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /competitions/{competitionID}/winners [get]
func (h *WinnerHandler) HandleGetWinners(ctx *gin.Context) {
	competitionID, err := strconv.ParseUint(ctx.Param("competitionID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid competition ID: %w", err)))
		return
	}

	winners, err := h.svc.GetWinners(ctx.Request.Context(), uint(competitionID))
	if err != nil {
		if errors.Is(err, service.ErrCompetitionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("competition", "ID", competitionID))
			return
		}

		err = fmt.Errorf("HandleGetWinners -> h.svc.GetWinners -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, winners)
}

// HandleClaimWinner godoc
// @Summary      Claim a prize
// @Description  Marks a pending winner as claimed
// @Tags         winners
// @Produce      json
// @Param        winnerID  path      int  true  "Winner ID"
// @Success      200       {object}  domain.Winner
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      409       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /winners/{winnerID}/claim [post]
func (h *WinnerHandler) HandleClaimWinner(ctx *gin.Context) {
	winnerID, err := strconv.ParseUint(ctx.Param("winnerID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid winner ID: %w", err)))
		return
	}

	winner, err := h.svc.ClaimWinner(ctx.Request.Context(), uint(winnerID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWinnerNotFound):
			response.RenderErr(ctx, response.ErrNotFound("winner", "ID", winnerID))
		case errors.Is(err, service.ErrWinnerNotPending):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleClaimWinner -> h.svc.ClaimWinner -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, winner)
}
