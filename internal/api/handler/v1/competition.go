package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rafflehq/raffle-api/internal/api/handler/v1/request"
	"github.com/rafflehq/raffle-api/internal/api/handler/v1/response"
	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/service"
)

type CompetitionService interface {
	CreateCompetition(ctx context.Context, competition domain.Competition) (domain.Competition, error)
	GetCompetition(ctx context.Context, id uint) (domain.Competition, error)
	GetCompetitions(ctx context.Context) ([]domain.Competition, error)
	CloseCompetition(ctx context.Context, id uint) error
	GetTicketStatus(ctx context.Context, id uint) (domain.TicketStatusSummary, error)
}

type CompetitionHandler struct {
	svc CompetitionService
}

func NewCompetitionHandler(svc CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{
		svc: svc,
	}
}

// HandleCreateCompetition godoc
// @Summary      Create a new competition
// @Description  Creates a competition and seeds its ticket inventory
// @Tags         competitions
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateCompetitionRequest  true  "Competition details"
// @Success      201    {object}  domain.Competition
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /competitions [post]
func (h *CompetitionHandler) HandleCreateCompetition(ctx *gin.Context) {
	var input request.CreateCompetitionRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	drawDate, err := time.Parse("02/01/2006", input.DrawDate)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid draw_date format, expected DD/MM/YYYY: %w", err)))
		return
	}

	competition, err := h.svc.CreateCompetition(ctx.Request.Context(), domain.Competition{
		Title:             input.Title,
		Description:       input.Description,
		TotalTickets:      input.TotalTickets,
		MaxTicketsPerUser: input.MaxTicketsPerUser,
		TicketPrice:       input.TicketPrice,
		DrawDate:          drawDate,
	})
	if err != nil {
		err = fmt.Errorf("HandleCreateCompetition -> h.svc.CreateCompetition -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, competition)
}

// HandleGetCompetitions godoc
// @Summary      List competitions
// @Description  Retrieves all competitions ordered by draw date
// @Tags         competitions
// @Produce      json
// @Success      200  {array}   domain.Competition
// @Failure      500  {object}  response.Err
// @Router       /competitions [get]
func (h *CompetitionHandler) HandleGetCompetitions(ctx *gin.Context) {
	competitions, err := h.svc.GetCompetitions(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleGetCompetitions -> h.svc.GetCompetitions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, competitions)
}

// HandleGetCompetition godoc
// @Summary      Get a competition
// @Description  Retrieves a single competition by ID
// @Tags         competitions
// @Produce      json
// @Param        competitionID  path      int  true  "Competition ID"
// @Success      200            {object}  domain.Competition
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /competitions/{competitionID} [get]
func (h *CompetitionHandler) HandleGetCompetition(ctx *gin.Context) {
	competitionID, err := strconv.ParseUint(ctx.Param("competitionID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid competition ID: %w", err)))
		return
	}

	competition, err := h.svc.GetCompetition(ctx.Request.Context(), uint(competitionID))
	if err != nil {
		if errors.Is(err, service.ErrCompetitionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("competition", "ID", competitionID))
			return
		}

		err = fmt.Errorf("HandleGetCompetition -> h.svc.GetCompetition -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, competition)
}

// HandleCloseCompetition godoc
// @Summary      Close a competition
// @Description  Stops ticket sales for a competition
// @Tags         competitions
// @Produce      json
// @Param        competitionID  path      int  true  "Competition ID"
// @Success      200            {object}  map[string]string
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /competitions/{competitionID}/close [post]
func (h *CompetitionHandler) HandleCloseCompetition(ctx *gin.Context) {
	competitionID, err := strconv.ParseUint(ctx.Param("competitionID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid competition ID: %w", err)))
		return
	}

	if err := h.svc.CloseCompetition(ctx.Request.Context(), uint(competitionID)); err != nil {
		if errors.Is(err, service.ErrCompetitionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("competition", "ID", competitionID))
			return
		}

		err = fmt.Errorf("HandleCloseCompetition -> h.svc.CloseCompetition -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "closed"})
}

// HandleGetTicketStatus godoc
// @Summary      Get ticket status
// @Description  Retrieves the per-number ticket breakdown and aggregate counts for a competition
// @Tags         competitions
// @Produce      json
// @Param        competitionID  path      int  true  "Competition ID"
// @Success      200            {object}  domain.TicketStatusSummary
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /competitions/{competitionID}/tickets [get]
func (h *CompetitionHandler) HandleGetTicketStatus(ctx *gin.Context) {
	competitionID, err := strconv.ParseUint(ctx.Param("competitionID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid competition ID: %w", err)))
		return
	}

	summary, err := h.svc.GetTicketStatus(ctx.Request.Context(), uint(competitionID))
	if err != nil {
		if errors.Is(err, service.ErrCompetitionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("competition", "ID", competitionID))
			return
		}

		err = fmt.Errorf("HandleGetTicketStatus -> h.svc.GetTicketStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
