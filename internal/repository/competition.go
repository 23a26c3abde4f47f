package repository

import (
	"context"
	"fmt"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository/dao"
)

var ErrCompetitionNotFound = dao.ErrCompetitionNotFound

type CompetitionDAO interface {
	Insert(ctx context.Context, competition dao.Competition) (dao.Competition, error)
	FindByID(ctx context.Context, id uint) (dao.Competition, error)
	FindAll(ctx context.Context) ([]dao.Competition, error)
	SetLive(ctx context.Context, id uint, isLive bool) error
}

type CompetitionRepository struct {
	dao CompetitionDAO
}

func NewCompetitionRepository(dao CompetitionDAO) *CompetitionRepository {
	return &CompetitionRepository{
		dao: dao,
	}
}

func (r *CompetitionRepository) domainToDao(c domain.Competition) dao.Competition {
	return dao.Competition{
		ID:                c.ID,
		Title:             c.Title,
		Description:       c.Description,
		TotalTickets:      c.TotalTickets,
		TicketsSold:       c.TicketsSold,
		MaxTicketsPerUser: c.MaxTicketsPerUser,
		TicketPrice:       c.TicketPrice,
		DrawDate:          c.DrawDate,
		IsLive:            c.IsLive,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (r *CompetitionRepository) daoToDomain(c dao.Competition) domain.Competition {
	return domain.Competition{
		ID:                c.ID,
		Title:             c.Title,
		Description:       c.Description,
		TotalTickets:      c.TotalTickets,
		TicketsSold:       c.TicketsSold,
		MaxTicketsPerUser: c.MaxTicketsPerUser,
		TicketPrice:       c.TicketPrice,
		DrawDate:          c.DrawDate,
		IsLive:            c.IsLive,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (r *CompetitionRepository) Create(ctx context.Context, competition domain.Competition) (domain.Competition, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(competition))
	if err != nil {
		return domain.Competition{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *CompetitionRepository) FindByID(ctx context.Context, id uint) (domain.Competition, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Competition{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CompetitionRepository) FindAll(ctx context.Context) ([]domain.Competition, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	competitions := make([]domain.Competition, len(found))
	for i, c := range found {
		competitions[i] = r.daoToDomain(c)
	}

	return competitions, nil
}

func (r *CompetitionRepository) SetLive(ctx context.Context, id uint, isLive bool) error {
	if err := r.dao.SetLive(ctx, id, isLive); err != nil {
		return fmt.Errorf("r.dao.SetLive -> %w", err)
	}

	return nil
}
