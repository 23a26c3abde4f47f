package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository/dao"
)

var ErrWinnerNotFound = dao.ErrWinnerNotFound

type WinnerDAO interface {
	Insert(ctx context.Context, winner dao.Winner) (dao.Winner, error)
	FindByID(ctx context.Context, id uint) (dao.Winner, error)
	FindByCompetition(ctx context.Context, competitionID uint) ([]dao.Winner, error)
	Update(ctx context.Context, winner dao.Winner) (dao.Winner, error)
	ExpireUnclaimed(ctx context.Context, cutoff time.Time) (int, error)
}

type WinnerRepository struct {
	dao WinnerDAO
}

func NewWinnerRepository(dao WinnerDAO) *WinnerRepository {
	return &WinnerRepository{
		dao: dao,
	}
}

func (r *WinnerRepository) domainToDao(w domain.Winner) dao.Winner {
	return dao.Winner{
		ID:            w.ID,
		CompetitionID: w.CompetitionID,
		EntryID:       w.EntryID,
		UserID:        w.UserID,
		TicketNumber:  w.TicketNumber,
		ClaimStatus:   string(w.ClaimStatus),
		DrawnAt:       w.DrawnAt,
		ClaimedAt:     w.ClaimedAt,
	}
}

func (r *WinnerRepository) daoToDomain(w dao.Winner) domain.Winner {
	return domain.Winner{
		ID:            w.ID,
		CompetitionID: w.CompetitionID,
		EntryID:       w.EntryID,
		UserID:        w.UserID,
		TicketNumber:  w.TicketNumber,
		ClaimStatus:   domain.ClaimStatus(w.ClaimStatus),
		DrawnAt:       w.DrawnAt,
		ClaimedAt:     w.ClaimedAt,
	}
}

func (r *WinnerRepository) Create(ctx context.Context, winner domain.Winner) (domain.Winner, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(winner))
	if err != nil {
		return domain.Winner{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *WinnerRepository) FindByID(ctx context.Context, id uint) (domain.Winner, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *WinnerRepository) FindByCompetition(ctx context.Context, competitionID uint) ([]domain.Winner, error) {
	found, err := r.dao.FindByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCompetition -> %w", err)
	}

	winners := make([]domain.Winner, len(found))
	for i, w := range found {
		winners[i] = r.daoToDomain(w)
	}

	return winners, nil
}

func (r *WinnerRepository) Update(ctx context.Context, winner domain.Winner) (domain.Winner, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(winner))
	if err != nil {
		return domain.Winner{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *WinnerRepository) ExpireUnclaimed(ctx context.Context, cutoff time.Time) (int, error) {
	expired, err := r.dao.ExpireUnclaimed(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ExpireUnclaimed -> %w", err)
	}

	return expired, nil
}
