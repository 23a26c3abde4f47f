package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository/dao"
)

var ErrEntryNotFound = dao.ErrEntryNotFound

type EntryDAO interface {
	Insert(ctx context.Context, entry dao.Entry) (dao.Entry, error)
	FindByID(ctx context.Context, id uint) (dao.Entry, error)
	Update(ctx context.Context, entry dao.Entry) (dao.Entry, error)
	FindExpiredPending(ctx context.Context, now time.Time) ([]dao.Entry, error)
	FindCompletedByCompetition(ctx context.Context, competitionID uint) ([]dao.Entry, error)
	FindByUser(ctx context.Context, userID uint) ([]dao.Entry, error)
}

type EntryRepository struct {
	dao EntryDAO
}

func NewEntryRepository(dao EntryDAO) *EntryRepository {
	return &EntryRepository{
		dao: dao,
	}
}

func (r *EntryRepository) domainToDao(e domain.Entry) dao.Entry {
	return dao.Entry{
		ID:              e.ID,
		Reference:       e.Reference,
		UserID:          e.UserID,
		CompetitionID:   e.CompetitionID,
		TicketCount:     e.TicketCount,
		SelectedNumbers: e.SelectedNumbers,
		PaymentStatus:   string(e.PaymentStatus),
		PaymentRef:      e.PaymentRef,
		FailureReason:   e.FailureReason,
		ReservedUntil:   e.ReservedUntil,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (r *EntryRepository) daoToDomain(e dao.Entry) domain.Entry {
	return domain.Entry{
		ID:              e.ID,
		Reference:       e.Reference,
		UserID:          e.UserID,
		CompetitionID:   e.CompetitionID,
		TicketCount:     e.TicketCount,
		SelectedNumbers: e.SelectedNumbers,
		PaymentStatus:   domain.PaymentStatus(e.PaymentStatus),
		PaymentRef:      e.PaymentRef,
		FailureReason:   e.FailureReason,
		ReservedUntil:   e.ReservedUntil,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (r *EntryRepository) Create(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(entry))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EntryRepository) FindByID(ctx context.Context, id uint) (domain.Entry, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EntryRepository) Update(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(entry))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EntryRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Entry, error) {
	found, err := r.dao.FindExpiredPending(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindExpiredPending -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EntryRepository) FindCompletedByCompetition(ctx context.Context, competitionID uint) ([]domain.Entry, error) {
	found, err := r.dao.FindCompletedByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindCompletedByCompetition -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EntryRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Entry, error) {
	found, err := r.dao.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUser -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EntryRepository) daosToDomain(entries []dao.Entry) []domain.Entry {
	result := make([]domain.Entry, len(entries))
	for i, e := range entries {
		result[i] = r.daoToDomain(e)
	}

	return result
}
