package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository/dao"
)

var (
	ErrTicketConflict    = dao.ErrTicketConflict
	ErrInvalidTransition = dao.ErrInvalidTransition
)

type TicketDAO interface {
	SeedNumbers(ctx context.Context, competitionID uint, total int) error
	CountByStatus(ctx context.Context, competitionID uint) (map[string]int, error)
	AvailableNumbers(ctx context.Context, competitionID uint, limit int) ([]int, error)
	CountUserTickets(ctx context.Context, competitionID, userID uint) (int, error)
	Reserve(ctx context.Context, competitionID uint, numbers []int, userID uint, until time.Time) error
	Release(ctx context.Context, competitionID uint, numbers []int, userID uint) error
	Commit(ctx context.Context, competitionID uint, numbers []int, entryID, userID uint) error
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

// TicketLedger is the transactional, database-backed ledger. All state
// transitions happen inside the DAO's conditional updates; this layer
// only translates between dao rows and domain types.
type TicketLedger struct {
	dao TicketDAO
}

func NewTicketLedger(dao TicketDAO) *TicketLedger {
	return &TicketLedger{
		dao: dao,
	}
}

func (l *TicketLedger) InitCompetition(ctx context.Context, competitionID uint, totalTickets int) error {
	if err := l.dao.SeedNumbers(ctx, competitionID, totalTickets); err != nil {
		return fmt.Errorf("l.dao.SeedNumbers -> %w", err)
	}

	return nil
}

func (l *TicketLedger) AvailableCount(ctx context.Context, competitionID uint) (int, error) {
	counts, err := l.dao.CountByStatus(ctx, competitionID)
	if err != nil {
		return 0, fmt.Errorf("l.dao.CountByStatus -> %w", err)
	}

	return counts[dao.TicketAvailable], nil
}

func (l *TicketLedger) AvailableNumbers(ctx context.Context, competitionID uint, limit int) ([]int, error) {
	numbers, err := l.dao.AvailableNumbers(ctx, competitionID, limit)
	if err != nil {
		return nil, fmt.Errorf("l.dao.AvailableNumbers -> %w", err)
	}

	return numbers, nil
}

func (l *TicketLedger) CountUserTickets(ctx context.Context, competitionID, userID uint) (int, error) {
	count, err := l.dao.CountUserTickets(ctx, competitionID, userID)
	if err != nil {
		return 0, fmt.Errorf("l.dao.CountUserTickets -> %w", err)
	}

	return count, nil
}

func (l *TicketLedger) Reserve(ctx context.Context, competitionID uint, numbers []int, userID uint, ttl time.Duration) error {
	until := time.Now().UTC().Add(ttl)
	if err := l.dao.Reserve(ctx, competitionID, numbers, userID, until); err != nil {
		if errors.Is(err, dao.ErrTicketConflict) {
			return ErrTicketConflict
		}

		return fmt.Errorf("l.dao.Reserve -> %w", err)
	}

	return nil
}

func (l *TicketLedger) Release(ctx context.Context, competitionID uint, numbers []int, userID uint) error {
	if err := l.dao.Release(ctx, competitionID, numbers, userID); err != nil {
		return fmt.Errorf("l.dao.Release -> %w", err)
	}

	return nil
}

func (l *TicketLedger) Commit(ctx context.Context, competitionID uint, numbers []int, entryID, userID uint) error {
	if err := l.dao.Commit(ctx, competitionID, numbers, entryID, userID); err != nil {
		if errors.Is(err, dao.ErrInvalidTransition) {
			return ErrInvalidTransition
		}

		return fmt.Errorf("l.dao.Commit -> %w", err)
	}

	return nil
}

func (l *TicketLedger) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	released, err := l.dao.ExpireStale(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("l.dao.ExpireStale -> %w", err)
	}

	return released, nil
}

func (l *TicketLedger) StatusSummary(ctx context.Context, competitionID uint) (domain.TicketStatusSummary, error) {
	counts, err := l.dao.CountByStatus(ctx, competitionID)
	if err != nil {
		return domain.TicketStatusSummary{}, fmt.Errorf("l.dao.CountByStatus -> %w", err)
	}

	return summaryFromCounts(
		counts[dao.TicketAvailable],
		counts[dao.TicketReserved],
		counts[dao.TicketPurchased],
	), nil
}

func summaryFromCounts(available, reserved, purchased int) domain.TicketStatusSummary {
	return domain.TicketStatusSummary{
		Available: available,
		Reserved:  reserved,
		Purchased: purchased,
		Meta: domain.TicketSummaryMeta{
			SoldCount:      purchased,
			ReservedCount:  reserved,
			AvailableCount: available,
			Timestamp:      time.Now().UTC(),
		},
	}
}
