package service

import (
	"context"
	"time"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository"
)

var (
	ErrTicketConflict    = repository.ErrTicketConflict
	ErrInvalidTransition = repository.ErrInvalidTransition
)

// TicketLedger is the authoritative record of per-number ticket state
// and the sold counter. Both backends (transactional store, in-memory)
// satisfy it; callers must not depend on which one is active.
type TicketLedger interface {
	InitCompetition(ctx context.Context, competitionID uint, totalTickets int) error
	AvailableCount(ctx context.Context, competitionID uint) (int, error)
	AvailableNumbers(ctx context.Context, competitionID uint, limit int) ([]int, error)
	CountUserTickets(ctx context.Context, competitionID, userID uint) (int, error)
	Reserve(ctx context.Context, competitionID uint, numbers []int, userID uint, ttl time.Duration) error
	Release(ctx context.Context, competitionID uint, numbers []int, userID uint) error
	Commit(ctx context.Context, competitionID uint, numbers []int, entryID, userID uint) error
	ExpireStale(ctx context.Context, now time.Time) (int, error)
	StatusSummary(ctx context.Context, competitionID uint) (domain.TicketStatusSummary, error)
}
