package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository"
)

var (
	ErrCompetitionNotFound = repository.ErrCompetitionNotFound
	ErrUserNotFound        = repository.ErrUserNotFound

	ErrCompetitionClosed   = errors.New("competition is not live")
	ErrSoldOut             = errors.New("competition sold out")
	ErrLimitExceeded       = errors.New("per-user ticket limit exceeded")
	ErrAllocationExhausted = errors.New("allocation retries exhausted")
	ErrInvalidSelection    = errors.New("invalid ticket selection")
)

type CompetitionRepository interface {
	Create(ctx context.Context, competition domain.Competition) (domain.Competition, error)
	FindByID(ctx context.Context, id uint) (domain.Competition, error)
	FindAll(ctx context.Context) ([]domain.Competition, error)
	SetLive(ctx context.Context, id uint, isLive bool) error
}

type EntryRepository interface {
	Create(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	FindByID(ctx context.Context, id uint) (domain.Entry, error)
	Update(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Entry, error)
	FindCompletedByCompetition(ctx context.Context, competitionID uint) ([]domain.Entry, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Entry, error)
}

// PaymentProvider is the external payment collaborator. It only opens
// a charge; confirmation and failure arrive later through the
// finalizer's boundary operations.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, entryReference string) (string, error)
}

type AllocationConfig struct {
	// ReservationTTL bounds how long unpaid numbers stay off the
	// market. There is no fallback value: the caller must configure it.
	ReservationTTL time.Duration
	MaxAttempts    int
}

type AllocationService struct {
	ledger       TicketLedger
	competitions CompetitionRepository
	entries      EntryRepository
	users        UserRepository
	payments     PaymentProvider
	conf         AllocationConfig
}

func NewAllocationService(
	ledger TicketLedger,
	competitions CompetitionRepository,
	entries EntryRepository,
	users UserRepository,
	payments PaymentProvider,
	conf AllocationConfig,
) *AllocationService {
	return &AllocationService{
		ledger:       ledger,
		competitions: competitions,
		entries:      entries,
		users:        users,
		payments:     payments,
		conf:         conf,
	}
}

// Allocate reserves ticket numbers for a pending entry. Preferred
// numbers are used when all of them are still available; otherwise the
// lowest available numbers are taken in ascending order. A lost race
// on Reserve triggers a re-read of the available set and a bounded
// retry.
func (s *AllocationService) Allocate(ctx context.Context, competitionID, userID uint, count int, preferred []int) (domain.Entry, error) {
	if count < 1 {
		return domain.Entry{}, fmt.Errorf("%w: ticket count must be at least 1", ErrInvalidSelection)
	}

	competition, err := s.competitions.FindByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repository.ErrCompetitionNotFound) {
			return domain.Entry{}, ErrCompetitionNotFound
		}

		return domain.Entry{}, fmt.Errorf("s.competitions.FindByID -> %w", err)
	}
	if !competition.IsLive {
		return domain.Entry{}, ErrCompetitionClosed
	}

	if _, err = s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Entry{}, ErrUserNotFound
		}

		return domain.Entry{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	if err = validatePreferred(preferred, count, competition.TotalTickets); err != nil {
		return domain.Entry{}, err
	}

	held, err := s.ledger.CountUserTickets(ctx, competitionID, userID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("s.ledger.CountUserTickets -> %w", err)
	}
	if count > competition.MaxTicketsPerUser-held {
		return domain.Entry{}, ErrLimitExceeded
	}

	numbers, err := s.reserveWithRetry(ctx, competitionID, userID, count, preferred)
	if err != nil {
		return domain.Entry{}, err
	}

	entry := domain.Entry{
		Reference:       uuid.NewString(),
		UserID:          userID,
		CompetitionID:   competitionID,
		TicketCount:     count,
		SelectedNumbers: numbers,
		PaymentStatus:   domain.PaymentPending,
		ReservedUntil:   time.Now().UTC().Add(s.conf.ReservationTTL),
	}

	if s.payments != nil {
		paymentRef, err := s.payments.CreateIntent(ctx, int64(count)*competition.TicketPrice, entry.Reference)
		if err != nil {
			s.releaseQuietly(ctx, competitionID, numbers, userID)
			return domain.Entry{}, fmt.Errorf("s.payments.CreateIntent -> %w", err)
		}
		entry.PaymentRef = paymentRef
	}

	created, err := s.entries.Create(ctx, entry)
	if err != nil {
		s.releaseQuietly(ctx, competitionID, numbers, userID)
		return domain.Entry{}, fmt.Errorf("s.entries.Create -> %w", err)
	}

	return created, nil
}

// GetEntry looks up a single entry by ID.
func (s *AllocationService) GetEntry(ctx context.Context, entryID uint) (domain.Entry, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return domain.Entry{}, ErrEntryNotFound
		}

		return domain.Entry{}, fmt.Errorf("s.entries.FindByID -> %w", err)
	}

	return entry, nil
}

// GetUserEntries lists all entries a user has made across competitions.
func (s *AllocationService) GetUserEntries(ctx context.Context, userID uint) ([]domain.Entry, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	entries, err := s.entries.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.entries.FindByUser -> %w", err)
	}

	return entries, nil
}

// reserveWithRetry runs the select-then-reserve loop. Each attempt
// re-reads the available set, so a caller that lost a race converges
// on numbers nobody else holds instead of starving.
func (s *AllocationService) reserveWithRetry(ctx context.Context, competitionID, userID uint, count int, preferred []int) ([]int, error) {
	attempts := s.conf.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		available, err := s.ledger.AvailableNumbers(ctx, competitionID, 0)
		if err != nil {
			return nil, fmt.Errorf("s.ledger.AvailableNumbers -> %w", err)
		}
		if len(available) < count {
			return nil, ErrSoldOut
		}

		numbers := selectNumbers(available, preferred, count)

		err = s.ledger.Reserve(ctx, competitionID, numbers, userID, s.conf.ReservationTTL)
		if err == nil {
			sort.Ints(numbers)
			return numbers, nil
		}
		if !errors.Is(err, ErrTicketConflict) {
			return nil, fmt.Errorf("s.ledger.Reserve -> %w", err)
		}
	}

	return nil, ErrAllocationExhausted
}

func (s *AllocationService) releaseQuietly(ctx context.Context, competitionID uint, numbers []int, userID uint) {
	// Even if this fails the sweep reclaims the numbers once the TTL
	// passes, so the error is not surfaced to the caller.
	_ = s.ledger.Release(ctx, competitionID, numbers, userID)
}

// selectNumbers prefers the caller's numbers when every one of them is
// still available, and otherwise falls back to the lowest available
// numbers in ascending order.
func selectNumbers(available, preferred []int, count int) []int {
	if len(preferred) > 0 {
		availableSet := make(map[int]struct{}, len(available))
		for _, n := range available {
			availableSet[n] = struct{}{}
		}

		allFree := true
		for _, n := range preferred {
			if _, ok := availableSet[n]; !ok {
				allFree = false
				break
			}
		}
		if allFree {
			numbers := make([]int, len(preferred))
			copy(numbers, preferred)
			return numbers
		}
	}

	numbers := make([]int, count)
	copy(numbers, available[:count])

	return numbers
}

func validatePreferred(preferred []int, count, totalTickets int) error {
	if len(preferred) == 0 {
		return nil
	}
	if len(preferred) != count {
		return fmt.Errorf("%w: %d preferred numbers for %d tickets", ErrInvalidSelection, len(preferred), count)
	}

	seen := make(map[int]struct{}, len(preferred))
	for _, n := range preferred {
		if n < 1 || n > totalTickets {
			return fmt.Errorf("%w: number %d out of range", ErrInvalidSelection, n)
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: duplicate number %d", ErrInvalidSelection, n)
		}
		seen[n] = struct{}{}
	}

	return nil
}
