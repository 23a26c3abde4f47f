package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository"
)

var (
	ErrWinnerNotFound = repository.ErrWinnerNotFound

	ErrNoPurchasedTickets = errors.New("competition has no purchased tickets to draw from")
	ErrWinnerNotPending   = errors.New("winner is not pending claim")
)

type WinnerRepository interface {
	Create(ctx context.Context, winner domain.Winner) (domain.Winner, error)
	FindByID(ctx context.Context, id uint) (domain.Winner, error)
	FindByCompetition(ctx context.Context, competitionID uint) ([]domain.Winner, error)
	Update(ctx context.Context, winner domain.Winner) (domain.Winner, error)
	ExpireUnclaimed(ctx context.Context, cutoff time.Time) (int, error)
}

type WinnerService struct {
	repo         WinnerRepository
	entries      EntryRepository
	competitions CompetitionRepository
	claimWindow  time.Duration
}

func NewWinnerService(
	repo WinnerRepository,
	entries EntryRepository,
	competitions CompetitionRepository,
	claimWindow time.Duration,
) *WinnerService {
	return &WinnerService{
		repo:         repo,
		entries:      entries,
		competitions: competitions,
		claimWindow:  claimWindow,
	}
}

// DrawWinner picks a uniformly random purchased ticket that has not
// won before and records its holder as a pending winner. Competitions
// with several prizes draw repeatedly.
func (s *WinnerService) DrawWinner(ctx context.Context, competitionID uint) (domain.Winner, error) {
	if _, err := s.competitions.FindByID(ctx, competitionID); err != nil {
		if errors.Is(err, repository.ErrCompetitionNotFound) {
			return domain.Winner{}, ErrCompetitionNotFound
		}

		return domain.Winner{}, fmt.Errorf("s.competitions.FindByID -> %w", err)
	}

	completed, err := s.entries.FindCompletedByCompetition(ctx, competitionID)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("s.entries.FindCompletedByCompetition -> %w", err)
	}

	previous, err := s.repo.FindByCompetition(ctx, competitionID)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("s.repo.FindByCompetition -> %w", err)
	}

	drawn := make(map[int]struct{}, len(previous))
	for _, w := range previous {
		drawn[w.TicketNumber] = struct{}{}
	}

	type candidate struct {
		number  int
		entryID uint
		userID  uint
	}
	var pool []candidate
	for _, entry := range completed {
		for _, n := range entry.SelectedNumbers {
			if _, won := drawn[n]; won {
				continue
			}
			pool = append(pool, candidate{number: n, entryID: entry.ID, userID: entry.UserID})
		}
	}
	if len(pool) == 0 {
		return domain.Winner{}, ErrNoPurchasedTickets
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].number < pool[j].number })

	picked := pool[rand.Intn(len(pool))]

	winner, err := s.repo.Create(ctx, domain.Winner{
		CompetitionID: competitionID,
		EntryID:       picked.entryID,
		UserID:        picked.userID,
		TicketNumber:  picked.number,
		ClaimStatus:   domain.ClaimPending,
		DrawnAt:       time.Now().UTC(),
	})
	if err != nil {
		return domain.Winner{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return winner, nil
}

func (s *WinnerService) ClaimWinner(ctx context.Context, winnerID uint) (domain.Winner, error) {
	winner, err := s.repo.FindByID(ctx, winnerID)
	if err != nil {
		if errors.Is(err, repository.ErrWinnerNotFound) {
			return domain.Winner{}, ErrWinnerNotFound
		}

		return domain.Winner{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if winner.ClaimStatus != domain.ClaimPending {
		return domain.Winner{}, ErrWinnerNotPending
	}

	now := time.Now().UTC()
	winner.ClaimStatus = domain.ClaimClaimed
	winner.ClaimedAt = &now

	updated, err := s.repo.Update(ctx, winner)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *WinnerService) GetWinners(ctx context.Context, competitionID uint) ([]domain.Winner, error) {
	if _, err := s.competitions.FindByID(ctx, competitionID); err != nil {
		if errors.Is(err, repository.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}

		return nil, fmt.Errorf("s.competitions.FindByID -> %w", err)
	}

	winners, err := s.repo.FindByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByCompetition -> %w", err)
	}

	return winners, nil
}

// ExpireUnclaimed flips pending winners whose claim window lapsed.
// Runs on a schedule alongside the reservation sweep.
func (s *WinnerService) ExpireUnclaimed(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ExpireUnclaimed(ctx, now.Add(-s.claimWindow))
	if err != nil {
		return 0, fmt.Errorf("s.repo.ExpireUnclaimed -> %w", err)
	}

	return expired, nil
}
