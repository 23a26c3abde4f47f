package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository"
)

type CompetitionService struct {
	repo   CompetitionRepository
	ledger TicketLedger
}

func NewCompetitionService(repo CompetitionRepository, ledger TicketLedger) *CompetitionService {
	return &CompetitionService{
		repo:   repo,
		ledger: ledger,
	}
}

// CreateCompetition stores the competition and seeds its ledger with
// one available row per ticket number.
func (s *CompetitionService) CreateCompetition(ctx context.Context, competition domain.Competition) (domain.Competition, error) {
	competition.TicketsSold = 0
	competition.IsLive = true

	created, err := s.repo.Create(ctx, competition)
	if err != nil {
		return domain.Competition{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if err = s.ledger.InitCompetition(ctx, created.ID, created.TotalTickets); err != nil {
		return domain.Competition{}, fmt.Errorf("s.ledger.InitCompetition -> %w", err)
	}

	return created, nil
}

func (s *CompetitionService) GetCompetition(ctx context.Context, id uint) (domain.Competition, error) {
	competition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCompetitionNotFound) {
			return domain.Competition{}, ErrCompetitionNotFound
		}

		return domain.Competition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return competition, nil
}

func (s *CompetitionService) GetCompetitions(ctx context.Context) ([]domain.Competition, error) {
	competitions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return competitions, nil
}

// CloseCompetition stops new reservations. Existing pending entries
// still finalize or expire through the usual paths.
func (s *CompetitionService) CloseCompetition(ctx context.Context, id uint) error {
	if err := s.repo.SetLive(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}

		return fmt.Errorf("s.repo.SetLive -> %w", err)
	}

	return nil
}

func (s *CompetitionService) GetTicketStatus(ctx context.Context, id uint) (domain.TicketStatusSummary, error) {
	if _, err := s.GetCompetition(ctx, id); err != nil {
		return domain.TicketStatusSummary{}, err
	}

	summary, err := s.ledger.StatusSummary(ctx, id)
	if err != nil {
		return domain.TicketStatusSummary{}, fmt.Errorf("s.ledger.StatusSummary -> %w", err)
	}

	return summary, nil
}
