package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository"
)

var (
	ErrEntryNotFound = repository.ErrEntryNotFound

	ErrReservationExpired = errors.New("reservation expired")
	ErrAlreadyFinalized   = errors.New("entry already finalized")
	ErrPaymentMismatch    = errors.New("payment reference does not match entry")
)

// FinalizerService converts reservations into purchases on confirmed
// payment and returns numbers to the market on failure or expiry. An
// entry transitions exactly once: pending to completed, or pending to
// failed.
type FinalizerService struct {
	ledger  TicketLedger
	entries EntryRepository
}

func NewFinalizerService(ledger TicketLedger, entries EntryRepository) *FinalizerService {
	return &FinalizerService{
		ledger:  ledger,
		entries: entries,
	}
}

// ConfirmPayment commits the entry's reservation. Calling it again for
// a completed entry returns the entry unchanged, so duplicate payment
// webhooks are harmless.
func (s *FinalizerService) ConfirmPayment(ctx context.Context, entryID uint, paymentRef string) (domain.Entry, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return domain.Entry{}, ErrEntryNotFound
		}

		return domain.Entry{}, fmt.Errorf("s.entries.FindByID -> %w", err)
	}

	if entry.PaymentRef != "" && paymentRef != "" && entry.PaymentRef != paymentRef {
		return domain.Entry{}, ErrPaymentMismatch
	}

	switch entry.PaymentStatus {
	case domain.PaymentCompleted:
		return entry, nil
	case domain.PaymentFailed:
		if entry.FailureReason == domain.FailureReasonExpired {
			return domain.Entry{}, ErrReservationExpired
		}

		return domain.Entry{}, ErrAlreadyFinalized
	}

	if time.Now().UTC().After(entry.ReservedUntil) {
		// The sweep may already have reclaimed the numbers; Release only
		// touches rows this entry's user still holds, so a late confirm
		// cannot clear a reservation the numbers moved on to.
		if err = s.ledger.Release(ctx, entry.CompetitionID, entry.SelectedNumbers, entry.UserID); err != nil {
			return domain.Entry{}, fmt.Errorf("s.ledger.Release -> %w", err)
		}
		if _, err = s.failEntry(ctx, entry, domain.FailureReasonExpired); err != nil {
			return domain.Entry{}, err
		}

		return domain.Entry{}, ErrReservationExpired
	}

	if err = s.ledger.Commit(ctx, entry.CompetitionID, entry.SelectedNumbers, entry.ID, entry.UserID); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			zap.L().Error("ledger integrity violation on commit",
				zap.Uint("entry_id", entry.ID),
				zap.Uint("competition_id", entry.CompetitionID),
				zap.Ints("numbers", entry.SelectedNumbers),
			)

			return domain.Entry{}, ErrInvalidTransition
		}

		return domain.Entry{}, fmt.Errorf("s.ledger.Commit -> %w", err)
	}

	entry.PaymentStatus = domain.PaymentCompleted
	if paymentRef != "" {
		entry.PaymentRef = paymentRef
	}

	updated, err := s.entries.Update(ctx, entry)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("s.entries.Update -> %w", err)
	}

	return updated, nil
}

// FailPayment marks the entry failed and returns its numbers to the
// available pool. Failing an already-failed entry is a no-op.
func (s *FinalizerService) FailPayment(ctx context.Context, entryID uint, reason string) (domain.Entry, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return domain.Entry{}, ErrEntryNotFound
		}

		return domain.Entry{}, fmt.Errorf("s.entries.FindByID -> %w", err)
	}

	switch entry.PaymentStatus {
	case domain.PaymentFailed:
		return entry, nil
	case domain.PaymentCompleted:
		return domain.Entry{}, ErrAlreadyFinalized
	}

	if err = s.ledger.Release(ctx, entry.CompetitionID, entry.SelectedNumbers, entry.UserID); err != nil {
		return domain.Entry{}, fmt.Errorf("s.ledger.Release -> %w", err)
	}

	return s.failEntry(ctx, entry, reason)
}

// SweepExpired releases stale reservations and fails every pending
// entry whose hold window lapsed. Idempotent; intended to run on a
// schedule so no entry stays pending indefinitely.
func (s *FinalizerService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	released, err := s.ledger.ExpireStale(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("s.ledger.ExpireStale -> %w", err)
	}

	expired, err := s.entries.FindExpiredPending(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("s.entries.FindExpiredPending -> %w", err)
	}

	// ExpireStale already freed every lapsed row; an entry's deadline is
	// never earlier than its rows', so there is nothing left to release
	// here. Releasing by number at this point could clear a reservation
	// the numbers have since moved on to.
	for _, entry := range expired {
		if _, err = s.failEntry(ctx, entry, domain.FailureReasonExpired); err != nil {
			return 0, err
		}
	}

	if released > 0 || len(expired) > 0 {
		zap.L().Info("expired reservations swept",
			zap.Int("tickets_released", released),
			zap.Int("entries_failed", len(expired)),
		)
	}

	return len(expired), nil
}

func (s *FinalizerService) failEntry(ctx context.Context, entry domain.Entry, reason string) (domain.Entry, error) {
	entry.PaymentStatus = domain.PaymentFailed
	entry.FailureReason = reason

	updated, err := s.entries.Update(ctx, entry)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("s.entries.Update -> %w", err)
	}

	return updated, nil
}
