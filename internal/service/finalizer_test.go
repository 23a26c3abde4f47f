package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository"
)

type finalizerFixture struct {
	allocation   *AllocationService
	finalizer    *FinalizerService
	ledger       *repository.MemoryLedger
	competitions *fakeCompetitionRepo
	entries      *fakeEntryRepo
	users        *fakeUserRepo

	competitionID uint
}

func newFinalizerFixture(t *testing.T) *finalizerFixture {
	t.Helper()

	ledger := repository.NewMemoryLedger()
	competitions := newFakeCompetitionRepo()
	entries := newFakeEntryRepo()
	users := newFakeUserRepo(1, 2)

	competition, err := competitions.Create(context.Background(), domain.Competition{
		TotalTickets:      10,
		MaxTicketsPerUser: 10,
		TicketPrice:       100,
		IsLive:            true,
	})
	require.NoError(t, err)
	require.NoError(t, ledger.InitCompetition(context.Background(), competition.ID, 10))

	return &finalizerFixture{
		allocation: NewAllocationService(ledger, competitions, entries, users, nil, AllocationConfig{
			ReservationTTL: 15 * time.Minute,
			MaxAttempts:    3,
		}),
		finalizer:     NewFinalizerService(ledger, entries),
		ledger:        ledger,
		competitions:  competitions,
		entries:       entries,
		users:         users,
		competitionID: competition.ID,
	}
}

// allocateLapsed reserves through an allocator whose TTL is already in
// the past, so both the entry and its ledger rows start out expired.
func (f *finalizerFixture) allocateLapsed(t *testing.T, userID uint, count int) domain.Entry {
	t.Helper()

	lapsed := NewAllocationService(f.ledger, f.competitions, f.entries, f.users, nil, AllocationConfig{
		ReservationTTL: -time.Minute,
		MaxAttempts:    3,
	})

	entry, err := lapsed.Allocate(context.Background(), f.competitionID, userID, count, nil)
	require.NoError(t, err)

	return entry
}

func TestFinalizerService_ConfirmPayment_CommitsReservation(t *testing.T) {
	f := newFinalizerFixture(t)

	entry, err := f.allocation.Allocate(context.Background(), f.competitionID, 1, 3, nil)
	require.NoError(t, err)

	confirmed, err := f.finalizer.ConfirmPayment(context.Background(), entry.ID, "pi_123")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, confirmed.PaymentStatus)
	assert.Equal(t, "pi_123", confirmed.PaymentRef)
	assert.Equal(t, 3, f.ledger.SoldCount(f.competitionID))

	summary, err := f.ledger.StatusSummary(context.Background(), f.competitionID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Purchased)
	assert.Equal(t, 0, summary.Reserved)
	assert.Equal(t, 7, summary.Available)
}

func TestFinalizerService_ConfirmPayment_IsIdempotent(t *testing.T) {
	f := newFinalizerFixture(t)

	entry, err := f.allocation.Allocate(context.Background(), f.competitionID, 1, 2, nil)
	require.NoError(t, err)

	first, err := f.finalizer.ConfirmPayment(context.Background(), entry.ID, "pi_123")
	require.NoError(t, err)

	second, err := f.finalizer.ConfirmPayment(context.Background(), entry.ID, "pi_123")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, f.ledger.SoldCount(f.competitionID), "sold counter must not double count")
}

func TestFinalizerService_ConfirmPayment_RejectsMismatchedRef(t *testing.T) {
	f := newFinalizerFixture(t)

	entry, err := f.allocation.Allocate(context.Background(), f.competitionID, 1, 1, nil)
	require.NoError(t, err)

	entry.PaymentRef = "pi_expected"
	_, err = f.entries.Update(context.Background(), entry)
	require.NoError(t, err)

	_, err = f.finalizer.ConfirmPayment(context.Background(), entry.ID, "pi_other")
	assert.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestFinalizerService_ConfirmPayment_ExpiredReservation(t *testing.T) {
	f := newFinalizerFixture(t)

	entry, err := f.allocation.Allocate(context.Background(), f.competitionID, 1, 2, nil)
	require.NoError(t, err)

	entry.ReservedUntil = time.Now().UTC().Add(-time.Minute)
	_, err = f.entries.Update(context.Background(), entry)
	require.NoError(t, err)

	_, err = f.finalizer.ConfirmPayment(context.Background(), entry.ID, "pi_123")
	assert.ErrorIs(t, err, ErrReservationExpired)

	// Numbers return to the pool and the entry records why it failed.
	available, err := f.ledger.AvailableCount(context.Background(), f.competitionID)
	require.NoError(t, err)
	assert.Equal(t, 10, available)

	failed, err := f.entries.FindByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, failed.PaymentStatus)
	assert.Equal(t, domain.FailureReasonExpired, failed.FailureReason)

	// Confirming again keeps reporting expiry rather than flipping state.
	_, err = f.finalizer.ConfirmPayment(context.Background(), entry.ID, "pi_123")
	assert.ErrorIs(t, err, ErrReservationExpired)
}

func TestFinalizerService_ConfirmPayment_UnknownEntry(t *testing.T) {
	f := newFinalizerFixture(t)

	_, err := f.finalizer.ConfirmPayment(context.Background(), 999, "pi_123")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestFinalizerService_FailPayment_ReleasesNumbers(t *testing.T) {
	f := newFinalizerFixture(t)

	entry, err := f.allocation.Allocate(context.Background(), f.competitionID, 1, 3, nil)
	require.NoError(t, err)

	failed, err := f.finalizer.FailPayment(context.Background(), entry.ID, "card_declined")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, failed.PaymentStatus)
	assert.Equal(t, "card_declined", failed.FailureReason)

	available, err := f.ledger.AvailableCount(context.Background(), f.competitionID)
	require.NoError(t, err)
	assert.Equal(t, 10, available)

	// Failing again is a no-op.
	again, err := f.finalizer.FailPayment(context.Background(), entry.ID, "other_reason")
	require.NoError(t, err)
	assert.Equal(t, "card_declined", again.FailureReason)
}

func TestFinalizerService_FailPayment_AfterCompletion(t *testing.T) {
	f := newFinalizerFixture(t)

	entry, err := f.allocation.Allocate(context.Background(), f.competitionID, 1, 1, nil)
	require.NoError(t, err)

	_, err = f.finalizer.ConfirmPayment(context.Background(), entry.ID, "pi_123")
	require.NoError(t, err)

	_, err = f.finalizer.FailPayment(context.Background(), entry.ID, "too_late")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	assert.Equal(t, 1, f.ledger.SoldCount(f.competitionID))
}

func TestFinalizerService_SweepExpired(t *testing.T) {
	f := newFinalizerFixture(t)

	stale := f.allocateLapsed(t, 1, 2)
	fresh, err := f.allocation.Allocate(context.Background(), f.competitionID, 2, 2, nil)
	require.NoError(t, err)

	swept, err := f.finalizer.SweepExpired(context.Background(), time.Now().UTC())

	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	failed, err := f.entries.FindByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, failed.PaymentStatus)
	assert.Equal(t, domain.FailureReasonExpired, failed.FailureReason)

	untouched, err := f.entries.FindByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, untouched.PaymentStatus)

	available, err := f.ledger.AvailableCount(context.Background(), f.competitionID)
	require.NoError(t, err)
	assert.Equal(t, 8, available)

	// Running the sweep again finds nothing new.
	swept, err = f.finalizer.SweepExpired(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}

func TestFinalizerService_ConfirmPayment_LateConfirmLeavesNewHolderAlone(t *testing.T) {
	f := newFinalizerFixture(t)
	ctx := context.Background()

	stale := f.allocateLapsed(t, 1, 2)

	// The deadline sweep reclaims the rows before the entry is failed.
	released, err := f.ledger.ExpireStale(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 2, released)

	// Another user picks up the freed numbers.
	fresh, err := f.allocation.Allocate(ctx, f.competitionID, 2, 2, []int{1, 2})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, fresh.SelectedNumbers)

	// Confirming the lapsed entry reports expiry without disturbing the
	// numbers' new holder.
	_, err = f.finalizer.ConfirmPayment(ctx, stale.ID, "pi_late")
	assert.ErrorIs(t, err, ErrReservationExpired)

	available, err := f.ledger.AvailableCount(ctx, f.competitionID)
	require.NoError(t, err)
	assert.Equal(t, 8, available)

	confirmed, err := f.finalizer.ConfirmPayment(ctx, fresh.ID, "pi_fresh")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, confirmed.PaymentStatus)
	assert.Equal(t, 2, f.ledger.SoldCount(f.competitionID))
}

func TestFinalizerService_SweepExpired_LeavesReclaimedNumbersAlone(t *testing.T) {
	f := newFinalizerFixture(t)
	ctx := context.Background()

	stale := f.allocateLapsed(t, 1, 2)

	released, err := f.ledger.ExpireStale(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 2, released)

	fresh, err := f.allocation.Allocate(ctx, f.competitionID, 2, 2, []int{1, 2})
	require.NoError(t, err)

	// The sweep fails the lapsed entry but must not free the numbers out
	// from under the reservation that replaced it.
	swept, err := f.finalizer.SweepExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	failed, err := f.entries.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, failed.PaymentStatus)

	available, err := f.ledger.AvailableCount(ctx, f.competitionID)
	require.NoError(t, err)
	assert.Equal(t, 8, available)

	confirmed, err := f.finalizer.ConfirmPayment(ctx, fresh.ID, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, confirmed.PaymentStatus)
}
