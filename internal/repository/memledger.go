package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rafflehq/raffle-api/internal/domain"
)

type memTicket struct {
	status        domain.TicketState
	reservedUntil time.Time
	userID        uint
	entryID       uint
}

// MemoryLedger is the in-memory ledger backend. It honors the same
// contract as TicketLedger: all-or-nothing reservations, idempotent
// release, and a sold counter mutated only together with the status
// transition that justifies it. A single mutex serializes every
// operation, which makes each one atomic with respect to the others.
type MemoryLedger struct {
	mu           sync.Mutex
	competitions map[uint]map[int]*memTicket
	sold         map[uint]int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		competitions: make(map[uint]map[int]*memTicket),
		sold:         make(map[uint]int),
	}
}

func (l *MemoryLedger) InitCompetition(_ context.Context, competitionID uint, totalTickets int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tickets := make(map[int]*memTicket, totalTickets)
	for n := 1; n <= totalTickets; n++ {
		tickets[n] = &memTicket{status: domain.TicketAvailable}
	}
	l.competitions[competitionID] = tickets
	l.sold[competitionID] = 0

	return nil
}

func (l *MemoryLedger) AvailableCount(_ context.Context, competitionID uint) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, t := range l.competitions[competitionID] {
		if t.status == domain.TicketAvailable {
			count++
		}
	}

	return count, nil
}

func (l *MemoryLedger) AvailableNumbers(_ context.Context, competitionID uint, limit int) ([]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var numbers []int
	for n, t := range l.competitions[competitionID] {
		if t.status == domain.TicketAvailable {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	if limit > 0 && len(numbers) > limit {
		numbers = numbers[:limit]
	}

	return numbers, nil
}

func (l *MemoryLedger) CountUserTickets(_ context.Context, competitionID, userID uint) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, t := range l.competitions[competitionID] {
		if t.userID == userID &&
			(t.status == domain.TicketReserved || t.status == domain.TicketPurchased) {
			count++
		}
	}

	return count, nil
}

func (l *MemoryLedger) Reserve(_ context.Context, competitionID uint, numbers []int, userID uint, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tickets := l.competitions[competitionID]
	for _, n := range numbers {
		t, ok := tickets[n]
		if !ok || t.status != domain.TicketAvailable {
			return ErrTicketConflict
		}
	}

	until := time.Now().UTC().Add(ttl)
	for _, n := range numbers {
		tickets[n].status = domain.TicketReserved
		tickets[n].reservedUntil = until
		tickets[n].userID = userID
		tickets[n].entryID = 0
	}

	return nil
}

func (l *MemoryLedger) Release(_ context.Context, competitionID uint, numbers []int, userID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tickets := l.competitions[competitionID]
	for _, n := range numbers {
		t, ok := tickets[n]
		if !ok || t.status != domain.TicketReserved || t.userID != userID {
			continue
		}
		*t = memTicket{status: domain.TicketAvailable}
	}

	return nil
}

func (l *MemoryLedger) Commit(_ context.Context, competitionID uint, numbers []int, entryID, userID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tickets := l.competitions[competitionID]
	for _, n := range numbers {
		t, ok := tickets[n]
		if !ok || t.status != domain.TicketReserved || t.userID != userID {
			return ErrInvalidTransition
		}
	}

	for _, n := range numbers {
		tickets[n].status = domain.TicketPurchased
		tickets[n].reservedUntil = time.Time{}
		tickets[n].entryID = entryID
	}
	l.sold[competitionID] += len(numbers)

	return nil
}

func (l *MemoryLedger) ExpireStale(_ context.Context, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	released := 0
	for _, tickets := range l.competitions {
		for _, t := range tickets {
			if t.status == domain.TicketReserved && t.reservedUntil.Before(now) {
				*t = memTicket{status: domain.TicketAvailable}
				released++
			}
		}
	}

	return released, nil
}

func (l *MemoryLedger) StatusSummary(_ context.Context, competitionID uint) (domain.TicketStatusSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var available, reserved, purchased int
	for _, t := range l.competitions[competitionID] {
		switch t.status {
		case domain.TicketAvailable:
			available++
		case domain.TicketReserved:
			reserved++
		case domain.TicketPurchased:
			purchased++
		}
	}

	return summaryFromCounts(available, reserved, purchased), nil
}

// SoldCount reports the counter maintained by Commit. Exposed so tests
// can assert it matches the purchased row count.
func (l *MemoryLedger) SoldCount(competitionID uint) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.sold[competitionID]
}
