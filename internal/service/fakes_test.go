package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/repository"
)

type fakeCompetitionRepo struct {
	mu           sync.Mutex
	nextID       uint
	competitions map[uint]domain.Competition
}

func newFakeCompetitionRepo() *fakeCompetitionRepo {
	return &fakeCompetitionRepo{
		nextID:       1,
		competitions: make(map[uint]domain.Competition),
	}
}

func (f *fakeCompetitionRepo) Create(_ context.Context, competition domain.Competition) (domain.Competition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	competition.ID = f.nextID
	f.nextID++
	f.competitions[competition.ID] = competition

	return competition, nil
}

func (f *fakeCompetitionRepo) FindByID(_ context.Context, id uint) (domain.Competition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	competition, ok := f.competitions[id]
	if !ok {
		return domain.Competition{}, repository.ErrCompetitionNotFound
	}

	return competition, nil
}

func (f *fakeCompetitionRepo) FindAll(_ context.Context) ([]domain.Competition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]domain.Competition, 0, len(f.competitions))
	for _, c := range f.competitions {
		all = append(all, c)
	}

	return all, nil
}

func (f *fakeCompetitionRepo) SetLive(_ context.Context, id uint, isLive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	competition, ok := f.competitions[id]
	if !ok {
		return repository.ErrCompetitionNotFound
	}
	competition.IsLive = isLive
	f.competitions[id] = competition

	return nil
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	nextID  uint
	entries map[uint]domain.Entry

	createErr error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{
		nextID:  1,
		entries: make(map[uint]domain.Entry),
	}
}

func (f *fakeEntryRepo) Create(_ context.Context, entry domain.Entry) (domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.Entry{}, f.createErr
	}

	entry.ID = f.nextID
	f.nextID++
	f.entries[entry.ID] = entry

	return entry, nil
}

func (f *fakeEntryRepo) FindByID(_ context.Context, id uint) (domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[id]
	if !ok {
		return domain.Entry{}, repository.ErrEntryNotFound
	}

	return entry, nil
}

func (f *fakeEntryRepo) Update(_ context.Context, entry domain.Entry) (domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[entry.ID]; !ok {
		return domain.Entry{}, repository.ErrEntryNotFound
	}
	f.entries[entry.ID] = entry

	return entry, nil
}

func (f *fakeEntryRepo) FindExpiredPending(_ context.Context, now time.Time) ([]domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var expired []domain.Entry
	for _, e := range f.entries {
		if e.PaymentStatus == domain.PaymentPending && e.ReservedUntil.Before(now) {
			expired = append(expired, e)
		}
	}

	return expired, nil
}

func (f *fakeEntryRepo) FindCompletedByCompetition(_ context.Context, competitionID uint) ([]domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var completed []domain.Entry
	for _, e := range f.entries {
		if e.CompetitionID == competitionID && e.PaymentStatus == domain.PaymentCompleted {
			completed = append(completed, e)
		}
	}

	return completed, nil
}

func (f *fakeEntryRepo) FindByUser(_ context.Context, userID uint) ([]domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []domain.Entry
	for _, e := range f.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}

	return entries, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]domain.User
}

func newFakeUserRepo(ids ...uint) *fakeUserRepo {
	f := &fakeUserRepo{
		nextID: 1,
		users:  make(map[uint]domain.User),
	}
	for _, id := range ids {
		f.users[id] = domain.User{ID: id, Email: fmt.Sprintf("user%d@example.com", id)}
		if id >= f.nextID {
			f.nextID = id + 1
		}
	}

	return f
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}

	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user

	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

type fakeWinnerRepo struct {
	mu      sync.Mutex
	nextID  uint
	winners map[uint]domain.Winner
}

func newFakeWinnerRepo() *fakeWinnerRepo {
	return &fakeWinnerRepo{
		nextID:  1,
		winners: make(map[uint]domain.Winner),
	}
}

func (f *fakeWinnerRepo) Create(_ context.Context, winner domain.Winner) (domain.Winner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	winner.ID = f.nextID
	f.nextID++
	f.winners[winner.ID] = winner

	return winner, nil
}

func (f *fakeWinnerRepo) FindByID(_ context.Context, id uint) (domain.Winner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	winner, ok := f.winners[id]
	if !ok {
		return domain.Winner{}, repository.ErrWinnerNotFound
	}

	return winner, nil
}

func (f *fakeWinnerRepo) FindByCompetition(_ context.Context, competitionID uint) ([]domain.Winner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var winners []domain.Winner
	for _, w := range f.winners {
		if w.CompetitionID == competitionID {
			winners = append(winners, w)
		}
	}

	return winners, nil
}

func (f *fakeWinnerRepo) Update(_ context.Context, winner domain.Winner) (domain.Winner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.winners[winner.ID]; !ok {
		return domain.Winner{}, repository.ErrWinnerNotFound
	}
	f.winners[winner.ID] = winner

	return winner, nil
}

func (f *fakeWinnerRepo) ExpireUnclaimed(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	expired := 0
	for id, w := range f.winners {
		if w.ClaimStatus == domain.ClaimPending && w.DrawnAt.Before(cutoff) {
			w.ClaimStatus = domain.ClaimExpired
			f.winners[id] = w
			expired++
		}
	}

	return expired, nil
}

type fakePaymentProvider struct {
	mu      sync.Mutex
	err     error
	intents []string
}

func (f *fakePaymentProvider) CreateIntent(_ context.Context, _ int64, entryReference string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}

	ref := "pi_" + entryReference
	f.intents = append(f.intents, ref)

	return ref, nil
}
