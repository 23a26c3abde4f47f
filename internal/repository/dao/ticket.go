package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTicketConflict    = errors.New("ticket numbers no longer available")
	ErrInvalidTransition = errors.New("invalid ticket state transition")
)

const (
	TicketAvailable = "available"
	TicketReserved  = "reserved"
	TicketPurchased = "purchased"
)

// TicketStatus is one ledger row per (competition, number). The
// composite primary key is what guarantees a number can never be held
// twice: every transition is a conditional UPDATE against the current
// status, verified by affected-row count.
type TicketStatus struct {
	CompetitionID uint       `gorm:"primaryKey;autoIncrement:false"`
	Number        int        `gorm:"primaryKey;autoIncrement:false"`
	Status        string     `gorm:"not null;index:idx_ticket_statuses_sweep,priority:1"`
	ReservedUntil *time.Time `gorm:"index:idx_ticket_statuses_sweep,priority:2"`
	UserID        *uint      `gorm:"index"`
	EntryID       *uint      `gorm:"index"`
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

// SeedNumbers inserts one available row per ticket number 1..total.
func (d *TicketDAO) SeedNumbers(ctx context.Context, competitionID uint, total int) error {
	rows := make([]TicketStatus, total)
	for i := range rows {
		rows[i] = TicketStatus{
			CompetitionID: competitionID,
			Number:        i + 1,
			Status:        TicketAvailable,
		}
	}

	result := d.db.WithContext(ctx).CreateInBatches(rows, 500)

	return result.Error
}

func (d *TicketDAO) CountByStatus(ctx context.Context, competitionID uint) (map[string]int, error) {
	var rows []struct {
		Status string
		Count  int
	}

	result := d.db.WithContext(ctx).
		Model(&TicketStatus{}).
		Select("status, COUNT(*) AS count").
		Where("competition_id = ?", competitionID).
		Group("status").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func (d *TicketDAO) AvailableNumbers(ctx context.Context, competitionID uint, limit int) ([]int, error) {
	var numbers []int

	query := d.db.WithContext(ctx).
		Model(&TicketStatus{}).
		Where("competition_id = ? AND status = ?", competitionID, TicketAvailable).
		Order("number ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	result := query.Pluck("number", &numbers)
	if result.Error != nil {
		return nil, result.Error
	}

	return numbers, nil
}

func (d *TicketDAO) CountUserTickets(ctx context.Context, competitionID, userID uint) (int, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&TicketStatus{}).
		Where("competition_id = ? AND user_id = ? AND status IN ?",
			competitionID, userID, []string{TicketReserved, TicketPurchased}).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(count), nil
}

// Reserve marks the given numbers reserved for userID until the given
// deadline. The UPDATE only matches rows still available; if any number
// was taken by a concurrent caller the affected-row count falls short
// and the whole transaction rolls back.
func (d *TicketDAO) Reserve(ctx context.Context, competitionID uint, numbers []int, userID uint, until time.Time) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&TicketStatus{}).
			Where("competition_id = ? AND number IN ? AND status = ?",
				competitionID, numbers, TicketAvailable).
			Updates(map[string]interface{}{
				"status":         TicketReserved,
				"reserved_until": until,
				"user_id":        userID,
				"entry_id":       nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(numbers)) {
			return ErrTicketConflict
		}

		return nil
	})
}

// Release returns the given numbers to available, but only rows still
// reserved by userID. Numbers already freed, or re-reserved by someone
// else in the meantime, are left untouched, so releasing twice is a
// no-op and a late release can never clear another holder's rows.
func (d *TicketDAO) Release(ctx context.Context, competitionID uint, numbers []int, userID uint) error {
	result := d.db.WithContext(ctx).
		Model(&TicketStatus{}).
		Where("competition_id = ? AND number IN ? AND status = ? AND user_id = ?",
			competitionID, numbers, TicketReserved, userID).
		Updates(map[string]interface{}{
			"status":         TicketAvailable,
			"reserved_until": nil,
			"user_id":        nil,
			"entry_id":       nil,
		})

	return result.Error
}

// Commit transitions reserved numbers held by userID to purchased,
// attaches the entry, and increments the competition's sold counter in
// the same transaction. The counter is never mutated outside this
// transition, which keeps it equal to COUNT(status = purchased).
func (d *TicketDAO) Commit(ctx context.Context, competitionID uint, numbers []int, entryID, userID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&TicketStatus{}).
			Where("competition_id = ? AND number IN ? AND status = ? AND user_id = ?",
				competitionID, numbers, TicketReserved, userID).
			Updates(map[string]interface{}{
				"status":         TicketPurchased,
				"reserved_until": nil,
				"entry_id":       entryID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(numbers)) {
			return ErrInvalidTransition
		}

		result = tx.Model(&Competition{}).
			Where("id = ?", competitionID).
			Update("tickets_sold", gorm.Expr("tickets_sold + ?", len(numbers)))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCompetitionNotFound
		}

		return nil
	})
}

// ExpireStale releases every reservation whose deadline has passed.
// Safe to run concurrently: each matching row is flipped by a single
// conditional UPDATE, and rows already released no longer match.
func (d *TicketDAO) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	result := d.db.WithContext(ctx).
		Model(&TicketStatus{}).
		Where("status = ? AND reserved_until < ?", TicketReserved, now).
		Updates(map[string]interface{}{
			"status":         TicketAvailable,
			"reserved_until": nil,
			"user_id":        nil,
			"entry_id":       nil,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}

func (d *TicketDAO) FindByCompetition(ctx context.Context, competitionID uint) ([]TicketStatus, error) {
	var rows []TicketStatus

	result := d.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("number ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}
