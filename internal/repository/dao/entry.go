package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrEntryNotFound = errors.New("entry not found")

type Entry struct {
	ID              uint   `gorm:"primaryKey"`
	Reference       string `gorm:"uniqueIndex;not null"`
	UserID          uint   `gorm:"not null;index"`
	CompetitionID   uint   `gorm:"not null;index"`
	TicketCount     int    `gorm:"not null"`
	SelectedNumbers []int  `gorm:"serializer:json;not null"`
	PaymentStatus   string `gorm:"not null;index:idx_entries_pending,priority:1"`
	PaymentRef      string
	FailureReason   string
	ReservedUntil   time.Time `gorm:"not null;index:idx_entries_pending,priority:2"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type EntryDAO struct {
	db *gorm.DB
}

func NewEntryDAO(db *gorm.DB) *EntryDAO {
	return &EntryDAO{
		db: db,
	}
}

func (d *EntryDAO) Insert(ctx context.Context, entry Entry) (Entry, error) {
	result := d.db.WithContext(ctx).Create(&entry)
	if result.Error != nil {
		return Entry{}, result.Error
	}

	return entry, nil
}

func (d *EntryDAO) FindByID(ctx context.Context, id uint) (Entry, error) {
	var entry Entry

	result := d.db.WithContext(ctx).First(&entry, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Entry{}, ErrEntryNotFound
		}

		return Entry{}, result.Error
	}

	return entry, nil
}

func (d *EntryDAO) Update(ctx context.Context, entry Entry) (Entry, error) {
	result := d.db.WithContext(ctx).Save(&entry)
	if result.Error != nil {
		return Entry{}, result.Error
	}

	return entry, nil
}

func (d *EntryDAO) FindExpiredPending(ctx context.Context, now time.Time) ([]Entry, error) {
	var entries []Entry

	result := d.db.WithContext(ctx).
		Where("payment_status = ? AND reserved_until < ?", "pending", now).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

func (d *EntryDAO) FindCompletedByCompetition(ctx context.Context, competitionID uint) ([]Entry, error) {
	var entries []Entry

	result := d.db.WithContext(ctx).
		Where("competition_id = ? AND payment_status = ?", competitionID, "completed").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

func (d *EntryDAO) FindByUser(ctx context.Context, userID uint) ([]Entry, error) {
	var entries []Entry

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}
