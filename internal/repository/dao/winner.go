package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrWinnerNotFound = errors.New("winner not found")

type Winner struct {
	ID            uint      `gorm:"primaryKey"`
	CompetitionID uint      `gorm:"not null;index"`
	EntryID       uint      `gorm:"not null"`
	UserID        uint      `gorm:"not null"`
	TicketNumber  int       `gorm:"not null"`
	ClaimStatus   string    `gorm:"not null"`
	DrawnAt       time.Time `gorm:"not null"`
	ClaimedAt     *time.Time
}

type WinnerDAO struct {
	db *gorm.DB
}

func NewWinnerDAO(db *gorm.DB) *WinnerDAO {
	return &WinnerDAO{
		db: db,
	}
}

func (d *WinnerDAO) Insert(ctx context.Context, winner Winner) (Winner, error) {
	result := d.db.WithContext(ctx).Create(&winner)
	if result.Error != nil {
		return Winner{}, result.Error
	}

	return winner, nil
}

func (d *WinnerDAO) FindByID(ctx context.Context, id uint) (Winner, error) {
	var winner Winner

	result := d.db.WithContext(ctx).First(&winner, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Winner{}, ErrWinnerNotFound
		}

		return Winner{}, result.Error
	}

	return winner, nil
}

func (d *WinnerDAO) FindByCompetition(ctx context.Context, competitionID uint) ([]Winner, error) {
	var winners []Winner

	result := d.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("drawn_at ASC").
		Find(&winners)
	if result.Error != nil {
		return nil, result.Error
	}

	return winners, nil
}

func (d *WinnerDAO) Update(ctx context.Context, winner Winner) (Winner, error) {
	result := d.db.WithContext(ctx).Save(&winner)
	if result.Error != nil {
		return Winner{}, result.Error
	}

	return winner, nil
}

// ExpireUnclaimed flips pending winners drawn before the cutoff to
// expired. Idempotent: expired rows no longer match.
func (d *WinnerDAO) ExpireUnclaimed(ctx context.Context, cutoff time.Time) (int, error) {
	result := d.db.WithContext(ctx).
		Model(&Winner{}).
		Where("claim_status = ? AND drawn_at < ?", "pending", cutoff).
		Update("claim_status", "expired")
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}
