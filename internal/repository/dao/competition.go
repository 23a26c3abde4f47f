package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrCompetitionNotFound = errors.New("competition not found")

type Competition struct {
	ID                uint      `gorm:"primaryKey"`
	Title             string    `gorm:"not null"`
	Description       string
	TotalTickets      int       `gorm:"not null"`
	TicketsSold       int       `gorm:"not null;default:0"`
	MaxTicketsPerUser int       `gorm:"not null"`
	TicketPrice       int64     `gorm:"not null"`
	DrawDate          time.Time `gorm:"not null"`
	IsLive            bool      `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type CompetitionDAO struct {
	db *gorm.DB
}

func NewCompetitionDAO(db *gorm.DB) *CompetitionDAO {
	return &CompetitionDAO{
		db: db,
	}
}

func (d *CompetitionDAO) Insert(ctx context.Context, competition Competition) (Competition, error) {
	result := d.db.WithContext(ctx).Create(&competition)
	if result.Error != nil {
		return Competition{}, result.Error
	}

	return competition, nil
}

func (d *CompetitionDAO) FindByID(ctx context.Context, id uint) (Competition, error) {
	var competition Competition

	result := d.db.WithContext(ctx).First(&competition, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Competition{}, ErrCompetitionNotFound
		}

		return Competition{}, result.Error
	}

	return competition, nil
}

func (d *CompetitionDAO) FindAll(ctx context.Context) ([]Competition, error) {
	var competitions []Competition

	result := d.db.WithContext(ctx).Order("draw_date ASC").Find(&competitions)
	if result.Error != nil {
		return nil, result.Error
	}

	return competitions, nil
}

func (d *CompetitionDAO) SetLive(ctx context.Context, id uint, isLive bool) error {
	result := d.db.WithContext(ctx).
		Model(&Competition{}).
		Where("id = ?", id).
		Update("is_live", isLive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompetitionNotFound
	}

	return nil
}
