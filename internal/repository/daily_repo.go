package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/smart-dobi/internal/domain"
)

type DailyRepo struct{ db *gorm.DB }

func NewDailyRepo(db *gorm.DB) *DailyRepo {
	return &DailyRepo{db: db}
}

func (r *DailyRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.DailyRecord{})
}

// Increment bumps the day's counters with an atomic upsert, so concurrent
// cycle completions never lose an update.
func (r *DailyRepo) Increment(ctx context.Context, date string, revenue float64) error {
	rec := domain.DailyRecord{Date: date, TotalCycles: 1, TotalRevenue: revenue}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_cycles":  gorm.Expr("daily_records.total_cycles + 1"),
			"total_revenue": gorm.Expr("daily_records.total_revenue + ?", revenue),
		}),
	}).Create(&rec).Error
}

// Get returns the record for a date, or a zeroed record when none exists.
func (r *DailyRepo) Get(ctx context.Context, date string) (*domain.DailyRecord, error) {
	var rec domain.DailyRecord
	err := r.db.WithContext(ctx).First(&rec, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.DailyRecord{Date: date}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
