package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/smart-dobi/internal/domain"
)

type TransactionRepo struct{ db *gorm.DB }

func NewTransactionRepo(db *gorm.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Transaction{})
}

func (r *TransactionRepo) Create(ctx context.Context, machineID string, amount float64, contact *string) (*domain.Transaction, error) {
	t := &domain.Transaction{
		TransactionID:  newTransactionID(),
		MachineID:      machineID,
		Amount:         amount,
		WhatsappNumber: contact,
		Timestamp:      time.Now().UTC(),
		Status:         "completed",
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransactionRepo) ListRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	// Non-nil so an empty history serializes as [] rather than null.
	out := []domain.Transaction{}
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Totals aggregates in SQL rather than scanning documents in the handler.
func (r *TransactionRepo) Totals(ctx context.Context) (cycles int64, revenue float64, err error) {
	var row struct {
		Cycles  int64
		Revenue float64
	}
	err = r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("COUNT(*) AS cycles, COALESCE(SUM(amount), 0) AS revenue").
		Scan(&row).Error
	return row.Cycles, row.Revenue, err
}

func newTransactionID() string {
	return fmt.Sprintf("txn_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
