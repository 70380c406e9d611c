package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/smart-dobi/internal/domain"
)

type MachineRepo struct{ db *gorm.DB }

func NewMachineRepo(db *gorm.DB) *MachineRepo {
	return &MachineRepo{db: db}
}

func (r *MachineRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Machine{})
}

func (r *MachineRepo) List(ctx context.Context) ([]domain.Machine, error) {
	var out []domain.Machine
	if err := r.db.WithContext(ctx).Order("machine_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MachineRepo) ByID(ctx context.Context, id string) (*domain.Machine, error) {
	var m domain.Machine
	if err := r.db.WithContext(ctx).First(&m, "machine_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// SeedDefaults creates the initial kiosk machines when the table is empty.
// Returns true when seeding happened.
func (r *MachineRepo) SeedDefaults(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Machine{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	defaults := []domain.Machine{
		{MachineID: "1", Status: domain.StatusAvailable, MachineType: "washer", Price: 5.00},
		{MachineID: "2", Status: domain.StatusAvailable, MachineType: "washer", Price: 5.00},
	}
	return true, r.db.WithContext(ctx).Create(&defaults).Error
}

// Reserve moves an available machine to reserved with a single conditional
// UPDATE, so exactly one of any concurrent callers wins.
func (r *MachineRepo) Reserve(ctx context.Context, id string, contact *string) error {
	res := r.db.WithContext(ctx).Model(&domain.Machine{}).
		Where("machine_id = ? AND status = ?", id, domain.StatusAvailable).
		Updates(map[string]any{
			"status":           domain.StatusReserved,
			"whatsapp_number":  contact,
			"time_remaining":   0,
			"payment_verified": false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := r.ByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrNotAvailable
}

// SettleReserved resolves a reservation: verified moves the machine into the
// washing cycle, otherwise it falls back to available with transient fields
// cleared. Guarded on status=reserved so a concurrent admin override or
// heartbeat demotion cannot be overwritten.
func (r *MachineRepo) SettleReserved(ctx context.Context, id string, verified bool) error {
	updates := map[string]any{
		"status":           domain.StatusAvailable,
		"whatsapp_number":  nil,
		"time_remaining":   0,
		"payment_verified": false,
	}
	if verified {
		updates = map[string]any{
			"status":           domain.StatusWashing,
			"payment_verified": true,
		}
	}
	res := r.db.WithContext(ctx).Model(&domain.Machine{}).
		Where("machine_id = ? AND status = ?", id, domain.StatusReserved).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := r.ByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrNotReserved
}

// Report applies a controller status report. The heartbeat is refreshed on
// every report regardless of status, as it is the sole liveness signal.
func (r *MachineRepo) Report(ctx context.Context, id, status string, timeRemaining int, at time.Time) error {
	updates := map[string]any{
		"status":         status,
		"time_remaining": timeRemaining,
		"last_heartbeat": at,
	}
	if status == domain.StatusAvailable {
		updates["whatsapp_number"] = nil
		updates["time_remaining"] = 0
		updates["payment_verified"] = false
	}
	res := r.db.WithContext(ctx).Model(&domain.Machine{}).
		Where("machine_id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus is the admin override: unconditional, transient fields cleared.
func (r *MachineRepo) SetStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&domain.Machine{}).
		Where("machine_id = ?", id).
		Updates(map[string]any{
			"status":           status,
			"whatsapp_number":  nil,
			"time_remaining":   0,
			"payment_verified": false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DemoteStale marks machines broken when their last heartbeat predates the
// cutoff. Idempotent; machines already broken are left alone.
func (r *MachineRepo) DemoteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Machine{}).
		Where("last_heartbeat IS NOT NULL AND last_heartbeat < ? AND status <> ?", cutoff, domain.StatusBroken).
		Updates(map[string]any{
			"status":           domain.StatusBroken,
			"whatsapp_number":  nil,
			"time_remaining":   0,
			"payment_verified": false,
		})
	return res.RowsAffected, res.Error
}

func (r *MachineRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Machine{}).
		Where("status = ?", status).Count(&n).Error
	return n, err
}
