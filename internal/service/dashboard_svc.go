package service

import (
	"context"
	"time"

	"github.com/you/smart-dobi/internal/domain"
	"github.com/you/smart-dobi/internal/repository"
)

// DashboardService derives read-only statistics from the store; it never
// mutates machine state.
type DashboardService struct {
	machines *repository.MachineRepo
	txns     *repository.TransactionRepo
	daily    *repository.DailyRepo
}

func NewDashboardService(machines *repository.MachineRepo, txns *repository.TransactionRepo, daily *repository.DailyRepo) *DashboardService {
	return &DashboardService{machines: machines, txns: txns, daily: daily}
}

func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	active, err := s.machines.CountByStatus(ctx, domain.StatusWashing)
	if err != nil {
		return nil, err
	}
	cycles, revenue, err := s.txns.Totals(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.daily.Get(ctx, time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return &domain.DashboardStats{
		ActiveMachines: active,
		TotalRevenue:   revenue,
		TotalCycles:    cycles,
		TodayRevenue:   today.TotalRevenue,
		TodayCycles:    today.TotalCycles,
	}, nil
}

func (s *DashboardService) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.txns.ListRecent(ctx, 50)
}
