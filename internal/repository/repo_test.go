package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/smart-dobi/internal/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A fresh pool connection would get its own empty in-memory DB.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return gdb
}

func setupMachineRepo(t *testing.T) *MachineRepo {
	t.Helper()
	r := NewMachineRepo(openTestDB(t))
	if err := r.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return r
}

func TestSeedDefaultsOnce(t *testing.T) {
	r := setupMachineRepo(t)
	ctx := context.Background()

	seeded, err := r.SeedDefaults(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !seeded {
		t.Fatal("expected first seed to create machines")
	}

	seeded, err = r.SeedDefaults(ctx)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if seeded {
		t.Fatal("expected second seed to be a no-op")
	}

	machines, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(machines) != 2 {
		t.Fatalf("expected 2 machines, got %d", len(machines))
	}
	for _, m := range machines {
		if m.Status != domain.StatusAvailable {
			t.Errorf("machine %s seeded with status %s", m.MachineID, m.Status)
		}
		if m.Price != 5.00 {
			t.Errorf("machine %s seeded with price %v", m.MachineID, m.Price)
		}
	}
}

func TestReserveSingleWinner(t *testing.T) {
	r := setupMachineRepo(t)
	ctx := context.Background()
	if _, err := r.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	contact := "60189892155"
	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Reserve(ctx, "1", &contact)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrNotAvailable):
		default:
			t.Fatalf("unexpected reserve error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning reservation, got %d", wins)
	}

	m, err := r.ByID(ctx, "1")
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if m.Status != domain.StatusReserved {
		t.Fatalf("expected reserved, got %s", m.Status)
	}
	if m.WhatsappNumber == nil || *m.WhatsappNumber != contact {
		t.Fatalf("contact not stored: %v", m.WhatsappNumber)
	}
	if m.PaymentVerified {
		t.Fatal("payment_verified must be false on reservation")
	}
}

func TestReserveUnknownMachine(t *testing.T) {
	r := setupMachineRepo(t)
	ctx := context.Background()

	err := r.Reserve(ctx, "999", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSettleReservedGuard(t *testing.T) {
	r := setupMachineRepo(t)
	ctx := context.Background()
	if _, err := r.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Not reserved yet.
	if err := r.SettleReserved(ctx, "1", true); !errors.Is(err, domain.ErrNotReserved) {
		t.Fatalf("expected ErrNotReserved, got %v", err)
	}

	contact := "0189892155"
	if err := r.Reserve(ctx, "1", &contact); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := r.SettleReserved(ctx, "1", false); err != nil {
		t.Fatalf("settle false: %v", err)
	}
	m, _ := r.ByID(ctx, "1")
	if m.Status != domain.StatusAvailable {
		t.Fatalf("expected available after rejection, got %s", m.Status)
	}
	if m.WhatsappNumber != nil || m.PaymentVerified || m.TimeRemaining != 0 {
		t.Fatal("transient fields not cleared after rejection")
	}

	if err := r.Reserve(ctx, "1", &contact); err != nil {
		t.Fatalf("re-reserve: %v", err)
	}
	if err := r.SettleReserved(ctx, "1", true); err != nil {
		t.Fatalf("settle true: %v", err)
	}
	m, _ = r.ByID(ctx, "1")
	if m.Status != domain.StatusWashing {
		t.Fatalf("expected washing, got %s", m.Status)
	}
	if !m.PaymentVerified {
		t.Fatal("payment_verified must be set")
	}
	if m.WhatsappNumber == nil {
		t.Fatal("contact must survive into the cycle")
	}
}

func TestReportRefreshesHeartbeat(t *testing.T) {
	r := setupMachineRepo(t)
	ctx := context.Background()
	if _, err := r.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	at := time.Now().UTC()
	if err := r.Report(ctx, "1", domain.StatusWashing, 118, at); err != nil {
		t.Fatalf("report: %v", err)
	}
	m, _ := r.ByID(ctx, "1")
	if m.Status != domain.StatusWashing || m.TimeRemaining != 118 {
		t.Fatalf("report not applied: %s %d", m.Status, m.TimeRemaining)
	}
	if m.LastHeartbeat == nil {
		t.Fatal("heartbeat not recorded")
	}

	// Completion clears transient fields.
	if err := r.Report(ctx, "1", domain.StatusAvailable, 42, at.Add(time.Second)); err != nil {
		t.Fatalf("completion report: %v", err)
	}
	m, _ = r.ByID(ctx, "1")
	if m.Status != domain.StatusAvailable {
		t.Fatalf("expected available, got %s", m.Status)
	}
	if m.WhatsappNumber != nil || m.TimeRemaining != 0 || m.PaymentVerified {
		t.Fatal("completion must clear contact, timer and payment flag")
	}

	if err := r.Report(ctx, "999", domain.StatusWashing, 0, at); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown machine, got %v", err)
	}
}

func TestDemoteStale(t *testing.T) {
	r := setupMachineRepo(t)
	ctx := context.Background()
	if _, err := r.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	now := time.Now().UTC()
	stale := now.Add(-30 * time.Second)
	if err := r.Report(ctx, "1", domain.StatusWashing, 60, stale); err != nil {
		t.Fatalf("stale report: %v", err)
	}
	if err := r.Report(ctx, "2", domain.StatusWashing, 60, now); err != nil {
		t.Fatalf("fresh report: %v", err)
	}

	n, err := r.DemoteStale(ctx, now.Add(-15*time.Second))
	if err != nil {
		t.Fatalf("demote: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 demotion, got %d", n)
	}

	m1, _ := r.ByID(ctx, "1")
	if m1.Status != domain.StatusBroken {
		t.Fatalf("stale machine should be broken, got %s", m1.Status)
	}
	if m1.WhatsappNumber != nil || m1.TimeRemaining != 0 || m1.PaymentVerified {
		t.Fatal("demotion must clear transient fields")
	}
	m2, _ := r.ByID(ctx, "2")
	if m2.Status != domain.StatusWashing {
		t.Fatalf("fresh machine must be untouched, got %s", m2.Status)
	}

	// Second pass is a no-op: already broken machines are skipped.
	n, err = r.DemoteStale(ctx, now.Add(-15*time.Second))
	if err != nil {
		t.Fatalf("second demote: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected idempotent demotion, got %d", n)
	}

	// A fresh report moves the machine back out of broken.
	if err := r.Report(ctx, "1", domain.StatusWashing, 90, now); err != nil {
		t.Fatalf("revive report: %v", err)
	}
	m1, _ = r.ByID(ctx, "1")
	if m1.Status != domain.StatusWashing {
		t.Fatalf("expected revived machine, got %s", m1.Status)
	}
}

func TestDailyIncrement(t *testing.T) {
	gdb := openTestDB(t)
	r := NewDailyRepo(gdb)
	if err := r.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()

	if err := r.Increment(ctx, "2026-08-31", 5.00); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if err := r.Increment(ctx, "2026-08-31", 7.50); err != nil {
		t.Fatalf("second increment: %v", err)
	}

	rec, err := r.Get(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.TotalCycles != 2 {
		t.Fatalf("expected 2 cycles, got %d", rec.TotalCycles)
	}
	if rec.TotalRevenue != 12.50 {
		t.Fatalf("expected revenue 12.50, got %v", rec.TotalRevenue)
	}

	missing, err := r.Get(ctx, "1999-01-01")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing.TotalCycles != 0 || missing.TotalRevenue != 0 {
		t.Fatal("absent day must read as zero")
	}
}

func TestTransactionTotalsAndRecent(t *testing.T) {
	gdb := openTestDB(t)
	r := NewTransactionRepo(gdb)
	if err := r.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()

	cycles, revenue, err := r.Totals(ctx)
	if err != nil {
		t.Fatalf("empty totals: %v", err)
	}
	if cycles != 0 || revenue != 0 {
		t.Fatalf("expected zero totals, got %d %v", cycles, revenue)
	}

	empty, err := r.ListRecent(ctx, 50)
	if err != nil {
		t.Fatalf("empty recent: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty history must be a non-nil empty slice, got %#v", empty)
	}

	contact := "0189892155"
	if _, err := r.Create(ctx, "1", 5.00, &contact); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.Create(ctx, "2", 7.00, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	cycles, revenue, err = r.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if cycles != 2 || revenue != 12.00 {
		t.Fatalf("expected 2/12.00, got %d/%v", cycles, revenue)
	}

	recent, err := r.ListRecent(ctx, 50)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(recent))
	}
	for _, txn := range recent {
		if txn.Status != "completed" {
			t.Errorf("transaction %s status %q", txn.TransactionID, txn.Status)
		}
		if len(txn.TransactionID) != len("txn_")+12 {
			t.Errorf("unexpected transaction id shape %q", txn.TransactionID)
		}
	}
}
