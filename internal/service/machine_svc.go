package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/you/smart-dobi/internal/domain"
	"github.com/you/smart-dobi/internal/events"
	"github.com/you/smart-dobi/internal/notifier"
	"github.com/you/smart-dobi/internal/repository"
	"github.com/you/smart-dobi/pkg/obs"
)

// MachineService is the machine lifecycle engine. It is the sole mutator
// of machine state; it re-reads the store on every operation and keeps no
// authoritative copy in memory.
type MachineService struct {
	machines *repository.MachineRepo
	txns     *repository.TransactionRepo
	daily    *repository.DailyRepo
	notifier notifier.Notifier
	log      zerolog.Logger

	heartbeatTimeout time.Duration
	// requirePayment gates the reserved state between request and spend.
	// When false the engine behaves like the earlier deployment
	// generation: a reservation settles immediately into a running cycle.
	requirePayment bool
}

func NewMachineService(
	machines *repository.MachineRepo,
	txns *repository.TransactionRepo,
	daily *repository.DailyRepo,
	n notifier.Notifier,
	log zerolog.Logger,
	heartbeatTimeout time.Duration,
	requirePayment bool,
) *MachineService {
	return &MachineService{
		machines:         machines,
		txns:             txns,
		daily:            daily,
		notifier:         n,
		log:              log,
		heartbeatTimeout: heartbeatTimeout,
		requirePayment:   requirePayment,
	}
}

// List runs the liveness check, lazily seeds the kiosk defaults, and
// returns all machines.
func (s *MachineService) List(ctx context.Context) ([]domain.Machine, error) {
	s.CheckLiveness(ctx)
	if seeded, err := s.machines.SeedDefaults(ctx); err != nil {
		return nil, err
	} else if seeded {
		s.log.Info().Msg("seeded default machines")
	}
	return s.machines.List(ctx)
}

func (s *MachineService) Get(ctx context.Context, id string) (*domain.Machine, error) {
	return s.machines.ByID(ctx, id)
}

// Reserve moves an available machine to reserved for the given contact.
// The contact is validated before any mutation; the status transition is
// a conditional update so only one concurrent caller can win.
func (s *MachineService) Reserve(ctx context.Context, id, contact string) (*domain.Transaction, error) {
	var contactPtr *string
	if contact != "" {
		normalized, ok := NormalizeContact(contact)
		if !ok {
			return nil, domain.ErrInvalidContact
		}
		contactPtr = &normalized
	}

	if err := s.machines.Reserve(ctx, id, contactPtr); err != nil {
		return nil, err
	}
	s.log.Info().Str("machine_id", id).Msg("machine reserved")

	if s.requirePayment {
		return nil, nil
	}
	// Legacy generation: no payment gate, the cycle starts right away.
	return s.VerifyPayment(ctx, id, true)
}

// VerifyPayment resolves a reservation. verified=true starts the cycle,
// records exactly one transaction at the machine's configured price and
// bumps today's aggregate; verified=false releases the machine. The
// notification outcome never affects the state transition.
func (s *MachineService) VerifyPayment(ctx context.Context, id string, verified bool) (*domain.Transaction, error) {
	m, err := s.machines.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.StatusReserved {
		return nil, domain.ErrNotReserved
	}

	if err := s.machines.SettleReserved(ctx, id, verified); err != nil {
		return nil, err
	}

	if !verified {
		s.log.Info().Str("machine_id", id).Msg("payment rejected, machine released")
		return nil, nil
	}

	txn, err := s.txns.Create(ctx, id, m.Price, m.WhatsappNumber)
	if err != nil {
		return nil, err
	}
	today := time.Now().UTC().Format("2006-01-02")
	if err := s.daily.Increment(ctx, today, m.Price); err != nil {
		// Transaction is already recorded; a missed counter bump is the
		// accepted residual risk, not a reason to fail the cycle.
		s.log.Warn().Err(err).Str("date", today).Msg("daily record increment failed")
	}
	obs.CyclesStarted.Inc()
	s.log.Info().
		Str("machine_id", id).
		Str("transaction_id", txn.TransactionID).
		Float64("amount", m.Price).
		Msg("cycle started")

	s.notify(ctx, events.KindStarted, id, m.WhatsappNumber,
		fmt.Sprintf("Smart Dobi: Mesin %s telah dimulakan! Anda akan menerima notifikasi apabila basuhan siap.", id))

	return txn, nil
}

// Report applies a controller status/telemetry update. The heartbeat is
// refreshed on every report regardless of the reported status, since
// this is the sole liveness signal; a report can therefore move a
// machine back out of broken.
func (s *MachineService) Report(ctx context.Context, id, status string, timeRemaining int) error {
	prev, err := s.machines.ByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.machines.Report(ctx, id, status, timeRemaining, time.Now().UTC()); err != nil {
		return err
	}

	if status == domain.StatusAvailable && prev.WhatsappNumber != nil {
		if prev.Status == domain.StatusWashing {
			obs.CyclesCompleted.Inc()
		}
		s.notify(ctx, events.KindCompleted, id, prev.WhatsappNumber,
			fmt.Sprintf("Smart Dobi: Mesin %s telah selesai! Sila ambil pakaian anda. Terima kasih!", id))
	}
	return nil
}

// Reminder sends a best-effort "almost done" message. It is a no-op
// without a bound contact and never changes machine state.
func (s *MachineService) Reminder(ctx context.Context, id string) error {
	m, err := s.machines.ByID(ctx, id)
	if err != nil {
		return err
	}
	if m.WhatsappNumber == nil {
		return nil
	}
	if m.Status != domain.StatusReserved && m.Status != domain.StatusWashing {
		return nil
	}
	s.notify(ctx, events.KindReminder, id, m.WhatsappNumber,
		fmt.Sprintf("Smart Dobi: Mesin %s hampir siap! Sila bersedia untuk mengambil pakaian anda.", id))
	return nil
}

// AdminSetStatus is the owner override. Only available and broken are
// permitted, and the transition clears all transient fields.
func (s *MachineService) AdminSetStatus(ctx context.Context, id, status string) error {
	if !domain.AdminStatuses[status] {
		return domain.ErrInvalidStatus
	}
	if err := s.machines.SetStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.Info().Str("machine_id", id).Str("status", status).Msg("admin status override")
	return nil
}

// CheckLiveness demotes machines whose heartbeat exceeded the timeout.
// Idempotent and safe to run concurrently with lifecycle mutations: it
// only demotes to broken, and any fresh controller report re-establishes
// the heartbeat.
func (s *MachineService) CheckLiveness(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.heartbeatTimeout)
	n, err := s.machines.DemoteStale(ctx, cutoff)
	if err != nil {
		s.log.Warn().Err(err).Msg("liveness check failed")
		return
	}
	if n > 0 {
		obs.MachinesDemoted.Add(float64(n))
		s.log.Warn().Int64("count", n).Msg("machines demoted to broken on stale heartbeat")
	}
}

// RunLivenessLoop runs the heartbeat monitor as a periodic task until
// the context is cancelled.
func (s *MachineService) RunLivenessLoop(ctx context.Context) {
	ticker := time.NewTicker(s.heartbeatTimeout)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckLiveness(ctx)
		}
	}
}

func (s *MachineService) notify(ctx context.Context, kind, machineID string, number *string, message string) {
	if number == nil || *number == "" {
		return
	}
	if err := s.notifier.Notify(ctx, kind, machineID, *number, message); err != nil {
		obs.NotifyFailures.Inc()
		s.log.Warn().Err(err).
			Str("kind", kind).
			Str("machine_id", machineID).
			Msg("notification failed")
	}
}
