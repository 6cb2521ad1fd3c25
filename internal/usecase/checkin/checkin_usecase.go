// Package checkin implements the meeting check-in safety monitor: the state
// machine that tracks a check-in from scheduling through completion,
// cancellation or emergency, and the per-check-in watchdog that escalates to
// trusted contacts when the owner goes silent past the deadline.
package checkin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/cofoundly/cofoundly-backend/internal/notifier"
	"github.com/cofoundly/cofoundly-backend/internal/repository"
	"github.com/cofoundly/cofoundly-backend/internal/scheduler"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Options tunes the watchdog escalation policy.
type Options struct {
	// WatchdogInterval is the polling interval of a check-in's watchdog.
	WatchdogInterval time.Duration
	// GracePeriod is how long past the deadline an active check-in may stay
	// overdue before the monitor raises an emergency on its own.
	GracePeriod time.Duration
	// ReminderLead is how long before the scheduled meeting the reminder
	// fires.
	ReminderLead time.Duration
}

type CheckInUseCase struct {
	checkInRepo repository.CheckInRepository
	contactRepo repository.ContactRepository
	notif       notifier.Notifier
	reminders   scheduler.ReminderScheduler
	clock       Clock
	log         *zap.Logger
	opts        Options

	// mu guards the working sets and the watchdog table. Every state
	// transition is a read-modify-write of these maps and must not
	// interleave with another.
	mu        sync.Mutex
	scheduled map[string]*domain.CheckIn
	active    map[string]*domain.CheckIn
	history   map[string]*domain.CheckIn
	watchdogs map[string]*watchdog
}

// watchdog is the cancellable periodic task armed for one active check-in.
// Membership in the monitor's watchdog table is the liveness token: a tick
// whose id is no longer in the table is dropped.
type watchdog struct {
	ticker          Ticker
	done            chan struct{}
	overdueNotified bool
}

func NewCheckInUseCase(
	checkInRepo repository.CheckInRepository,
	contactRepo repository.ContactRepository,
	notif notifier.Notifier,
	reminders scheduler.ReminderScheduler,
	clock Clock,
	log *zap.Logger,
	opts Options,
) *CheckInUseCase {
	return &CheckInUseCase{
		checkInRepo: checkInRepo,
		contactRepo: contactRepo,
		notif:       notif,
		reminders:   reminders,
		clock:       clock,
		log:         log,
		opts:        opts,
		scheduled:   make(map[string]*domain.CheckIn),
		active:      make(map[string]*domain.CheckIn),
		history:     make(map[string]*domain.CheckIn),
		watchdogs:   make(map[string]*watchdog),
	}
}

// snapshot returns a detached copy of a check-in, taken while mu is held.
// Transitions reassign pointer and slice fields rather than mutating their
// contents, so a shallow copy is safe for callers to read or marshal while
// the live record keeps moving under the watchdog.
func snapshot(checkIn *domain.CheckIn) *domain.CheckIn {
	out := *checkIn
	return &out
}

// ScheduleRequest carries the inputs for scheduling a check-in.
type ScheduleRequest struct {
	CounterpartName string    `json:"counterpart_name" binding:"required"`
	Location        string    `json:"location" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DeadlineAt      time.Time `json:"deadline_at" binding:"required"`
	ContactIDs      []string  `json:"contact_ids" binding:"required,min=1"`
}

// Schedule creates a check-in in the Scheduled state and registers a
// meeting reminder. The scheduled time must be in the future and the
// deadline strictly after it; violations fail with ErrInvalidSchedule and
// leave no state behind.
func (uc *CheckInUseCase) Schedule(ctx context.Context, userID int, req *ScheduleRequest) (*domain.CheckIn, error) {
	now := uc.clock.Now()
	if !req.ScheduledAt.After(now) {
		return nil, domain.ErrInvalidSchedule
	}
	if !req.DeadlineAt.After(req.ScheduledAt) {
		return nil, domain.ErrInvalidSchedule
	}
	if len(req.ContactIDs) == 0 {
		return nil, domain.ErrNoTrustedContacts
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate check-in id: %w", err)
	}

	checkIn := &domain.CheckIn{
		ID:              id,
		UserID:          userID,
		CounterpartName: req.CounterpartName,
		Location:        req.Location,
		ScheduledAt:     req.ScheduledAt,
		DeadlineAt:      req.DeadlineAt,
		ContactIDs:      req.ContactIDs,
		Status:          domain.CheckInStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	uc.mu.Lock()
	uc.scheduled[id] = checkIn
	out := snapshot(checkIn)
	uc.mu.Unlock()

	uc.persist(ctx, out)

	fireAt := req.ScheduledAt.Add(-uc.opts.ReminderLead)
	if fireAt.Before(now) {
		fireAt = now
	}
	if err := uc.reminders.ScheduleReminder(ctx, id, fireAt); err != nil {
		uc.log.Warn("failed to schedule reminder",
			zap.String("check_in_id", id), zap.Error(err))
	}

	return out, nil
}

// Activate moves a scheduled check-in to Active, arms its watchdog and
// tells every trusted contact the meeting has started. Fails with
// ErrCheckInNotFound if the id is not in the scheduled set.
func (uc *CheckInUseCase) Activate(ctx context.Context, id string) (*domain.CheckIn, error) {
	now := uc.clock.Now()

	uc.mu.Lock()
	checkIn, ok := uc.scheduled[id]
	if !ok {
		uc.mu.Unlock()
		return nil, domain.ErrCheckInNotFound
	}
	delete(uc.scheduled, id)

	checkIn.Status = domain.CheckInStatusActive
	activatedAt := now
	checkIn.ActivatedAt = &activatedAt
	checkIn.UpdatedAt = now
	uc.active[id] = checkIn

	uc.armWatchdogLocked(id)
	out := snapshot(checkIn)
	uc.mu.Unlock()

	uc.persist(ctx, out)
	go uc.notifyContacts(out, fmt.Sprintf(
		"Safety check-in started: meeting %s at %s. Expecting an all-clear by %s.",
		out.CounterpartName, out.Location,
		out.DeadlineAt.Format(time.RFC3339)))

	uc.log.Info("check-in activated", zap.String("check_in_id", id))
	return out, nil
}

// Complete marks an active check-in safe, disarms its watchdog and notifies
// contacts. Fails with ErrCheckInNotFound unless the id is in the active set.
func (uc *CheckInUseCase) Complete(ctx context.Context, id string) (*domain.CheckIn, error) {
	now := uc.clock.Now()

	uc.mu.Lock()
	checkIn, ok := uc.active[id]
	if !ok {
		uc.mu.Unlock()
		return nil, domain.ErrCheckInNotFound
	}
	delete(uc.active, id)

	checkIn.Status = domain.CheckInStatusCompleted
	completedAt := now
	checkIn.CompletedAt = &completedAt
	checkIn.UpdatedAt = now
	uc.history[id] = checkIn

	uc.disarmWatchdogLocked(id)
	out := snapshot(checkIn)
	uc.mu.Unlock()

	uc.persist(ctx, out)
	go uc.notifyContacts(out, fmt.Sprintf(
		"All clear: the meeting with %s ended safely.", out.CounterpartName))

	uc.log.Info("check-in completed", zap.String("check_in_id", id))
	return out, nil
}

// Cancel withdraws a check-in from either the scheduled or the active set.
// An active cancellation disarms the watchdog; no contacts are notified
// either way. Fails with ErrCheckInNotFound if the id matches neither set.
func (uc *CheckInUseCase) Cancel(ctx context.Context, id string) (*domain.CheckIn, error) {
	now := uc.clock.Now()

	uc.mu.Lock()
	checkIn, wasScheduled := uc.scheduled[id]
	if wasScheduled {
		delete(uc.scheduled, id)
	} else {
		var wasActive bool
		checkIn, wasActive = uc.active[id]
		if !wasActive {
			uc.mu.Unlock()
			return nil, domain.ErrCheckInNotFound
		}
		delete(uc.active, id)
		uc.disarmWatchdogLocked(id)
	}

	checkIn.Status = domain.CheckInStatusCancelled
	checkIn.UpdatedAt = now
	uc.history[id] = checkIn
	out := snapshot(checkIn)
	uc.mu.Unlock()

	uc.persist(ctx, out)
	if wasScheduled {
		if err := uc.reminders.CancelReminder(ctx, id); err != nil {
			uc.log.Warn("failed to cancel reminder",
				zap.String("check_in_id", id), zap.Error(err))
		}
	}

	uc.log.Info("check-in cancelled", zap.String("check_in_id", id))
	return out, nil
}

// TriggerEmergency escalates an active check-in to the Emergency state and
// broadcasts an alert with the meeting context to every trusted contact.
// Emergency is terminal: the check-in leaves the active set and its
// watchdog is disarmed. Fails with ErrCheckInNotFound unless the id is in
// the active set.
func (uc *CheckInUseCase) TriggerEmergency(ctx context.Context, id string) (*domain.CheckIn, error) {
	uc.mu.Lock()
	checkIn, ok := uc.active[id]
	if !ok {
		uc.mu.Unlock()
		return nil, domain.ErrCheckInNotFound
	}
	uc.raiseEmergencyLocked(checkIn)
	out := snapshot(checkIn)
	uc.mu.Unlock()

	uc.persist(ctx, out)
	go uc.notifyContacts(out, emergencyMessage(out))

	return out, nil
}

// raiseEmergencyLocked performs the Active -> Emergency transition. Callers
// hold mu and are responsible for persistence and the alert broadcast.
func (uc *CheckInUseCase) raiseEmergencyLocked(checkIn *domain.CheckIn) {
	delete(uc.active, checkIn.ID)
	checkIn.Status = domain.CheckInStatusEmergency
	checkIn.UpdatedAt = uc.clock.Now()
	uc.history[checkIn.ID] = checkIn
	uc.disarmWatchdogLocked(checkIn.ID)

	uc.log.Error("check-in emergency raised",
		zap.String("check_in_id", checkIn.ID),
		zap.String("location", checkIn.Location),
		zap.String("counterpart", checkIn.CounterpartName))
}

func emergencyMessage(checkIn *domain.CheckIn) string {
	return fmt.Sprintf(
		"EMERGENCY: no safety confirmation for the meeting with %s at %s. Please reach out immediately.",
		checkIn.CounterpartName, checkIn.Location)
}

// GetByID returns a snapshot of a check-in from any working set or from
// history, falling back to the store for records from before the last
// restart window.
func (uc *CheckInUseCase) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	uc.mu.Lock()
	if c, ok := uc.scheduled[id]; ok {
		out := snapshot(c)
		uc.mu.Unlock()
		return out, nil
	}
	if c, ok := uc.active[id]; ok {
		out := snapshot(c)
		uc.mu.Unlock()
		return out, nil
	}
	if c, ok := uc.history[id]; ok {
		out := snapshot(c)
		uc.mu.Unlock()
		return out, nil
	}
	uc.mu.Unlock()

	return uc.checkInRepo.GetByID(ctx, id)
}

// GetUserHistory lists a user's check-ins, newest first.
func (uc *CheckInUseCase) GetUserHistory(ctx context.Context, userID int, limit, offset int) ([]*domain.CheckIn, error) {
	return uc.checkInRepo.GetUserHistory(ctx, userID, limit, offset)
}

// ShareMeeting sends the meeting details of a scheduled or active check-in
// to the owner's trusted contacts that opted in to meeting alerts. It is a
// one-shot courtesy message, separate from the escalation machinery.
func (uc *CheckInUseCase) ShareMeeting(ctx context.Context, id string) error {
	uc.mu.Lock()
	live, ok := uc.scheduled[id]
	if !ok {
		live, ok = uc.active[id]
	}
	if !ok {
		uc.mu.Unlock()
		return domain.ErrCheckInNotFound
	}
	checkIn := snapshot(live)
	uc.mu.Unlock()

	contacts, err := uc.contactRepo.GetByIDs(ctx, checkIn.ContactIDs)
	if err != nil {
		return fmt.Errorf("failed to load trusted contacts: %w", err)
	}

	message := fmt.Sprintf(
		"Meeting details: %s at %s, starting %s.",
		checkIn.CounterpartName, checkIn.Location,
		checkIn.ScheduledAt.Format(time.RFC3339))
	for _, contact := range contacts {
		if !contact.AlertsOptIn {
			continue
		}
		if err := uc.notif.Notify(ctx, contact, message); err != nil {
			uc.log.Warn("failed to share meeting details",
				zap.String("check_in_id", id),
				zap.String("contact_id", contact.ID),
				zap.Error(err))
		}
	}
	return nil
}

// Restore loads every persisted check-in at startup, rebuilds the working
// sets and re-arms watchdogs for check-ins that were active when the
// process last stopped.
func (uc *CheckInUseCase) Restore(ctx context.Context) error {
	checkIns, err := uc.checkInRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load check-ins: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	for _, checkIn := range checkIns {
		switch checkIn.Status {
		case domain.CheckInStatusScheduled:
			uc.scheduled[checkIn.ID] = checkIn
		case domain.CheckInStatusActive:
			uc.active[checkIn.ID] = checkIn
			uc.armWatchdogLocked(checkIn.ID)
		default:
			uc.history[checkIn.ID] = checkIn
		}
	}

	uc.log.Info("check-ins restored",
		zap.Int("scheduled", len(uc.scheduled)),
		zap.Int("active", len(uc.active)),
		zap.Int("history", len(uc.history)))
	return nil
}

// Shutdown disarms every watchdog. Active check-ins stay persisted as
// active and are re-armed by Restore on the next start.
func (uc *CheckInUseCase) Shutdown() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for id := range uc.watchdogs {
		uc.disarmWatchdogLocked(id)
	}
}

// persist writes through to the store. Persistence failure is logged and
// swallowed: the transition has already happened in memory and is not
// rolled back.
func (uc *CheckInUseCase) persist(ctx context.Context, checkIn *domain.CheckIn) {
	if err := uc.checkInRepo.Upsert(ctx, checkIn); err != nil {
		uc.log.Error("failed to persist check-in",
			zap.String("check_in_id", checkIn.ID),
			zap.String("status", string(checkIn.Status)),
			zap.Error(err))
	}
}

// notifyContacts resolves the check-in's contact references and delivers
// message to each, best-effort. Runs outside the mutation lock.
func (uc *CheckInUseCase) notifyContacts(checkIn *domain.CheckIn, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contacts, err := uc.contactRepo.GetByIDs(ctx, checkIn.ContactIDs)
	if err != nil {
		uc.log.Error("failed to load trusted contacts for notification",
			zap.String("check_in_id", checkIn.ID),
			zap.Error(err))
		return
	}
	for _, contact := range contacts {
		if err := uc.notif.Notify(ctx, contact, message); err != nil {
			uc.log.Warn("notification failed",
				zap.String("check_in_id", checkIn.ID),
				zap.String("contact_id", contact.ID),
				zap.Error(err))
		}
	}
}
