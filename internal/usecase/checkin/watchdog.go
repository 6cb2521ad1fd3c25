package checkin

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// armWatchdogLocked starts the periodic watchdog for an active check-in.
// Caller holds mu. Each check-in gets its own ticker so drift in one never
// affects another.
func (uc *CheckInUseCase) armWatchdogLocked(id string) {
	w := &watchdog{
		ticker: uc.clock.NewTicker(uc.opts.WatchdogInterval),
		done:   make(chan struct{}),
	}
	uc.watchdogs[id] = w
	go uc.runWatchdog(id, w)
}

// disarmWatchdogLocked revokes the watchdog handle for id, if armed. Caller
// holds mu. Removal from the table happens before the tick goroutine can
// observe anything, so a tick already in flight is dropped by the table
// check in handleTick rather than by racing on the status field.
func (uc *CheckInUseCase) disarmWatchdogLocked(id string) {
	w, ok := uc.watchdogs[id]
	if !ok {
		return
	}
	delete(uc.watchdogs, id)
	w.ticker.Stop()
	close(w.done)
}

func (uc *CheckInUseCase) runWatchdog(id string, w *watchdog) {
	for {
		select {
		case <-w.done:
			return
		case <-w.ticker.C():
			uc.handleTick(id)
		}
	}
}

// handleTick is the escalation policy. Before the deadline it is a no-op.
// Past the deadline it notifies trusted contacts that the check-in is
// overdue (once), and past deadline+grace it raises an emergency.
func (uc *CheckInUseCase) handleTick(id string) {
	now := uc.clock.Now()

	uc.mu.Lock()
	w, armed := uc.watchdogs[id]
	if !armed {
		// Disarmed while this tick was in flight.
		uc.mu.Unlock()
		return
	}
	checkIn, ok := uc.active[id]
	if !ok {
		uc.mu.Unlock()
		return
	}
	if !checkIn.Overdue(now) {
		uc.mu.Unlock()
		return
	}

	notifyOverdue := false
	if !w.overdueNotified {
		w.overdueNotified = true
		notifyOverdue = true
	}

	emergency := checkIn.PastGrace(now, uc.opts.GracePeriod)
	if emergency {
		uc.raiseEmergencyLocked(checkIn)
	}
	out := snapshot(checkIn)
	uc.mu.Unlock()

	if notifyOverdue && !emergency {
		uc.log.Warn("check-in overdue",
			zap.String("check_in_id", id),
			zap.Time("deadline", out.DeadlineAt))
		go uc.notifyContacts(out, fmt.Sprintf(
			"%s has not checked in after the meeting with %s at %s. Deadline was %s.",
			overdueSubject, out.CounterpartName, out.Location,
			out.DeadlineAt.Format(time.RFC3339)))
	}
	if emergency {
		uc.persist(context.Background(), out)
		go uc.notifyContacts(out, emergencyMessage(out))
	}
}

// overdueSubject is the placeholder for the owner in outbound copy; the
// push gateway substitutes the owner's display name before delivery.
const overdueSubject = "Your contact"
