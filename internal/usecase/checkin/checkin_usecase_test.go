package checkin

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock lets tests set "now" by hand. Tickers never fire on their own;
// tests drive escalation by calling handleTick directly.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	return &fakeTicker{ch: make(chan time.Time)}
}

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

// fakeCheckInRepo keeps upserted check-ins in memory.
type fakeCheckInRepo struct {
	mu       sync.Mutex
	checkIns map[string]domain.CheckIn
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{checkIns: make(map[string]domain.CheckIn)}
}

func (r *fakeCheckInRepo) Upsert(_ context.Context, checkIn *domain.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkIns[checkIn.ID] = *checkIn
	return nil
}

func (r *fakeCheckInRepo) GetByID(_ context.Context, id string) (*domain.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	checkIn, ok := r.checkIns[id]
	if !ok {
		return nil, domain.ErrCheckInNotFound
	}
	return &checkIn, nil
}

func (r *fakeCheckInRepo) GetAll(_ context.Context) ([]*domain.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.CheckIn
	for id := range r.checkIns {
		checkIn := r.checkIns[id]
		all = append(all, &checkIn)
	}
	return all, nil
}

func (r *fakeCheckInRepo) GetUserHistory(_ context.Context, userID int, _, _ int) ([]*domain.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CheckIn
	for id := range r.checkIns {
		checkIn := r.checkIns[id]
		if checkIn.UserID == userID {
			out = append(out, &checkIn)
		}
	}
	return out, nil
}

func (r *fakeCheckInRepo) persistedStatus(t *testing.T, id string) domain.CheckInStatus {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	checkIn, ok := r.checkIns[id]
	require.True(t, ok, "check-in %s not persisted", id)
	return checkIn.Status
}

// fakeContactRepo serves a fixed contact set.
type fakeContactRepo struct {
	contacts map[string]*domain.TrustedContact
}

func newFakeContactRepo(contacts ...*domain.TrustedContact) *fakeContactRepo {
	m := make(map[string]*domain.TrustedContact)
	for _, c := range contacts {
		m[c.ID] = c
	}
	return &fakeContactRepo{contacts: m}
}

func (r *fakeContactRepo) Create(context.Context, *domain.TrustedContact) error { return nil }
func (r *fakeContactRepo) Update(context.Context, *domain.TrustedContact) error { return nil }
func (r *fakeContactRepo) Delete(context.Context, string) error                 { return nil }

func (r *fakeContactRepo) GetByID(_ context.Context, id string) (*domain.TrustedContact, error) {
	c, ok := r.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	return c, nil
}

func (r *fakeContactRepo) GetByIDs(_ context.Context, ids []string) ([]*domain.TrustedContact, error) {
	var out []*domain.TrustedContact
	for _, id := range ids {
		if c, ok := r.contacts[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) GetUserContacts(_ context.Context, userID int) ([]*domain.TrustedContact, error) {
	var out []*domain.TrustedContact
	for _, c := range r.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeNotifier records every delivered message.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	contacts []string
}

func (n *fakeNotifier) Notify(_ context.Context, contact *domain.TrustedContact, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	n.contacts = append(n.contacts, contact.ID)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func (n *fakeNotifier) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.contacts...)
}

// fakeReminders records scheduling calls.
type fakeReminders struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	cancelled []string
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{scheduled: make(map[string]time.Time)}
}

func (s *fakeReminders) ScheduleReminder(_ context.Context, id string, fireAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[id] = fireAt
	return nil
}

func (s *fakeReminders) CancelReminder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, id)
	return nil
}

type fixture struct {
	uc       *CheckInUseCase
	clock    *fakeClock
	repo     *fakeCheckInRepo
	notif    *fakeNotifier
	reminder *fakeReminders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	repo := newFakeCheckInRepo()
	notif := &fakeNotifier{}
	reminders := newFakeReminders()
	contacts := newFakeContactRepo(
		&domain.TrustedContact{ID: "c1", UserID: 1, DisplayName: "Dana", AlertsOptIn: true},
		&domain.TrustedContact{ID: "c2", UserID: 1, DisplayName: "Riley", AlertsOptIn: false},
	)

	uc := NewCheckInUseCase(repo, contacts, notif, reminders, clock, zap.NewNop(), Options{
		WatchdogInterval: time.Minute,
		GracePeriod:      15 * time.Minute,
		ReminderLead:     30 * time.Minute,
	})
	t.Cleanup(uc.Shutdown)

	return &fixture{uc: uc, clock: clock, repo: repo, notif: notif, reminder: reminders}
}

func (f *fixture) schedule(t *testing.T) *domain.CheckIn {
	t.Helper()
	checkIn, err := f.uc.Schedule(context.Background(), 1, &ScheduleRequest{
		CounterpartName: "Alex Chen",
		Location:        "Blue Bottle, Market St",
		ScheduledAt:     f.clock.Now().Add(time.Hour),
		DeadlineAt:      f.clock.Now().Add(3 * time.Hour),
		ContactIDs:      []string{"c1", "c2"},
	})
	require.NoError(t, err)
	return checkIn
}

func waitForNotifications(t *testing.T, notif *fakeNotifier, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return notif.count() == want },
		time.Second, 5*time.Millisecond)
}

func TestScheduleValidation(t *testing.T) {
	tests := []struct {
		name      string
		scheduled time.Duration // offset from now
		deadline  time.Duration
	}{
		{"scheduled time in the past", -time.Hour, time.Hour},
		{"scheduled time is now", 0, time.Hour},
		{"deadline before scheduled time", time.Hour, 30 * time.Minute},
		{"deadline equals scheduled time", time.Hour, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			now := f.clock.Now()
			_, err := f.uc.Schedule(context.Background(), 1, &ScheduleRequest{
				CounterpartName: "Alex Chen",
				Location:        "Blue Bottle",
				ScheduledAt:     now.Add(tt.scheduled),
				DeadlineAt:      now.Add(tt.deadline),
				ContactIDs:      []string{"c1"},
			})
			require.ErrorIs(t, err, domain.ErrInvalidSchedule)

			// No partial state
			assert.Empty(t, f.uc.scheduled)
			assert.Empty(t, f.repo.checkIns)
			assert.Empty(t, f.reminder.scheduled)
		})
	}
}

func TestScheduleCreatesScheduledCheckIn(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)

	assert.Equal(t, domain.CheckInStatusScheduled, checkIn.Status)
	assert.NotEmpty(t, checkIn.ID)
	assert.Nil(t, checkIn.ActivatedAt)

	f.uc.mu.Lock()
	assert.Len(t, f.uc.scheduled, 1)
	assert.Contains(t, f.uc.scheduled, checkIn.ID)
	f.uc.mu.Unlock()

	assert.Equal(t, domain.CheckInStatusScheduled, f.repo.persistedStatus(t, checkIn.ID))

	// Reminder registered with the configured lead
	fireAt, ok := f.reminder.scheduled[checkIn.ID]
	require.True(t, ok)
	assert.Equal(t, checkIn.ScheduledAt.Add(-30*time.Minute), fireAt)
}

func TestActivateUnknownID(t *testing.T) {
	f := newFixture(t)
	f.schedule(t)

	_, err := f.uc.Activate(context.Background(), "no-such-id")
	require.ErrorIs(t, err, domain.ErrCheckInNotFound)

	f.uc.mu.Lock()
	assert.Len(t, f.uc.scheduled, 1)
	assert.Empty(t, f.uc.active)
	f.uc.mu.Unlock()
}

func TestActivateIsNotIdempotent(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)

	_, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)

	// Second activation targets an id no longer in the scheduled set
	_, err = f.uc.Activate(context.Background(), checkIn.ID)
	require.ErrorIs(t, err, domain.ErrCheckInNotFound)
}

func TestActivateCompleteRoundTrip(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)

	activated, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInStatusActive, activated.Status)
	require.NotNil(t, activated.ActivatedAt)
	waitForNotifications(t, f.notif, 2) // "started" to both contacts

	f.clock.Advance(2 * time.Hour)
	completed, err := f.uc.Complete(context.Background(), checkIn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.False(t, completed.CompletedAt.Before(*completed.ActivatedAt))
	assert.Equal(t, domain.CheckInStatusCompleted, f.repo.persistedStatus(t, checkIn.ID))
	waitForNotifications(t, f.notif, 4) // + "all clear" to both

	// Watchdog is disarmed: a late tick past the deadline changes nothing
	f.clock.Advance(24 * time.Hour)
	f.uc.handleTick(checkIn.ID)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 4, f.notif.count())
	assert.Equal(t, domain.CheckInStatusCompleted, f.repo.persistedStatus(t, checkIn.ID))
}

func TestCompleteRequiresActive(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)

	_, err := f.uc.Complete(context.Background(), checkIn.ID)
	require.ErrorIs(t, err, domain.ErrCheckInNotFound)
}

func TestWatchdogNoOpBeforeDeadline(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)

	// Still an hour before the deadline
	f.clock.Advance(2 * time.Hour)
	f.uc.handleTick(checkIn.ID)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, f.notif.count())
	assert.Equal(t, domain.CheckInStatusActive, f.repo.persistedStatus(t, checkIn.ID))
}

func TestWatchdogOverdueNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)

	// Past the deadline, inside the grace period
	f.clock.Advance(3*time.Hour + time.Minute)
	f.uc.handleTick(checkIn.ID)
	waitForNotifications(t, f.notif, 4) // overdue to both contacts

	// Further ticks inside the grace window stay quiet
	f.clock.Advance(time.Minute)
	f.uc.handleTick(checkIn.ID)
	f.clock.Advance(time.Minute)
	f.uc.handleTick(checkIn.ID)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 4, f.notif.count())
	assert.Equal(t, domain.CheckInStatusActive, f.repo.persistedStatus(t, checkIn.ID))
}

func TestWatchdogEscalatesToEmergencyAfterGrace(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)

	f.clock.Advance(3*time.Hour + time.Minute)
	f.uc.handleTick(checkIn.ID)
	waitForNotifications(t, f.notif, 4) // overdue

	// Past deadline + grace
	f.clock.Advance(16 * time.Minute)
	f.uc.handleTick(checkIn.ID)
	waitForNotifications(t, f.notif, 6) // emergency broadcast
	assert.Equal(t, domain.CheckInStatusEmergency, f.repo.persistedStatus(t, checkIn.ID))

	// Emergency is terminal and the watchdog is gone: more ticks are no-ops
	f.clock.Advance(time.Hour)
	f.uc.handleTick(checkIn.ID)
	f.uc.handleTick(checkIn.ID)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 6, f.notif.count())

	f.uc.mu.Lock()
	assert.Empty(t, f.uc.active)
	assert.Empty(t, f.uc.watchdogs)
	f.uc.mu.Unlock()
}

func TestWatchdogSkipsOverdueWhenFirstTickPastGrace(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)

	// First overdue tick already beyond deadline + grace: a single
	// emergency broadcast, no separate overdue message
	f.clock.Advance(4 * time.Hour)
	f.uc.handleTick(checkIn.ID)
	waitForNotifications(t, f.notif, 4)
	assert.Equal(t, domain.CheckInStatusEmergency, f.repo.persistedStatus(t, checkIn.ID))
}

func TestWatchdogGraceBoundaryIsExclusive(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)

	// Exactly deadline + grace: overdue, not yet an emergency
	f.clock.Advance(3*time.Hour + 15*time.Minute)
	f.uc.handleTick(checkIn.ID)
	waitForNotifications(t, f.notif, 4)
	assert.Equal(t, domain.CheckInStatusActive, f.repo.persistedStatus(t, checkIn.ID))

	// The first tick past the boundary escalates
	f.clock.Advance(time.Second)
	f.uc.handleTick(checkIn.ID)
	waitForNotifications(t, f.notif, 6)
	assert.Equal(t, domain.CheckInStatusEmergency, f.repo.persistedStatus(t, checkIn.ID))
}

func TestReturnedCheckInsAreDetachedCopies(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	activated, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)

	// Marshal the returned record concurrently with the watchdog escalating
	// the same check-in, as a handler rendering the response would
	f.clock.Advance(4 * time.Hour)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_, err := json.Marshal(activated)
			assert.NoError(t, err)
		}
	}()
	f.uc.handleTick(checkIn.ID)
	<-done

	// The escalation moved the live record, never the returned copy
	assert.Equal(t, domain.CheckInStatusActive, activated.Status)
	assert.Equal(t, domain.CheckInStatusEmergency, f.repo.persistedStatus(t, checkIn.ID))

	got, err := f.uc.GetByID(context.Background(), checkIn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInStatusEmergency, got.Status)
}

func TestCancelFromScheduled(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)

	cancelled, err := f.uc.Cancel(context.Background(), checkIn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInStatusCancelled, cancelled.Status)
	assert.Contains(t, f.reminder.cancelled, checkIn.ID)

	// No contact notification for cancellation
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, f.notif.count())
}

func TestCancelFromActiveDisarmsWatchdog(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)

	_, err = f.uc.Cancel(context.Background(), checkIn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInStatusCancelled, f.repo.persistedStatus(t, checkIn.ID))

	f.uc.mu.Lock()
	assert.Empty(t, f.uc.watchdogs)
	f.uc.mu.Unlock()

	// A tick already in flight when Cancel ran is dropped
	f.clock.Advance(24 * time.Hour)
	f.uc.handleTick(checkIn.ID)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, f.notif.count())
}

func TestCancelTerminalIsNotFound(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Cancel(context.Background(), checkIn.ID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(context.Background(), checkIn.ID)
	require.ErrorIs(t, err, domain.ErrCheckInNotFound)
}

func TestTriggerEmergencyManually(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Activate(context.Background(), checkIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)

	result, err := f.uc.TriggerEmergency(context.Background(), checkIn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInStatusEmergency, result.Status)
	waitForNotifications(t, f.notif, 4)

	// Emergency is terminal: repeat triggers fail with NotFound
	_, err = f.uc.TriggerEmergency(context.Background(), checkIn.ID)
	require.ErrorIs(t, err, domain.ErrCheckInNotFound)
}

func TestTriggerEmergencyRequiresActive(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)

	_, err := f.uc.TriggerEmergency(context.Background(), checkIn.ID)
	require.ErrorIs(t, err, domain.ErrCheckInNotFound)
}

func TestShareMeetingSkipsOptedOutContacts(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)

	require.NoError(t, f.uc.ShareMeeting(context.Background(), checkIn.ID))

	// c2 has AlertsOptIn=false and must be skipped
	assert.Equal(t, []string{"c1"}, f.notif.recipients())
}

func TestShareMeetingTerminalIsNotFound(t *testing.T) {
	f := newFixture(t)
	checkIn := f.schedule(t)
	_, err := f.uc.Cancel(context.Background(), checkIn.ID)
	require.NoError(t, err)

	err = f.uc.ShareMeeting(context.Background(), checkIn.ID)
	require.ErrorIs(t, err, domain.ErrCheckInNotFound)
}

func TestRestoreRebuildsWorkingSets(t *testing.T) {
	f := newFixture(t)
	scheduled := f.schedule(t)
	activeCheckIn := f.schedule(t)
	_, err := f.uc.Activate(context.Background(), activeCheckIn.ID)
	require.NoError(t, err)
	waitForNotifications(t, f.notif, 2)
	doneCheckIn := f.schedule(t)
	_, err = f.uc.Cancel(context.Background(), doneCheckIn.ID)
	require.NoError(t, err)
	f.uc.Shutdown()

	// Fresh monitor over the same store
	restored := NewCheckInUseCase(f.repo, newFakeContactRepo(), f.notif, f.reminder,
		f.clock, zap.NewNop(), Options{
			WatchdogInterval: time.Minute,
			GracePeriod:      15 * time.Minute,
			ReminderLead:     30 * time.Minute,
		})
	t.Cleanup(restored.Shutdown)
	require.NoError(t, restored.Restore(context.Background()))

	restored.mu.Lock()
	defer restored.mu.Unlock()
	assert.Contains(t, restored.scheduled, scheduled.ID)
	assert.Contains(t, restored.active, activeCheckIn.ID)
	assert.Contains(t, restored.history, doneCheckIn.ID)
	assert.Contains(t, restored.watchdogs, activeCheckIn.ID)
}
