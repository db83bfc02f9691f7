// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/ticketclock/lib/clock"
)

var epoch = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// recorder collects callbacks and observer events.
type recorder struct {
	mu       sync.Mutex
	warnings []int
	expires  int
	events   []Event
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnExpire: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.expires++
		},
		OnWarning: func(secondsRemaining int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.warnings = append(r.warnings, secondsRemaining)
		},
	}
}

func (r *recorder) Observe(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) warningsSnapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.warnings...)
}

func (r *recorder) expireCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expires
}

func (r *recorder) kinds(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, event := range r.events {
		if event.Kind == kind {
			count++
		}
	}
	return count
}

func newTestEngine(t *testing.T, mode WarningMode) (*Engine, *clock.FakeClock, *recorder) {
	t.Helper()
	fake := clock.Fake(epoch)
	rec := &recorder{}
	engine := New(Options{
		Clock:       fake,
		Observers:   []Observer{rec},
		WarningMode: mode,
	})
	t.Cleanup(engine.Dispose)
	return engine, fake, rec
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEngineReservationScenario(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	state := engine.Start(fake.Now().Add(125*time.Second), rec.callbacks())
	if state.Remaining != 125*time.Second {
		t.Fatalf("Remaining = %v, want 125s", state.Remaining)
	}
	if state.FormattedTime != "2:05" {
		t.Fatalf("FormattedTime = %q, want %q", state.FormattedTime, "2:05")
	}
	if state.Urgency != UrgencySafe {
		t.Fatalf("Urgency = %s, want safe", state.Urgency)
	}
	if state.Phase != PhaseRunning {
		t.Fatalf("Phase = %s, want running", state.Phase)
	}

	fake.Advance(65 * time.Second)
	state = engine.State()
	if state.Urgency != UrgencyWarning {
		t.Fatalf("at 65s Urgency = %s, want warning", state.Urgency)
	}
	if got := rec.warningsSnapshot(); !equalInts(got, []int{60}) {
		t.Fatalf("at 65s warnings = %v, want [60]", got)
	}

	fake.Advance(30 * time.Second)
	state = engine.State()
	if state.Urgency != UrgencyDanger {
		t.Fatalf("at 95s Urgency = %s, want danger", state.Urgency)
	}
	if got := rec.warningsSnapshot(); !equalInts(got, []int{60, 30}) {
		t.Fatalf("at 95s warnings = %v, want [60 30]", got)
	}

	fake.Advance(30 * time.Second)
	state = engine.State()
	if !state.IsExpired {
		t.Fatal("at 125s IsExpired = false, want true")
	}
	if state.Phase != PhaseExpired {
		t.Fatalf("at 125s Phase = %s, want expired", state.Phase)
	}
	if state.FormattedTime != "0:00" {
		t.Fatalf("at 125s FormattedTime = %q, want 0:00", state.FormattedTime)
	}
	if got := rec.expireCount(); got != 1 {
		t.Fatalf("OnExpire called %d times, want 1", got)
	}
	if got := rec.warningsSnapshot(); !equalInts(got, []int{60, 30, 10}) {
		t.Fatalf("warnings = %v, want [60 30 10]", got)
	}
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() after expiry = %d, want 0", got)
	}

	ticksAtExpiry := rec.kinds(EventTick)
	fake.Advance(10 * time.Second)
	if got := rec.kinds(EventTick); got != ticksAtExpiry {
		t.Fatalf("ticks after expiry: %d, want %d", got, ticksAtExpiry)
	}
	if got := rec.expireCount(); got != 1 {
		t.Fatalf("OnExpire called %d times after expiry, want 1", got)
	}
}

func TestEngineNullDeadlineIsInert(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	state := engine.Start(time.Time{}, rec.callbacks())
	if state.Phase != PhaseInert {
		t.Fatalf("Phase = %s, want inert", state.Phase)
	}
	if state.IsExpired {
		t.Fatal("inert engine reports IsExpired")
	}
	if state.Remaining != 0 {
		t.Fatalf("Remaining = %v, want 0", state.Remaining)
	}
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() = %d, want 0 (no timer for inert engine)", got)
	}

	fake.Advance(5 * time.Minute)
	if got := rec.expireCount(); got != 0 {
		t.Fatalf("OnExpire called %d times, want 0", got)
	}
	if got := rec.warningsSnapshot(); len(got) != 0 {
		t.Fatalf("warnings = %v, want none", got)
	}
}

func TestEngineStartAtUnparseableIsInert(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	state := engine.StartAt("not-a-date", rec.callbacks())
	if state.Phase != PhaseInert {
		t.Fatalf("Phase = %s, want inert", state.Phase)
	}
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() = %d, want 0", got)
	}
}

func TestEngineStartAtParsesTimestamp(t *testing.T) {
	engine, _, rec := newTestEngine(t, WarningExact)

	state := engine.StartAt("2026-01-15T12:02:05Z", rec.callbacks())
	if state.FormattedTime != "2:05" {
		t.Fatalf("FormattedTime = %q, want 2:05", state.FormattedTime)
	}
}

func TestEngineStartAlreadyExpired(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	state := engine.Start(fake.Now().Add(-time.Minute), rec.callbacks())
	if !state.IsExpired {
		t.Fatal("IsExpired = false for past deadline")
	}
	if state.Remaining != 0 {
		t.Fatalf("Remaining = %v, want 0 (clamped)", state.Remaining)
	}
	if got := rec.expireCount(); got != 1 {
		t.Fatalf("OnExpire called %d times, want 1 (synchronously from Start)", got)
	}
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() = %d, want 0", got)
	}
}

func TestEnginePauseDoesNotFreezeDeadline(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	engine.Start(fake.Now().Add(100*time.Second), rec.callbacks())
	fake.Advance(50 * time.Second)

	engine.Pause()
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() while paused = %d, want 0", got)
	}
	state := engine.State()
	if !state.IsPaused || state.Phase != PhasePaused {
		t.Fatalf("state after Pause = %+v, want paused", state)
	}

	fake.Advance(30 * time.Second)
	if got := engine.State().Remaining; got != 50*time.Second {
		t.Fatalf("Remaining while paused = %v, want frozen 50s", got)
	}

	engine.Resume()
	state = engine.State()
	if state.Remaining != 20*time.Second {
		t.Fatalf("Remaining after Resume = %v, want 20s", state.Remaining)
	}
	if state.IsPaused || state.Phase != PhaseRunning {
		t.Fatalf("state after Resume = %+v, want running", state)
	}
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() after Resume = %d, want 1", got)
	}

	// 60 fired before the pause. The 30s threshold passed while paused
	// and exact matching never observed it.
	fake.Advance(20 * time.Second)
	if got := rec.warningsSnapshot(); !equalInts(got, []int{60, 10}) {
		t.Fatalf("warnings = %v, want [60 10]", got)
	}
	if got := rec.expireCount(); got != 1 {
		t.Fatalf("OnExpire called %d times, want 1", got)
	}
}

func TestEnginePauseAndResumeAreIdempotent(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	engine.Start(fake.Now().Add(time.Minute), rec.callbacks())

	engine.Resume()
	if got := rec.kinds(EventResumed); got != 0 {
		t.Fatalf("Resume on running engine emitted %d events, want 0", got)
	}
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}

	engine.Pause()
	engine.Pause()
	if got := rec.kinds(EventPaused); got != 1 {
		t.Fatalf("double Pause emitted %d events, want 1", got)
	}

	engine.Resume()
	engine.Resume()
	if got := rec.kinds(EventResumed); got != 1 {
		t.Fatalf("double Resume emitted %d events, want 1", got)
	}
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() after Resume = %d, want exactly 1 timer", got)
	}
}

func TestEngineResumeAfterDeadlinePassedExpires(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	engine.Start(fake.Now().Add(20*time.Second), rec.callbacks())
	engine.Pause()
	fake.Advance(time.Minute)
	if got := rec.expireCount(); got != 0 {
		t.Fatalf("OnExpire fired while paused")
	}

	engine.Resume()
	if got := rec.expireCount(); got != 1 {
		t.Fatalf("OnExpire called %d times after Resume, want 1", got)
	}
	if !engine.State().IsExpired {
		t.Fatal("IsExpired = false after Resume past deadline")
	}
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() = %d, want 0", got)
	}

	engine.Pause()
	engine.Resume()
	if got := rec.expireCount(); got != 1 {
		t.Fatalf("OnExpire called %d times after second resume, want 1", got)
	}
}

func TestEngineNewDeadlineResetsWarningHistory(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	engine.Start(fake.Now().Add(61*time.Second), rec.callbacks())
	fake.Advance(time.Second)
	if got := rec.warningsSnapshot(); !equalInts(got, []int{60}) {
		t.Fatalf("warnings = %v, want [60]", got)
	}

	engine.Pause()
	state := engine.Start(fake.Now().Add(61*time.Second), rec.callbacks())
	if state.IsPaused {
		t.Fatal("Start with a new deadline kept the engine paused")
	}
	fake.Advance(time.Second)
	if got := rec.warningsSnapshot(); !equalInts(got, []int{60, 60}) {
		t.Fatalf("warnings = %v, want [60 60] (history cleared by new deadline)", got)
	}
}

func TestEngineSameDeadlineKeepsCountdown(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	deadline := fake.Now().Add(61 * time.Second)
	engine.Start(deadline, rec.callbacks())
	fake.Advance(time.Second)

	replacement := &recorder{}
	state := engine.Start(deadline, replacement.callbacks())
	if state.Remaining != 60*time.Second {
		t.Fatalf("Remaining = %v, want 60s", state.Remaining)
	}
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}
	if got := rec.kinds(EventStarted); got != 1 {
		t.Fatalf("started events = %d, want 1", got)
	}

	fake.Advance(60 * time.Second)
	if got := replacement.warningsSnapshot(); !equalInts(got, []int{30, 10}) {
		t.Fatalf("replacement warnings = %v, want [30 10]", got)
	}
	if got := replacement.expireCount(); got != 1 {
		t.Fatalf("replacement OnExpire = %d, want 1", got)
	}
	if got := rec.expireCount(); got != 0 {
		t.Fatalf("replaced OnExpire = %d, want 0", got)
	}
}

func TestEngineRestartCancelsPreviousTimer(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	engine.Start(fake.Now().Add(5*time.Second), rec.callbacks())
	engine.Start(fake.Now().Add(time.Hour), rec.callbacks())
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}

	fake.Advance(10 * time.Second)
	if got := rec.expireCount(); got != 0 {
		t.Fatalf("superseded countdown fired OnExpire %d times", got)
	}

	engine.Start(time.Time{}, rec.callbacks())
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() after clearing = %d, want 0", got)
	}
}

func TestEngineDispose(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	engine.Start(fake.Now().Add(61*time.Second), rec.callbacks())
	engine.Dispose()
	engine.Dispose()

	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() after Dispose = %d, want 0", got)
	}
	if got := rec.kinds(EventDisposed); got != 1 {
		t.Fatalf("disposed events = %d, want 1", got)
	}

	fake.Advance(2 * time.Minute)
	if got := rec.warningsSnapshot(); len(got) != 0 {
		t.Fatalf("warnings after Dispose = %v, want none", got)
	}
	if got := rec.expireCount(); got != 0 {
		t.Fatalf("OnExpire after Dispose = %d, want 0", got)
	}

	state := engine.Start(fake.Now().Add(time.Minute), rec.callbacks())
	if state.Phase != PhaseInert {
		t.Fatalf("Start after Dispose: Phase = %s, want inert", state.Phase)
	}
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("Start after Dispose armed a timer")
	}
}

func TestEngineExactModeDropsOffsetThresholds(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	// Ticks observe 59.5s, 58.5s, ... The start computation sees 60
	// whole seconds but only ticks check thresholds, so 60 is never
	// matched. floor(30.5) and floor(10.5) still match 30 and 10.
	engine.Start(fake.Now().Add(60*time.Second+500*time.Millisecond), rec.callbacks())
	fake.Advance(61 * time.Second)

	if got := rec.warningsSnapshot(); !equalInts(got, []int{30, 10}) {
		t.Fatalf("warnings = %v, want [30 10]", got)
	}
	if got := rec.expireCount(); got != 1 {
		t.Fatalf("OnExpire = %d, want 1", got)
	}
}

func TestEngineCatchUpModeFiresSkippedThresholds(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningCatchUp)

	engine.Start(fake.Now().Add(60*time.Second+500*time.Millisecond), rec.callbacks())
	fake.Advance(61 * time.Second)

	if got := rec.warningsSnapshot(); !equalInts(got, []int{60, 30, 10}) {
		t.Fatalf("warnings = %v, want [60 30 10]", got)
	}
}

func TestEngineCatchUpModeAfterPause(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningCatchUp)

	engine.Start(fake.Now().Add(100*time.Second), rec.callbacks())
	fake.Advance(50 * time.Second)
	engine.Pause()
	fake.Advance(45 * time.Second)
	engine.Resume()

	// Remaining is now 5s. The first tick after resuming observes 4s
	// and catches up on 30 and 10 (60 fired before the pause).
	fake.Advance(time.Second)
	if got := rec.warningsSnapshot(); !equalInts(got, []int{60, 30, 10}) {
		t.Fatalf("warnings = %v, want [60 30 10]", got)
	}
}

func TestEngineCatchUpIgnoresThresholdsPassedBeforeStart(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningCatchUp)

	engine.Start(fake.Now().Add(45*time.Second), rec.callbacks())
	fake.Advance(45 * time.Second)

	if got := rec.warningsSnapshot(); !equalInts(got, []int{30, 10}) {
		t.Fatalf("warnings = %v, want [30 10]", got)
	}
}

func TestEngineRemainingIsMonotonic(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	engine.Start(fake.Now().Add(90*time.Second), Callbacks{})
	fake.Advance(2 * time.Minute)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	previous := 90 * time.Second
	ticks := 0
	for _, event := range rec.events {
		if event.Kind != EventTick {
			continue
		}
		ticks++
		if event.State.Remaining > previous {
			t.Fatalf("remaining increased from %v to %v", previous, event.State.Remaining)
		}
		if event.State.Remaining < 0 {
			t.Fatalf("negative remaining %v", event.State.Remaining)
		}
		previous = event.State.Remaining
	}
	if ticks != 90 {
		t.Fatalf("observed %d ticks, want 90", ticks)
	}
}

func TestEngineEventOrderWithinTick(t *testing.T) {
	engine, fake, rec := newTestEngine(t, WarningExact)

	engine.Start(fake.Now().Add(61*time.Second), Callbacks{})
	fake.Advance(time.Second)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	var kinds []EventKind
	for _, event := range rec.events {
		kinds = append(kinds, event.Kind)
	}
	want := []EventKind{EventStarted, EventWarning, EventTick}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
	if rec.events[1].Threshold != 60 {
		t.Fatalf("warning threshold = %d, want 60", rec.events[1].Threshold)
	}
}

func TestEngineCallbackMayRestart(t *testing.T) {
	fake := clock.Fake(epoch)
	engine := New(Options{Clock: fake})
	defer engine.Dispose()

	restarted := 0
	var callbacks Callbacks
	callbacks.OnExpire = func() {
		restarted++
		if restarted == 1 {
			engine.Start(fake.Now().Add(10*time.Second), callbacks)
		}
	}

	engine.Start(fake.Now().Add(5*time.Second), callbacks)
	fake.Advance(5 * time.Second)
	if state := engine.State(); state.Phase != PhaseRunning || state.Remaining != 10*time.Second {
		t.Fatalf("state after restart from OnExpire = %+v", state)
	}

	fake.Advance(10 * time.Second)
	if restarted != 2 {
		t.Fatalf("OnExpire calls = %d, want 2", restarted)
	}
}

func TestEnginePauseInsideObserverKeepsWarning(t *testing.T) {
	fake := clock.Fake(epoch)
	rec := &recorder{}
	var engine *Engine
	engine = New(Options{
		Clock: fake,
		Observers: []Observer{ObserverFunc(func(event Event) {
			if event.Kind == EventTick {
				engine.Pause()
			}
		})},
	})
	defer engine.Dispose()

	engine.Start(fake.Now().Add(61*time.Second), rec.callbacks())
	fake.Advance(time.Second)

	if got := rec.warningsSnapshot(); !equalInts(got, []int{60}) {
		t.Fatalf("warnings = %v, want [60]", got)
	}
	if !engine.State().IsPaused {
		t.Fatal("observer Pause did not take effect")
	}
}

func TestEnginePauseInsideWarningKeepsExpiry(t *testing.T) {
	fake := clock.Fake(epoch)
	rec := &recorder{}
	engine := New(Options{Clock: fake, WarningMode: WarningCatchUp})
	defer engine.Dispose()

	callbacks := rec.callbacks()
	onWarning := callbacks.OnWarning
	callbacks.OnWarning = func(secondsRemaining int) {
		onWarning(secondsRemaining)
		engine.Pause()
	}

	engine.Start(fake.Now().Add(11*time.Second), callbacks)
	engine.Pause()
	fake.Advance(10500 * time.Millisecond)
	engine.Resume()
	fake.Advance(2 * time.Second)

	if got := rec.warningsSnapshot(); !equalInts(got, []int{10}) {
		t.Fatalf("warnings = %v, want [10]", got)
	}
	if got := rec.expireCount(); got != 1 {
		t.Fatalf("OnExpire calls = %d, want 1", got)
	}
	if state := engine.State(); state.Phase != PhaseExpired {
		t.Fatalf("phase = %s, want %s", state.Phase, PhaseExpired)
	}
}

func TestEngineDisposeInsideWarningDropsExpiry(t *testing.T) {
	fake := clock.Fake(epoch)
	rec := &recorder{}
	engine := New(Options{Clock: fake, Observers: []Observer{rec}, WarningMode: WarningCatchUp})

	callbacks := rec.callbacks()
	onWarning := callbacks.OnWarning
	callbacks.OnWarning = func(secondsRemaining int) {
		onWarning(secondsRemaining)
		engine.Dispose()
	}

	engine.Start(fake.Now().Add(11*time.Second), callbacks)
	engine.Pause()
	fake.Advance(10500 * time.Millisecond)
	engine.Resume()
	fake.Advance(2 * time.Second)

	if got := rec.expireCount(); got != 0 {
		t.Fatalf("OnExpire calls after Dispose = %d, want 0", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	last := rec.events[len(rec.events)-1]
	if last.Kind != EventDisposed {
		t.Fatalf("last event = %s, want %s", last.Kind, EventDisposed)
	}
	for _, event := range rec.events {
		if event.Kind == EventExpired || event.Kind == EventWarning {
			t.Fatalf("event %s delivered after Dispose", event.Kind)
		}
	}
}

func TestStateMarshalJSON(t *testing.T) {
	state := State{
		Phase:         PhaseRunning,
		Deadline:      epoch,
		Remaining:     125 * time.Second,
		Urgency:       UrgencySafe,
		FormattedTime: "2:05",
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["remaining_ms"] != float64(125000) {
		t.Errorf("remaining_ms = %v, want 125000", decoded["remaining_ms"])
	}
	if decoded["urgency_level"] != "safe" {
		t.Errorf("urgency_level = %v, want safe", decoded["urgency_level"])
	}
	if decoded["formatted_time"] != "2:05" {
		t.Errorf("formatted_time = %v, want 2:05", decoded["formatted_time"])
	}
	if decoded["is_expired"] != false || decoded["is_paused"] != false {
		t.Errorf("flags = %v/%v, want false/false", decoded["is_expired"], decoded["is_paused"])
	}
	if decoded["deadline"] != "2026-01-15T12:00:00Z" {
		t.Errorf("deadline = %v", decoded["deadline"])
	}

	inert, err := json.Marshal(State{Phase: PhaseInert, Urgency: UrgencyDanger, FormattedTime: "0:00"})
	if err != nil {
		t.Fatalf("Marshal inert: %v", err)
	}
	decoded = nil
	if err := json.Unmarshal(inert, &decoded); err != nil {
		t.Fatalf("Unmarshal inert: %v", err)
	}
	if _, present := decoded["deadline"]; present {
		t.Errorf("inert state carries a deadline: %s", inert)
	}
}
