package button

import (
	"testing"
	"time"
)

var base = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// at returns base + ms milliseconds.
func at(ms int) time.Time {
	return base.Add(time.Duration(ms) * time.Millisecond)
}

// tickRangeQuiet ticks b once per step from fromMs to toMs inclusive, holding
// the sample constant, and fails the test if any one-shot event fires.
func tickRangeQuiet(t *testing.T, b *Button, fromMs, toMs, stepMs int, level bool) {
	t.Helper()
	for ms := fromMs; ms <= toMs; ms += stepMs {
		b.Tick(at(ms), level)
		if b.ShortPressed() || b.Released() || b.LongPressed() || b.LongReleased() || b.Repeating() {
			t.Fatalf("t=%dms: unexpected event (press=%v release=%v long=%v longRel=%v repeat=%v)",
				ms, b.ShortPressed(), b.Released(), b.LongPressed(), b.LongReleased(), b.Repeating())
		}
	}
}

func TestNewDefaults(t *testing.T) {
	b := New(Config{Label: "up"})

	if b.cfg.Debounce != 20*time.Millisecond {
		t.Errorf("expected debounce 20ms, got %v", b.cfg.Debounce)
	}
	if b.cfg.LongPress != 800*time.Millisecond {
		t.Errorf("expected long press 800ms, got %v", b.cfg.LongPress)
	}
	if b.cfg.RepeatStart != 100*time.Millisecond {
		t.Errorf("expected repeat start 100ms, got %v", b.cfg.RepeatStart)
	}
	if b.cfg.RepeatMin != 8*time.Millisecond {
		t.Errorf("expected repeat min 8ms, got %v", b.cfg.RepeatMin)
	}
	if b.cfg.Accel != 100*time.Millisecond {
		t.Errorf("expected accel 100ms, got %v", b.cfg.Accel)
	}
	if b.Label() != "up" {
		t.Errorf("expected label %q, got %q", "up", b.Label())
	}
	if b.Phase() != PhaseIdle {
		t.Errorf("expected initial phase IDLE, got %s", b.Phase())
	}
	if b.RepeatInterval() != 100*time.Millisecond {
		t.Errorf("expected initial repeat interval 100ms, got %v", b.RepeatInterval())
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Errorf("zero config should be valid, got %v", err)
	}
	if err := (Config{RepeatMin: 50 * time.Millisecond, RepeatStart: 20 * time.Millisecond}).Validate(); err == nil {
		t.Error("expected error when min > start")
	}
	// Zero start falls back to the 100ms default, so a large explicit min
	// must still be caught.
	if err := (Config{RepeatMin: 200 * time.Millisecond}).Validate(); err == nil {
		t.Error("expected error when min exceeds defaulted start")
	}
	if err := (Config{Debounce: -time.Millisecond}).Validate(); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestPressEdgeFiresOnce(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)
	if !b.ShortPressed() {
		t.Fatal("expected press event on rising edge")
	}
	if b.Phase() != PhaseDebounce {
		t.Errorf("expected DEBOUNCE right after edge, got %s", b.Phase())
	}

	// Same level, next tick: no event, flag cleared.
	b.Tick(at(10), true)
	if b.ShortPressed() {
		t.Error("press event should be one-shot")
	}

	// Out of the debounce window, still held: pressed phase, no events.
	b.Tick(at(30), true)
	if b.ShortPressed() || b.Released() {
		t.Error("stable hold should not emit events")
	}
	if b.Phase() != PhasePressed {
		t.Errorf("expected PRESSED after debounce, got %s", b.Phase())
	}
}

func TestBounceRejection(t *testing.T) {
	b := New(Config{})

	// Rising edge accepted immediately.
	b.Tick(at(0), true)
	if !b.ShortPressed() {
		t.Fatal("expected press event")
	}

	// Contact chatter inside the 20ms window is ignored entirely.
	chatter := []bool{false, true, false, true}
	for i, level := range chatter {
		b.Tick(at(2+4*i), level)
		if b.ShortPressed() || b.Released() {
			t.Fatalf("chatter sample %d: expected no event", i)
		}
	}

	// Settled high after the window: no release was ever reported.
	tickRangeQuiet(t, b, 25, 100, 5, true)
	if got := b.CountsSnapshot(); got.Press != 1 || got.Release != 0 {
		t.Errorf("expected 1 press / 0 releases, got %+v", got)
	}
}

func TestReleaseBounceRejection(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)
	tickRangeQuiet(t, b, 10, 90, 10, true)

	// Falling edge.
	b.Tick(at(100), false)
	if !b.Released() {
		t.Fatal("expected release event on falling edge")
	}
	if b.LongReleased() {
		t.Error("short press must not report a long release")
	}

	// Release chatter inside the window.
	b.Tick(at(105), true)
	b.Tick(at(110), false)
	if b.ShortPressed() || b.Released() {
		t.Error("chatter after release should be ignored")
	}

	tickRangeQuiet(t, b, 125, 200, 5, false)
	if got := b.CountsSnapshot(); got.Press != 1 || got.Release != 1 {
		t.Errorf("expected 1 press / 1 release, got %+v", got)
	}
}

func TestEdgeAtDebounceBoundaryDetectedNextTick(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)

	// The window expires during this tick, but the edge check ran first:
	// the level change is not seen until the next tick.
	b.Tick(at(20), false)
	if b.Released() {
		t.Error("edge in the same tick as window expiry should not fire")
	}

	b.Tick(at(22), false)
	if !b.Released() {
		t.Error("expected release on the tick after the window expired")
	}
}

func TestTickRateLimit(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)
	if !b.ShortPressed() {
		t.Fatal("expected press event")
	}

	// A second call within 1ms is a no-op, but it still clears the flags.
	b.Tick(base.Add(500*time.Microsecond), true)
	if b.ShortPressed() {
		t.Error("rate-limited tick must leave flags cleared")
	}
	if b.Phase() != PhaseDebounce {
		t.Errorf("rate-limited tick must not change state, got %s", b.Phase())
	}

	// A level change on a rate-limited tick is dropped, not latched.
	b.Tick(at(30), true) // leave the debounce window first
	b.Tick(at(30).Add(200*time.Microsecond), false)
	if b.Released() {
		t.Error("rate-limited tick must not process edges")
	}
	b.Tick(at(31), false)
	if !b.Released() {
		t.Error("edge should be accepted on the next full tick")
	}
}

func TestLongPressFiresOnceAtThreshold(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)
	tickRangeQuiet(t, b, 10, 790, 10, true)

	b.Tick(at(800), true)
	if !b.LongPressed() {
		t.Fatal("expected long-press event at 800ms")
	}
	if b.Phase() != PhaseHeld {
		t.Errorf("expected HELD phase, got %s", b.Phase())
	}

	// Guard: no refire while still held.
	b.Tick(at(810), true)
	if b.LongPressed() {
		t.Error("long-press must fire at most once per physical press")
	}
	if got := b.CountsSnapshot(); got.LongPress != 1 {
		t.Errorf("expected 1 long press, got %d", got.LongPress)
	}
}

func TestOneLongPressAtMostOneRepeat(t *testing.T) {
	// Held past the threshold but less than threshold + one repeat
	// interval: exactly one long-press, at most one repeat.
	b := New(Config{})

	b.Tick(at(0), true)
	longPresses, repeats := 0, 0
	for ms := 10; ms < 890; ms += 10 {
		b.Tick(at(ms), true)
		if b.LongPressed() {
			longPresses++
		}
		if b.Repeating() {
			repeats++
		}
	}

	if longPresses != 1 {
		t.Errorf("expected exactly 1 long press, got %d", longPresses)
	}
	if repeats > 1 {
		t.Errorf("expected at most 1 repeat, got %d", repeats)
	}
}

func TestRepeatCadence(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)
	var repeatTimes []int
	for ms := 10; ms <= 1400; ms += 10 {
		b.Tick(at(ms), true)
		if b.Repeating() {
			repeatTimes = append(repeatTimes, ms)
		}
	}

	// Hold starts at 800; the first repeat waits a full interval.
	want := []int{900, 1000, 1100, 1200, 1300, 1400}
	if len(repeatTimes) != len(want) {
		t.Fatalf("expected repeats at %v, got %v", want, repeatTimes)
	}
	for i := range want {
		if repeatTimes[i] != want[i] {
			t.Errorf("repeat %d: expected t=%dms, got t=%dms", i, want[i], repeatTimes[i])
		}
	}
}

func TestRepeatCadenceNoDrift(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)
	tickRangeQuiet(t, b, 10, 790, 10, true)
	b.Tick(at(800), true) // long press, anchors reset

	// A late tick fires the repeat, but the anchor advances by the
	// interval, so the next repeat is due at 1000, not 1005.
	b.Tick(at(905), true)
	if !b.Repeating() {
		t.Fatal("expected repeat on the late tick")
	}
	b.Tick(at(999), true)
	if b.Repeating() {
		t.Error("repeat at 999ms would mean the cadence drifted")
	}
	b.Tick(at(1000), true)
	if !b.Repeating() {
		t.Error("expected repeat at 1000ms")
	}
}

func TestAccelerationSchedule(t *testing.T) {
	// Custom intervals so several acceleration steps are observable:
	// 50 -> 35 -> 20 -> 10 (clamped, 5 would undershoot the floor).
	b := New(Config{
		RepeatStart: 50 * time.Millisecond,
		RepeatMin:   10 * time.Millisecond,
		Accel:       15 * time.Millisecond,
	})

	b.Tick(at(0), true)
	prev := b.RepeatInterval()
	for ms := 10; ms <= 5000; ms += 10 {
		b.Tick(at(ms), true)
		cur := b.RepeatInterval()
		if cur > prev {
			t.Fatalf("t=%dms: repeat interval grew from %v to %v", ms, prev, cur)
		}
		prev = cur
	}

	if b.RepeatInterval() != 10*time.Millisecond {
		t.Errorf("expected interval clamped at 10ms, got %v", b.RepeatInterval())
	}

	// Step timing: hold starts at 800ms, acceleration is once per second
	// of hold. Verify each step lands on its boundary.
	b = New(Config{
		RepeatStart: 50 * time.Millisecond,
		RepeatMin:   10 * time.Millisecond,
		Accel:       15 * time.Millisecond,
	})
	b.Tick(at(0), true)
	checkpoints := map[int]time.Duration{
		1790: 50 * time.Millisecond,
		1800: 35 * time.Millisecond,
		2800: 20 * time.Millisecond,
		3800: 10 * time.Millisecond,
		4800: 10 * time.Millisecond, // already at the floor
	}
	for ms := 10; ms <= 4800; ms += 10 {
		b.Tick(at(ms), true)
		if want, ok := checkpoints[ms]; ok {
			if b.RepeatInterval() != want {
				t.Errorf("t=%dms: expected interval %v, got %v", ms, want, b.RepeatInterval())
			}
		}
	}
}

func TestReleaseDuringHold(t *testing.T) {
	b := New(Config{})

	// Hold long enough for one acceleration step (at 1800ms: 100 - 100
	// clamps to the 8ms floor) so the reset on re-press is observable.
	b.Tick(at(0), true)
	for ms := 10; ms <= 1990; ms += 10 {
		b.Tick(at(ms), true)
	}
	if b.RepeatInterval() != 8*time.Millisecond {
		t.Fatalf("expected accelerated interval 8ms, got %v", b.RepeatInterval())
	}

	b.Tick(at(2000), false)
	if !b.Released() {
		t.Error("expected release event")
	}
	if !b.LongReleased() {
		t.Error("releasing an active hold must also emit long-release")
	}
	if b.Phase() != PhaseDebounce {
		t.Errorf("expected DEBOUNCE after release edge, got %s", b.Phase())
	}

	// Walk out of the release debounce window before pressing again: an
	// edge landing on the same tick as window expiry is deferred (see
	// TestEdgeAtDebounceBoundaryDetectedNextTick).
	tickRangeQuiet(t, b, 2010, 2090, 10, false)

	// Guard re-armed: a second press resets the repeat interval and can
	// long-press again.
	b.Tick(at(2100), true)
	if !b.ShortPressed() {
		t.Fatal("expected press event on second press")
	}
	if b.RepeatInterval() != 100*time.Millisecond {
		t.Errorf("expected repeat interval reset to 100ms, got %v", b.RepeatInterval())
	}
	for ms := 2110; ms <= 2890; ms += 10 {
		b.Tick(at(ms), true)
	}
	b.Tick(at(2900), true)
	if !b.LongPressed() {
		t.Error("expected long press to fire again after re-arm")
	}
}

func TestReleaseBeforeThresholdIsShort(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)
	tickRangeQuiet(t, b, 10, 490, 10, true)

	b.Tick(at(500), false)
	if !b.Released() {
		t.Error("expected release event")
	}
	if b.LongReleased() {
		t.Error("short press must not emit long-release")
	}
	if got := b.CountsSnapshot(); got.LongPress != 0 || got.LongRelease != 0 {
		t.Errorf("expected no long events, got %+v", got)
	}
}

func TestInvertedLogic(t *testing.T) {
	b := New(Config{Inverted: true})

	// Active-high wiring at rest reads true; inverted, that is "released",
	// so no edge fires.
	b.Tick(at(0), true)
	if b.ShortPressed() || b.Released() {
		t.Error("idle level should not fire events under inversion")
	}

	b.Tick(at(10), false)
	if !b.ShortPressed() {
		t.Error("expected press event when inverted sample goes low")
	}

	// Leave the debounce window before the release edge.
	b.Tick(at(30), false)
	b.Tick(at(40), true)
	if !b.Released() {
		t.Error("expected release event when inverted sample goes high")
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	b := New(Config{Label: "select"})

	b.Tick(at(0), true)
	for i := 0; i < 5; i++ {
		if !b.ShortPressed() {
			t.Fatalf("read %d: ShortPressed changed between ticks", i)
		}
		if b.Released() || b.LongPressed() || b.LongReleased() || b.Repeating() {
			t.Fatalf("read %d: unrelated flag set", i)
		}
		if b.Label() != "select" {
			t.Fatalf("read %d: label changed", i)
		}
	}
}

func TestNoChangeNoEvents(t *testing.T) {
	b := New(Config{})

	// Released and stable: dead quiet.
	tickRangeQuiet(t, b, 0, 500, 10, false)

	if got := b.CountsSnapshot(); got != (Counts{}) {
		t.Errorf("expected zero counts, got %+v", got)
	}
}

func TestFiredEventsOrderOnHoldRelease(t *testing.T) {
	b := New(Config{})

	b.Tick(at(0), true)
	got := b.FiredEvents(at(0))
	if len(got) != 1 || got[0].Kind != KindPress {
		t.Fatalf("expected [PRESS], got %v", kinds(got))
	}
	if !got[0].Timestamp.Equal(at(0)) {
		t.Errorf("unexpected timestamp: %v", got[0].Timestamp)
	}

	for ms := 10; ms <= 1490; ms += 10 {
		b.Tick(at(ms), true)
	}
	b.Tick(at(1500), false)

	got = b.FiredEvents(at(1500))
	want := []Kind{KindRelease, KindLongRelease}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds(got))
	}
	for i := range want {
		if got[i].Kind != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i].Kind)
		}
	}

	// Quiet tick: nil.
	b.Tick(at(1600), false)
	if ev := b.FiredEvents(at(1600)); ev != nil {
		t.Errorf("expected no events, got %v", kinds(ev))
	}
}

// TestDefaultScenarioTrace walks the documented end-to-end timeline with
// default config: press at 0, long press at 800, first repeat at 900,
// release at 1500 with release + long-release in the same tick.
func TestDefaultScenarioTrace(t *testing.T) {
	b := New(Config{Label: "up"})

	type firing struct {
		ms    int
		kinds []Kind
	}
	var trace []firing

	sampleAt := func(ms int) bool { return ms >= 0 && ms < 1500 }
	for ms := 0; ms <= 1600; ms += 10 {
		b.Tick(at(ms), sampleAt(ms))
		if ev := b.FiredEvents(at(ms)); ev != nil {
			trace = append(trace, firing{ms, kinds(ev)})
		}
	}

	want := []firing{
		{0, []Kind{KindPress}},
		{800, []Kind{KindLongPress}},
		{900, []Kind{KindRepeat}},
		{1000, []Kind{KindRepeat}},
		{1100, []Kind{KindRepeat}},
		{1200, []Kind{KindRepeat}},
		{1300, []Kind{KindRepeat}},
		{1400, []Kind{KindRepeat}},
		{1500, []Kind{KindRelease, KindLongRelease}},
	}

	if len(trace) != len(want) {
		t.Fatalf("expected %d firings, got %d: %+v", len(want), len(trace), trace)
	}
	for i := range want {
		if trace[i].ms != want[i].ms {
			t.Errorf("firing %d: expected t=%dms, got t=%dms", i, want[i].ms, trace[i].ms)
			continue
		}
		if len(trace[i].kinds) != len(want[i].kinds) {
			t.Errorf("t=%dms: expected %v, got %v", want[i].ms, want[i].kinds, trace[i].kinds)
			continue
		}
		for j := range want[i].kinds {
			if trace[i].kinds[j] != want[i].kinds[j] {
				t.Errorf("t=%dms event %d: expected %s, got %s", want[i].ms, j, want[i].kinds[j], trace[i].kinds[j])
			}
		}
	}

	wantCounts := Counts{Press: 1, Release: 1, LongPress: 1, LongRelease: 1, Repeat: 6}
	if got := b.CountsSnapshot(); got != wantCounts {
		t.Errorf("counts: expected %+v, got %+v", wantCounts, got)
	}
}

func TestIndependentInstances(t *testing.T) {
	a := New(Config{Label: "a"})
	b := New(Config{Label: "b"})

	// Tick the two machines interleaved; pressing one must not affect the
	// other.
	for ms := 0; ms <= 100; ms += 10 {
		a.Tick(at(ms), true)
		b.Tick(at(ms), false)
	}

	if a.Phase() != PhasePressed {
		t.Errorf("a: expected PRESSED, got %s", a.Phase())
	}
	if b.Phase() != PhaseIdle {
		t.Errorf("b: expected IDLE, got %s", b.Phase())
	}
	if got := b.CountsSnapshot(); got != (Counts{}) {
		t.Errorf("b: expected zero counts, got %+v", got)
	}
}

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
