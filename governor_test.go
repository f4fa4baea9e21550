package pacing

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const epsilon = 1e-9

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// fixedGovernor never decays alpha, so every tick applies the full correction.
func fixedGovernor(t *testing.T, interval float64, clock TimeSource) *Governor {
	t.Helper()
	g, err := NewGovernor(GovernorConfig{
		Interval:    interval,
		Alpha:       1,
		AlphaDecay:  1,
		AlphaTarget: 1,
	}, WithTimeSource(clock))
	if err != nil {
		t.Fatalf("NewGovernor failed: %v", err)
	}
	return g
}

func TestNewGovernor_Validation(t *testing.T) {
	tests := []struct {
		name     string
		interval float64
		wantErr  bool
	}{
		{"negative", -1, true},
		{"tiny negative", -1e-12, true},
		{"NaN", math.NaN(), true},
		{"positive infinity", math.Inf(1), true},
		{"negative infinity", math.Inf(-1), true},
		{"zero", 0, false},
		{"positive", 0.016, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGovernor(DefaultGovernorConfig(tt.interval))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("Expected ErrInvalidArgument, got %v", err)
				}
				if g != nil {
					t.Error("Expected nil governor on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !g.Enabled() {
				t.Error("Expected new governor to be enabled")
			}
			if s := g.Stats(); s.SleepTime != tt.interval || s.Ticks != 0 || s.Deficit != 0 {
				t.Errorf("Unexpected initial state: %+v", s)
			}
		})
	}
}

func TestGovernor_AlphaOutsideUnitRangeAccepted(t *testing.T) {
	for _, alpha := range []float64{-0.5, 1.5} {
		cfg := GovernorConfig{Interval: 0.1, Alpha: alpha, AlphaDecay: 1, AlphaTarget: 0}
		if _, err := NewGovernor(cfg, WithTimeSource(NewManualClock(0))); err != nil {
			t.Errorf("alpha=%v: expected acceptance, got %v", alpha, err)
		}
	}
}

func TestGovernor_Bootstrap(t *testing.T) {
	clock := NewManualClock(10)
	g := fixedGovernor(t, 0.25, clock)

	if g.Wait() {
		t.Error("Expected first Wait to return false")
	}

	sleeps := clock.Sleeps()
	if len(sleeps) != 1 || sleeps[0] != 0.25 {
		t.Errorf("Expected one sleep of 0.25s, got %v", sleeps)
	}
	if got := clock.Now(); got != 10.25 {
		t.Errorf("Expected clock at 10.25, got %v", got)
	}
	if s := g.Stats(); s.Ticks != 1 || s.SleepTime != 0.25 || s.Alpha != 1 {
		t.Errorf("Bootstrap must not update the estimate: %+v", s)
	}
}

func TestGovernor_Bootstrap_SystemClock(t *testing.T) {
	g, err := NewGovernor(DefaultGovernorConfig(0.02))
	if err != nil {
		t.Fatalf("NewGovernor failed: %v", err)
	}

	start := time.Now()
	if g.Wait() {
		t.Error("Expected first Wait to return false")
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Expected ~20ms sleep, got %v", elapsed)
	}
}

func TestGovernor_FixedPoint(t *testing.T) {
	clock := NewManualClock(0)
	g, err := NewGovernor(GovernorConfig{
		Interval:    0.1,
		Alpha:       0.5,
		AlphaDecay:  0.9,
		AlphaTarget: 0.1,
	}, WithTimeSource(clock))
	if err != nil {
		t.Fatalf("NewGovernor failed: %v", err)
	}

	// No work: each delta is exactly the previous sleep.
	for i := 0; i < 50; i++ {
		if g.Wait() {
			t.Fatalf("Tick %d: unexpected skip", i)
		}
	}

	for i, s := range clock.Sleeps() {
		if !closeTo(s, 0.1) {
			t.Errorf("Sleep %d: expected 0.1, got %v", i, s)
		}
	}

	s := g.Stats()
	if !closeTo(s.SleepTime, 0.1) {
		t.Errorf("Expected sleep time to stay 0.1, got %v", s.SleepTime)
	}
	if s.Deficit != 0 || s.Skips != 0 || s.Overruns != 0 {
		t.Errorf("Expected no deficit, got %+v", s)
	}
	if !closeTo(s.ObservedDT, 0.1) || math.Abs(s.ObservedFPS-10) > 1e-6 {
		t.Errorf("Expected observed 0.1s / 10 FPS, got %v / %v", s.ObservedDT, s.ObservedFPS)
	}
}

func TestGovernor_Overrun(t *testing.T) {
	clock := NewManualClock(0)
	g := fixedGovernor(t, 0.5, clock)

	// Each iteration's work takes 0.75s against a 0.5s interval. The
	// baseline is taken before the bootstrap sleep, so the first measured
	// delta covers that sleep plus the work.
	steps := []struct {
		skip    bool
		deficit float64
	}{
		{false, 0},    // bootstrap at t=0, sleeps 0.5
		{false, 0.25}, // t=1.25: delta 1.25, sleep -0.25 owed
		{true, 0.25},  // t=2.0: delta 0.75, sleep -0.5, 0.75 owed less one interval
	}

	for i, step := range steps {
		if i > 0 {
			clock.Advance(0.75)
		}
		if got := g.Wait(); got != step.skip {
			t.Errorf("Tick %d: expected skip=%t, got %t", i, step.skip, got)
		}
		if d := g.Stats().Deficit; !closeTo(d, step.deficit) {
			t.Errorf("Tick %d: expected deficit %v, got %v", i, step.deficit, d)
		}
	}

	sleeps := clock.Sleeps()
	if len(sleeps) != 1 || sleeps[0] != 0.5 {
		t.Errorf("Expected only the bootstrap sleep [0.5], got %v", sleeps)
	}

	// Caller skips its work: the correction reaches zero, nothing more is
	// owed and no second advisory follows.
	if g.Wait() {
		t.Error("Expected exactly one skip advisory")
	}
	if d := g.Stats().Deficit; !closeTo(d, 0.25) {
		t.Errorf("Expected deficit to hold at 0.25, got %v", d)
	}
	if g.Wait() {
		t.Error("Unexpected skip after recovery")
	}
	if last := clock.Sleeps(); len(last) != 2 || last[1] != 0.5 {
		t.Errorf("Expected recovered sleep of 0.5, got %v", last)
	}

	s := g.Stats()
	if s.Skips != 1 || s.Overruns != 3 {
		t.Errorf("Expected 1 skip and 3 overruns, got %+v", s)
	}
	if got := testutil.ToFloat64(g.metrics.Skips); got != 1 {
		t.Errorf("Expected skips metric 1, got %v", got)
	}
	if got := testutil.ToFloat64(g.metrics.Overruns); got != 3 {
		t.Errorf("Expected overruns metric 3, got %v", got)
	}
}

// TestGovernor_DeficitAccumulates holds work at a constant overrun. A
// negative estimate carries into the next correction, so each tick owes
// more than the last until one interval can be drained.
func TestGovernor_DeficitAccumulates(t *testing.T) {
	clock := NewManualClock(0)
	g := fixedGovernor(t, 1, clock)

	g.Wait() // t=0, sleeps 1
	clock.Advance(1)
	g.Wait() // t=2: delta 2, estimate 0, nothing slept or owed

	want := []struct {
		skip    bool
		deficit float64
	}{
		{false, 0.25}, // estimate -0.25
		{false, 0.75}, // estimate -0.5
		{true, 0.5},   // estimate -0.75, 1.5 owed less one interval
	}
	for i, w := range want {
		clock.Advance(1.25)
		got := g.Wait()
		if d := g.Stats().Deficit; got != w.skip || !closeTo(d, w.deficit) {
			t.Errorf("Tick %d: expected skip=%t deficit=%v, got skip=%t deficit=%v",
				i, w.skip, w.deficit, got, d)
		}
	}
	if n := len(clock.Sleeps()); n != 1 {
		t.Errorf("Expected only the bootstrap sleep, got %d sleeps", n)
	}
}

func TestGovernor_DeficitNeverNegative(t *testing.T) {
	clock := NewManualClock(0)
	g := fixedGovernor(t, 0.1, clock)

	work := []float64{0.3, 0.05, 0.4, 0, 0, 0.25, 0.01, 0.5, 0, 0.2}
	g.Wait()
	for i, w := range work {
		clock.Advance(w)
		g.Wait()
		if d := g.Stats().Deficit; d < 0 {
			t.Fatalf("Tick %d: deficit went negative: %v", i, d)
		}
	}
}

func TestGovernor_AlphaDecay(t *testing.T) {
	clock := NewManualClock(0)
	g, err := NewGovernor(GovernorConfig{
		Interval:    0.1,
		Alpha:       0.9,
		AlphaDecay:  0.5,
		AlphaTarget: 0.1,
	}, WithTimeSource(clock))
	if err != nil {
		t.Fatalf("NewGovernor failed: %v", err)
	}

	g.Wait() // bootstrap does not decay
	if a := g.Stats().Alpha; a != 0.9 {
		t.Fatalf("Expected alpha 0.9 after bootstrap, got %v", a)
	}

	// 0.1125 > 0.1 still decays once more, undershooting the target.
	want := []float64{0.45, 0.225, 0.1125, 0.05625, 0.05625, 0.05625}
	for k, w := range want {
		g.Wait()
		if a := g.Stats().Alpha; !closeTo(a, w) {
			t.Errorf("Tick %d: expected alpha %v, got %v", k+1, w, a)
		}
	}
}

func TestGovernor_DisableEnable(t *testing.T) {
	clock := NewManualClock(0)
	g := fixedGovernor(t, 0.25, clock)

	g.Wait()
	clock.Advance(0.1)
	g.Wait() // sleep estimate becomes 0.15

	g.Disable()
	if g.Enabled() {
		t.Error("Expected governor to be disabled")
	}
	before := clock.Now()
	for i := 0; i < 3; i++ {
		if g.Wait() {
			t.Error("Disabled Wait must return false")
		}
	}
	if clock.Now() != before || len(clock.Sleeps()) != 2 {
		t.Error("Disabled Wait must not sleep")
	}
	if ticks := g.Stats().Ticks; ticks != 2 {
		t.Errorf("Disabled Wait must not count ticks, got %d", ticks)
	}

	g.Disable() // idempotent
	g.Enable()
	s := g.Stats()
	if s.Ticks != 0 || s.Deficit != 0 || !s.Enabled {
		t.Errorf("Enable must reset ticks and deficit: %+v", s)
	}
	if !closeTo(s.SleepTime, 0.15) {
		t.Errorf("Enable must keep sleep time, got %v", s.SleepTime)
	}

	if g.Wait() {
		t.Error("Re-bootstrap must return false")
	}
	sleeps := clock.Sleeps()
	if last := sleeps[len(sleeps)-1]; !closeTo(last, 0.15) {
		t.Errorf("Re-bootstrap must sleep the learned 0.15, got %v", last)
	}
}

func TestGovernor_ZeroInterval(t *testing.T) {
	clock := NewManualClock(0)
	g := fixedGovernor(t, 0, clock)

	if g.Wait() {
		t.Error("Expected bootstrap to return false")
	}
	if len(clock.Sleeps()) != 0 {
		t.Error("Zero interval must not sleep")
	}

	clock.Advance(0.1)
	if !g.Wait() {
		t.Error("Any overrun exceeds a zero interval")
	}
	if d := g.Stats().Deficit; !closeTo(d, 0.1) {
		t.Errorf("Zero interval drains nothing, expected deficit 0.1, got %v", d)
	}
}
