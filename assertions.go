package pacing

import (
	"fmt"
	"math"
	"testing"
)

// AssertionConfig contains thresholds for cadence properties.
type AssertionConfig struct {
	// Mean period may differ from the interval by this fraction
	MaxMeanError float64

	// P95 period may exceed the interval by this fraction
	MaxJitter float64

	// Share of ticks whose work may be skipped
	MaxSkipRatio float64

	// Leading periods ignored while the governor converges
	Warmup int
}

// DefaultAssertionConfig returns thresholds suited to a loaded CI machine.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		MaxMeanError: 0.05, // 5% average drift
		MaxJitter:    0.50, // 50% tail overshoot
		MaxSkipRatio: 0.0,  // no skips
		Warmup:       5,
	}
}

// AssertCadence verifies a paced loop held its target interval.
//
// Property:
//
//	|mean(period) - interval| ≤ MaxMeanError · interval
//	p95(period) ≤ (1 + MaxJitter) · interval
func AssertCadence(t testing.TB, result LoopResult, interval float64, cfg AssertionConfig) {
	t.Helper()

	periods := result.Periods
	if len(periods) > cfg.Warmup {
		periods = periods[cfg.Warmup:]
	}
	if len(periods) == 0 {
		t.Fatalf("No tick periods recorded after %d warmup ticks", cfg.Warmup)
		return
	}

	stats := CalculateStatistics(periods)

	var failures []string
	if drift := math.Abs(stats.Mean - interval); drift > cfg.MaxMeanError*interval {
		failures = append(failures, fmt.Sprintf(
			"  mean period %.6fs drifts %.6fs from %.6fs (max: %.6fs)",
			stats.Mean, drift, interval, cfg.MaxMeanError*interval))
	}
	if limit := (1 + cfg.MaxJitter) * interval; stats.P95 > limit {
		failures = append(failures, fmt.Sprintf(
			"  p95 period %.6fs exceeds %.6fs", stats.P95, limit))
	}

	if len(failures) > 0 {
		t.Errorf("Cadence not held:\n%s\nmean=%.6f, stddev=%.6f, p99=%.6f",
			failures, stats.Mean, stats.Stddev, stats.P99)
		return
	}

	t.Logf("✓ Cadence held: mean=%.6fs (target %.6fs), p95=%.6fs", stats.Mean, interval, stats.P95)
}

// AssertSkipRatio verifies the loop skipped no more work than allowed.
func AssertSkipRatio(t testing.TB, result LoopResult, cfg AssertionConfig) {
	t.Helper()

	if ratio := result.SkipRatio(); ratio > cfg.MaxSkipRatio {
		t.Errorf("Too many skips: %d of %d ticks (%.2f%%, max: %.2f%%)\n"+
			"Work does not fit in the interval. Raise the interval or shed work.",
			result.Skipped, result.Ticks, ratio*100, cfg.MaxSkipRatio*100)
		return
	}

	t.Logf("✓ Skip ratio: %d of %d ticks", result.Skipped, result.Ticks)
}
