// Package pacing provides loop-pacing primitives: an adaptive Governor that
// holds a loop to a target cadence, and a non-blocking alarm Timer.
//
// # Overview
//
// A render or polling loop rarely takes the same time twice. Sleeping a fixed
// interval after each iteration drifts by the cost of the work; sleeping
// until a precomputed deadline free-runs when the work overruns. The
// Governor measures the real time between calls and learns how long to sleep.
//
// # Architecture
//
// The package components:
//
//   - TimeSource  - monotonic seconds and sleep (SystemClock, ManualClock)
//   - Governor    - adaptive pacing with skip advisories
//   - Timer       - deadline polling with two rearm modes
//   - Registry    - handle-based ownership for callers across a boundary
//   - Run         - paced loop runner with cadence statistics
//   - assertions  - test helpers for cadence properties
//
// # Quick Start
//
// Pace a loop to 60 iterations per second:
//
//	gov, err := pacing.NewGovernor(pacing.DefaultGovernorConfig(1.0 / 60))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    if gov.Wait() {
//	        continue // behind schedule: drop this frame
//	    }
//	    render()
//	}
//
// # The Governor
//
// Each Wait after the first updates the sleep estimate:
//
//	raw   = sleep - (delta - interval)
//	sleep = (1-α)·sleep + α·raw
//
// Where:
//   - delta: measured seconds since the previous Wait
//   - α (alpha): learning rate, multiplied by AlphaDecay every tick while
//     above AlphaTarget
//
// A high initial α snaps to the raw correction at startup; as α decays the
// estimate stops chasing scheduler noise. When the estimate goes negative
// the loop is behind schedule: nothing is slept and the overrun is added to
// a deficit. Once the deficit exceeds one interval, Wait returns true and
// the deficit shrinks by one interval. Callers that drop the next unit of
// work on true recover the lost time.
//
// Disable makes Wait a no-op. Enable re-bootstraps the baseline but keeps
// the learned sleep, so a paused loop resumes at its previous cadence.
//
// # The Timer
//
// Timer.Check never blocks. It fires once the clock is strictly past the
// alarm, then rearms:
//
//   - RearmFromNow: alarm = now + interval (phase follows the checks)
//   - RearmFromSchedule: alarm += interval (phase follows creation; a late
//     check fires once per call until caught up)
//
// # Concurrency
//
// Governor and Timer are owned by one goroutine and are not synchronised.
// Share them through a Registry, which serialises calls per handle.
//
// # Testing
//
// Drive components with a ManualClock for deterministic results, and use
// the assertions on real loops:
//
//	func TestRenderLoop(t *testing.T) {
//	    gov, _ := pacing.NewGovernor(pacing.DefaultGovernorConfig(0.01))
//	    cfg := pacing.LoopConfig{Frames: 100}
//	    result, _ := pacing.Run(ctx, gov, renderFrame, cfg)
//
//	    pacing.AssertCadence(t, result, 0.01, pacing.DefaultAssertionConfig())
//	    pacing.AssertSkipRatio(t, result, pacing.DefaultAssertionConfig())
//	}
package pacing
