package pacing

import (
	"fmt"
	"log/slog"

	"github.com/VividCortex/ewma"
	"github.com/prometheus/client_golang/prometheus"
)

// Governor paces a loop to a target interval. It measures the time between
// successive Wait calls and adapts how long to sleep so the loop converges
// on the interval despite variable work per iteration.
//
// Control loop:
// - First call establishes the baseline and sleeps for the interval
// - Later calls correct the sleep by the measured overage (EWMA-smoothed)
// - Overruns that sleep cannot absorb accumulate as deficit
// - Deficit above one interval becomes a skip advisory
//
// A Governor is owned by one loop. It is not safe for concurrent use.
type Governor struct {
	// Parameters
	interval    float64
	alpha       float64 // learning rate, decays toward alphaTarget
	alphaDecay  float64
	alphaTarget float64

	// Control state
	sleepTime float64 // may go negative when behind schedule
	priorTS   float64
	deficit   float64
	counter   int
	valid     bool

	// Observation
	skips    int
	overruns int
	observed ewma.MovingAverage

	clock   TimeSource
	logger  *slog.Logger
	metrics governorMetrics
}

// GovernorConfig holds the construction parameters of a Governor.
type GovernorConfig struct {
	Interval    float64 `yaml:"interval"`     // Target seconds per iteration (≥ 0)
	Alpha       float64 `yaml:"alpha"`        // Initial learning rate
	AlphaDecay  float64 `yaml:"alpha_decay"`  // Multiplier applied to alpha each tick
	AlphaTarget float64 `yaml:"alpha_target"` // Alpha stops decaying once at or below this
}

// DefaultGovernorConfig responds fully at startup and settles to 0.1.
func DefaultGovernorConfig(interval float64) GovernorConfig {
	return GovernorConfig{
		Interval:    interval,
		Alpha:       1.0,
		AlphaDecay:  0.99,
		AlphaTarget: 0.1,
	}
}

// Validate rejects a negative interval. Alpha is accepted as given.
func (c GovernorConfig) Validate() error {
	return checkInterval("governor", c.Interval)
}

// GovernorStats is a snapshot of a Governor's state.
type GovernorStats struct {
	Interval    float64
	Alpha       float64
	SleepTime   float64
	Deficit     float64
	Ticks       int
	Skips       int
	Overruns    int
	Enabled     bool
	ObservedDT  float64 // smoothed measured seconds between ticks, 0 until measured
	ObservedFPS float64
}

// NewGovernor creates an enabled governor whose first Wait sleeps for
// cfg.Interval.
func NewGovernor(cfg GovernorConfig, opts ...Option) (*Governor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	g := &Governor{
		interval:    cfg.Interval,
		alpha:       cfg.Alpha,
		alphaDecay:  cfg.AlphaDecay,
		alphaTarget: cfg.AlphaTarget,
		sleepTime:   cfg.Interval,
		valid:       true,
		observed:    ewma.NewMovingAverage(),
		clock:       o.clock,
		logger:      o.logger,
		metrics:     newGovernorMetrics(o),
	}
	g.metrics.Alpha.Set(g.alpha)

	if cfg.Alpha < 0 || cfg.Alpha > 1 {
		g.logger.Warn("governor alpha outside [0, 1]", "alpha", cfg.Alpha)
	}

	return g, nil
}

// Wait blocks for the computed sleep and reports whether the caller should
// skip its next unit of work. A disabled governor returns false at once.
func (g *Governor) Wait() bool {
	if !g.valid {
		return false
	}

	now := g.clock.Now()

	if g.counter == 0 {
		g.priorTS = now
		g.clock.Sleep(g.sleepTime)
		g.counter++
		return false
	}

	delta := now - g.priorTS
	g.priorTS = now
	g.observed.Add(delta)

	// EWMA of the naive correction against the previous estimate
	newSleepTime := g.sleepTime - (delta - g.interval)
	g.sleepTime = (1-g.alpha)*g.sleepTime + g.alpha*newSleepTime

	if g.sleepTime > 0 {
		g.metrics.SleepSeconds.Observe(g.sleepTime)
		g.clock.Sleep(g.sleepTime)
	} else {
		g.deficit -= g.sleepTime
		g.overruns++
		g.metrics.Overruns.Inc()
	}

	// Gated, not clamped: the last step may undershoot alphaTarget.
	if g.alpha > g.alphaTarget {
		g.alpha *= g.alphaDecay
		g.metrics.Alpha.Set(g.alpha)
	}

	g.counter++
	g.metrics.Ticks.Inc()

	skip := false
	if g.deficit > g.interval {
		g.deficit -= g.interval
		g.skips++
		g.metrics.Skips.Inc()
		skip = true
		g.logger.Debug("governor advising skip",
			"deficit", g.deficit,
			"interval", g.interval,
			"sleep_time", g.sleepTime)
	}
	g.metrics.Deficit.Set(g.deficit)

	return skip
}

// Disable turns Wait into a no-op returning false. State is kept.
func (g *Governor) Disable() {
	if g.valid {
		g.logger.Debug("governor disabled", "ticks", g.counter)
	}
	g.valid = false
}

// Enable reactivates the governor and forces the next Wait to re-bootstrap.
// The interval, alpha parameters and last sleep time are kept.
func (g *Governor) Enable() {
	if !g.valid {
		g.logger.Debug("governor enabled", "sleep_time", g.sleepTime)
	}
	g.valid = true
	g.counter = 0
	g.deficit = 0
	g.metrics.Deficit.Set(0)
}

// Enabled reports whether Wait is active.
func (g *Governor) Enabled() bool {
	return g.valid
}

// Interval returns the target seconds per iteration.
func (g *Governor) Interval() float64 {
	return g.interval
}

// Stats returns a snapshot of the governor's state.
func (g *Governor) Stats() GovernorStats {
	s := GovernorStats{
		Interval:   g.interval,
		Alpha:      g.alpha,
		SleepTime:  g.sleepTime,
		Deficit:    g.deficit,
		Ticks:      g.counter,
		Skips:      g.skips,
		Overruns:   g.overruns,
		Enabled:    g.valid,
		ObservedDT: g.observed.Value(),
	}
	if s.ObservedDT > 0 {
		s.ObservedFPS = 1 / s.ObservedDT
	}
	return s
}

// Metrics returns the prometheus collectors of this governor.
func (g *Governor) Metrics() []prometheus.Collector {
	return g.metrics.collectors()
}

func (g *Governor) String() string {
	return fmt.Sprintf("Governor(interval=%gs, sleep=%gs, deficit=%gs, enabled=%t)",
		g.interval, g.sleepTime, g.deficit, g.valid)
}
