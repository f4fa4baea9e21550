package pacing

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// RearmMode selects how a Timer reschedules after firing.
type RearmMode int

const (
	// RearmFromSchedule advances the alarm by one interval from the previous
	// alarm, keeping the long-term phase. Host name "created".
	RearmFromSchedule RearmMode = iota

	// RearmFromNow reschedules one interval after the firing check.
	// Host name "checked".
	RearmFromNow
)

// ParseRearmMode maps the host names "created" and "checked".
func ParseRearmMode(s string) (RearmMode, error) {
	switch s {
	case "created":
		return RearmFromSchedule, nil
	case "checked":
		return RearmFromNow, nil
	}
	return 0, fmt.Errorf("%w: unknown rearm mode %q (want \"created\" or \"checked\")", ErrInvalidArgument, s)
}

func (m RearmMode) String() string {
	switch m {
	case RearmFromSchedule:
		return "created"
	case RearmFromNow:
		return "checked"
	}
	return fmt.Sprintf("RearmMode(%d)", int(m))
}

// MarshalYAML renders the host name.
func (m RearmMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML accepts the host names.
func (m *RearmMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	mode, err := ParseRearmMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Timer is a non-blocking alarm that fires once its deadline has strictly
// passed, then rearms according to its mode. Check never sleeps.
//
// A Timer is owned by one caller. It is not safe for concurrent use.
type Timer struct {
	interval float64
	alarm    float64
	mode     RearmMode
	valid    bool

	checks int
	fires  int

	clock   TimeSource
	logger  *slog.Logger
	metrics timerMetrics
}

// TimerConfig holds the construction parameters of a Timer.
type TimerConfig struct {
	Interval float64   `yaml:"interval"`
	Mode     RearmMode `yaml:"mode"`
}

// Validate rejects a negative interval and an unknown mode.
func (c TimerConfig) Validate() error {
	if err := checkInterval("timer", c.Interval); err != nil {
		return err
	}
	if c.Mode != RearmFromNow && c.Mode != RearmFromSchedule {
		return fmt.Errorf("%w: unknown rearm mode %d", ErrInvalidArgument, int(c.Mode))
	}
	return nil
}

// TimerStats is a snapshot of a Timer's state.
type TimerStats struct {
	Interval float64
	Alarm    float64
	Mode     RearmMode
	Enabled  bool
	Checks   int
	Fires    int
}

// NewTimer creates an enabled timer whose first alarm is one interval from now.
func NewTimer(interval float64, mode RearmMode, opts ...Option) (*Timer, error) {
	cfg := TimerConfig{Interval: interval, Mode: mode}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	t := &Timer{
		interval: interval,
		mode:     mode,
		valid:    true,
		clock:    o.clock,
		logger:   o.logger,
		metrics:  newTimerMetrics(o),
	}
	t.alarm = t.clock.Now() + interval
	return t, nil
}

// NewTimerFromConfig is NewTimer taking a TimerConfig.
func NewTimerFromConfig(cfg TimerConfig, opts ...Option) (*Timer, error) {
	return NewTimer(cfg.Interval, cfg.Mode, opts...)
}

// Check reports whether the alarm has strictly passed, rearming if so.
// A disabled timer never fires.
func (t *Timer) Check() bool {
	if !t.valid {
		return false
	}
	t.checks++
	t.metrics.Checks.Inc()

	now := t.clock.Now()
	if now <= t.alarm {
		return false
	}

	switch t.mode {
	case RearmFromNow:
		t.alarm = now + t.interval
	default:
		// One firing per call; missed intervals are not caught up here.
		t.alarm += t.interval
	}
	t.fires++
	t.metrics.Fires.Inc()
	return true
}

// Disable stops Check from firing. The alarm is kept.
func (t *Timer) Disable() {
	if t.valid {
		t.logger.Debug("timer disabled", "alarm", t.alarm)
	}
	t.valid = false
}

// Enable reactivates the timer and restarts its schedule one interval
// from now.
func (t *Timer) Enable() {
	t.valid = true
	t.alarm = t.clock.Now() + t.interval
	t.logger.Debug("timer enabled", "alarm", t.alarm, "mode", t.mode)
}

// Enabled reports whether Check is active.
func (t *Timer) Enabled() bool { return t.valid }

// Alarm returns the absolute time of the next firing.
func (t *Timer) Alarm() float64 { return t.alarm }

// Interval returns the seconds between firings.
func (t *Timer) Interval() float64 { return t.interval }

// Mode returns the rearm mode.
func (t *Timer) Mode() RearmMode { return t.mode }

// Stats returns a snapshot of the timer's state.
func (t *Timer) Stats() TimerStats {
	return TimerStats{
		Interval: t.interval,
		Alarm:    t.alarm,
		Mode:     t.mode,
		Enabled:  t.valid,
		Checks:   t.checks,
		Fires:    t.fires,
	}
}

// Metrics returns the prometheus collectors of this timer.
func (t *Timer) Metrics() []prometheus.Collector {
	return t.metrics.collectors()
}
