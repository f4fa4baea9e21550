package pacing

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/VividCortex/ewma"
)

// Work is one unit of a paced loop, e.g. rendering a frame.
type Work func(ctx context.Context) error

// LoopConfig controls Run.
type LoopConfig struct {
	Frames      int  // Ticks to run (0 = until ctx is done)
	StopOnError bool // Return the first Work error instead of counting it
}

// DefaultLoopConfig runs until the context is cancelled.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{}
}

// LoopResult contains measurements from one Run.
type LoopResult struct {
	Ticks    int           // Governor ticks taken
	Frames   int           // Work units executed
	Skipped  int           // Work units omitted on advice
	Errors   int           // Work units that failed
	Duration time.Duration // Wall time of the whole run
	Periods  []float64     // Seconds between successive ticks
	Latency  []float64     // Seconds spent in each executed Work
	Rate     float64       // Smoothed ticks per second at the end of the run
}

// Statistics contains percentile data over a sample of seconds.
type Statistics struct {
	Mean   float64
	Stddev float64
	P50    float64
	P95    float64
	P99    float64
}

// Run paces work with gov. Before every unit it calls gov.Wait; a skip
// advisory omits that unit. The loop ends when ctx is done, after
// cfg.Frames ticks, or on the first error if cfg.StopOnError is set.
//
// Measurements use gov's time source, so a ManualClock yields a
// deterministic result.
func Run(ctx context.Context, gov *Governor, work Work, cfg LoopConfig) (LoopResult, error) {
	var (
		result LoopResult
		clock  = gov.clock
		rate   = ewma.NewMovingAverage()
		start  = clock.Now()
		prior  float64
	)

	for cfg.Frames <= 0 || result.Ticks < cfg.Frames {
		if err := ctx.Err(); err != nil {
			break
		}

		skip := gov.Wait()
		tick := clock.Now()
		if result.Ticks > 0 {
			period := tick - prior
			result.Periods = append(result.Periods, period)
			rate.Add(period)
		}
		prior = tick
		result.Ticks++

		if skip {
			result.Skipped++
			continue
		}

		workStart := clock.Now()
		err := work(ctx)
		result.Latency = append(result.Latency, clock.Now()-workStart)
		result.Frames++

		if err != nil {
			result.Errors++
			if cfg.StopOnError {
				result.finish(clock.Now()-start, rate)
				return result, err
			}
		}
	}

	result.finish(clock.Now()-start, rate)
	return result, nil
}

func (r *LoopResult) finish(elapsed float64, rate ewma.MovingAverage) {
	r.Duration = Duration(elapsed)
	if v := rate.Value(); v > 0 {
		r.Rate = 1 / v
	}
}

// SkipRatio returns the share of ticks whose work was skipped.
func (r LoopResult) SkipRatio() float64 {
	if r.Ticks == 0 {
		return 0
	}
	return float64(r.Skipped) / float64(r.Ticks)
}

// CalculateStatistics computes mean, deviation and percentiles of samples.
func CalculateStatistics(samples []float64) Statistics {
	if len(samples) == 0 {
		return Statistics{}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	// Mean
	var sum float64
	for _, s := range sorted {
		sum += s
	}
	mean := sum / float64(len(sorted))

	// Standard deviation
	var variance float64
	for _, s := range sorted {
		diff := s - mean
		variance += diff * diff
	}
	stddev := math.Sqrt(variance / float64(len(sorted)))

	return Statistics{
		Mean:   mean,
		Stddev: stddev,
		P50:    sorted[len(sorted)*50/100],
		P95:    sorted[len(sorted)*95/100],
		P99:    sorted[len(sorted)*99/100],
	}
}
