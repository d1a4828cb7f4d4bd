// Package bode sequences a signal generator through the frequency
// sweeps used for frequency response (Bode plot) measurements.
//
// The package only drives the stimulus side; acquiring and plotting the
// response belongs to the caller, who is handed each point through the
// visit callback.
package bode

import (
	"context"
	"errors"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/bode-lab/awgctl/awg"
	"github.com/bode-lab/awgctl/mathx"
)

var (
	// ErrNoPoints is generated when a sweep is configured with fewer than one point
	ErrNoPoints = errors.New("sweep must contain at least one point")
)

// Sweep describes a logarithmic frequency sweep on one output of a generator
type Sweep struct {
	// Channel is the output the sweep drives
	Channel awg.Channel

	// Start is the first frequency, Hz
	Start float64

	// Stop is the last frequency, Hz
	Stop float64

	// Points is the number of frequencies visited, log-spaced from
	// Start to Stop inclusive
	Points int

	// Amplitude is the stimulus amplitude in volts
	Amplitude float64

	// Settle is the minimum spacing between points, allowing the
	// device under test to reach steady state before the caller
	// samples the response
	Settle time.Duration
}

// Frequencies returns the grid of frequencies the sweep will visit
func (s Sweep) Frequencies() []float64 {
	if s.Points < 1 {
		return nil
	}
	return mathx.Logspace(s.Start, s.Stop, s.Points)
}

// Run drives gen through the sweep: sine output at the configured
// amplitude, stepping the frequency grid and calling visit (if not nil)
// at each point.  The output is enabled for the duration of the sweep
// and disabled on the way out, even when the sweep fails partway.
// Point pacing honors ctx, so a sweep can be cancelled between points.
func (s Sweep) Run(ctx context.Context, gen awg.Generator, visit func(idx int, hz float64) error) (err error) {
	if err = s.Channel.Validate(); err != nil {
		return err
	}
	freqs := s.Frequencies()
	if freqs == nil {
		return ErrNoPoints
	}
	if err = gen.SetWaveType(s.Channel, awg.Sine); err != nil {
		return err
	}
	if err = gen.SetAmplitude(s.Channel, s.Amplitude); err != nil {
		return err
	}
	if err = gen.EnableOutput(s.Channel, true); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, gen.EnableOutput(s.Channel, false))
	}()
	limiter := rate.NewLimiter(rate.Every(s.Settle), 1)
	for i, hz := range freqs {
		if err = limiter.Wait(ctx); err != nil {
			return err
		}
		if err = gen.SetFrequency(s.Channel, hz); err != nil {
			return err
		}
		if visit != nil {
			if err = visit(i, hz); err != nil {
				return err
			}
		}
	}
	return err
}
