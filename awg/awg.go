// Package awg provides type and interface definitions for arbitrary
// waveform generators
package awg

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// HiZ is the load impedance sentinel for a high impedance (no current
// draw) load.  With a Hi-Z load there is no voltage divider against the
// generator's output stage and amplitudes are passed through unscaled.
var HiZ = math.Inf(1)

var (
	// ErrUnknownChannel is generated when a channel selector is outside
	// the supported set
	ErrUnknownChannel = errors.New("channel can be 1 or 2")
)

// Channel selects which output(s) of a two channel generator an
// operation applies to.  The zero value addresses both channels.
type Channel int

const (
	// Both addresses channels 1 and 2 in a single call
	Both Channel = iota

	// Channel1 addresses the first output
	Channel1

	// Channel2 addresses the second output
	Channel2
)

// Validate returns ErrUnknownChannel if c is not a member of the selector set
func (c Channel) Validate() error {
	if c < Both || c > Channel2 {
		return ErrUnknownChannel
	}
	return nil
}

// Includes returns true if an operation addressed to c applies to target
func (c Channel) Includes(target Channel) bool {
	return c == Both || c == target
}

// WaveType enumerates the waveform kinds a generator may be asked for
type WaveType int

const (
	// Sine wave
	Sine WaveType = iota

	// Square wave
	Square

	// Pulse train
	Pulse

	// Triangle wave
	Triangle
)

var waveNames = [...]string{"sine", "square", "pulse", "triangle"}

// Validate returns an error if w is not a supported waveform kind
func (w WaveType) Validate() error {
	if w < Sine || w > Triangle {
		return fmt.Errorf("incorrect wave type %d", w)
	}
	return nil
}

func (w WaveType) String() string {
	if w.Validate() != nil {
		return fmt.Sprintf("WaveType(%d)", int(w))
	}
	return waveNames[w]
}

// ParseWaveType converts the string form of a waveform kind ("sine",
// "square", ...) to a WaveType, case insensitively
func ParseWaveType(s string) (WaveType, error) {
	s = strings.ToLower(s)
	for i, name := range waveNames {
		if s == name {
			return WaveType(i), nil
		}
	}
	return 0, fmt.Errorf("incorrect wave type %q", s)
}

// Generator describes the capability set of a two channel signal
// generator.  Concrete drivers translate these calls into their
// instrument's wire protocol; the calling application treats any
// implementation interchangeably.
type Generator interface {
	// Initialize opens the connection to the hardware and silences
	// both outputs
	Initialize() error

	// Close releases the connection to the hardware
	Close() error

	// ID queries the instrument identification string
	ID() (string, error)

	// EnableOutput turns the addressed output(s) on or off
	EnableOutput(ch Channel, on bool) error

	// SetFrequency configures the output frequency in Hz
	SetFrequency(ch Channel, hz float64) error

	// SetPhase configures the phase offset in degrees
	SetPhase(ch Channel, degrees float64) error

	// SetWaveType configures the waveform kind
	SetWaveType(ch Channel, wt WaveType) error

	// SetAmplitude configures the output amplitude in volts,
	// compensated for the configured load impedance
	SetAmplitude(ch Channel, volts float64) error

	// SetOffset configures the DC offset in volts, compensated for
	// the configured load impedance
	SetOffset(ch Channel, volts float64) error

	// SetLoadImpedance declares the load connected to the output in
	// ohms; use HiZ for a high impedance load
	SetLoadImpedance(ch Channel, ohms float64) error
}
