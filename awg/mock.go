package awg

import "sync"

// MockChannel is the recorded state of one output of a Mock
type MockChannel struct {
	On        bool
	Frequency float64
	Phase     float64
	Wave      WaveType
	Amplitude float64
	Offset    float64
	Load      float64
}

// Mock is an in-memory Generator used when no hardware is attached.
// It records the most recent value of every parameter per channel.
type Mock struct {
	sync.Mutex
	Channels [2]MockChannel

	initialized bool
}

// NewMock returns a new mock generator with 50 ohm loads on both channels
func NewMock() *Mock {
	m := &Mock{}
	for i := range m.Channels {
		m.Channels[i].Load = 50
	}
	return m
}

// Initialize marks the mock connected and both outputs off
func (m *Mock) Initialize() error {
	m.Lock()
	defer m.Unlock()
	m.initialized = true
	m.Channels[0].On = false
	m.Channels[1].On = false
	return nil
}

// Close marks the mock disconnected
func (m *Mock) Close() error {
	m.Lock()
	defer m.Unlock()
	m.initialized = false
	return nil
}

// ID returns a fixed identification string
func (m *Mock) ID() (string, error) {
	return "MOCK AWG", nil
}

func (m *Mock) each(ch Channel, fn func(c *MockChannel)) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	m.Lock()
	defer m.Unlock()
	if ch.Includes(Channel1) {
		fn(&m.Channels[0])
	}
	if ch.Includes(Channel2) {
		fn(&m.Channels[1])
	}
	return nil
}

// EnableOutput turns the addressed output(s) on or off
func (m *Mock) EnableOutput(ch Channel, on bool) error {
	return m.each(ch, func(c *MockChannel) { c.On = on })
}

// SetFrequency stores the output frequency in Hz
func (m *Mock) SetFrequency(ch Channel, hz float64) error {
	return m.each(ch, func(c *MockChannel) { c.Frequency = hz })
}

// SetPhase stores the phase in degrees
func (m *Mock) SetPhase(ch Channel, degrees float64) error {
	return m.each(ch, func(c *MockChannel) { c.Phase = degrees })
}

// SetWaveType stores the waveform kind
func (m *Mock) SetWaveType(ch Channel, wt WaveType) error {
	if err := wt.Validate(); err != nil {
		return err
	}
	return m.each(ch, func(c *MockChannel) { c.Wave = wt })
}

// SetAmplitude stores the amplitude in volts
func (m *Mock) SetAmplitude(ch Channel, volts float64) error {
	return m.each(ch, func(c *MockChannel) { c.Amplitude = volts })
}

// SetOffset stores the DC offset in volts
func (m *Mock) SetOffset(ch Channel, volts float64) error {
	return m.each(ch, func(c *MockChannel) { c.Offset = volts })
}

// SetLoadImpedance stores the load in ohms
func (m *Mock) SetLoadImpedance(ch Channel, ohms float64) error {
	return m.each(ch, func(c *MockChannel) { c.Load = ohms })
}
