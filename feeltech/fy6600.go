// Package feeltech provides an interface to FeelTech arbitrary waveform generators
package feeltech

import (
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"

	"github.com/bode-lab/awgctl/awg"
	"github.com/bode-lab/awgctl/comm"
)

const (
	// the FY6600 only talks at this rate
	baud = 115200

	// the FY6600 misbehaves if commands arrive back to back; half a
	// second between writes is reliable, a quarter second is not.
	// Some units may need more.
	settleTime = 500 * time.Millisecond

	// outputImpedance is the impedance of the generator's output stage, ohms
	outputImpedance = 50.0
)

// makeSerConf makes a new serial.Config with correct parity, baud, etc, set.
func makeSerConf(addr string) *serial.Config {
	return &serial.Config{
		Name:        addr,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 5 * time.Second}
}

// FY6600 is an interface to the function generator of the same name.
// Zero value is not useful, create with NewFY6600.  Not concurrent safe.
type FY6600 struct {
	*comm.RemoteDevice

	// Settle is the pause inserted after every command; the hardware
	// drops commands that arrive with less spacing than this
	Settle time.Duration

	sleep func(time.Duration)

	channelOn     [2]bool
	loadImpedance [2]float64
	vOutCoeff     [2]float64
}

// NewFY6600 creates a new FY6600 instance with the communication set up.
// No I/O occurs until Initialize is called.
func NewFY6600(addr string) *FY6600 {
	// commands end in a bare line feed; the UID reply ends CRLF, so
	// reading to LF and trimming covers both
	terms := &comm.Terminators{Rx: '\n', Tx: '\n'}
	rd := comm.NewRemoteDevice(addr, true, terms, makeSerConf(addr))
	return &FY6600{
		RemoteDevice:  &rd,
		Settle:        settleTime,
		sleep:         time.Sleep,
		loadImpedance: [2]float64{50, 50},
		vOutCoeff:     [2]float64{1, 1}}
}

// send writes one command and waits out the inter-command settle time
func (f *FY6600) send(cmd string) error {
	err := f.RemoteDevice.Send([]byte(cmd))
	if err != nil {
		return err
	}
	f.sleep(f.Settle)
	return nil
}

// Initialize opens the serial port and forces both outputs off
func (f *FY6600) Initialize() error {
	f.channelOn = [2]bool{false, false}
	err := f.Open()
	if err != nil {
		return err
	}
	return f.EnableOutput(awg.Both, false)
}

// ID queries the instrument identification string.  This is the only
// operation that reads a reply from the hardware.
func (f *FY6600) ID() (string, error) {
	err := f.send("UID")
	if err != nil {
		return "", err
	}
	resp, err := f.Recv()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp)), nil
}

func onOff(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// EnableOutput turns the addressed output(s) on or off.
//
// The FY6600 has no grouped enable; WMN sets channel 1 and WFN sets
// channel 2, so both commands are emitted carrying the full on/off state
// regardless of which selector was used.
func (f *FY6600) EnableOutput(ch awg.Channel, on bool) error {
	err := ch.Validate()
	if err != nil {
		return err
	}
	switch ch {
	case awg.Both:
		f.channelOn[0], f.channelOn[1] = on, on
	case awg.Channel1:
		f.channelOn[0] = on
	case awg.Channel2:
		f.channelOn[1] = on
	}
	err = f.send("WMN" + onOff(f.channelOn[0]))
	if err != nil {
		return err
	}
	return f.send("WFN" + onOff(f.channelOn[1]))
}

// formatFrequency renders hz in the FY6600's micro-hertz integer format:
// two decimal digits of precision with the point removed, then four
// trailing zeros.  1.0 => "1000000", 1000.0 => "1000000000".
func formatFrequency(hz float64) string {
	s := strconv.FormatFloat(hz, 'f', 2, 64)
	return strings.Replace(s, ".", "", 1) + "0000"
}

// SetFrequency configures the frequency of the addressed output(s) in Hz
func (f *FY6600) SetFrequency(ch awg.Channel, hz float64) error {
	err := ch.Validate()
	if err != nil {
		return err
	}
	v := formatFrequency(hz)
	if ch.Includes(awg.Channel1) {
		err = f.send("WMF" + v)
		if err != nil {
			return err
		}
	}
	if ch.Includes(awg.Channel2) {
		return f.send("WFF" + v)
	}
	return nil
}

// SetPhase configures the phase offset in degrees.
//
// This model only supports setting phase on channel 2; the channel
// argument is accepted and ignored, and the command always goes out as
// WFP.  Negative phases are normalized into [0, 360).
func (f *FY6600) SetPhase(ch awg.Channel, degrees float64) error {
	if degrees < 0 {
		degrees += 360
	}
	return f.send("WFP" + strconv.FormatFloat(degrees, 'f', -1, 64))
}

// SetWaveType configures the waveform kind of the addressed output(s).
//
// Only the sine command code is implemented; any supported wave type is
// accepted and coerced to sine (WMW00/WFW00).  Unsupported types are
// rejected before anything is written.
func (f *FY6600) SetWaveType(ch awg.Channel, wt awg.WaveType) error {
	err := ch.Validate()
	if err != nil {
		return err
	}
	err = wt.Validate()
	if err != nil {
		return err
	}
	if ch.Includes(awg.Channel1) {
		err = f.send("WMW00")
		if err != nil {
			return err
		}
	}
	if ch.Includes(awg.Channel2) {
		return f.send("WFW00")
	}
	return nil
}

// SetAmplitude configures the amplitude of the addressed output(s) in
// volts.  The commanded value is scaled up by the channel's voltage
// output coefficient so the requested amplitude lands on the configured
// load, see SetLoadImpedance.
func (f *FY6600) SetAmplitude(ch awg.Channel, volts float64) error {
	err := ch.Validate()
	if err != nil {
		return err
	}
	if ch.Includes(awg.Channel1) {
		v := strconv.FormatFloat(volts/f.vOutCoeff[0], 'f', 3, 64)
		err = f.send("WMA" + v)
		if err != nil {
			return err
		}
	}
	if ch.Includes(awg.Channel2) {
		v := strconv.FormatFloat(volts/f.vOutCoeff[1], 'f', 3, 64)
		return f.send("WFA" + v)
	}
	return nil
}

// SetOffset configures the DC offset of the addressed output(s) in
// volts, with the same load compensation as SetAmplitude
func (f *FY6600) SetOffset(ch awg.Channel, volts float64) error {
	err := ch.Validate()
	if err != nil {
		return err
	}
	if ch.Includes(awg.Channel1) {
		v := strconv.FormatFloat(volts/f.vOutCoeff[0], 'f', -1, 64)
		err = f.send("WMO" + v)
		if err != nil {
			return err
		}
	}
	if ch.Includes(awg.Channel2) {
		v := strconv.FormatFloat(volts/f.vOutCoeff[1], 'f', -1, 64)
		return f.send("WFO" + v)
	}
	return nil
}

// SetLoadImpedance declares the load impedance connected to the
// addressed output(s) in ohms, default 50.  Nothing is sent to the
// hardware; the value only recalculates the voltage output coefficient
// used to scale amplitude and offset commands.
//
// The coefficient models the divider between the generator's 50 ohm
// output stage and the load: z/(z+50), or 1 for a Hi-Z load.
func (f *FY6600) SetLoadImpedance(ch awg.Channel, ohms float64) error {
	err := ch.Validate()
	if err != nil {
		return err
	}
	coeff := 1.0
	if ohms != awg.HiZ {
		coeff = ohms / (ohms + outputImpedance)
	}
	if ch.Includes(awg.Channel1) {
		f.loadImpedance[0] = ohms
		f.vOutCoeff[0] = coeff
	}
	if ch.Includes(awg.Channel2) {
		f.loadImpedance[1] = ohms
		f.vOutCoeff[1] = coeff
	}
	return nil
}
