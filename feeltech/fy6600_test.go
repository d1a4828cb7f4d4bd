package feeltech

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bode-lab/awgctl/awg"
)

// wireRecorder is an in-memory stand-in for the serial port.  Writes are
// captured verbatim (terminator included); reads drain the reply buffer.
type wireRecorder struct {
	writes []string
	reply  *bytes.Buffer
}

func (w *wireRecorder) Write(p []byte) (int, error) {
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func (w *wireRecorder) Read(p []byte) (int, error) {
	return w.reply.Read(p)
}

func (w *wireRecorder) Close() error { return nil }

func newTestGen() (*FY6600, *wireRecorder, *int) {
	gen := NewFY6600("")
	wire := &wireRecorder{reply: &bytes.Buffer{}}
	gen.Conn = wire
	sleeps := 0
	gen.sleep = func(time.Duration) { sleeps++ }
	return gen, wire, &sleeps
}

func TestFrequencyFormatting(t *testing.T) {
	cases := []struct {
		hz   float64
		want string
	}{
		{1.0, "1000000"},
		{1000.0, "1000000000"},
		{1e6, "1000000000000"},
		{0.25, "0250000"},
		{123.45, "123450000"},
	}
	for _, tc := range cases {
		got := formatFrequency(tc.hz)
		if got != tc.want {
			t.Errorf("formatFrequency(%v) = %q, expected %q", tc.hz, got, tc.want)
		}
	}
}

func TestSetFrequencyChannelRouting(t *testing.T) {
	cases := []struct {
		ch   awg.Channel
		want []string
	}{
		{awg.Channel1, []string{"WMF1000000\n"}},
		{awg.Channel2, []string{"WFF1000000\n"}},
		{awg.Both, []string{"WMF1000000\n", "WFF1000000\n"}},
	}
	for _, tc := range cases {
		gen, wire, _ := newTestGen()
		err := gen.SetFrequency(tc.ch, 1.0)
		if err != nil {
			t.Fatalf("SetFrequency(%v) errored: %v", tc.ch, err)
		}
		if diff := cmp.Diff(tc.want, wire.writes); diff != "" {
			t.Errorf("channel %v command mismatch (-want +got):\n%s", tc.ch, diff)
		}
	}
}

func TestInvalidChannelWritesNothing(t *testing.T) {
	gen, wire, _ := newTestGen()
	ops := map[string]func() error{
		"EnableOutput":     func() error { return gen.EnableOutput(awg.Channel(3), true) },
		"SetFrequency":     func() error { return gen.SetFrequency(awg.Channel(-1), 1) },
		"SetWaveType":      func() error { return gen.SetWaveType(awg.Channel(7), awg.Sine) },
		"SetAmplitude":     func() error { return gen.SetAmplitude(awg.Channel(3), 1) },
		"SetOffset":        func() error { return gen.SetOffset(awg.Channel(3), 1) },
		"SetLoadImpedance": func() error { return gen.SetLoadImpedance(awg.Channel(3), 50) },
	}
	for name, op := range ops {
		err := op()
		if err != awg.ErrUnknownChannel {
			t.Errorf("%s: expected ErrUnknownChannel, got %v", name, err)
		}
	}
	if len(wire.writes) != 0 {
		t.Errorf("expected no writes after validation failures, got %v", wire.writes)
	}
}

func TestLoadImpedanceCoefficients(t *testing.T) {
	cases := []struct {
		ohms  float64
		coeff float64
	}{
		{50.0, 0.5},
		{awg.HiZ, 1.0},
		{150.0, 0.75},
	}
	for _, tc := range cases {
		gen, _, _ := newTestGen()
		err := gen.SetLoadImpedance(awg.Channel1, tc.ohms)
		if err != nil {
			t.Fatalf("SetLoadImpedance(%v) errored: %v", tc.ohms, err)
		}
		if gen.vOutCoeff[0] != tc.coeff {
			t.Errorf("load %v ohm: coefficient %v, expected %v", tc.ohms, gen.vOutCoeff[0], tc.coeff)
		}
	}
}

func TestLoadImpedanceBothChannels(t *testing.T) {
	gen, _, _ := newTestGen()
	err := gen.SetLoadImpedance(awg.Both, 150)
	if err != nil {
		t.Fatal(err)
	}
	if gen.vOutCoeff[0] != 0.75 || gen.vOutCoeff[1] != 0.75 {
		t.Errorf("expected both coefficients 0.75, got %v", gen.vOutCoeff)
	}
}

func TestAmplitudeCompensation(t *testing.T) {
	gen, wire, _ := newTestGen()
	err := gen.SetLoadImpedance(awg.Channel1, 50)
	if err != nil {
		t.Fatal(err)
	}
	err = gen.SetAmplitude(awg.Channel1, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"WMA2.000\n"}
	if diff := cmp.Diff(want, wire.writes); diff != "" {
		t.Errorf("amplitude command mismatch (-want +got):\n%s", diff)
	}
}

func TestAmplitudePerChannelCoefficients(t *testing.T) {
	gen, wire, _ := newTestGen()
	gen.SetLoadImpedance(awg.Channel1, 50)
	gen.SetLoadImpedance(awg.Channel2, awg.HiZ)
	err := gen.SetAmplitude(awg.Both, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"WMA2.000\n", "WFA1.000\n"}
	if diff := cmp.Diff(want, wire.writes); diff != "" {
		t.Errorf("amplitude commands mismatch (-want +got):\n%s", diff)
	}
}

func TestOffsetCompensationAndFormat(t *testing.T) {
	gen, wire, _ := newTestGen()
	err := gen.SetLoadImpedance(awg.Channel1, 50)
	if err != nil {
		t.Fatal(err)
	}
	err = gen.SetOffset(awg.Channel1, 0.33)
	if err != nil {
		t.Fatal(err)
	}
	// 0.33 / 0.5, shortest float form, no fixed width
	want := []string{"WMO0.66\n"}
	if diff := cmp.Diff(want, wire.writes); diff != "" {
		t.Errorf("offset command mismatch (-want +got):\n%s", diff)
	}
}

func TestPhaseNormalization(t *testing.T) {
	gen, wire, _ := newTestGen()
	err := gen.SetPhase(awg.Channel2, -10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"WFP350\n"}
	if diff := cmp.Diff(want, wire.writes); diff != "" {
		t.Errorf("phase command mismatch (-want +got):\n%s", diff)
	}
}

func TestPhaseAlwaysChannel2(t *testing.T) {
	gen, wire, _ := newTestGen()
	err := gen.SetPhase(awg.Channel1, 90)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"WFP90\n"}
	if diff := cmp.Diff(want, wire.writes); diff != "" {
		t.Errorf("phase command mismatch (-want +got):\n%s", diff)
	}
}

func TestEnableOutputBoth(t *testing.T) {
	gen, wire, sleeps := newTestGen()
	err := gen.EnableOutput(awg.Both, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"WMN1\n", "WFN1\n"}
	if diff := cmp.Diff(want, wire.writes); diff != "" {
		t.Errorf("enable commands mismatch (-want +got):\n%s", diff)
	}
	if !gen.channelOn[0] || !gen.channelOn[1] {
		t.Errorf("expected both channel flags on, got %v", gen.channelOn)
	}
	if *sleeps != 2 {
		t.Errorf("expected one settle per write (2), got %d", *sleeps)
	}
}

func TestEnableOutputSingleChannelEmitsFullState(t *testing.T) {
	gen, wire, _ := newTestGen()
	err := gen.EnableOutput(awg.Channel2, true)
	if err != nil {
		t.Fatal(err)
	}
	// channel 1 stays off but its command still goes out
	want := []string{"WMN0\n", "WFN1\n"}
	if diff := cmp.Diff(want, wire.writes); diff != "" {
		t.Errorf("enable commands mismatch (-want +got):\n%s", diff)
	}
	if gen.channelOn[0] || !gen.channelOn[1] {
		t.Errorf("expected flags [false true], got %v", gen.channelOn)
	}
}

func TestWaveTypeCoercedToSine(t *testing.T) {
	for _, wt := range []awg.WaveType{awg.Sine, awg.Square, awg.Pulse, awg.Triangle} {
		gen, wire, _ := newTestGen()
		err := gen.SetWaveType(awg.Both, wt)
		if err != nil {
			t.Fatalf("SetWaveType(%v) errored: %v", wt, err)
		}
		want := []string{"WMW00\n", "WFW00\n"}
		if diff := cmp.Diff(want, wire.writes); diff != "" {
			t.Errorf("wave type %v commands mismatch (-want +got):\n%s", wt, diff)
		}
	}
}

func TestWaveTypeRejectedBeforeWrite(t *testing.T) {
	gen, wire, _ := newTestGen()
	err := gen.SetWaveType(awg.Channel1, awg.WaveType(99))
	if err == nil {
		t.Fatal("expected an error for unsupported wave type")
	}
	if len(wire.writes) != 0 {
		t.Errorf("expected no writes, got %v", wire.writes)
	}
}

func TestID(t *testing.T) {
	gen, wire, _ := newTestGen()
	wire.reply.WriteString("FY6600-60M V2.2\r\n")
	id, err := gen.ID()
	if err != nil {
		t.Fatal(err)
	}
	if id != "FY6600-60M V2.2" {
		t.Errorf("expected trimmed ID, got %q", id)
	}
	want := []string{"UID\n"}
	if diff := cmp.Diff(want, wire.writes); diff != "" {
		t.Errorf("ID query mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultsMatchHardwareModel(t *testing.T) {
	gen := NewFY6600("/dev/ttyUSB0")
	if gen.Settle != 500*time.Millisecond {
		t.Errorf("expected 500ms settle default, got %v", gen.Settle)
	}
	if gen.loadImpedance != [2]float64{50, 50} {
		t.Errorf("expected 50 ohm default loads, got %v", gen.loadImpedance)
	}
	if gen.vOutCoeff != [2]float64{1, 1} {
		t.Errorf("expected unity default coefficients, got %v", gen.vOutCoeff)
	}
}
