// Command awgtest exercises every operation of a signal generator from
// the bench, to verify cabling and command spacing before trusting it
// in a measurement.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/theckman/yacspin"

	"github.com/bode-lab/awgctl/awg"
	"github.com/bode-lab/awgctl/feeltech"
	"github.com/bode-lab/awgctl/util"
)

var (
	addr      = flag.String("addr", "/dev/ttyUSB0", "serial port the generator is connected to")
	mock      = flag.Bool("mock", false, "exercise the in-memory mock instead of hardware")
	amplitude = flag.Float64("amplitude", 1.0, "test amplitude, volts (clamped to 0..20)")
	load      = flag.Float64("load", 50, "load impedance, ohms; 0 means Hi-Z")
	settle    = flag.Float64("settle", 0.5, "seconds between commands")
)

type step struct {
	msg string
	fcn func() error
}

func main() {
	flag.Parse()

	var gen awg.Generator
	if *mock {
		gen = awg.NewMock()
	} else {
		fy := feeltech.NewFY6600(*addr)
		fy.Settle = util.SecsToDuration(*settle)
		gen = fy
	}

	volts := util.Clamp(*amplitude, 0, 20)
	z := *load
	if z == 0 {
		z = awg.HiZ
	}

	cfg := yacspin.Config{
		Frequency: 100 * time.Millisecond,
		CharSet:   yacspin.CharSets[14],
		Suffix:    " awg checkout",
	}
	spinner, err := yacspin.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	err = gen.Initialize()
	if err != nil {
		log.Fatal("initialize: ", err)
	}
	defer gen.Close()

	id, err := gen.ID()
	if err != nil {
		log.Fatal("identify: ", err)
	}
	fmt.Println("connected to", id)

	steps := []step{
		{"declaring load impedance", func() error { return gen.SetLoadImpedance(awg.Both, z) }},
		{"selecting sine output", func() error { return gen.SetWaveType(awg.Both, awg.Sine) }},
		{"setting amplitude", func() error { return gen.SetAmplitude(awg.Both, volts) }},
		{"zeroing offset", func() error { return gen.SetOffset(awg.Both, 0) }},
		{"phase to 0 deg", func() error { return gen.SetPhase(awg.Channel2, 0) }},
		{"100 Hz", func() error { return gen.SetFrequency(awg.Both, 100) }},
		{"enabling outputs", func() error { return gen.EnableOutput(awg.Both, true) }},
		{"1 kHz", func() error { return gen.SetFrequency(awg.Both, 1000) }},
		{"10 kHz", func() error { return gen.SetFrequency(awg.Both, 10e3) }},
		{"disabling outputs", func() error { return gen.EnableOutput(awg.Both, false) }},
	}

	spinner.Start()
	for _, s := range steps {
		spinner.Message(s.msg)
		err = s.fcn()
		if err != nil {
			spinner.Stop()
			log.Fatalf("%s: %v", s.msg, err)
		}
	}
	spinner.Stop()
	fmt.Println("all operations completed")
}
