// Package fungen provides an HTTP interface to function generators
package fungen

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bode-lab/awgctl/awg"
	"github.com/bode-lab/awgctl/generichttp"
)

// ChannelFloat is the JSON envelope for a channel-addressed float value.
// chan 0 addresses both channels, 1 and 2 a single one.
type ChannelFloat struct {
	Chan int     `json:"chan"`
	F64  float64 `json:"f64"`
}

// ChannelBool is the JSON envelope for a channel-addressed bool value
type ChannelBool struct {
	Chan int  `json:"chan"`
	Bool bool `json:"bool"`
}

// ChannelString is the JSON envelope for a channel-addressed string value
type ChannelString struct {
	Chan int    `json:"chan"`
	Str  string `json:"str"`
}

// statusFor distinguishes bad user input from hardware failures
func statusFor(err error) int {
	if errors.Is(err, awg.ErrUnknownChannel) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func setChannelFloat(fcn func(awg.Channel, float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cf := ChannelFloat{}
		err := json.NewDecoder(r.Body).Decode(&cf)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = fcn(awg.Channel(cf.Chan), cf.F64)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPFunctionGenerator wraps a function generator in an HTTP route table
type HTTPFunctionGenerator struct {
	// Gen is the underlying generator
	Gen awg.Generator

	// RouteTable maps method-paths to handlers
	RouteTable generichttp.RouteTable
}

// NewHTTPFunctionGenerator returns a new HTTP wrapper with the route
// table pre-configured
func NewHTTPFunctionGenerator(g awg.Generator) HTTPFunctionGenerator {
	w := HTTPFunctionGenerator{Gen: g}
	rt := generichttp.RouteTable{
		generichttp.MethodPath{Method: http.MethodGet, Path: "/id"}:              generichttp.GetString(g.ID),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/output"}:         w.SetOutput,
		generichttp.MethodPath{Method: http.MethodPost, Path: "/frequency"}:      setChannelFloat(g.SetFrequency),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/phase"}:          setChannelFloat(g.SetPhase),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/wave-type"}:      w.SetWaveType,
		generichttp.MethodPath{Method: http.MethodPost, Path: "/amplitude"}:      setChannelFloat(g.SetAmplitude),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/offset"}:         setChannelFloat(g.SetOffset),
		generichttp.MethodPath{Method: http.MethodPost, Path: "/load-impedance"}: setChannelFloat(g.SetLoadImpedance),
	}
	w.RouteTable = rt
	return w
}

// RT satisfies generichttp.HTTPer
func (h HTTPFunctionGenerator) RT() generichttp.RouteTable {
	return h.RouteTable
}

// SetOutput turns a channel's output on or off from json {chan, bool}
func (h HTTPFunctionGenerator) SetOutput(w http.ResponseWriter, r *http.Request) {
	cb := ChannelBool{}
	err := json.NewDecoder(r.Body).Decode(&cb)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Gen.EnableOutput(awg.Channel(cb.Chan), cb.Bool)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SetWaveType configures the waveform kind from json {chan, str},
// str being the lowercase waveform name ("sine", "square", ...)
func (h HTTPFunctionGenerator) SetWaveType(w http.ResponseWriter, r *http.Request) {
	cs := ChannelString{}
	err := json.NewDecoder(r.Body).Decode(&cs)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	wt, err := awg.ParseWaveType(cs.Str)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Gen.SetWaveType(awg.Channel(cs.Chan), wt)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}
