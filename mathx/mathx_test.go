package mathx

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	cases := []struct {
		x, unit, want float64
	}{
		{1.04, 0.1, 1.0},
		{1.06, 0.1, 1.1},
		{123.456, 1, 123},
	}
	for _, tc := range cases {
		got := Round(tc.x, tc.unit)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Round(%v, %v) = %v, expected %v", tc.x, tc.unit, got, tc.want)
		}
	}
}

func TestLogspace(t *testing.T) {
	got := Logspace(10, 1000, 3)
	want := []float64{10, 100, 1000}
	if len(got) != len(want) {
		t.Fatalf("length %d, expected %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("point %d = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestLogspaceEndpoints(t *testing.T) {
	got := Logspace(20, 20e3, 50)
	if math.Abs(got[0]-20) > 1e-9 {
		t.Errorf("first point %v, expected 20", got[0])
	}
	if math.Abs(got[49]-20e3) > 1e-6 {
		t.Errorf("last point %v, expected 20000", got[49])
	}
}

func TestLogspaceSinglePoint(t *testing.T) {
	got := Logspace(440, 880, 1)
	if len(got) != 1 || got[0] != 440 {
		t.Errorf("single point sequence %v, expected [440]", got)
	}
}
