package util_test

import (
	"testing"

	"github.com/omc-lab/polctl/util"
)

func TestLimiterInsideRange(t *testing.T) {
	l := util.Limiter{Min: -180, Max: 180}
	if !l.Check(0) {
		t.Errorf("expected 0 to be within %v", l)
	}
}

func TestLimiterBoundariesInclusive(t *testing.T) {
	l := util.Limiter{Min: -180, Max: 180}
	for _, v := range []float64{-180, 180} {
		if !l.Check(v) {
			t.Errorf("expected boundary value %f to be allowed by %v", v, l)
		}
	}
}

func TestLimiterOutsideRange(t *testing.T) {
	l := util.Limiter{Min: -180, Max: 180}
	for _, v := range []float64{-180.0001, 200, 1e9} {
		if l.Check(v) {
			t.Errorf("expected %f to be rejected by %v", v, l)
		}
	}
}

func TestLimiterValid(t *testing.T) {
	if !(util.Limiter{Min: -1, Max: 1}).Valid() {
		t.Error("expected ordered limiter to be valid")
	}
	if (util.Limiter{Min: 1, Max: -1}).Valid() {
		t.Error("expected inverted limiter to be invalid")
	}
}

func TestClampHigh(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = 20.
	)
	clamped := util.Clamp(input, low, high)
	if clamped == input {
		t.Errorf("expected out of range value %f to be clipped to %f < x < %f, got %f", input, low, high, clamped)
	}
}

func TestClampLow(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = -1.
	)
	clamped := util.Clamp(input, low, high)
	if clamped == input {
		t.Errorf("expected out of range value %f to be clipped to %f < x < %f, got %f", input, low, high, clamped)
	}
}
