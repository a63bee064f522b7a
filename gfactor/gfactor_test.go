package gfactor

import (
	"math"
	"testing"
)

func TestFieldToGRoundTrip(t *testing.T) {
	fields := []float64{330.0, 335.5, 340.0, 351.2}

	const freq = 9.68

	gValues := FieldToGSlice(fields, freq)

	back := GToFieldSlice(gValues, freq)
	for i := range fields {
		if diff := math.Abs(back[i] - fields[i]); diff > 1e-9 {
			t.Errorf("index %d: round trip drifted by %v", i, diff)
		}
	}
}

func TestFieldToGFreeElectron(t *testing.T) {
	// A free electron (g ~ 2.0023) at X band (9.5 GHz) resonates around
	// 339 mT.
	g := FieldToG(338.9, 9.5)
	if g < 1.9 || g > 2.1 {
		t.Errorf("implausible g value %v", g)
	}
}

func TestResonanceFieldLiLiF(t *testing.T) {
	field := ResonanceField(GLiLiF, 9.5)
	if field < 330 || field > 350 {
		t.Errorf("implausible resonance field %v mT", field)
	}
}

func TestNotZero(t *testing.T) {
	if v := NotZero(0); v <= 0 {
		t.Errorf("NotZero(0) = %v, want positive", v)
	}

	if v := NotZero(-0.0); v > 0 {
		t.Errorf("NotZero(-0) = %v, want negative", v)
	}

	if v := NotZero(1.5); v != 1.5 {
		t.Errorf("NotZero(1.5) = %v, want 1.5", v)
	}

	if v := NotZero(-1e-20); v != -floatResolution {
		t.Errorf("NotZero(-1e-20) = %v, want %v", v, -floatResolution)
	}
}
