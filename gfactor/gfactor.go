// Package gfactor converts between magnetic field values and dimensionless
// g values for cw-EPR spectroscopy.
//
// Magnetic field values are expected in millitesla (mT) and microwave
// frequencies in gigahertz (GHz) throughout.
package gfactor

import "math"

// Physical constants (CODATA 2018).
const (
	// PlanckConstant in J s.
	PlanckConstant = 6.62607015e-34

	// BohrMagneton in J/T.
	BohrMagneton = 9.2740100783e-24

	// GLiLiF is the g value of the Li:LiF field standard,
	// g = 2.002293 +- 0.000002 (Rev. Sci. Instrum. 1989, 60, 2949).
	GLiLiF = 2.002293
)

// floatResolution is the smallest magnitude NotZero will return, matching
// the decimal resolution of an IEEE 754 double.
const floatResolution = 1e-15

// NotZero returns value, clamped away from zero to avoid NaN results in
// divisions. The sign is preserved.
func NotZero(value float64) float64 {
	return math.Copysign(math.Max(math.Abs(value), floatResolution), value)
}

// FieldToG converts a single magnetic field value (mT) to a g value for
// the given microwave frequency (GHz).
func FieldToG(fieldmT, mwFreqGHz float64) float64 {
	return PlanckConstant * mwFreqGHz * 1e9 /
		(BohrMagneton * NotZero(fieldmT) * 1e-3)
}

// GToField converts a single g value to a magnetic field value (mT) for
// the given microwave frequency (GHz).
func GToField(gValue, mwFreqGHz float64) float64 {
	return PlanckConstant * mwFreqGHz * 1e9 /
		(BohrMagneton * NotZero(gValue)) * 1e3
}

// FieldToGSlice converts magnetic field values (mT) to g values.
// A new slice is returned; the input is left untouched.
func FieldToGSlice(fieldmT []float64, mwFreqGHz float64) []float64 {
	out := make([]float64, len(fieldmT))
	for i, v := range fieldmT {
		out[i] = FieldToG(v, mwFreqGHz)
	}

	return out
}

// GToFieldSlice converts g values to magnetic field values (mT).
// A new slice is returned; the input is left untouched.
func GToFieldSlice(gValues []float64, mwFreqGHz float64) []float64 {
	out := make([]float64, len(gValues))
	for i, v := range gValues {
		out[i] = GToField(v, mwFreqGHz)
	}

	return out
}

// ResonanceField returns the field (mT) at which a spin with the given
// g value resonates at the given microwave frequency (GHz).
func ResonanceField(gValue, mwFreqGHz float64) float64 {
	return GToField(gValue, mwFreqGHz)
}
