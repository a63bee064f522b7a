// Package polyfit provides least-squares polynomial fitting and evaluation
// used by baseline determination and correction.
package polyfit

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadFit is returned when a fit cannot be computed from the given input.
var ErrBadFit = errors.New("polyfit: cannot fit polynomial")

// Fit computes the least-squares polynomial of the given order through the
// sample points (x, y). Coefficients are returned highest order first,
// so Eval(coeffs, v) evaluates the fitted polynomial at v.
func Fit(x, y []float64, order int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: length mismatch %d vs %d",
			ErrBadFit, len(x), len(y))
	}

	if order < 0 {
		return nil, fmt.Errorf("%w: negative order %d", ErrBadFit, order)
	}

	terms := order + 1
	if len(x) < terms {
		return nil, fmt.Errorf("%w: %d points for order %d",
			ErrBadFit, len(x), order)
	}

	// Normal equations of the Vandermonde system. The orders in use here
	// (baselines of order 0..3) keep the system small and well behaved.
	ata := make([][]float64, terms)
	aty := make([]float64, terms)

	for i := range ata {
		ata[i] = make([]float64, terms)
	}

	for k := range x {
		powers := make([]float64, terms)

		p := 1.0
		for i := range powers {
			powers[i] = p
			p *= x[k]
		}

		for i := range terms {
			aty[i] += powers[i] * y[k]
			for j := range terms {
				ata[i][j] += powers[i] * powers[j]
			}
		}
	}

	ascending, err := solve(ata, aty)
	if err != nil {
		return nil, err
	}

	// Highest order first, matching the convention of the callers.
	coeffs := make([]float64, terms)
	for i := range coeffs {
		coeffs[i] = ascending[terms-1-i]
	}

	return coeffs, nil
}

// Eval evaluates a polynomial with coefficients given highest order first
// at position x, using Horner's scheme.
func Eval(coeffs []float64, x float64) float64 {
	result := 0.0
	for _, c := range coeffs {
		result = result*x + c
	}

	return result
}

// EvalSlice evaluates the polynomial at every position in x.
func EvalSlice(coeffs, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = Eval(coeffs, v)
	}

	return out
}

// solve performs Gaussian elimination with partial pivoting on the dense
// system a*x = b. Both inputs are modified.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)

	for col := range n {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}

		if math.Abs(a[pivot][col]) < 1e-300 {
			return nil, fmt.Errorf("%w: singular system", ErrBadFit)
		}

		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}

			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for col := row + 1; col < n; col++ {
			sum -= a[row][col] * x[col]
		}

		x[row] = sum / a[row][row]
	}

	return x, nil
}
