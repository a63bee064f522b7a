// Package interp provides linear interpolation over monotonically
// increasing grids, used for axis resampling and background subtraction.
package interp

// Linear evaluates the piecewise-linear function defined by the sample
// points (xp, fp) at every position in x. xp must be monotonically
// increasing. Positions outside the grid are clamped to the boundary
// values, matching the usual convention for resampling measured spectra.
func Linear(x, xp, fp []float64) []float64 {
	out := make([]float64, len(x))

	if len(xp) == 0 || len(xp) != len(fp) {
		return out
	}

	for i, v := range x {
		out[i] = At(v, xp, fp)
	}

	return out
}

// At evaluates the piecewise-linear function defined by (xp, fp) at a
// single position.
func At(x float64, xp, fp []float64) float64 {
	n := len(xp)

	switch {
	case n == 0:
		return 0
	case x <= xp[0]:
		return fp[0]
	case x >= xp[n-1]:
		return fp[n-1]
	}

	// Binary search for the interval containing x.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xp[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}

	span := xp[hi] - xp[lo]
	if span == 0 {
		return fp[lo]
	}

	frac := (x - xp[lo]) / span

	return fp[lo] + frac*(fp[hi]-fp[lo])
}

// Linspace returns num evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}

	out := make([]float64, num)
	if num == 1 {
		out[0] = start
		return out
	}

	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}

	// Keep the endpoint exact in spite of accumulated rounding.
	out[num-1] = stop

	return out
}
