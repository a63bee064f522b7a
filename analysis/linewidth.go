package analysis

import (
	"fmt"
	"math"

	"github.com/openepr/cwepr/dataset"
)

// PeakToPeakLinewidth determines the line width of a derivative spectrum
// as the field distance between its maximum and its minimum, which yields
// acceptable results for a symmetric signal.
func PeakToPeakLinewidth(d *dataset.Dataset) (float64, error) {
	if d.Data.Points() == 0 {
		return 0, ErrEmptyDataset
	}

	axis := d.Data.Axes[0].Values
	row := d.Data.Primary()

	return math.Abs(axis[argMin(row)] - axis[argMax(row)]), nil
}

// FWHMLinewidth determines the full width at half maximum of an
// absorption spectrum. The crossings of the half-maximum level on both
// sides of the peak are located by linear interpolation.
func FWHMLinewidth(d *dataset.Dataset) (float64, error) {
	if d.Data.Points() == 0 {
		return 0, ErrEmptyDataset
	}

	axis := d.Data.Axes[0].Values
	row := d.Data.Primary()

	peak := argMax(row)
	half := row[peak] / 2

	left, ok := crossingLeft(axis, row, peak, half)
	if !ok {
		return 0, fmt.Errorf("analysis: no half-maximum crossing left of the peak")
	}

	right, ok := crossingRight(axis, row, peak, half)
	if !ok {
		return 0, fmt.Errorf("analysis: no half-maximum crossing right of the peak")
	}

	return right - left, nil
}

func crossingLeft(x, y []float64, peak int, level float64) (float64, bool) {
	for i := peak; i > 0; i-- {
		if y[i-1] <= level && y[i] >= level {
			return interpolateCrossing(x[i-1], x[i], y[i-1], y[i], level), true
		}
	}

	return 0, false
}

func crossingRight(x, y []float64, peak int, level float64) (float64, bool) {
	for i := peak; i < len(y)-1; i++ {
		if y[i] >= level && y[i+1] <= level {
			return interpolateCrossing(x[i], x[i+1], y[i], y[i+1], level), true
		}
	}

	return 0, false
}

func interpolateCrossing(x0, x1, y0, y1, level float64) float64 {
	if y1 == y0 {
		return x0
	}

	return x0 + (level-y0)/(y1-y0)*(x1-x0)
}

// SNRConfig controls the signal-to-noise determination.
type SNRConfig struct {
	// Percentage of the spectrum on each side treated as pure noise.
	// Defaults to 10.
	Percentage float64
}

// SignalToNoise determines the signal-to-noise ratio of the primary trace
// as the ratio of the peak-to-peak amplitude of the full spectrum to the
// peak-to-peak amplitude of its outer parts, which are assumed to carry
// noise only.
func SignalToNoise(d *dataset.Dataset, cfg SNRConfig) (float64, error) {
	if cfg.Percentage == 0 {
		cfg.Percentage = 10
	}

	if cfg.Percentage < 0 || cfg.Percentage > 50 {
		return 0, fmt.Errorf("analysis: invalid noise percentage %g", cfg.Percentage)
	}

	if d.Data.Points() == 0 {
		return 0, ErrEmptyDataset
	}

	row := d.Data.Primary()
	perSide := int(math.Ceil(float64(len(row)) * cfg.Percentage / 100))

	noise := edgePoints(row, perSide-1)

	noiseAmplitude := amplitude(noise)
	if noiseAmplitude == 0 {
		return 0, fmt.Errorf("analysis: noise amplitude is zero")
	}

	return amplitude(row) / noiseAmplitude, nil
}

func amplitude(data []float64) float64 {
	return data[argMax(data)] - data[argMin(data)]
}
