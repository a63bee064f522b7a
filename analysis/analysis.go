// Package analysis provides the analysis steps for cw-EPR datasets:
// routines that operate on a dataset and yield a result independent of it,
// such as integration, linewidth determination or the field correction
// value from a field standard measurement.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/gfactor"
	"github.com/openepr/cwepr/internal/polyfit"
)

var (
	// ErrEmptyDataset is returned when a step is applied to a dataset
	// without data.
	ErrEmptyDataset = errors.New("analysis: dataset holds no data")

	// ErrMissingFrequency is returned when a step needs the microwave
	// frequency and the metadata carries none.
	ErrMissingFrequency = errors.New("analysis: no microwave frequency in metadata")
)

// FieldCorrectionValue determines the correction value for a field
// correction from a field standard (Li:LiF) spectrum: the difference
// between the resonance field expected for g(Li:LiF) at the recorded
// microwave frequency and the zero crossing of the derivative signal
// between its extrema.
func FieldCorrectionValue(d *dataset.Dataset) (float64, error) {
	if d.Data.Points() == 0 {
		return 0, ErrEmptyDataset
	}

	mwFreq := d.Metadata.Bridge.MWFrequency.Value
	if mwFreq <= 0 {
		return 0, ErrMissingFrequency
	}

	axis := d.Data.Axes[0].Values
	row := d.Data.Primary()

	indexMax := argMax(row)
	indexMin := argMin(row)

	lo, hi := indexMax, indexMin
	if lo > hi {
		lo, hi = hi, lo
	}

	experimental, err := zeroCrossing(axis[lo:hi+1], row[lo:hi+1])
	if err != nil {
		return 0, err
	}

	expected := gfactor.ResonanceField(gfactor.GLiLiF, mwFreq)

	return expected - experimental, nil
}

// zeroCrossing locates the sign change of a derivative signal between its
// extrema by linear interpolation.
func zeroCrossing(x, y []float64) (float64, error) {
	for i := 1; i < len(y); i++ {
		if y[i-1] == 0 {
			return x[i-1], nil
		}

		if y[i-1]*y[i] < 0 {
			fraction := y[i-1] / (y[i-1] - y[i])
			return x[i-1] + fraction*(x[i]-x[i-1]), nil
		}
	}

	return 0, fmt.Errorf("analysis: no zero crossing between extrema")
}

// BaselineConfig controls the polynomial baseline fit.
type BaselineConfig struct {
	// Order of the polynomial. Defaults to 0.
	Order int

	// Percentage of the spectrum on each side treated as baseline.
	// Defaults to 10.
	Percentage float64
}

// FitBaseline fits a polynomial to the outer parts of the primary trace
// and returns its coefficients, ordered from the highest power down. The
// middle part of the spectrum, carrying the signal, is left out.
func FitBaseline(d *dataset.Dataset, cfg BaselineConfig) ([]float64, error) {
	if cfg.Order < 0 {
		return nil, fmt.Errorf("analysis: invalid baseline order %d", cfg.Order)
	}

	if cfg.Percentage == 0 {
		cfg.Percentage = 10
	}

	if cfg.Percentage < 0 || cfg.Percentage > 50 {
		return nil, fmt.Errorf("analysis: invalid baseline percentage %g",
			cfg.Percentage)
	}

	if d.Data.Points() == 0 {
		return nil, ErrEmptyDataset
	}

	axis := d.Data.Axes[0].Values
	row := d.Data.Primary()

	perSide := int(math.Ceil(float64(len(row)) * cfg.Percentage / 100))
	edgeX := edgePoints(axis, perSide)
	edgeY := edgePoints(row, perSide)

	coeffs, err := polyfit.Fit(edgeX, edgeY, cfg.Order)
	if err != nil {
		return nil, fmt.Errorf("analysis: baseline fit: %w", err)
	}

	return coeffs, nil
}

func edgePoints(data []float64, perSide int) []float64 {
	out := make([]float64, 0, 2*(perSide+1))
	out = append(out, data[:perSide+1]...)
	out = append(out, data[len(data)-perSide-1:]...)

	return out
}

func argMax(data []float64) int {
	index := 0
	for i, v := range data {
		if v > data[index] {
			index = i
		}
	}

	return index
}

func argMin(data []float64) int {
	index := 0
	for i, v := range data {
		if v < data[index] {
			index = i
		}
	}

	return index
}
