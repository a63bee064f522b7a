package processing

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/gfactor"
)

// NormalizationKind selects the reference value a trace is divided by.
type NormalizationKind int

const (
	// NormalizeMaximum divides by the maximum value.
	NormalizeMaximum NormalizationKind = iota

	// NormalizeMinimum divides by the absolute value of the minimum.
	NormalizeMinimum

	// NormalizeMagnitude divides by the peak-to-peak amplitude.
	NormalizeMagnitude

	// NormalizeArea divides by the area under the absolute spectrum.
	NormalizeArea

	// NormalizeReceiverGain divides by the receiver gain found in the
	// metadata. A gain recorded in dB is converted to its linear factor
	// first; a gain without a unit is taken as linear, as the Bruker
	// ESP/WinEPR parameter files store it.
	NormalizeReceiverGain

	// NormalizeScanNumber divides by the number of accumulations found
	// in the metadata.
	NormalizeScanNumber
)

func (k NormalizationKind) String() string {
	switch k {
	case NormalizeMaximum:
		return "maximum"
	case NormalizeMinimum:
		return "minimum"
	case NormalizeMagnitude:
		return "magnitude"
	case NormalizeArea:
		return "area"
	case NormalizeReceiverGain:
		return "receiver gain"
	case NormalizeScanNumber:
		return "scan number"
	}

	return fmt.Sprintf("NormalizationKind(%d)", int(k))
}

// Normalize divides every trace by the reference value selected by kind.
func Normalize(d *dataset.Dataset, kind NormalizationKind) error {
	if d.Data.Points() == 0 {
		return ErrEmptyDataset
	}

	for _, row := range d.Data.Values {
		factor, err := normalizationFactor(d, row, kind)
		if err != nil {
			return err
		}

		vecmath.ScaleBlock(row, row, 1/gfactor.NotZero(factor))
	}

	return nil
}

func normalizationFactor(d *dataset.Dataset, row []float64,
	kind NormalizationKind) (float64, error) {
	switch kind {
	case NormalizeMaximum:
		return maxValue(row), nil

	case NormalizeMinimum:
		return math.Abs(minValue(row)), nil

	case NormalizeMagnitude:
		return maxValue(row) - minValue(row), nil

	case NormalizeArea:
		return absoluteArea(d.Data.Axes[0].Values, row), nil

	case NormalizeReceiverGain:
		gain := d.Metadata.SignalChannel.ReceiverGain
		if gain.Value == 0 {
			return 0, fmt.Errorf("processing: no receiver gain in metadata")
		}

		if gain.Unit == "dB" {
			return math.Pow(10, gain.Value/20), nil
		}

		return gain.Value, nil

	case NormalizeScanNumber:
		scans := d.Metadata.SignalChannel.Accumulations
		if scans <= 0 {
			return 0, fmt.Errorf("processing: no accumulation count in metadata")
		}

		return float64(scans), nil
	}

	return 0, fmt.Errorf("processing: unknown normalization kind %d", int(kind))
}

func maxValue(data []float64) float64 {
	out := data[0]
	for _, v := range data[1:] {
		if v > out {
			out = v
		}
	}

	return out
}

func minValue(data []float64) float64 {
	out := data[0]
	for _, v := range data[1:] {
		if v < out {
			out = v
		}
	}

	return out
}

// absoluteArea integrates |y| over the field axis with the trapezoidal
// rule.
func absoluteArea(x, y []float64) float64 {
	area := 0.0
	for i := 1; i < len(y); i++ {
		area += (math.Abs(y[i]) + math.Abs(y[i-1])) / 2 * (x[i] - x[i-1])
	}

	return area
}
