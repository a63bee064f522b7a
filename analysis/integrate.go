package analysis

import (
	"fmt"
	"math"

	"github.com/openepr/cwepr/dataset"
)

// CumulativeIntegrate integrates the primary trace indefinitely over the
// field axis with the trapezoidal rule, yielding one integral value per
// point. The first value is zero, keeping the result the same length as
// the trace.
func CumulativeIntegrate(d *dataset.Dataset) ([]float64, error) {
	if d.Data.Points() == 0 {
		return nil, ErrEmptyDataset
	}

	x := d.Data.Axes[0].Values
	y := d.Data.Primary()

	out := make([]float64, len(y))
	for i := 1; i < len(y); i++ {
		out[i] = out[i-1] + (y[i]+y[i-1])/2*(x[i]-x[i-1])
	}

	return out, nil
}

// Integrate computes the area under the primary trace over the field axis
// with the trapezoidal rule.
func Integrate(d *dataset.Dataset) (float64, error) {
	if d.Data.Points() == 0 {
		return 0, ErrEmptyDataset
	}

	return trapezoid(d.Data.Axes[0].Values, d.Data.Primary()), nil
}

func trapezoid(x, y []float64) float64 {
	area := 0.0
	for i := 1; i < len(y); i++ {
		area += (y[i] + y[i-1]) / 2 * (x[i] - x[i-1])
	}

	return area
}

// VerificationConfig controls the integration verification.
type VerificationConfig struct {
	// Percentage of the spectrum on the right side to consider.
	// Defaults to 15.
	Percentage float64

	// Threshold the area must stay below. Defaults to 0.001.
	Threshold float64
}

// VerifyIntegration checks whether a spectrum was correctly preprocessed.
// After the first integration the curve should be close to zero on the
// rightmost part of the spectrum; the area under that part is compared
// against the threshold.
func VerifyIntegration(d *dataset.Dataset, integral []float64,
	cfg VerificationConfig) (bool, error) {
	if cfg.Percentage == 0 {
		cfg.Percentage = 15
	}

	if cfg.Threshold == 0 {
		cfg.Threshold = 0.001
	}

	if d.Data.Points() == 0 || len(integral) == 0 {
		return false, ErrEmptyDataset
	}

	if len(integral) > d.Data.Points() {
		return false, fmt.Errorf("analysis: integral carries %d values, dataset only %d points",
			len(integral), d.Data.Points())
	}

	points := int(math.Ceil(float64(len(integral)) * cfg.Percentage / 100))
	from := len(integral) - points - 1

	if from < 0 {
		from = 0
	}

	area := trapezoid(d.Data.Axes[0].Values[from:len(integral)], integral[from:])

	return math.Abs(area) < cfg.Threshold, nil
}
