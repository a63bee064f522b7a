package processing

import (
	"errors"
	"fmt"
	"math"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/gfactor"
	"github.com/openepr/cwepr/internal/interp"
	"github.com/openepr/cwepr/internal/polyfit"
)

var (
	// ErrEmptyDataset is returned when a step is applied to a dataset
	// without data.
	ErrEmptyDataset = errors.New("processing: dataset holds no data")

	// ErrMissingFrequency is returned when a frequency-dependent step
	// finds no microwave frequency in the metadata.
	ErrMissingFrequency = errors.New("processing: no microwave frequency in metadata")
)

// CorrectField shifts the field axis by the given correction value (mT),
// usually determined beforehand from a field standard measurement.
func CorrectField(d *dataset.Dataset, correction float64) error {
	if d.Data.Points() == 0 {
		return ErrEmptyDataset
	}

	axis := d.Data.Axes[0].Values
	for i := range axis {
		axis[i] += correction
	}

	md := &d.Metadata.MagneticField
	if !md.Start.IsZero() {
		md.Start.Value += correction
	}

	if !md.Stop.IsZero() {
		md.Stop.Value += correction
	}

	return nil
}

// CorrectFrequency converts the field axis recorded at the microwave
// frequency found in the metadata to the given target frequency (GHz),
// making spectra of different measurements comparable. The axis values are
// transformed to g values at the recorded frequency and back to field
// values at the target frequency.
func CorrectFrequency(d *dataset.Dataset, targetGHz float64) error {
	if d.Data.Points() == 0 {
		return ErrEmptyDataset
	}

	recorded := d.Metadata.Bridge.MWFrequency.Value
	if recorded <= 0 {
		return ErrMissingFrequency
	}

	axis := d.Data.Axes[0].Values
	for i, field := range axis {
		axis[i] = gfactor.GToField(gfactor.FieldToG(field, recorded), targetGHz)
	}

	d.Metadata.Bridge.MWFrequency.Value = targetGHz

	return nil
}

// BaselineConfig controls baseline fitting.
type BaselineConfig struct {
	// Order of the polynomial to fit. Defaults to 0.
	Order int

	// Percentage of the spectrum on each side treated as baseline.
	// Defaults to 10.
	Percentage float64
}

func normalizeBaselineConfig(cfg BaselineConfig) (BaselineConfig, error) {
	if cfg.Order < 0 {
		return cfg, fmt.Errorf("processing: invalid baseline order %d", cfg.Order)
	}

	if cfg.Percentage == 0 {
		cfg.Percentage = 10
	}

	if cfg.Percentage < 0 || cfg.Percentage > 50 {
		return cfg, fmt.Errorf("processing: invalid baseline percentage %g",
			cfg.Percentage)
	}

	return cfg, nil
}

// CorrectBaseline fits a polynomial to the outer parts of each trace and
// subtracts it. The fitted coefficients of the primary trace are returned,
// ordered from the highest power down.
func CorrectBaseline(d *dataset.Dataset, cfg BaselineConfig) ([]float64, error) {
	cfg, err := normalizeBaselineConfig(cfg)
	if err != nil {
		return nil, err
	}

	if d.Data.Points() == 0 {
		return nil, ErrEmptyDataset
	}

	axis := d.Data.Axes[0].Values

	var primary []float64

	for i, row := range d.Data.Values {
		edgeX := edgePoints(axis, cfg.Percentage)
		edgeY := edgePoints(row, cfg.Percentage)

		coeffs, err := polyfit.Fit(edgeX, edgeY, cfg.Order)
		if err != nil {
			return nil, fmt.Errorf("processing: baseline fit: %w", err)
		}

		subtractPolynomial(row, axis, coeffs)

		if i == 0 {
			primary = coeffs
		}
	}

	return primary, nil
}

// SubtractBaseline subtracts a previously determined baseline polynomial
// from every trace. Coefficients are ordered from the highest power down.
func SubtractBaseline(d *dataset.Dataset, coeffs []float64) error {
	if d.Data.Points() == 0 {
		return ErrEmptyDataset
	}

	axis := d.Data.Axes[0].Values
	for _, row := range d.Data.Values {
		subtractPolynomial(row, axis, coeffs)
	}

	return nil
}

func subtractPolynomial(row, axis, coeffs []float64) {
	for i := range row {
		row[i] -= polyfit.Eval(coeffs, axis[i])
	}
}

// edgePoints collects the given percentage of points from each end of the
// data, leaving out the middle part carrying the signal.
func edgePoints(data []float64, percentage float64) []float64 {
	perSide := int(math.Ceil(float64(len(data)) * percentage / 100))

	out := make([]float64, 0, 2*(perSide+1))
	out = append(out, data[:perSide+1]...)
	out = append(out, data[len(data)-perSide-1:]...)

	return out
}

// SubtractSpectrum subtracts another spectrum, in general a background,
// from the primary trace. The spectrum to subtract is interpolated onto
// the field axis of the processed dataset first.
func SubtractSpectrum(d, other *dataset.Dataset) error {
	if d.Data.Points() == 0 || other.Data.Points() == 0 {
		return ErrEmptyDataset
	}

	background := interp.Linear(d.Data.Axes[0].Values,
		other.Data.Axes[0].Values, other.Data.Primary())

	row := d.Data.Primary()
	for i := range row {
		row[i] -= background[i]
	}

	return nil
}

// Resample interpolates every trace onto an equidistant axis with the
// given number of points over the present field range.
func Resample(d *dataset.Dataset, points int) error {
	if d.Data.Points() == 0 {
		return ErrEmptyDataset
	}

	if points < 2 {
		return fmt.Errorf("processing: resampling needs at least 2 points")
	}

	axis := d.Data.Axes[0].Values

	return Interpolate(d, interp.Linspace(axis[0], axis[len(axis)-1], points))
}

// Interpolate resamples every trace onto the given field axis (mT).
func Interpolate(d *dataset.Dataset, axis []float64) error {
	if d.Data.Points() == 0 {
		return ErrEmptyDataset
	}

	if len(axis) < 2 {
		return fmt.Errorf("processing: interpolation axis needs at least 2 points")
	}

	old := d.Data.Axes[0].Values
	for i, row := range d.Data.Values {
		d.Data.Values[i] = interp.Linear(axis, old, row)
	}

	d.Data.Axes[0].Values = append([]float64(nil), axis...)
	d.Metadata.MagneticField.Points = len(axis)

	return nil
}
