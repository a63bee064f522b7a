// Package dataset defines the common in-memory representation of a cw-EPR
// measurement: the recorded intensity values, their axes, and the
// instrument and sample metadata belonging to them.
package dataset

import (
	"errors"
	"fmt"
)

// ErrInvalidData is returned when the numeric content of a dataset is
// inconsistent (axis/data length mismatch, non-monotonic field axis).
var ErrInvalidData = errors.New("dataset: invalid data")

// Axis describes one axis of the recorded data. The last axis of a dataset
// carries no values; it only names the intensity quantity and its unit.
type Axis struct {
	Values   []float64 `yaml:"values,omitempty"`
	Quantity string    `yaml:"quantity"`
	Unit     string    `yaml:"unit"`
}

// Data holds the recorded values together with their axes.
//
// Values stores one row per trace, each row running along the field axis
// (Axes[0]). One-dimensional datasets have exactly one row. For
// two-dimensional datasets (goniometer sweeps, power sweeps, ...) the
// second parameter runs over the rows and is described by Axes[1].
type Data struct {
	Values [][]float64
	Axes   []Axis
}

// Dataset unites the numerical data of one measurement with its metadata.
type Dataset struct {
	Data        Data
	Metadata    Metadata
	Annotations []string
	Source      string
}

// New returns an empty one-dimensional dataset with prepared axes.
func New() *Dataset {
	return &Dataset{
		Data: Data{
			Axes: []Axis{
				{Quantity: "magnetic field", Unit: "mT"},
				{Quantity: "intensity"},
			},
		},
	}
}

// New1D returns a one-dimensional dataset over the given field axis.
func New1D(field, intensity []float64) *Dataset {
	d := New()
	d.Data.Values = [][]float64{intensity}
	d.Data.Axes[0].Values = field

	return d
}

// Dimensions returns the number of data dimensions (1 or 2).
func (d *Data) Dimensions() int {
	if len(d.Axes) > 2 {
		return len(d.Axes) - 1
	}

	return 1
}

// Points returns the number of points along the field axis.
func (d *Data) Points() int {
	return len(d.Axes[0].Values)
}

// Primary returns the first (for 1D data: the only) trace.
func (d *Data) Primary() []float64 {
	if len(d.Values) == 0 {
		return nil
	}

	return d.Values[0]
}

// Copy returns a deep copy of the dataset.
func (d *Dataset) Copy() *Dataset {
	out := *d

	out.Data.Values = make([][]float64, len(d.Data.Values))
	for i, row := range d.Data.Values {
		out.Data.Values[i] = append([]float64(nil), row...)
	}

	out.Data.Axes = make([]Axis, len(d.Data.Axes))
	for i, ax := range d.Data.Axes {
		out.Data.Axes[i] = ax
		out.Data.Axes[i].Values = append([]float64(nil), ax.Values...)
	}

	out.Annotations = append([]string(nil), d.Annotations...)

	return &out
}

// Validate checks the structural invariants of the dataset: every trace
// matches the field axis in length, the second axis (if any) matches the
// trace count, and the field axis is strictly monotonically increasing.
func (d *Dataset) Validate() error {
	points := d.Data.Points()

	for i, row := range d.Data.Values {
		if len(row) != points {
			return fmt.Errorf("%w: trace %d has %d points, axis has %d",
				ErrInvalidData, i, len(row), points)
		}
	}

	if len(d.Data.Axes) > 2 {
		if traces := len(d.Data.Axes[1].Values); traces != len(d.Data.Values) {
			return fmt.Errorf("%w: second axis has %d values, data has %d traces",
				ErrInvalidData, traces, len(d.Data.Values))
		}
	}

	field := d.Data.Axes[0].Values
	for i := 1; i < len(field); i++ {
		if field[i] <= field[i-1] {
			return fmt.Errorf("%w: field axis not increasing at index %d",
				ErrInvalidData, i)
		}
	}

	return nil
}

// Annotate appends a free-text comment to the dataset.
func (d *Dataset) Annotate(comment string) {
	if comment == "" {
		return
	}

	d.Annotations = append(d.Annotations, comment)
}
