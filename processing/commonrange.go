package processing

import (
	"errors"
	"fmt"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/internal/interp"
)

// ErrNoOverlap is returned when the field ranges of the datasets to
// combine do not overlap.
var ErrNoOverlap = errors.New("processing: field ranges do not overlap")

// ExtractCommonRange cuts all datasets to their common field range and
// resamples them onto one shared axis, so their traces can be compared or
// assembled into a two-dimensional dataset. The shared axis spans the
// largest start to the smallest stop value and carries as many points as
// the coarsest dataset has within that range.
func ExtractCommonRange(datasets ...*dataset.Dataset) error {
	if len(datasets) < 2 {
		return nil
	}

	var from, to float64

	for i, d := range datasets {
		axis := d.Data.Axes[0].Values
		if len(axis) < 2 {
			return fmt.Errorf("%w: dataset %d", ErrEmptyDataset, i)
		}

		if i == 0 || axis[0] > from {
			from = axis[0]
		}

		if i == 0 || axis[len(axis)-1] < to {
			to = axis[len(axis)-1]
		}
	}

	if to <= from {
		return ErrNoOverlap
	}

	points := 0

	for _, d := range datasets {
		n := pointsWithin(d.Data.Axes[0].Values, from, to)
		if points == 0 || n < points {
			points = n
		}
	}

	if points < 2 {
		return ErrNoOverlap
	}

	axis := interp.Linspace(from, to, points)

	for _, d := range datasets {
		if err := Interpolate(d, axis); err != nil {
			return err
		}

		d.Metadata.MagneticField.Start.Value = from
		d.Metadata.MagneticField.Stop.Value = to
		d.Metadata.MagneticField.SweepWidth.Value = to - from
	}

	return nil
}

func pointsWithin(axis []float64, from, to float64) int {
	n := 0

	for _, v := range axis {
		if v >= from && v <= to {
			n++
		}
	}

	return n
}
