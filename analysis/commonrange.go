package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/openepr/cwepr/dataset"
)

var (
	// ErrNotEnoughDatasets is returned when fewer than two datasets are
	// given for the common range determination.
	ErrNotEnoughDatasets = errors.New("analysis: need at least two datasets")

	// ErrWrongOrder is returned when a field axis does not run from its
	// smallest to its largest value.
	ErrWrongOrder = errors.New("analysis: field axis in wrong order")

	// ErrNoCommonRange is returned when the common definition range of
	// two datasets is considered too small.
	ErrNoCommonRange = errors.New("analysis: common definition range too small")
)

// CommonRangeResult describes the common definition range of several
// datasets.
type CommonRangeResult struct {
	// Minimum and Maximum are the leftmost and rightmost field values
	// over all datasets.
	Minimum float64
	Maximum float64

	// MinimalWidth is the smallest field range of all datasets.
	MinimalWidth float64

	// Delimiters are the interior field values where a spectrum starts
	// or ends, usable to mark range edges in a plot. Points close to the
	// edges of the whole definition range are left out, points close to
	// each other combined.
	Delimiters []float64
}

// CommonRange determines how much common definition range the given
// datasets share. The threshold is the acceptable mismatch between two
// ranges as fraction of the smaller width; it defaults to 0.05. When any
// pair of datasets shares too little range, ErrNoCommonRange is returned;
// a successful return means a sufficient common range exists.
func CommonRange(datasets []*dataset.Dataset, threshold float64) (*CommonRangeResult, error) {
	if threshold == 0 {
		threshold = 0.05
	}

	if len(datasets) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughDatasets, len(datasets))
	}

	starts := make([]float64, len(datasets))
	ends := make([]float64, len(datasets))

	result := &CommonRangeResult{}

	for i, d := range datasets {
		axis := d.Data.Axes[0].Values
		if len(axis) < 2 {
			return nil, fmt.Errorf("%w: dataset %d", ErrEmptyDataset, i)
		}

		if axis[len(axis)-1] < axis[0] {
			return nil, fmt.Errorf("%w: dataset %s", ErrWrongOrder, datasetName(d, i))
		}

		starts[i] = axis[0]
		ends[i] = axis[len(axis)-1]

		width := ends[i] - starts[i]

		if i == 0 || starts[i] < result.Minimum {
			result.Minimum = starts[i]
		}

		if i == 0 || ends[i] > result.Maximum {
			result.Maximum = ends[i]
		}

		if i == 0 || width < result.MinimalWidth {
			result.MinimalWidth = width
		}
	}

	for i := range datasets {
		for j := i + 1; j < len(datasets); j++ {
			if err := checkPair(starts, ends, i, j, threshold); err != nil {
				return nil, fmt.Errorf("%w: datasets %s and %s", err,
					datasetName(datasets[i], i), datasetName(datasets[j], j))
			}
		}
	}

	result.Delimiters = delimiterPoints(starts, ends, result)

	return result, nil
}

// checkPair compares the definition ranges of two datasets. The maximum
// distance allowed between corresponding ends is the difference of the
// two widths plus the threshold fraction of the smaller width.
func checkPair(starts, ends []float64, i, j int, threshold float64) error {
	widthI := ends[i] - starts[i]
	widthJ := ends[j] - starts[j]

	allowed := math.Abs(widthI-widthJ) + threshold*math.Min(widthI, widthJ)

	if math.Abs(starts[i]-starts[j]) > allowed ||
		math.Abs(ends[i]-ends[j]) > allowed {
		return ErrNoCommonRange
	}

	return nil
}

// delimiterPoints collects the interior start and end points of all
// datasets. Points within 3% of the minimal width of each other are
// merged to their midpoint, points that close to the edges of the whole
// definition range dropped.
func delimiterPoints(starts, ends []float64, result *CommonRangeResult) []float64 {
	points := make([]float64, 0, len(starts)+len(ends))
	points = append(points, starts...)
	points = append(points, ends...)
	sort.Float64s(points)

	closeness := 0.03 * result.MinimalWidth

	merged := make([]float64, 0, len(points))

	for _, p := range points {
		if len(merged) > 0 && p-merged[len(merged)-1] < closeness {
			merged[len(merged)-1] = (merged[len(merged)-1] + p) / 2
			continue
		}

		merged = append(merged, p)
	}

	out := make([]float64, 0, len(merged))

	for _, p := range merged {
		if math.Abs(p-result.Minimum) < closeness ||
			math.Abs(p-result.Maximum) < closeness {
			continue
		}

		out = append(out, p)
	}

	return out
}

func datasetName(d *dataset.Dataset, index int) string {
	if d.Metadata.Measurement.Filename != "" {
		return d.Metadata.Measurement.Filename
	}

	if d.Source != "" {
		return d.Source
	}

	return fmt.Sprintf("#%d", index)
}
