package analysis

import (
	"errors"
	"testing"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/internal/interp"
	"github.com/openepr/cwepr/internal/testutil"
)

func rangeDataset(start, stop float64) *dataset.Dataset {
	axis := interp.Linspace(start, stop, 101)
	return dataset.New1D(axis, make([]float64, len(axis)))
}

func TestCommonRange(t *testing.T) {
	d1 := rangeDataset(0, 10)
	d2 := rangeDataset(0.2, 10.1)

	result, err := CommonRange([]*dataset.Dataset{d1, d2}, 0)
	if err != nil {
		t.Fatalf("CommonRange failed: %v", err)
	}

	testutil.RequireNearlyEqual(t, result.Minimum, 0, 1e-12)
	testutil.RequireNearlyEqual(t, result.Maximum, 10.1, 1e-12)
	testutil.RequireNearlyEqual(t, result.MinimalWidth, 9.9, 1e-12)
}

func TestCommonRangeNotEnoughDatasets(t *testing.T) {
	_, err := CommonRange([]*dataset.Dataset{rangeDataset(0, 10)}, 0)
	if !errors.Is(err, ErrNotEnoughDatasets) {
		t.Errorf("got %v, want ErrNotEnoughDatasets", err)
	}
}

func TestCommonRangeWrongOrder(t *testing.T) {
	descending := dataset.New1D([]float64{3, 2, 1}, []float64{0, 0, 0})

	_, err := CommonRange([]*dataset.Dataset{rangeDataset(0, 10), descending}, 0)
	if !errors.Is(err, ErrWrongOrder) {
		t.Errorf("got %v, want ErrWrongOrder", err)
	}
}

func TestCommonRangeTooSmall(t *testing.T) {
	d1 := rangeDataset(0, 10)
	d2 := rangeDataset(5, 15)

	_, err := CommonRange([]*dataset.Dataset{d1, d2}, 0)
	if !errors.Is(err, ErrNoCommonRange) {
		t.Errorf("got %v, want ErrNoCommonRange", err)
	}
}

func TestCommonRangeDelimiters(t *testing.T) {
	// start points 0 and 0.5 differ by more than 3% of the width, hence
	// the interior start point survives as delimiter
	d1 := rangeDataset(0, 10)
	d2 := rangeDataset(0.5, 10)

	result, err := CommonRange([]*dataset.Dataset{d1, d2}, 0.1)
	if err != nil {
		t.Fatalf("CommonRange failed: %v", err)
	}

	if len(result.Delimiters) != 1 {
		t.Fatalf("delimiters = %v, want one point", result.Delimiters)
	}

	testutil.RequireNearlyEqual(t, result.Delimiters[0], 0.5, 1e-12)
}
