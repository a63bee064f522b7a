package dataset

import (
	"errors"
	"testing"
)

func TestNew1D(t *testing.T) {
	d := New1D([]float64{1, 2, 3}, []float64{4, 5, 6})

	if d.Data.Dimensions() != 1 {
		t.Errorf("dimensions = %d, want 1", d.Data.Dimensions())
	}

	if d.Data.Points() != 3 {
		t.Errorf("points = %d, want 3", d.Data.Points())
	}

	if got := d.Data.Primary(); len(got) != 3 || got[0] != 4 {
		t.Errorf("primary trace = %v", got)
	}

	if err := d.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidateLengthMismatch(t *testing.T) {
	d := New1D([]float64{1, 2, 3}, []float64{4, 5})
	if err := d.Validate(); !errors.Is(err, ErrInvalidData) {
		t.Errorf("got %v, want ErrInvalidData", err)
	}
}

func TestValidateNonMonotonicAxis(t *testing.T) {
	d := New1D([]float64{1, 3, 2}, []float64{4, 5, 6})
	if err := d.Validate(); !errors.Is(err, ErrInvalidData) {
		t.Errorf("got %v, want ErrInvalidData", err)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	d := New1D([]float64{1, 2, 3}, []float64{4, 5, 6})
	d.Annotate("original")

	c := d.Copy()
	c.Data.Values[0][0] = 99
	c.Data.Axes[0].Values[0] = 99
	c.Annotate("copy only")

	if d.Data.Values[0][0] != 4 || d.Data.Axes[0].Values[0] != 1 {
		t.Error("copy shares numeric data with original")
	}

	if len(d.Annotations) != 1 {
		t.Errorf("original has %d annotations, want 1", len(d.Annotations))
	}
}

func TestPhysicalQuantityFromString(t *testing.T) {
	var q PhysicalQuantity

	if err := q.FromString("9.68 GHz"); err != nil {
		t.Fatalf("FromString failed: %v", err)
	}

	if q.Value != 9.68 || q.Unit != "GHz" {
		t.Errorf("got %+v", q)
	}

	if err := q.FromString("garbage"); err == nil {
		t.Error("expected error for non-numeric value")
	}

	if err := q.FromString(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestPhysicalQuantityString(t *testing.T) {
	q := PhysicalQuantity{Value: 100, Unit: "kHz"}
	if got := q.String(); got != "100 kHz" {
		t.Errorf("String() = %q", got)
	}
}
