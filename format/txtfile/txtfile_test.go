package txtfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openepr/cwepr/internal/testutil"
)

func writeSource(t *testing.T, extension, content string) string {
	t.Helper()

	source := filepath.Join(t.TempDir(), "sample")
	if err := os.WriteFile(source+extension, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return source
}

func TestImportTxt(t *testing.T) {
	source := writeSource(t, ".txt",
		"335.0\t1.5\n335.1\t-0.5\n335.2\t0.25\n")

	d, err := ImportTxt(source)
	if err != nil {
		t.Fatalf("ImportTxt failed: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, d.Data.Axes[0].Values,
		[]float64{335.0, 335.1, 335.2}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, d.Data.Primary(),
		[]float64{1.5, -0.5, 0.25}, 1e-12)

	if d.Data.Axes[0].Unit != "mT" {
		t.Errorf("axis unit = %q, want mT", d.Data.Axes[0].Unit)
	}
}

func TestImportTxtRejectsSingleColumn(t *testing.T) {
	source := writeSource(t, ".txt", "335.0\n335.1\n")

	if _, err := ImportTxt(source); err == nil {
		t.Error("expected error for missing intensity column")
	}
}

func TestImportCsv(t *testing.T) {
	source := writeSource(t, ".csv",
		"Exported data\nField;Intensity\nmT;a.u.\n335.0;1.5\n335.1;-0.5\n")

	d, err := ImportCsv(source)
	if err != nil {
		t.Fatalf("ImportCsv failed: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, d.Data.Axes[0].Values,
		[]float64{335.0, 335.1}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, d.Data.Primary(),
		[]float64{1.5, -0.5}, 1e-12)
}

func TestImportCsvRejectsEmptyFile(t *testing.T) {
	source := writeSource(t, ".csv", "one\ntwo\nthree\n")

	if _, err := ImportCsv(source); err == nil {
		t.Error("expected error for file without data lines")
	}
}
