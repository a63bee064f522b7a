package niehs

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/openepr/cwepr/internal/testutil"
)

const datFile = `ESRFILE
50
3350
4
1.5
-0.5
0.25
2
`

func TestImportDat(t *testing.T) {
	source := filepath.Join(t.TempDir(), "sample")
	if err := os.WriteFile(source+".dat", []byte(datFile), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := ImportDat(source)
	if err != nil {
		t.Fatalf("ImportDat failed: %v", err)
	}

	// scan range 50 G around center 3350 G, in mT
	axis := d.Data.Axes[0].Values
	testutil.RequireSliceNearlyEqual(t, axis,
		[]float64{332.5, 334.1666666667, 335.8333333333, 337.5}, 1e-9)

	if d.Data.Axes[0].Unit != "mT" {
		t.Errorf("axis unit = %q, want mT", d.Data.Axes[0].Unit)
	}

	testutil.RequireSliceNearlyEqual(t, d.Data.Primary(),
		[]float64{1.5, -0.5, 0.25, 2}, 1e-12)

	testutil.RequireNearlyEqual(t,
		d.Metadata.MagneticField.SweepWidth.Value, 5, 1e-12)
}

func TestImportDatRejectsWrongIdentifier(t *testing.T) {
	source := filepath.Join(t.TempDir(), "sample")
	if err := os.WriteFile(source+".dat", []byte("NOTESR\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportDat(source); err == nil {
		t.Error("expected error for missing ESRFILE identifier")
	}
}

func TestImportDatRejectsShortData(t *testing.T) {
	source := filepath.Join(t.TempDir(), "sample")
	if err := os.WriteFile(source+".dat",
		[]byte("ESRFILE\n50\n3350\n4\n1\n2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportDat(source); err == nil {
		t.Error("expected error for truncated data")
	}
}

// writeLmb builds an .lmb fixture with the given magic, data values and
// metadata strings, returning the extension-less source path.
func writeLmb(t *testing.T, magic string, data []float64,
	strs map[int]string, extra []string) string {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString(magic)

	params := make([]float32, paramCount)
	params[0] = 50                 // scan range in Gauss
	params[1] = 3350               // center field in Gauss
	params[2] = float32(len(data)) // number of points
	params[9] = 60                 // scan time

	for _, p := range params {
		binary.Write(&buf, binary.LittleEndian, p)
	}

	for _, v := range data {
		binary.Write(&buf, binary.LittleEndian, float32(v))
	}

	comment := make([]byte, commentSize)
	copy(comment, "test sample")
	buf.Write(comment)

	for i := 0; i < stringCount; i++ {
		field := make([]byte, stringSize)
		copy(field, strs[i])
		buf.Write(field)
	}

	for _, s := range extra {
		field := make([]byte, commentSize)
		copy(field, s)
		buf.Write(field)
	}

	source := filepath.Join(t.TempDir(), "sample")
	if err := os.WriteFile(source+".lmb", buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	return source
}

func TestImportLmb(t *testing.T) {
	source := writeLmb(t, "ESR1", []float64{1, 2, 3, 4}, map[int]string{
		1:  "0.1 mT",
		2:  "100 kHz",
		3:  "10 ms",
		4:  "20",
		7:  "2 mW",
		8:  "9.68 GHz",
		12: "4",
		13: "295 K",
	}, nil)

	d, err := ImportLmb(source)
	if err != nil {
		t.Fatalf("ImportLmb failed: %v", err)
	}

	axis := d.Data.Axes[0].Values
	testutil.RequireNearlyEqual(t, axis[0], 332.5, 1e-4)
	testutil.RequireNearlyEqual(t, axis[len(axis)-1], 337.5, 1e-4)

	testutil.RequireSliceNearlyEqual(t, d.Data.Primary(),
		[]float64{1, 2, 3, 4}, 1e-6)

	if len(d.Annotations) != 1 || d.Annotations[0] != "test sample" {
		t.Errorf("annotations = %v, want the file comment", d.Annotations)
	}

	md := d.Metadata
	testutil.RequireNearlyEqual(t,
		md.SignalChannel.ModulationAmplitude.Value, 0.1, 1e-12)

	if md.SignalChannel.ModulationFrequency.Unit != "kHz" {
		t.Errorf("modulation frequency unit = %q, want kHz",
			md.SignalChannel.ModulationFrequency.Unit)
	}

	testutil.RequireNearlyEqual(t, md.SignalChannel.ReceiverGain.Value, 20, 1e-12)
	testutil.RequireNearlyEqual(t, md.Bridge.Power.Value, 2, 1e-12)
	testutil.RequireNearlyEqual(t, md.Bridge.MWFrequency.Value, 9.68, 1e-12)
	testutil.RequireNearlyEqual(t,
		md.TemperatureControl.Temperature.Value, 295, 1e-12)

	if md.SignalChannel.Accumulations != 4 {
		t.Errorf("accumulations = %d, want 4", md.SignalChannel.Accumulations)
	}
}

func TestImportLmbESR2Comments(t *testing.T) {
	source := writeLmb(t, "ESR2", []float64{1, 2}, nil,
		[]string{"second line", "third line"})

	d, err := ImportLmb(source)
	if err != nil {
		t.Fatalf("ImportLmb failed: %v", err)
	}

	want := []string{"test sample", "second line", "third line"}
	if len(d.Annotations) != len(want) {
		t.Fatalf("annotations = %v, want %v", d.Annotations, want)
	}

	for i, comment := range want {
		if d.Annotations[i] != comment {
			t.Errorf("annotation %d = %q, want %q", i, d.Annotations[i], comment)
		}
	}
}

func TestImportLmbRejectsUnknownMagic(t *testing.T) {
	source := filepath.Join(t.TempDir(), "sample")

	raw := make([]byte, magicSize+4*paramCount)
	copy(raw, "XXXX")

	if err := os.WriteFile(source+".lmb", raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportLmb(source); err == nil {
		t.Error("expected error for unknown format magic")
	}
}

func TestImportLmbRejectsTruncatedFile(t *testing.T) {
	source := writeLmb(t, "ESR1", []float64{1, 2, 3, 4}, nil, nil)

	raw, err := os.ReadFile(source + ".lmb")
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(source+".lmb", raw[:len(raw)/2], 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportLmb(source); err == nil {
		t.Error("expected error for truncated file")
	}
}

func TestDatAxisIsSymmetric(t *testing.T) {
	source := writeLmb(t, "ESR1", []float64{1, 2, 3, 4, 5}, nil, nil)

	d, err := ImportLmb(source)
	if err != nil {
		t.Fatalf("ImportLmb failed: %v", err)
	}

	axis := d.Data.Axes[0].Values
	center := (axis[0] + axis[len(axis)-1]) / 2

	if math.Abs(center-335) > 1e-4 {
		t.Errorf("axis center = %g, want 335", center)
	}
}
