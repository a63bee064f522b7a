package magnettech

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openepr/cwepr/internal/testutil"
)

// encodeCurve packs values the way the spectrometer does: one base64
// chunk of eight little-endian bytes per value, each ending on the "="
// padding character.
func encodeCurve(values []float64) string {
	var out string

	for _, v := range values {
		raw := make([]byte, 8)
		binary.LittleEndian.PutUint64(raw, math.Float64bits(v))
		out += base64.StdEncoding.EncodeToString(raw)
	}

	return out
}

func measurementXML(mwFreq float64, field, intensity []float64) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<ESRXmlFile Timestamp="2020-03-03T12:10:00">
  <Measurements>
    <Measurement Type="single" KineticMode="scan">
      <Recording Timestamp="2020-03-03T12:00:00"
          Bfrom="334" Bto="336" MwFreq="%g" QFactor="3000"
          Temperature="20" Accumulations="4" Phase="0"
          Device="MS5000" SWV="1.2" XDatasource="BField">
        <Parameters>
          <Param Name="MicrowavePower" Unit="mW">10</Param>
          <Param Name="Modulation" Unit="mT">0.2</Param>
          <Param Name="ModulationFreq" Unit="kHz">100</Param>
        </Parameters>
      </Recording>
      <Curves>
        <Curve YType="BField" XOffset="0" XSlope="1">%s</Curve>
        <Curve YType="MW_Absorption" XOffset="0" XSlope="1">%s</Curve>
      </Curves>
    </Measurement>
  </Measurements>
</ESRXmlFile>`, mwFreq, encodeCurve(field), encodeCurve(intensity))
}

func writeMeasurement(t *testing.T, dir, name string, mwFreq float64,
	field, intensity []float64) {
	t.Helper()

	content := measurementXML(mwFreq, field, intensity)
	if err := os.WriteFile(filepath.Join(dir, name),
		[]byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeMeasurement(t, dir, "sample.xml", 9.43,
		[]float64{333.5, 334, 334.5, 335, 335.5, 336, 336.5},
		[]float64{0, 1, 2, 3, 4, 5, 6})

	d, err := Import(filepath.Join(dir, "sample"))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// points outside the requested field range (334, 336) are cut,
	// the boundaries themselves excluded
	testutil.RequireSliceNearlyEqual(t, d.Data.Axes[0].Values,
		[]float64{334.5, 335, 335.5}, 1e-9)
	testutil.RequireSliceNearlyEqual(t, d.Data.Primary(),
		[]float64{2, 3, 4}, 1e-9)

	md := d.Metadata

	testutil.RequireNearlyEqual(t,
		md.TemperatureControl.Temperature.Value, 293.15, 1e-9)
	testutil.RequireNearlyEqual(t, md.Bridge.MWFrequency.Value, 9.43, 1e-12)
	testutil.RequireNearlyEqual(t, md.Bridge.QValue, 3000, 1e-12)
	testutil.RequireNearlyEqual(t, md.Bridge.Power.Value, 10, 1e-12)
	testutil.RequireNearlyEqual(t,
		md.SignalChannel.ModulationAmplitude.Value, 0.2, 1e-12)

	if md.Experiment.Type != "scan" {
		t.Errorf("experiment type = %q, want scan", md.Experiment.Type)
	}

	if md.SignalChannel.Accumulations != 4 {
		t.Errorf("accumulations = %d, want 4", md.SignalChannel.Accumulations)
	}

	if md.MagneticField.FieldProbeType != "Hall" {
		t.Errorf("field probe type = %q, want Hall", md.MagneticField.FieldProbeType)
	}

	wantStart := time.Date(2020, 3, 3, 12, 0, 0, 0, time.UTC)
	if !md.Measurement.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", md.Measurement.Start, wantStart)
	}

	wantEnd := time.Date(2020, 3, 3, 12, 10, 0, 0, time.UTC)
	if !md.Measurement.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", md.Measurement.End, wantEnd)
	}
}

func TestImportInterpolatesFieldAxis(t *testing.T) {
	dir := t.TempDir()

	// field curve sampled at half the rate of the absorption curve
	content := fmt.Sprintf(`<?xml version="1.0"?>
<ESRXmlFile>
  <Measurements>
    <Measurement>
      <Recording Bfrom="333" Bto="337" MwFreq="9.43"/>
      <Curves>
        <Curve YType="BField" XOffset="0" XSlope="2">%s</Curve>
        <Curve YType="MW_Absorption" XOffset="0" XSlope="1">%s</Curve>
      </Curves>
    </Measurement>
  </Measurements>
</ESRXmlFile>`,
		encodeCurve([]float64{334, 335, 336, 337}),
		encodeCurve([]float64{0, 1, 2, 3, 4, 5, 6}))

	if err := os.WriteFile(filepath.Join(dir, "sample.xml"),
		[]byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Import(filepath.Join(dir, "sample"))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, d.Data.Axes[0].Values,
		[]float64{334, 334.5, 335, 335.5, 336, 336.5}, 1e-9)
}

func TestImportRejectsMissingCurve(t *testing.T) {
	dir := t.TempDir()

	content := fmt.Sprintf(`<?xml version="1.0"?>
<ESRXmlFile>
  <Measurements>
    <Measurement>
      <Curves>
        <Curve YType="MW_Absorption" XOffset="0" XSlope="1">%s</Curve>
      </Curves>
    </Measurement>
  </Measurements>
</ESRXmlFile>`, encodeCurve([]float64{1, 2}))

	if err := os.WriteFile(filepath.Join(dir, "sample.xml"),
		[]byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Import(filepath.Join(dir, "sample")); err == nil {
		t.Error("expected error for missing field curve")
	}
}

func TestDecodeBase64Curve(t *testing.T) {
	values := []float64{1.5, -2.25, 0, 12345.6789}

	decoded, err := decodeBase64Curve(encodeCurve(values))
	if err != nil {
		t.Fatalf("decodeBase64Curve failed: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, decoded, values, 0)
}

func TestAngleFromFilename(t *testing.T) {
	cases := map[string]float64{
		"sample_gon_42dg.xml":   42,
		"gon_0dg_something.xml": 0,
		"no_angle_here.xml":     0,
	}

	for filename, want := range cases {
		if got := angleFromFilename(filename); got != want {
			t.Errorf("angleFromFilename(%q) = %g, want %g", filename, got, want)
		}
	}
}

func TestImportGoniometerSweep(t *testing.T) {
	dir := t.TempDir()

	field := []float64{333.5, 334, 334.5, 335, 335.5, 336, 336.5}

	for i, angle := range []int{0, 120, 240} {
		scale := float64(i + 1)
		intensity := make([]float64, len(field))

		for j := range intensity {
			intensity[j] = scale * float64(j)
		}

		writeMeasurement(t, dir,
			fmt.Sprintf("sample_gon_%ddg.xml", angle), 9.43, field, intensity)
	}

	d, err := ImportGoniometerSweep(dir)
	if err != nil {
		t.Fatalf("ImportGoniometerSweep failed: %v", err)
	}

	if len(d.Data.Values) != 3 {
		t.Fatalf("got %d traces, want 3", len(d.Data.Values))
	}

	testutil.RequireSliceNearlyEqual(t, d.Data.Axes[1].Values,
		[]float64{0, 120, 240}, 1e-12)

	if d.Data.Axes[1].Quantity != "goniometer angle" {
		t.Errorf("second axis quantity = %q, want goniometer angle",
			d.Data.Axes[1].Quantity)
	}

	// the traces are linear in field, so interpolation onto the common
	// range preserves the scaling between the rows
	mid := d.Data.Points() / 2
	ratio := d.Data.Values[1][mid] / d.Data.Values[0][mid]
	testutil.RequireNearlyEqual(t, ratio, 2, 1e-6)
}

func TestImportGoniometerSweepWithoutFiles(t *testing.T) {
	if _, err := ImportGoniometerSweep(t.TempDir()); err == nil {
		t.Error("expected error for directory without sweep files")
	}
}
