package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/format/txtfile"
)

func sampleDataset() *dataset.Dataset {
	d := dataset.New1D(
		[]float64{335.0, 335.1, 335.2},
		[]float64{1.5, -0.5, 0.25})
	d.Source = "sample"
	d.Metadata.Bridge.MWFrequency = dataset.PhysicalQuantity{
		Value: 9.68, Unit: "GHz"}
	d.Metadata.Bridge.QValue = -1
	d.Metadata.Sample.Name = "LiLiF standard"

	return d
}

func TestTxtRoundTrip(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")

	require.NoError(t, Txt(sampleDataset(), target))

	back, err := txtfile.ImportTxt(target)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{335.0, 335.1, 335.2},
		back.Data.Axes[0].Values, 1e-12)
	assert.InDeltaSlice(t, []float64{1.5, -0.5, 0.25},
		back.Data.Primary(), 1e-12)
}

func TestCSVRoundTrip(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")

	require.NoError(t, CSV(sampleDataset(), target))

	back, err := txtfile.ImportCsv(target)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{1.5, -0.5, 0.25},
		back.Data.Primary(), 1e-12)
}

func TestCSVWritesHeaderLines(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")

	require.NoError(t, CSV(sampleDataset(), target))

	raw, err := os.ReadFile(target + ".csv")
	require.NoError(t, err)

	assert.Contains(t, string(raw), "exported from sample")
	assert.Contains(t, string(raw), "magnetic field;intensity")
}

func TestASCIIWritesBothFiles(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")

	require.NoError(t, ASCII(sampleDataset(), target))

	assert.FileExists(t, target+".txt")
	assert.FileExists(t, target+".yaml")
}

func TestMetadataPrunesEmptyEntries(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "meta.yaml")

	require.NoError(t, Metadata(sampleDataset(), filename))

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &tree))

	bridge, ok := tree["bridge"].(map[string]any)
	require.True(t, ok, "bridge section missing")

	assert.Contains(t, bridge, "mw_frequency")

	// unmeasured q-value sentinel and untouched sections are dropped
	assert.NotContains(t, bridge, "q_value")
	assert.NotContains(t, tree, "temperature_control")
	assert.NotContains(t, tree, "probehead")
}

func TestMetadataAppendsExtension(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "meta")

	require.NoError(t, Metadata(sampleDataset(), filename))

	assert.FileExists(t, filename+".yaml")
}

func TestXLSX(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")

	require.NoError(t, XLSX(sampleDataset(), target))

	f, err := excelize.OpenFile(target + ".xlsx")
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(dataSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "magnetic field / mT", header)

	first, err := f.GetCellValue(dataSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "335", first)

	rows, err := f.GetRows(metadataSheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		require.Len(t, row, 2)
		keys = append(keys, row[0])
	}

	assert.Contains(t, keys, "bridge.mw_frequency.value")
	assert.Contains(t, keys, "sample.name")
	assert.NotContains(t, keys, "bridge.q_value")
}

func TestXLSXTwoDimensional(t *testing.T) {
	d := dataset.New()
	d.Data.Axes[0].Values = []float64{335, 336}
	d.Data.Values = [][]float64{{1, 2}, {3, 4}}
	d.Data.Axes = []dataset.Axis{
		d.Data.Axes[0],
		{Values: []float64{0, 90}, Quantity: "goniometer angle", Unit: "degree"},
		{Quantity: "intensity", Unit: "mV"},
	}

	target := filepath.Join(t.TempDir(), "out")
	require.NoError(t, XLSX(d, target))

	f, err := excelize.OpenFile(target + ".xlsx")
	require.NoError(t, err)
	defer f.Close()

	label, err := f.GetCellValue(dataSheet, "C1")
	require.NoError(t, err)
	assert.Equal(t, "90 degree", label)
}
