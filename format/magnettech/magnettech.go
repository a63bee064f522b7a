// Package magnettech imports cw-EPR raw data recorded by Magnettech
// benchtop spectrometers, stored as XML files with base64-encoded curves.
//
// The spectrometer records the magnetic field with its own, slightly
// non-equidistant axis and typically sweeps a little broader than the range
// set in the software. The field curve is therefore interpolated onto the
// absorption curve's sampling grid and the data cut to the requested field
// range afterwards.
package magnettech

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/format"
	"github.com/openepr/cwepr/internal/interp"
)

func init() {
	format.Register(format.Format{
		Name:       "Magnettech XML",
		Extensions: []string{".xml"},
		Import:     Import,
	})
	format.Register(format.Format{
		Name:   "Magnettech goniometer sweep",
		Dir:    true,
		Import: ImportGoniometerSweep,
	})
}

// Curve types carrying the recorded data and the field axis.
const (
	dataCurveType = "MW_Absorption"
	axisCurveType = "BField"
)

type xmlCurve struct {
	YType   string  `xml:"YType,attr"`
	XOffset float64 `xml:"XOffset,attr"`
	XSlope  float64 `xml:"XSlope,attr"`
	Text    string  `xml:",chardata"`
}

type xmlParam struct {
	Name  string `xml:"Name,attr"`
	Unit  string `xml:"Unit,attr"`
	Value string `xml:",chardata"`
}

type xmlRecording struct {
	Attrs  []xml.Attr `xml:",any,attr"`
	Params []xmlParam `xml:"Parameters>Param"`
}

type xmlMeasurement struct {
	Attrs     []xml.Attr   `xml:",any,attr"`
	Recording xmlRecording `xml:"Recording"`
	Curves    []xmlCurve   `xml:"Curves>Curve"`
}

type xmlDocument struct {
	Timestamp   string         `xml:"Timestamp,attr"`
	Measurement xmlMeasurement `xml:"Measurements>Measurement"`
}

// measurementFile is the parsed content of one Magnettech XML file:
// the attribute and parameter soup flattened into maps, plus the two
// curves of interest.
type measurementFile struct {
	endTimestamp string
	attrs        map[string]string
	params       map[string]dataset.PhysicalQuantity
	dataCurve    *xmlCurve
	axisCurve    *xmlCurve
}

// Import reads a single Magnettech XML file (<source>.xml) into a dataset.
func Import(source string) (*dataset.Dataset, error) {
	return importFile(source, true)
}

func importFile(source string, loadInfofile bool) (*dataset.Dataset, error) {
	if source == "" {
		return nil, format.ErrMissingPath
	}

	file, err := parseFile(source + ".xml")
	if err != nil {
		return nil, err
	}

	field, intensity, err := file.curves()
	if err != nil {
		return nil, err
	}

	field, intensity = cutToFieldRange(field, intensity,
		file.floatAttr("Bfrom"), file.floatAttr("Bto"))

	d := dataset.New()
	d.Source = source
	d.Data.Values = [][]float64{intensity}
	d.Data.Axes[0].Values = field
	d.Data.Axes[1].Unit = "mV"

	if loadInfofile {
		format.ApplyInfofile(source, d)
	}

	file.applyMetadata(d)

	return d, nil
}

func parseFile(filename string) (*measurementFile, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("magnettech: %w", err)
	}

	var doc xmlDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("magnettech: parsing %s: %w", filename, err)
	}

	file := &measurementFile{
		endTimestamp: doc.Timestamp,
		attrs:        make(map[string]string),
		params:       make(map[string]dataset.PhysicalQuantity),
	}

	for _, attr := range doc.Measurement.Attrs {
		file.attrs[attr.Name.Local] = attr.Value
	}

	for _, attr := range doc.Measurement.Recording.Attrs {
		file.attrs[attr.Name.Local] = attr.Value
	}

	for _, param := range doc.Measurement.Recording.Params {
		value, _ := strconv.ParseFloat(strings.TrimSpace(param.Value), 64)
		file.params[param.Name] = dataset.PhysicalQuantity{
			Value: value, Unit: param.Unit}
	}

	curves := doc.Measurement.Curves
	for i := range curves {
		switch curves[i].YType {
		case dataCurveType:
			file.dataCurve = &curves[i]
		case axisCurveType:
			file.axisCurve = &curves[i]
		}
	}

	if file.dataCurve == nil || file.axisCurve == nil {
		return nil, fmt.Errorf("magnettech: %s misses %s or %s curve",
			filename, dataCurveType, axisCurveType)
	}

	return file, nil
}

// curves decodes both curves and interpolates the field values onto the
// absorption curve's sampling grid. Each curve carries its own time grid
// given by XOffset and XSlope.
func (m *measurementFile) curves() (field, intensity []float64, err error) {
	field, err = decodeBase64Curve(m.axisCurve.Text)
	if err != nil {
		return nil, nil, err
	}

	intensity, err = decodeBase64Curve(m.dataCurve.Text)
	if err != nil {
		return nil, nil, err
	}

	fieldGrid := sampleGrid(m.axisCurve, len(field))
	dataGrid := sampleGrid(m.dataCurve, len(intensity))
	field = interp.Linear(dataGrid, fieldGrid, field)

	return field, intensity, nil
}

func sampleGrid(curve *xmlCurve, points int) []float64 {
	grid := make([]float64, points)
	for i := range grid {
		grid[i] = curve.XOffset + float64(i)*curve.XSlope
	}

	return grid
}

// decodeBase64Curve unpacks a curve given as concatenated base64 chunks,
// each chunk encoding one little-endian float64 and ending on the "="
// padding character.
func decodeBase64Curve(text string) ([]float64, error) {
	text = strings.TrimSpace(text)

	chunks := strings.Split(text, "=")
	values := make([]float64, 0, len(chunks))

	for _, chunk := range chunks {
		if chunk == "" {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(chunk + "=")
		if err != nil {
			return nil, fmt.Errorf("magnettech: decoding curve: %w", err)
		}

		if len(raw) != 8 {
			return nil, fmt.Errorf("magnettech: curve chunk holds %d bytes, want 8",
				len(raw))
		}

		values = append(values,
			math.Float64frombits(binary.LittleEndian.Uint64(raw)))
	}

	return values, nil
}

// cutToFieldRange drops the points the spectrometer recorded beyond the
// field range set in the software.
func cutToFieldRange(field, intensity []float64, from, to float64) ([]float64, []float64) {
	outField := make([]float64, 0, len(field))
	outIntensity := make([]float64, 0, len(intensity))

	for i, b := range field {
		if b > from && b < to {
			outField = append(outField, b)
			outIntensity = append(outIntensity, intensity[i])
		}
	}

	return outField, outIntensity
}

func (m *measurementFile) floatAttr(name string) float64 {
	if q, ok := m.params[name]; ok {
		return q.Value
	}

	value, _ := strconv.ParseFloat(strings.TrimSpace(m.attrs[name]), 64)

	return value
}

// applyMetadata maps the XML attributes and parameters onto the dataset
// metadata. XML values override hand-written info file entries.
func (m *measurementFile) applyMetadata(d *dataset.Dataset) {
	md := &d.Metadata

	md.TemperatureControl.Temperature = dataset.PhysicalQuantity{
		Value: m.floatAttr("Temperature") + 273.15, Unit: "K"}

	if m.attrs["Type"] == "single" {
		md.Experiment.Type = m.attrs["KineticMode"]
	} else {
		md.Experiment.Type = m.attrs["Type"]
	}

	md.Experiment.VariableParameter = m.attrs["XDatasource"]
	md.Spectrometer.Model = m.attrs["Device"]
	md.Spectrometer.Software = m.attrs["SWV"]

	field := d.Data.Axes[0].Values
	md.MagneticField.Start = dataset.PhysicalQuantity{
		Value: m.floatAttr("Bfrom"), Unit: "mT"}
	md.MagneticField.Stop = dataset.PhysicalQuantity{
		Value: m.floatAttr("Bto"), Unit: "mT"}
	md.MagneticField.SweepWidth = dataset.PhysicalQuantity{
		Value: m.floatAttr("Bto") - m.floatAttr("Bfrom"), Unit: "mT"}
	md.MagneticField.Points = len(field)
	md.MagneticField.FieldProbeType = "Hall"
	md.MagneticField.FieldProbeModel = "builtin"
	md.MagneticField.Sequence = "up"

	if len(field) > 1 && field[len(field)-1] < field[0] {
		md.MagneticField.Sequence = "down"
	}

	md.MagneticField.Controller = "builtin"
	md.MagneticField.PowerSupply = "builtin"

	md.Bridge.Model = "builtin"
	md.Bridge.Controller = "builtin"
	md.Bridge.Detection = "mixer"
	md.Bridge.FrequencyCounter = "builtin"
	md.Bridge.MWFrequency = dataset.PhysicalQuantity{
		Value: m.floatAttr("MwFreq"), Unit: "GHz"}
	md.Bridge.QValue = m.floatAttr("QFactor")

	if power, ok := m.params["MicrowavePower"]; ok {
		md.Bridge.Power = power
	}

	md.SignalChannel.Model = "builtin"
	md.SignalChannel.ModulationAmplifier = "builtin"
	md.SignalChannel.Accumulations = int(m.floatAttr("Accumulations"))

	if freq, ok := m.params["ModulationFreq"]; ok {
		md.SignalChannel.ModulationFrequency = freq
	}

	if amplitude, ok := m.params["Modulation"]; ok {
		md.SignalChannel.ModulationAmplitude = amplitude
	}

	md.SignalChannel.Phase = dataset.PhysicalQuantity{
		Value: m.floatAttr("Phase"), Unit: "deg"}

	md.Probehead.Model = "builtin"
	md.Probehead.Coupling = "critical"

	m.applyTimestamps(md)
}

// applyTimestamps takes the measurement start from the recording and the
// end from the document root, written when the file was closed.
func (m *measurementFile) applyTimestamps(md *dataset.Metadata) {
	if start, ok := parseTimestamp(m.attrs["Timestamp"]); ok {
		md.Measurement.Start = start
	}

	if end, ok := parseTimestamp(m.endTimestamp); ok {
		md.Measurement.End = end
	}
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}
