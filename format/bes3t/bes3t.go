// Package bes3t imports the Bruker BES3T format used by the newer Bruker
// spectrometers running Xepr or Xenon. A measurement consists of a
// descriptor file (.DSC) and a binary data file (.DTA); two-dimensional
// measurements add a second-axis file (.YGF).
//
// Parameters are taken from the standard parameter layer where possible,
// as it is documented and given in SI units. The device-specific layer is
// not documented and only selected entries are read from it.
package bes3t

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/format"
	"github.com/openepr/cwepr/internal/interp"
)

func init() {
	// The second-axis file (.YGF) only exists for 2D measurements and
	// takes no part in format detection.
	format.Register(format.Format{
		Name:       "BES3T",
		Extensions: []string{".DSC", ".DTA"},
		Import:     Import,
	})
}

var numberPattern = regexp.MustCompile(`^[+-]?[0-9.]+([eE][+-]?[0-9]*)?$`)

// Import reads the BES3T file pair <source>.DSC / <source>.DTA into a
// dataset. The sidecar info file is merged first so the vendor parameters
// take precedence.
func Import(source string) (*dataset.Dataset, error) {
	params, err := parseDSC(source + ".DSC")
	if err != nil {
		return nil, err
	}

	if params["EXPT"] != "CW" {
		return nil, fmt.Errorf("%w: %s.DSC reports EXPT %q",
			format.ErrExperimentType, source, params["EXPT"])
	}

	byteOrder, err := byteOrderOf(params)
	if err != nil {
		return nil, err
	}

	d := dataset.New()
	d.Source = source

	format.ApplyInfofile(source, d)

	xPoints := intValue(params, "XPTS")
	yPoints := intValue(params, "YPTS")

	values, err := readFloat64File(source+".DTA", byteOrder)
	if err != nil {
		return nil, err
	}

	if xPoints <= 0 {
		return nil, fmt.Errorf("bes3t: %s.DSC carries no XPTS", source)
	}

	if need := xPoints * max(yPoints, 1); len(values) < need {
		return nil, fmt.Errorf("bes3t: %s.DTA holds %d values, expected %d",
			source, len(values), need)
	}

	if yPoints > 1 {
		if err := fillSecondAxis(d, source, params, byteOrder, yPoints); err != nil {
			return nil, err
		}

		d.Data.Values = reshape(values, yPoints, xPoints)
	} else {
		d.Data.Values = [][]float64{values[:xPoints]}
	}

	applyParameters(d, params)
	fillFieldAxis(d, params, xPoints)
	ensureCommonUnits(d)

	return d, nil
}

// parseDSC reads the descriptor file into a flat key/value map. Comment
// lines (*), section markers (#) and device headlines (.DVC) carry no
// parameters and are skipped.
func parseDSC(filename string) (map[string]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("bes3t: %w", err)
	}
	defer file.Close()

	params := make(map[string]string)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") ||
			strings.HasPrefix(line, "#") || strings.HasPrefix(line, ".") {
			continue
		}

		line = strings.ReplaceAll(line, "'", "")

		key, value, _ := strings.Cut(line, " ")
		if key == "" {
			continue
		}

		params[key] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bes3t: reading %s: %w", filename, err)
	}

	return params, nil
}

func byteOrderOf(params map[string]string) (binary.ByteOrder, error) {
	switch params["BSEQ"] {
	case "BIG":
		return binary.BigEndian, nil
	case "LIT":
		return binary.LittleEndian, nil
	}

	return nil, fmt.Errorf("bes3t: unknown byte sequence %q", params["BSEQ"])
}

func readFloat64File(filename string, order binary.ByteOrder) ([]float64, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("bes3t: %w", err)
	}

	values := make([]float64, len(raw)/8)
	for i := range values {
		values[i] = math.Float64frombits(order.Uint64(raw[8*i:]))
	}

	return values, nil
}

func reshape(values []float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = values[i*cols : (i+1)*cols]
	}

	return out
}

func fillSecondAxis(d *dataset.Dataset, source string,
	params map[string]string, order binary.ByteOrder, yPoints int) error {
	axis, err := readFloat64File(source+".YGF", order)
	if err != nil {
		return err
	}

	if len(axis) != yPoints {
		return fmt.Errorf("bes3t: %s.YGF holds %d values, YPTS is %d",
			source, len(axis), yPoints)
	}

	second := dataset.Axis{
		Values:   axis,
		Quantity: params["YNAM"],
		Unit:     params["YUNI"],
	}

	intensity := d.Data.Axes[len(d.Data.Axes)-1]
	d.Data.Axes = []dataset.Axis{d.Data.Axes[0], second, intensity}

	return nil
}

// fillFieldAxis derives the field axis from XMIN and XWID. Bruker confounds
// the number of steps and points, hence the sweep width spans points+1
// steps of which the axis covers all but the last.
func fillFieldAxis(d *dataset.Dataset, params map[string]string, points int) {
	start := floatValue(params, "XMIN")
	sweepWidth := floatValue(params, "XWID")
	stop := start + sweepWidth - sweepWidth/float64(points+1)

	d.Data.Axes[0].Values = interp.Linspace(start, stop, points)
	d.Data.Axes[0].Quantity = "magnetic field"
	d.Data.Axes[0].Unit = params["XUNI"]

	md := &d.Metadata.MagneticField
	md.Start = dataset.PhysicalQuantity{Value: start, Unit: params["XUNI"]}
	md.Stop = dataset.PhysicalQuantity{Value: stop, Unit: params["XUNI"]}
	md.SweepWidth = dataset.PhysicalQuantity{Value: sweepWidth, Unit: params["XUNI"]}
	md.StepWidth = dataset.PhysicalQuantity{
		Value: sweepWidth / float64(points), Unit: params["XUNI"]}
	md.Points = points
}

// applyParameters maps the standard parameter layer and selected device
// layer entries onto the metadata. Values from the descriptor override
// hand-written info file entries.
func applyParameters(d *dataset.Dataset, params map[string]string) {
	md := &d.Metadata

	if v, ok := params["MWFQ"]; ok {
		md.Bridge.MWFrequency = dataset.PhysicalQuantity{
			Value: parseFloat(v), Unit: "Hz"}
	}

	if v, ok := params["MWPW"]; ok {
		md.Bridge.Power = dataset.PhysicalQuantity{
			Value: parseFloat(v), Unit: "W"}
	}

	if v, ok := params["PowerAtten"]; ok {
		setQuantity(&md.Bridge.Attenuation, v, "dB")
	}

	if v, ok := params["QValue"]; ok {
		md.Bridge.QValue = parseFloat(v)
	}

	if v, ok := params["B0MF"]; ok {
		md.SignalChannel.ModulationFrequency = dataset.PhysicalQuantity{
			Value: parseFloat(v), Unit: "Hz"}
	}

	if v, ok := params["B0MA"]; ok {
		// modulation amplitude is recorded in Tesla
		md.SignalChannel.ModulationAmplitude = dataset.PhysicalQuantity{
			Value: parseFloat(v) * 1e3, Unit: "mT"}
	}

	if v, ok := params["AVGS"]; ok {
		md.SignalChannel.Accumulations = int(parseFloat(v))
	}

	if v, ok := params["RCAG"]; ok {
		setQuantity(&md.SignalChannel.ReceiverGain, v, "dB")
	}

	if v, ok := params["SPTP"]; ok {
		setQuantity(&md.SignalChannel.Conversion, v, "s")
	}

	if v, ok := params["STMP"]; ok {
		setQuantity(&md.TemperatureControl.Temperature, v, "K")
	}

	if v, ok := params["OPER"]; ok && v != "" {
		md.Measurement.Operator = v
	}

	if v, ok := params["SAMP"]; ok && v != "" {
		md.Sample.Name = v
	}

	if v, ok := params["CMNT"]; ok {
		d.Annotate(v)
	}

	md.Experiment.Type = params["EXPT"]
}

// ensureCommonUnits converts the vendor units into the units used
// throughout: mT for fields, GHz for the microwave frequency, mW for the
// power and kHz for the modulation frequency.
func ensureCommonUnits(d *dataset.Dataset) {
	md := &d.Metadata

	md.Bridge.MWFrequency.ToGigahertz()
	md.Bridge.Power.ToMilliwatt()
	md.SignalChannel.ModulationFrequency.ToKilohertz()

	for _, q := range []*dataset.PhysicalQuantity{
		&md.MagneticField.Start,
		&md.MagneticField.Stop,
		&md.MagneticField.SweepWidth,
		&md.MagneticField.StepWidth,
	} {
		q.ToMillitesla()
	}

	if d.Data.Axes[0].Unit == "G" {
		for i, v := range d.Data.Axes[0].Values {
			d.Data.Axes[0].Values[i] = dataset.GaussToMillitesla(v)
		}

		d.Data.Axes[0].Unit = "mT"
	}
}

func intValue(params map[string]string, key string) int {
	return int(parseFloat(params[key]))
}

func floatValue(params map[string]string, key string) float64 {
	return parseFloat(params[key])
}

// parseFloat extracts the numeric part of a parameter value, tolerating a
// trailing unit ("20 dB").
func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	first, _, _ := strings.Cut(value, " ")
	if !numberPattern.MatchString(first) {
		return 0
	}

	parsed, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return 0
	}

	return parsed
}

func setQuantity(dst *dataset.PhysicalQuantity, value, unit string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(value), " ")
	if numberPattern.MatchString(first) {
		if rest = strings.TrimSpace(rest); rest != "" {
			unit = rest
		}

		*dst = dataset.PhysicalQuantity{Value: parseFloat(first), Unit: unit}
	}
}
