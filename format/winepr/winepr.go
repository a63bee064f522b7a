// Package winepr imports the Bruker ESP and EMX (WinEPR) formats used by
// the older Bruker spectrometer series. A measurement consists of an ASCII
// parameter file (.par) and a binary spectrum file (.spc).
//
// The parameter file is nearly identical for both formats, the binary
// encoding of the spectrum file is not: WinEPR writes four-byte IEEE
// floats in little-endian order, the ESP series four-byte integers in
// Motorola (big-endian) order. The official specification allows no clear
// discrimination, so the importer guesses from parameters WinEPR adds
// beyond the specification and can be overridden explicitly.
//
// A parameter file only contains values deviating from the defaults
// tabulated in the Bruker specification; the defaults are filled in before
// the file is read.
package winepr

import (
	"bufio"
	"encoding/binary"
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
		Name:       "ESP/WinEPR",
		Extensions: []string{".par", ".spc"},
		Import:     Import,
	})
}

// File format identifiers for Config.Format.
const (
	FormatAuto   = "auto"
	FormatWinEPR = "WinEPR"
	FormatESP    = "ESP"
)

// Config controls the import.
type Config struct {
	// Format selects the binary encoding of the .spc file: FormatWinEPR,
	// FormatESP or FormatAuto (default). Matching is case-insensitive.
	Format string
}

func normalizeConfig(cfg Config) (Config, error) {
	switch strings.ToLower(cfg.Format) {
	case "", strings.ToLower(FormatAuto):
		cfg.Format = FormatAuto
	case strings.ToLower(FormatWinEPR):
		cfg.Format = FormatWinEPR
	case strings.ToLower(FormatESP):
		cfg.Format = FormatESP
	default:
		return cfg, fmt.Errorf("winepr: unknown format %q", cfg.Format)
	}

	return cfg, nil
}

// Import reads the file pair <source>.par / <source>.spc into a dataset,
// auto-detecting the binary encoding.
func Import(source string) (*dataset.Dataset, error) {
	return ImportWith(source, Config{})
}

// ImportWith reads the file pair like Import, with explicit control over
// the binary encoding.
func ImportWith(source string, cfg Config) (*dataset.Dataset, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	params := defaultParameters()

	if err := readParameterFile(source+".par", params); err != nil {
		return nil, err
	}

	fileFormat := cfg.Format
	if fileFormat == FormatAuto {
		fileFormat = detectFormat(params)
	}

	intensity, err := readData(source+".spc", fileFormat)
	if err != nil {
		return nil, err
	}

	d := dataset.New()
	d.Source = source

	format.ApplyInfofile(source, d)

	applyParameters(d, params)
	d.Metadata.MagneticField.Points = len(intensity)

	ensureCommonUnits(d)
	fillFieldAxis(d, len(intensity))

	d.Data.Values = [][]float64{intensity}

	return d, nil
}

// defaultParameters returns the default values tabulated in the Bruker
// file format specification. Only the subset needed to interpret the data
// is carried.
func defaultParameters() map[string]string {
	return map[string]string{
		"JSS": "0",
		"JUN": "Gauss",
		"JNS": "1",
		"JEX": "EPR",
		"GST": "3.455000e+03",
		"GSI": "5.000000e+01",
		"TE":  "-1",
		"HCF": "3.480006e+03",
		"HSW": "5.000000e+01",
		"MF":  "-1",
		"MP":  "-1",
		"RMA": "1.0",
		"RRG": "2.000000e+04",
		"RPH": "0",
		"RCT": "5.12",
		"RTC": "1.28",
		"RMF": "1.000000e+02",
		"RES": "1024",
	}
}

func readParameterFile(filename string, params map[string]string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("winepr: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		params[key] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("winepr: reading %s: %w", filename, err)
	}

	return nil
}

// detectFormat discriminates WinEPR from ESP parameter files. WinEPR adds
// "DOS Format" (or "ASCII Format") lines beyond the specification.
func detectFormat(params map[string]string) string {
	if params["DOS"] == "Format" || params["ASCII"] == "Format" {
		return FormatWinEPR
	}

	return FormatESP
}

func readData(filename, fileFormat string) ([]float64, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("winepr: %w", err)
	}

	values := make([]float64, len(raw)/4)

	switch fileFormat {
	case FormatWinEPR:
		for i := range values {
			values[i] = float64(
				math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:])))
		}
	case FormatESP:
		for i := range values {
			values[i] = float64(int32(binary.BigEndian.Uint32(raw[4*i:])))
		}
	default:
		return nil, fmt.Errorf("winepr: unknown format %q", fileFormat)
	}

	return values, nil
}

func applyParameters(d *dataset.Dataset, params map[string]string) {
	md := &d.Metadata

	fieldUnit := params["JUN"]

	md.MagneticField.Start = dataset.PhysicalQuantity{
		Value: parseFloat(params["GST"]), Unit: fieldUnit}
	md.MagneticField.SweepWidth = dataset.PhysicalQuantity{
		Value: parseFloat(params["GSI"]), Unit: fieldUnit}

	if v := parseFloat(params["MF"]); v > 0 {
		md.Bridge.MWFrequency = dataset.PhysicalQuantity{Value: v, Unit: "GHz"}
	}

	if v := parseFloat(params["MP"]); v > 0 {
		md.Bridge.Power = dataset.PhysicalQuantity{Value: v, Unit: "mW"}
	}

	md.SignalChannel.ModulationAmplitude = dataset.PhysicalQuantity{
		Value: parseFloat(params["RMA"]), Unit: "G"}
	md.SignalChannel.ModulationFrequency = dataset.PhysicalQuantity{
		Value: parseFloat(params["RMF"]), Unit: "kHz"}
	// RRG is a linear gain factor and carries no unit.
	md.SignalChannel.ReceiverGain = dataset.PhysicalQuantity{
		Value: parseFloat(params["RRG"])}
	md.SignalChannel.Conversion = dataset.PhysicalQuantity{
		Value: parseFloat(params["RCT"]), Unit: "ms"}
	md.SignalChannel.TimeConstant = dataset.PhysicalQuantity{
		Value: parseFloat(params["RTC"]), Unit: "ms"}
	md.SignalChannel.Phase = dataset.PhysicalQuantity{
		Value: parseFloat(params["RPH"]), Unit: "deg"}
	md.SignalChannel.Accumulations = int(parseFloat(params["JNS"]))

	if v := parseFloat(params["TE"]); v > 0 {
		md.TemperatureControl.Temperature = dataset.PhysicalQuantity{
			Value: v, Unit: "K"}
	}

	if v := params["JON"]; v != "" {
		md.Measurement.Operator = v
	}

	if v := params["JRE"]; v != "" {
		md.Probehead.Model = v
	}

	if v := params["JCO"]; v != "" {
		d.Annotate(v)
	}

	md.Experiment.Type = params["JEX"]

	applyDatetime(md, params)
}

// applyDatetime parses the acquisition date and time (JDA, JTM). The files
// carry no end time; one minute past the start is assumed when the info
// file provided none.
func applyDatetime(md *dataset.Metadata, params map[string]string) {
	value := params["JDA"] + " " + params["JTM"]

	for _, layout := range []string{
		"02-Jan-2006 15:04:05",
		"02.Jan.2006 15:04",
		"01/02/2006 15:04",
	} {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}

		md.Measurement.Start = parsed
		if md.Measurement.End.IsZero() {
			md.Measurement.End = parsed.Add(time.Minute)
		}

		return
	}
}

func ensureCommonUnits(d *dataset.Dataset) {
	md := &d.Metadata

	if md.Bridge.MWFrequency.Value > 500 {
		md.Bridge.MWFrequency.Value /= 1e9
	}

	if md.Bridge.MWFrequency.Value != 0 {
		md.Bridge.MWFrequency.Unit = "GHz"
	}

	if p := md.Bridge.Power.Value; p > 0 && p < 0.001 {
		md.Bridge.Power.Value *= 1e3
	}

	if md.Bridge.Power.Value != 0 {
		md.Bridge.Power.Unit = "mW"
	}

	for _, q := range []*dataset.PhysicalQuantity{
		&md.MagneticField.Start,
		&md.MagneticField.SweepWidth,
	} {
		if q.Unit == "Gauss" || q.Unit == "G" || q.Unit == "" {
			q.Value /= 10
			q.Unit = "mT"
		}
	}

	md.SignalChannel.ModulationAmplitude.ToMillitesla()
}

// fillFieldAxis builds the field axis from the display parameters GST and
// GSI. WinEPR counts points correctly, the axis runs from start to
// start + sweep width inclusive.
func fillFieldAxis(d *dataset.Dataset, points int) {
	md := &d.Metadata.MagneticField

	start := md.Start.Value
	stop := start + md.SweepWidth.Value

	md.Stop = dataset.PhysicalQuantity{Value: stop, Unit: md.Start.Unit}

	d.Data.Axes[0].Values = interp.Linspace(start, stop, points)
	d.Data.Axes[0].Quantity = "magnetic field"
	d.Data.Axes[0].Unit = md.Start.Unit
}

func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	first, _, _ := strings.Cut(value, " ")

	parsed, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return 0
	}

	return parsed
}
