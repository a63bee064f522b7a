// Package niehs imports the file formats of the PEST software collection
// published by the US National Institute of Environmental Health Sciences
// (NIEHS): the .dat ASCII interchange format and the .lmb binary format.
//
// Both formats carry few to no metadata, so providing a sidecar info file
// is strongly recommended. The first parameters of an .lmb file are typed
// in manually at the spectrometer and are mapped with that caveat in mind.
package niehs

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/format"
	"github.com/openepr/cwepr/internal/interp"
)

func init() {
	format.Register(format.Format{
		Name:       "NIEHS dat",
		Extensions: []string{".dat"},
		Import:     ImportDat,
	})
	format.Register(format.Format{
		Name:       "NIEHS lmb",
		Extensions: []string{".lmb"},
		Import:     ImportLmb,
	})
}

// ImportDat reads a NIEHS PEST text file (<source>.dat): the "ESRFILE"
// identifier line, three header values (scan range in Gauss, center field
// in Gauss, number of points) and the intensity values, one per line. The
// field axis is reconstructed from center field and scan range.
func ImportDat(source string) (*dataset.Dataset, error) {
	file, err := os.Open(source + ".dat")
	if err != nil {
		return nil, fmt.Errorf("niehs: %w", err)
	}
	defer file.Close()

	var values []float64

	scanner := bufio.NewScanner(file)
	first := true

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if first {
			first = false

			if line != "ESRFILE" {
				return nil, fmt.Errorf("niehs: %s.dat starts with %q, want ESRFILE",
					source, line)
			}

			continue
		}

		value, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("niehs: parsing %s.dat: %w", source, err)
		}

		values = append(values, value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("niehs: reading %s.dat: %w", source, err)
	}

	if len(values) < 4 {
		return nil, fmt.Errorf("niehs: %s.dat misses header values", source)
	}

	sweepWidth := values[0] / 10
	centerField := values[1] / 10
	points := int(values[2])
	intensity := values[3:]

	if len(intensity) != points {
		return nil, fmt.Errorf("niehs: %s.dat holds %d values, header says %d",
			source, len(intensity), points)
	}

	d := dataset.New()
	d.Source = source

	format.ApplyInfofile(source, d)

	fillAxis(d, centerField, sweepWidth, points)
	d.Data.Values = [][]float64{intensity}

	return d, nil
}

// Parameter block layout of an .lmb file.
const (
	magicSize    = 4
	paramCount   = 20
	commentSize  = 60
	stringCount  = 20
	stringSize   = 12
	extraComment = 2
)

// ImportLmb reads a NIEHS PEST binary file (<source>.lmb): a four-byte
// format magic ("ESR1" or "ESR2"), twenty float32 parameters, the float32
// intensity values, a 60-byte comment and twenty 12-byte strings holding
// manually entered metadata. The ESR2 flavour appends two more comments.
func ImportLmb(source string) (*dataset.Dataset, error) {
	raw, err := os.ReadFile(source + ".lmb")
	if err != nil {
		return nil, fmt.Errorf("niehs: %w", err)
	}

	if len(raw) < magicSize+4*paramCount {
		return nil, fmt.Errorf("niehs: %s.lmb truncated", source)
	}

	magic := string(raw[:magicSize])
	if magic != "ESR1" && magic != "ESR2" {
		return nil, fmt.Errorf("niehs: %s.lmb has unknown format %q", source, magic)
	}

	pos := magicSize

	params := make([]float64, paramCount)
	for i := range params {
		params[i] = float64(
			math.Float32frombits(binary.LittleEndian.Uint32(raw[pos:])))
		pos += 4
	}

	sweepWidth := params[0] / 10
	centerField := params[1] / 10
	points := int(params[2])

	if points <= 0 || len(raw) < pos+4*points+commentSize+stringCount*stringSize {
		return nil, fmt.Errorf("niehs: %s.lmb truncated", source)
	}

	intensity := make([]float64, points)
	for i := range intensity {
		intensity[i] = float64(
			math.Float32frombits(binary.LittleEndian.Uint32(raw[pos:])))
		pos += 4
	}

	comments := []string{cString(raw[pos : pos+commentSize])}
	pos += commentSize

	strs := make([]string, stringCount)
	for i := range strs {
		strs[i] = cString(raw[pos : pos+stringSize])
		pos += stringSize
	}

	if magic == "ESR2" {
		for i := 0; i < extraComment && pos+commentSize <= len(raw); i++ {
			comments = append(comments, cString(raw[pos:pos+commentSize]))
			pos += commentSize
		}
	}

	d := dataset.New()
	d.Source = source

	format.ApplyInfofile(source, d)

	fillAxis(d, centerField, sweepWidth, points)
	d.Data.Values = [][]float64{intensity}

	for _, comment := range comments {
		d.Annotate(comment)
	}

	applyStrings(d, strs)

	return d, nil
}

// cString trims NUL padding and whitespace from a fixed-size byte field.
func cString(raw []byte) string {
	return strings.TrimSpace(strings.ReplaceAll(string(raw), "\x00", ""))
}

// applyStrings maps the manually entered metadata strings. Only the
// fields of interest are taken; the values may carry units with or
// without a separating space.
func applyStrings(d *dataset.Dataset, strs []string) {
	md := &d.Metadata

	setQuantity(&md.SignalChannel.ModulationAmplitude, strs[1])
	setQuantity(&md.SignalChannel.ModulationFrequency, strs[2])
	setQuantity(&md.SignalChannel.TimeConstant, strs[3])

	if gain, err := strconv.ParseFloat(strs[4], 64); err == nil {
		md.SignalChannel.ReceiverGain = dataset.PhysicalQuantity{Value: gain}
	}

	setQuantity(&md.Bridge.Power, strs[7])
	setQuantity(&md.Bridge.MWFrequency, strs[8])
	setQuantity(&md.TemperatureControl.Temperature, strs[13])

	if scans, err := strconv.Atoi(strs[12]); err == nil {
		md.SignalChannel.Accumulations = scans
	}
}

func setQuantity(dst *dataset.PhysicalQuantity, value string) {
	var q dataset.PhysicalQuantity
	if err := q.FromString(value); err == nil {
		*dst = q
	}
}

func fillAxis(d *dataset.Dataset, centerField, sweepWidth float64, points int) {
	start := centerField - sweepWidth/2
	stop := centerField + sweepWidth/2

	d.Data.Axes[0].Values = interp.Linspace(start, stop, points)
	d.Data.Axes[0].Unit = "mT"

	md := &d.Metadata.MagneticField
	md.Start = dataset.PhysicalQuantity{Value: start, Unit: "mT"}
	md.Stop = dataset.PhysicalQuantity{Value: stop, Unit: "mT"}
	md.SweepWidth = dataset.PhysicalQuantity{Value: sweepWidth, Unit: "mT"}
	md.Points = points
}
