package magnettech

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/format"
	"github.com/openepr/cwepr/processing"
)

// ImportGoniometerSweep imports an angular-dependent measurement recorded
// as one Magnettech XML file per goniometer angle in the given directory.
// All traces are brought to the microwave frequency of the first one,
// cut to their common field range and assembled into a two-dimensional
// dataset with the goniometer angle as second axis.
//
// Metadata are only taken from the directory's info file; the per-angle
// XML metadata are ignored.
func ImportGoniometerSweep(source string) (*dataset.Dataset, error) {
	filenames, err := goniometerFilenames(source)
	if err != nil {
		return nil, err
	}

	var (
		traces []*dataset.Dataset
		angles []float64
	)

	for _, filename := range filenames {
		base := strings.TrimSuffix(filename, ".xml")

		trace, err := importFile(base, false)
		if err != nil {
			return nil, err
		}

		angle := angleFromFilename(filename)
		if angle > 359 {
			angle = 0
		}

		if len(traces) > 0 {
			target := traces[0].Metadata.Bridge.MWFrequency.Value
			if err := processing.CorrectFrequency(trace, target); err != nil {
				return nil, err
			}
		}

		traces = append(traces, trace)
		angles = append(angles, angle)
	}

	if err := processing.ExtractCommonRange(traces...); err != nil {
		return nil, err
	}

	d := assembleSweep(traces, angles)
	d.Source = source

	format.ApplyInfofile(strings.TrimSuffix(source, "/"), d)

	return d, nil
}

func goniometerFilenames(source string) ([]string, error) {
	filenames, err := filepath.Glob(filepath.Join(source, "*dg*.xml"))
	if err != nil {
		return nil, fmt.Errorf("magnettech: %w", err)
	}

	if len(filenames) == 0 {
		return nil, fmt.Errorf("magnettech: no goniometer sweep files in %s", source)
	}

	sort.Slice(filenames, func(i, j int) bool {
		return angleFromFilename(filenames[i]) < angleFromFilename(filenames[j])
	})

	return filenames, nil
}

// angleFromFilename extracts the goniometer angle from filenames of the
// form <something>gon_<angle>dg<something>.xml.
func angleFromFilename(filename string) float64 {
	_, rest, found := strings.Cut(filepath.Base(filename), "gon_")
	if !found {
		return 0
	}

	number, _, found := strings.Cut(rest, "dg")
	if !found {
		return 0
	}

	angle, _ := strconv.ParseFloat(number, 64)

	return angle
}

func assembleSweep(traces []*dataset.Dataset, angles []float64) *dataset.Dataset {
	d := dataset.New()

	d.Data.Values = make([][]float64, len(traces))
	for i, trace := range traces {
		d.Data.Values[i] = trace.Data.Primary()
	}

	d.Data.Axes = []dataset.Axis{
		traces[0].Data.Axes[0],
		{Values: angles, Quantity: "goniometer angle", Unit: "degree"},
		{Quantity: "intensity", Unit: "mV"},
	}

	return d
}
