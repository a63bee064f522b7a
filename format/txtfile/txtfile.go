// Package txtfile imports plain text and CSV files with two columns,
// magnetic field and intensity. Such files carry no metadata, but nearly
// every acquisition software can export them, which makes them a useful
// last resort for otherwise unsupported formats.
package txtfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/format"
)

func init() {
	format.Register(format.Format{
		Name:       "txt",
		Extensions: []string{".txt"},
		Import:     ImportTxt,
	})
	format.Register(format.Format{
		Name:       "csv",
		Extensions: []string{".csv"},
		Import:     ImportCsv,
	})
}

// ImportTxt reads a tab-separated two-column text file (<source>.txt).
// The first column is taken as magnetic field axis in mT, the second as
// intensity.
func ImportTxt(source string) (*dataset.Dataset, error) {
	return importColumns(source, ".txt", "\t", 0)
}

// ImportCsv reads a semicolon-separated two-column file (<source>.csv)
// with three header lines, as written by several spectrometer export
// dialogs.
func ImportCsv(source string) (*dataset.Dataset, error) {
	return importColumns(source, ".csv", ";", 3)
}

func importColumns(source, extension, separator string, skip int) (*dataset.Dataset, error) {
	file, err := os.Open(source + extension)
	if err != nil {
		return nil, fmt.Errorf("txtfile: %w", err)
	}
	defer file.Close()

	var field, intensity []float64

	scanner := bufio.NewScanner(file)
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if line <= skip || text == "" {
			continue
		}

		columns := strings.Split(text, separator)
		if len(columns) < 2 {
			return nil, fmt.Errorf("txtfile: %s%s line %d: need two columns",
				source, extension, line)
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(columns[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("txtfile: %s%s line %d: %w",
				source, extension, line, err)
		}

		y, err := strconv.ParseFloat(strings.TrimSpace(columns[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("txtfile: %s%s line %d: %w",
				source, extension, line, err)
		}

		field = append(field, x)
		intensity = append(intensity, y)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("txtfile: reading %s%s: %w", source, extension, err)
	}

	if len(field) == 0 {
		return nil, fmt.Errorf("txtfile: %s%s holds no data", source, extension)
	}

	d := dataset.New1D(field, intensity)
	d.Source = source

	format.ApplyInfofile(source, d)

	return d, nil
}
