// Package export writes datasets to exchange formats: plain text and CSV
// for the numeric data, YAML for the metadata, and XLSX workbooks holding
// both. The text formats round-trip with the corresponding importers.
package export

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/openepr/cwepr/dataset"
)

// Txt writes the dataset to <target>.txt as tab-separated columns, the
// field axis first, followed by one intensity column per trace.
func Txt(d *dataset.Dataset, target string) error {
	return writeColumns(d, target+".txt", "\t", false)
}

// CSV writes the dataset to <target>.csv as semicolon-separated columns
// with three header lines naming source, quantities and units.
func CSV(d *dataset.Dataset, target string) error {
	return writeColumns(d, target+".csv", ";", true)
}

// ASCII writes the dataset's data to <target>.txt and its metadata to
// <target>.yaml.
func ASCII(d *dataset.Dataset, target string) error {
	if err := Txt(d, target); err != nil {
		return err
	}

	return Metadata(d, target+".yaml")
}

func writeColumns(d *dataset.Dataset, filename, separator string, header bool) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	if header {
		writeHeader(w, d, separator)
	}

	axis := d.Data.Axes[0].Values
	for i, b := range axis {
		w.WriteString(formatValue(b))

		for _, row := range d.Data.Values {
			w.WriteString(separator)
			w.WriteString(formatValue(row[i]))
		}

		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("export: writing %s: %w", filename, err)
	}

	return file.Close()
}

func writeHeader(w *bufio.Writer, d *dataset.Dataset, separator string) {
	fmt.Fprintf(w, "exported from %s\n", d.Source)

	last := len(d.Data.Axes) - 1
	quantity := d.Data.Axes[last].Quantity
	unit := d.Data.Axes[last].Unit

	w.WriteString(d.Data.Axes[0].Quantity)
	for range d.Data.Values {
		w.WriteString(separator)
		w.WriteString(quantity)
	}
	w.WriteByte('\n')

	w.WriteString(d.Data.Axes[0].Unit)
	for range d.Data.Values {
		w.WriteString(separator)
		w.WriteString(unit)
	}
	w.WriteByte('\n')
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
