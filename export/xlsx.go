package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/openepr/cwepr/dataset"
)

// Sheet names of an exported workbook.
const (
	dataSheet     = "data"
	metadataSheet = "metadata"
)

// XLSX writes the dataset to <target>.xlsx as a workbook with a data
// sheet (field axis and one column per trace, headed by quantity and
// unit) and a metadata sheet (flattened key/value rows, empty entries
// pruned).
func XLSX(d *dataset.Dataset, target string) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", dataSheet)

	if err := writeDataSheet(f, d); err != nil {
		return err
	}

	if err := writeMetadataSheet(f, d); err != nil {
		return err
	}

	if err := f.SaveAs(target + ".xlsx"); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	return nil
}

func writeDataSheet(f *excelize.File, d *dataset.Dataset) error {
	last := len(d.Data.Axes) - 1

	header := []string{fmt.Sprintf("%s / %s",
		d.Data.Axes[0].Quantity, d.Data.Axes[0].Unit)}

	for i := range d.Data.Values {
		label := fmt.Sprintf("%s / %s",
			d.Data.Axes[last].Quantity, d.Data.Axes[last].Unit)

		// label 2D traces with their second-axis value
		if len(d.Data.Axes) > 2 && i < len(d.Data.Axes[1].Values) {
			label = fmt.Sprintf("%g %s",
				d.Data.Axes[1].Values[i], d.Data.Axes[1].Unit)
		}

		header = append(header, label)
	}

	for col, text := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if err := f.SetCellValue(dataSheet, cell, text); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	for i, b := range d.Data.Axes[0].Values {
		row := i + 2

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if err := f.SetCellValue(dataSheet, cell, b); err != nil {
			return fmt.Errorf("export: %w", err)
		}

		for j, trace := range d.Data.Values {
			cell, err := excelize.CoordinatesToCellName(j+2, row)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if err := f.SetCellValue(dataSheet, cell, trace[i]); err != nil {
				return fmt.Errorf("export: %w", err)
			}
		}
	}

	return nil
}

func writeMetadataSheet(f *excelize.File, d *dataset.Dataset) error {
	if _, err := f.NewSheet(metadataSheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	raw, err := metadataYAML(d)
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	keys, values := flattenTree("", tree)

	for i := range keys {
		keyCell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		valueCell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if err := f.SetCellValue(metadataSheet, keyCell, keys[i]); err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if err := f.SetCellValue(metadataSheet, valueCell, values[i]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	return nil
}

// flattenTree turns the nested metadata map into sorted "section.key"
// rows.
func flattenTree(prefix string, tree map[string]any) (keys []string, values []any) {
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}

		if nested, ok := tree[name].(map[string]any); ok {
			nestedKeys, nestedValues := flattenTree(full, nested)
			keys = append(keys, nestedKeys...)
			values = append(values, nestedValues...)

			continue
		}

		keys = append(keys, full)
		values = append(values, tree[name])
	}

	return keys, values
}
