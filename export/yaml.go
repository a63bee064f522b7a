package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openepr/cwepr/dataset"
)

// Metadata writes the dataset's metadata to a YAML file. An empty
// filename defaults to "metadata-<timestamp>.yaml" in the working
// directory; a missing .yaml/.yml extension is appended. Empty entries
// are pruned, as is the q_value of -1 some spectrometers record when
// they did not measure it.
func Metadata(d *dataset.Dataset, filename string) error {
	if filename == "" {
		filename = "metadata-" + time.Now().Format("20060102T150405") + ".yaml"
	}

	if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
		filename += ".yaml"
	}

	out, err := metadataYAML(d)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, out, 0o644); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	return nil
}

// metadataYAML renders the pruned metadata. Pruning works on the
// marshalled form so that nested sections emptied by pruning disappear
// as well.
func metadataYAML(d *dataset.Dataset) ([]byte, error) {
	raw, err := yaml.Marshal(d.Metadata)
	if err != nil {
		return nil, fmt.Errorf("export: marshalling metadata: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	pruned := pruneMap(tree)

	out, err := yaml.Marshal(pruned)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	return out, nil
}

func pruneMap(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))

	for key, value := range tree {
		if nested, ok := value.(map[string]any); ok {
			value = pruneMap(nested)
		}

		if key == "q_value" && numericValue(value) == -1 {
			continue
		}

		if isEmpty(value) {
			continue
		}

		out[key] = value
	}

	return out
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case int:
		return v == 0
	case float64:
		return v == 0
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func numericValue(value any) float64 {
	switch v := value.(type) {
	case int:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}
