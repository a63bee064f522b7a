package format

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/infofile"
)

// ApplyInfofile merges a sidecar info file (<source>.info) into the dataset
// metadata if one exists. Vendor parameter files are applied by the
// importers afterwards and override hand-written values. A missing info
// file is logged, not an error.
func ApplyInfofile(source string, d *dataset.Dataset) {
	path := source + ".info"

	if _, err := os.Stat(path); err != nil {
		log.Warn().Str("source", source).
			Msg("no info file found, import continued without it")
		return
	}

	info, err := infofile.Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).
			Msg("info file unreadable, import continued without it")
		return
	}

	info.Apply(&d.Metadata)
	d.Annotate(info.Comment)
}
