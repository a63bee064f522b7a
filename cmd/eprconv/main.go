// Command eprconv converts cw-EPR measurement files from their vendor
// formats to exchange formats.
//
// Usage:
//
//	eprconv [flags] source [source ...]
//
// Each source is imported with automatic format detection and written
// next to its input, unless -out names a different target basename.
//
// Examples:
//
//	eprconv sample.DSC
//	eprconv -to csv sample
//	eprconv -to xlsx -out converted sample
//	eprconv -to yaml sweepdir/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openepr/cwepr/dataset"
	"github.com/openepr/cwepr/export"
	"github.com/openepr/cwepr/format"
	_ "github.com/openepr/cwepr/format/all"
)

// converters maps the -to flag values to their export functions.
var converters = map[string]func(*dataset.Dataset, string) error{
	"txt":  export.ASCII,
	"csv":  export.CSV,
	"yaml": export.Metadata,
	"xlsx": export.XLSX,
}

func main() {
	to := flag.String("to", "txt", "output format: txt, csv, yaml or xlsx")
	out := flag.String("out", "", "target basename (default: derived from the source)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eprconv [flags] source [source ...]\n\n")
		fmt.Fprintf(os.Stderr, "Converts cw-EPR measurement files to exchange formats.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	convert, ok := converters[strings.ToLower(*to)]
	if !ok {
		fmt.Fprintf(os.Stderr, "error: unknown output format %q\n", *to)
		os.Exit(2)
	}

	sources := flag.Args()
	if len(sources) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *out != "" && len(sources) > 1 {
		fmt.Fprintf(os.Stderr, "error: -out cannot be used with several sources\n")
		os.Exit(2)
	}

	exitCode := 0

	for _, source := range sources {
		target := *out
		if target == "" {
			target = targetBasename(source)
		}

		if err := convertSource(source, target, convert); err != nil {
			log.Error().Err(err).Str("source", source).Msg("conversion failed")

			exitCode = 1

			continue
		}

		log.Info().Str("source", source).Str("target", target).
			Str("format", *to).Msg("converted")
	}

	os.Exit(exitCode)
}

func convertSource(source, target string,
	convert func(*dataset.Dataset, string) error) error {
	d, err := format.Import(source)
	if err != nil {
		return err
	}

	return convert(d, target)
}

// targetBasename strips a known vendor extension and a trailing path
// separator so directory sources get a sensible output name too.
func targetBasename(source string) string {
	source = strings.TrimSuffix(source, string(filepath.Separator))

	for _, f := range format.Formats() {
		for _, ext := range f.Extensions {
			if strings.HasSuffix(source, ext) {
				return strings.TrimSuffix(source, ext)
			}
		}
	}

	return source
}
