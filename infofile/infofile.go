// Package infofile parses the sidecar info files experimenters write next
// to their raw data (<basename>.info). An info file starts with a header
// line naming the file kind and version, followed by titled blocks of
// "Key: value" pairs and a trailing free-text COMMENT block.
package infofile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMalformed is returned when the header line is missing or unreadable.
var ErrMalformed = errors.New("infofile: malformed info file")

const commentBlock = "COMMENT"

// Info is the parsed content of an info file.
type Info struct {
	Kind    string
	Version string
	Blocks  map[string]map[string]string
	Comment string
}

// Load reads and parses the info file at the given path.
func Load(filename string) (*Info, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("infofile: %w", err)
	}
	defer file.Close()

	info, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("infofile: parsing %s: %w", filename, err)
	}

	return info, nil
}

// Parse reads an info file from r.
func Parse(r io.Reader) (*Info, error) {
	scanner := bufio.NewScanner(r)

	info := &Info{Blocks: make(map[string]map[string]string)}

	if err := parseHeader(scanner, info); err != nil {
		return nil, err
	}

	var (
		block        string
		commentLines []string
	)

	for scanner.Scan() {
		line := scanner.Text()

		if block == commentBlock {
			commentLines = append(commentLines, line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if isBlockTitle(trimmed) {
			block = trimmed
			if block != commentBlock {
				info.Blocks[block] = make(map[string]string)
			}

			continue
		}

		key, value, found := strings.Cut(trimmed, ":")
		if !found || block == "" {
			continue
		}

		info.Blocks[block][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("infofile: %w", err)
	}

	info.Comment = strings.TrimSpace(strings.Join(commentLines, "\n"))

	return info, nil
}

// Get returns the value for key within the named block, or "" if absent.
func (i *Info) Get(block, key string) string {
	if values, ok := i.Blocks[block]; ok {
		return values[key]
	}

	return ""
}

func parseHeader(scanner *bufio.Scanner, info *Info) error {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Header format: "<kind> Info file - v. <version> (<date>)"
		kind, rest, found := strings.Cut(line, " - v. ")
		if !found || !strings.Contains(kind, "Info file") {
			return fmt.Errorf("%w: unexpected header %q", ErrMalformed, line)
		}

		info.Kind = strings.TrimSpace(strings.TrimSuffix(kind, "Info file"))
		info.Version = strings.TrimSpace(strings.SplitN(rest, " ", 2)[0])

		return nil
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("infofile: %w", err)
	}

	return fmt.Errorf("%w: empty file", ErrMalformed)
}

// isBlockTitle reports whether a line introduces a new block. Block titles
// are fully upper-case and carry no key/value separator.
func isBlockTitle(line string) bool {
	if strings.Contains(line, ":") {
		return false
	}

	hasLetter := false

	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}

		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}

	return hasLetter
}
