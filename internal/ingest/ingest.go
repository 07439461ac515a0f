// Package ingest turns uploaded bytes into a plain row/column grid. It owns
// the concerns the engine explicitly does not: container sniffing (XLSX vs
// delimited text), text encoding detection, and delimiter detection.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/ignite/campaign-estimator/internal/tabular"
)

// zipMagic opens every XLSX container.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// Load converts an uploaded file into a grid with the header in row 0.
// XLSX buffers go through the sheet flattener; everything else is decoded
// as delimited text. Empty input yields an empty grid.
func Load(data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if bytes.HasPrefix(data, zipMagic) {
		return tabular.Flatten(data)
	}
	return loadDelimited(data)
}

func loadDelimited(data []byte) ([][]string, error) {
	text, enc := decodeText(data)
	sep := detectDelimiter(text)
	log.Printf("[ingest] delimited text: encoding=%s separator=%q size=%d", enc, sep, len(data))

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sep
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}

	// Drop fully empty trailing rows; exporters love them.
	for len(rows) > 0 && emptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// decodeText detects the upload's text encoding and returns UTF-8. BOMs
// decide when present; otherwise valid UTF-8 is kept as-is and anything
// else is read as Windows-1252, the usual suspect for legacy exports.
func decodeText(data []byte) (string, string) {
	switch {
	case bytes.HasPrefix(data, []byte{0xef, 0xbb, 0xbf}):
		return string(data[3:]), "utf-8 bom"
	case bytes.HasPrefix(data, []byte{0xff, 0xfe}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return string(out), "utf-16le"
		}
	case bytes.HasPrefix(data, []byte{0xfe, 0xff}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return string(out), "utf-16be"
		}
	}
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		// Decoding 1252 cannot really fail, but keep the raw bytes as a
		// last resort rather than dropping the upload.
		return string(data), "raw"
	}
	return string(out), "windows-1252"
}

// detectDelimiter picks the separator by counting candidates in the header
// line. Semicolon and tab are tried before comma because the source files
// this replaces used both.
func detectDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', 0
	for _, cand := range []rune{';', '\t', ','} {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
