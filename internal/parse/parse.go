// Package parse turns input files into text plus tables. The pipeline only
// ever sees the ParsedDocument; file formats stop here.
//
// Supported formats: plain text (with embedded table detection), CSV and
// XLSX. PDFs are expected to arrive pre-extracted as text.
package parse

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/fundsight/pedocs/internal/model"
)

// File parses one input file by extension.
func File(path string) (model.ParsedDocument, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(path)
	case ".xlsx":
		return parseXLSX(path)
	case ".txt", ".text", "":
		return parseText(path)
	default:
		return model.ParsedDocument{}, eris.Errorf("parse: unsupported extension %s", filepath.Ext(path))
	}
}

// HashFile returns the hex SHA-256 of a file's contents, used for job ledger
// dedup.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "parse: open %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", eris.Wrapf(err, "parse: hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func parseText(path string) (model.ParsedDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.ParsedDocument{}, eris.Wrapf(err, "parse: read %s", path)
	}
	text := string(raw)
	return model.ParsedDocument{
		Text:   text,
		Tables: detectTables(text),
	}, nil
}

func parseCSV(path string) (model.ParsedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ParsedDocument{}, eris.Wrapf(err, "parse: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return model.ParsedDocument{}, eris.Wrapf(err, "parse: read csv %s", path)
	}
	if len(records) == 0 {
		return model.ParsedDocument{}, nil
	}

	table := model.Table{Headers: records[0], Rows: records[1:]}
	return model.ParsedDocument{
		Text:   renderTableText(table),
		Tables: []model.Table{table},
	}, nil
}

// renderTableText flattens a table into "header: value" lines so the regex
// strategies can also run against tabular inputs.
func renderTableText(t model.Table) string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Headers, " | "))
	b.WriteString("\n")
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(t.Headers) && strings.TrimSpace(cell) != "" {
				b.WriteString(t.Headers[i])
				b.WriteString(": ")
				b.WriteString(cell)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// detectTables finds pipe- or tab-delimited blocks in plain text. A block
// qualifies when at least two consecutive lines share the same delimiter
// count.
func detectTables(text string) []model.Table {
	var tables []model.Table
	lines := strings.Split(text, "\n")

	var block [][]string
	flush := func() {
		if len(block) >= 2 {
			tables = append(tables, model.Table{Headers: block[0], Rows: block[1:]})
		}
		block = nil
	}

	for _, line := range lines {
		cells := splitRow(line)
		if cells == nil {
			flush()
			continue
		}
		if len(block) > 0 && len(block[0]) != len(cells) {
			flush()
		}
		block = append(block, cells)
	}
	flush()
	return tables
}

func splitRow(line string) []string {
	var parts []string
	switch {
	case strings.Count(line, "|") >= 2:
		parts = strings.Split(strings.Trim(line, "| "), "|")
	case strings.Count(line, "\t") >= 1:
		parts = strings.Split(line, "\t")
	default:
		return nil
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
