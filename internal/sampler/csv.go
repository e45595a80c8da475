package sampler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// CSVSampler reads comma-separated text with a header row and returns the
// first MaxSampleRows data rows as a JSON array of objects keyed by header.
//
// Column types are inferred over the whole file: a column whose non-null
// cells are all integers is emitted as integers, all numeric as floats, all
// boolean literals as booleans, otherwise strings. Empty cells and the usual
// NA markers become null.
type CSVSampler struct {
	maxRows int
}

func NewCSVSampler() *CSVSampler {
	return &CSVSampler{maxRows: MaxSampleRows}
}

func (s *CSVSampler) Format() models.FormatTag {
	return models.FormatCSV
}

func (s *CSVSampler) Sample(raw []byte) (models.ContentSample, error) {
	if !utf8.Valid(raw) {
		return "", undecodable(errors.New("content is not valid UTF-8"))
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return "", malformed(errors.New("no columns to parse: missing header row"))
	}
	if err != nil {
		return "", malformed(fmt.Errorf("reading header: %w", err))
	}
	header = normalizeHeader(header)

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", malformed(fmt.Errorf("reading rows: %w", err))
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return "", malformed(fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec)))
		}
		rows = append(rows, rec)
	}

	kinds := inferColumnKinds(len(header), rows)
	if len(rows) > s.maxRows {
		rows = rows[:s.maxRows]
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for col, name := range header {
			if col > 0 {
				buf.WriteByte(',')
			}
			buf.Write(encodeJSON(name))
			buf.WriteByte(':')
			var cell string
			present := col < len(rec)
			if present {
				cell = rec[col]
			}
			buf.Write(encodeJSON(convertCell(cell, present, kinds[col])))
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return models.ContentSample(buf.String()), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// naValues are the cell spellings read as missing.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

var (
	boolTrue  = map[string]struct{}{"True": {}, "TRUE": {}, "true": {}}
	boolFalse = map[string]struct{}{"False": {}, "FALSE": {}, "false": {}}
)

type columnKind int

const (
	kindUnknown columnKind = iota // only nulls seen
	kindInt
	kindFloat
	kindBool
	kindString
)

// normalizeHeader names blank columns "Unnamed: i" and suffixes repeated
// names with ".1", ".2", ...
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

func isNA(cell string) bool {
	_, ok := naValues[strings.TrimSpace(cell)]
	return ok
}

func cellKind(cell string) columnKind {
	s := strings.TrimSpace(cell)
	if _, ok := boolTrue[s]; ok {
		return kindBool
	}
	if _, ok := boolFalse[s]; ok {
		return kindBool
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return kindInt
	}
	if isFiniteFloat(s) {
		return kindFloat
	}
	return kindString
}

func isFiniteFloat(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// mergeKinds widens a column kind to accommodate a new cell kind.
func mergeKinds(col, cell columnKind) columnKind {
	switch {
	case col == kindUnknown:
		return cell
	case col == cell:
		return col
	case (col == kindInt && cell == kindFloat) || (col == kindFloat && cell == kindInt):
		return kindFloat
	default:
		return kindString
	}
}

func inferColumnKinds(width int, rows [][]string) []columnKind {
	kinds := make([]columnKind, width)
	for _, rec := range rows {
		for col := 0; col < len(rec); col++ {
			if kinds[col] == kindString || isNA(rec[col]) {
				continue
			}
			kinds[col] = mergeKinds(kinds[col], cellKind(rec[col]))
		}
	}
	return kinds
}

func convertCell(cell string, present bool, kind columnKind) any {
	if !present || isNA(cell) {
		return nil
	}
	s := strings.TrimSpace(cell)
	switch kind {
	case kindInt:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case kindFloat:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	case kindBool:
		_, ok := boolTrue[s]
		return ok
	default:
		return cell
	}
}

// encodeJSON marshals v without HTML escaping.
func encodeJSON(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return []byte("null")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
