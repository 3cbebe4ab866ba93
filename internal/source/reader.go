// Package source reads raw extract files into column-name-to-value records.
// The package is format-bound but storage-agnostic: callers hand it a local
// path and the rest of the pipeline only ever sees Records.
package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Record is one raw source row keyed by column name. Records are
// transient; they are discarded after normalization.
type Record map[string]string

// Source yields raw records one at a time. Next returns io.EOF after the
// final record.
type Source interface {
	Next() (Record, error)
	Close() error
}

// Open opens the extract at path and selects a reader by file extension
// (.csv or .json). The encoding name applies to CSV extracts; catalog
// JSON files are always UTF-8.
func Open(path, encoding string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return openCSV(path, encoding)
	case ".json":
		return openJSON(path)
	default:
		return nil, fmt.Errorf("unsupported file format for %s", path)
	}
}

// ReadAll drains a source into memory. Intended for small catalog files;
// the transactions extract should be consumed record by record.
func ReadAll(src Source) ([]Record, error) {
	var records []Record
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported source encoding: %s", encoding)
	}
}

type csvSource struct {
	file   *os.File
	reader *csv.Reader
	header []string
}

func openCSV(path, encoding string) (*csvSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := decodeReader(f, encoding)
	if err != nil {
		f.Close()
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &csvSource{file: f, reader: cr, header: header}, nil
}

func (s *csvSource) Next() (Record, error) {
	row, err := s.reader.Read()
	if err != nil {
		return nil, err
	}

	rec := make(Record, len(s.header))
	for i, col := range s.header {
		if i < len(row) {
			rec[col] = row[i]
		}
	}
	return rec, nil
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

type jsonSource struct {
	file    *os.File
	decoder *json.Decoder
}

// openJSON expects a top-level array of flat objects and streams them
// one element at a time.
func openJSON(path string) (*jsonSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		f.Close()
		return nil, fmt.Errorf("%s: expected a top-level JSON array", path)
	}

	return &jsonSource{file: f, decoder: dec}, nil
}

func (s *jsonSource) Next() (Record, error) {
	if !s.decoder.More() {
		return nil, io.EOF
	}

	var obj map[string]any
	if err := s.decoder.Decode(&obj); err != nil {
		return nil, err
	}

	rec := make(Record, len(obj))
	for k, v := range obj {
		rec[k] = stringify(v)
	}
	return rec, nil
}

func (s *jsonSource) Close() error {
	return s.file.Close()
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
