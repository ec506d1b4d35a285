/*
csv.go - Parsing of the product and point-of-sale files

FILE FORMATS:
  Products:  dateID;prodID;catID;fabID        (';' separated, no header)
  Sales:     dateID,prodID,catID,fabID,magID  (',' separated, five preamble
             lines then a header row)

  Columns are positional; header names are ignored.

TYPE COERCION:
  dateID is parsed as YYYYMMDD. A value that does not parse leaves Date at
  the zero time and the row is kept. Key columns are trimmed and must not
  be empty.

SEE ALSO:
  - types.go: Row types
  - source.go: FileSource opening the files
*/
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVOptions controls how a file is split into rows.
type CSVOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
	// HeaderLine is the 0-based index of the header among non-empty lines.
	// Lines up to and including it are skipped. Negative means the file has
	// no header.
	HeaderLine int
}

// DefaultProductOptions matches the product listings export.
var DefaultProductOptions = CSVOptions{Delimiter: ';', HeaderLine: -1}

// DefaultSaleOptions matches the point-of-sale export.
var DefaultSaleOptions = CSVOptions{Delimiter: ',', HeaderLine: 5}

const (
	productFields = 4
	saleFields    = 5
)

// ReadProducts parses a product listings file.
func ReadProducts(r io.Reader, opts CSVOptions) ([]Product, error) {
	var out []Product
	err := readRows(r, opts, productFields, func(rec []string) {
		out = append(out, NewProduct(rec[0], rec[1], rec[2], rec[3]))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadSales parses a point-of-sale file.
func ReadSales(r io.Reader, opts CSVOptions) ([]Sale, error) {
	var out []Sale
	err := readRows(r, opts, saleFields, func(rec []string) {
		out = append(out, NewSale(rec[0], rec[1], rec[2], rec[3], rec[4]))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readRows streams records past the header and hands trimmed, validated
// fields to emit.
func readRows(r io.Reader, opts CSVOptions, fields int, emit func([]string)) error {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	// Preamble lines have arbitrary widths.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	// HeaderLine counts records, not physical lines: the csv reader drops
	// empty lines, so they do not shift the header.
	for index := 0; ; index++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read csv: %w", err)
		}
		if index <= opts.HeaderLine || isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < fields {
			return &RowError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", fields, len(rec))}
		}
		vals := make([]string, fields)
		for i := 0; i < fields; i++ {
			vals[i] = strings.TrimSpace(rec[i])
			if i > 0 && vals[i] == "" {
				return &RowError{Line: line, Reason: fmt.Sprintf("empty key in column %d", i+1)}
			}
		}
		emit(vals)
	}
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
