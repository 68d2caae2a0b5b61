package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
)

var (
	errEmptyFile = errors.New("file is empty")
	errNoHeader  = errors.New("missing header row")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var candidateDelimiters = []rune{',', ';', '\t', '|'}

func parseDelimited(data []byte, limit int) (iter.Seq[RawRecord], error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ledgererr.ParseError{Format: string(FormatCSV), Err: errEmptyFile}
	}
	delim := sniffDelimiter(data)
	if _, err := readHeader(data, delim); err != nil {
		return nil, err
	}

	return func(yield func(RawRecord) bool) {
		r := newReader(data, delim)
		if _, err := r.Read(); err != nil {
			return
		}
		index := 0
		for limit <= 0 || index < limit {
			fields, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			rec := RawRecord{Index: index}
			if err != nil {
				rec.Err = err
			} else if isBlank(fields) {
				continue
			} else {
				rec.Fields = trimFields(fields)
			}
			index++
			if !yield(rec) {
				return
			}
		}
	}, nil
}

// Headers returns the header row of a delimited file.
func Headers(data []byte) ([]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ledgererr.ParseError{Format: string(FormatCSV), Err: errEmptyFile}
	}
	return readHeader(data, sniffDelimiter(data))
}

func readHeader(data []byte, delim rune) ([]string, error) {
	header, err := newReader(data, delim).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errNoHeader
		}
		return nil, &ledgererr.ParseError{Format: string(FormatCSV), Err: err}
	}
	if isBlank(header) {
		return nil, &ledgererr.ParseError{Format: string(FormatCSV), Err: errNoHeader}
	}
	return trimFields(header), nil
}

func newReader(data []byte, delim rune) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r
}

// sniffDelimiter picks the candidate that splits the first line into the
// most fields, preferring the comma on ties.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if c := strings.Count(string(line), string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func trimFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
