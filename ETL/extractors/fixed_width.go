package extractors

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

const maxLineBytes = 1024 * 1024

// FixedWidthReader decodes fixed-width lines into chunks of raw records.
// Widths are counted in characters. Short lines are padded with empty
// fields and long lines are truncated after the last column. Blank lines
// are skipped.
type FixedWidthReader struct {
	scanner   *bufio.Scanner
	widths    []int
	chunkSize int

	line  int
	chunk int
	done  bool
}

// NewFixedWidthReader creates a reader over already-decoded UTF-8 text
func NewFixedWidthReader(r io.Reader, widths []int, chunkSize int) (*FixedWidthReader, error) {
	if len(widths) != models.RawFieldCount {
		return nil, fmt.Errorf("expected %d column widths, got %d", models.RawFieldCount, len(widths))
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &FixedWidthReader{
		scanner:   scanner,
		widths:    append([]int(nil), widths...),
		chunkSize: chunkSize,
	}, nil
}

// Next returns the next chunk of up to chunkSize records, or io.EOF once
// the input is exhausted
func (r *FixedWidthReader) Next() (models.RawChunk, error) {
	if r.done {
		return models.RawChunk{}, io.EOF
	}

	records := make([]models.RawRecord, 0, r.chunkSize)
	for len(records) < r.chunkSize && r.scanner.Scan() {
		r.line++
		text := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		records = append(records, models.RawRecord{
			Line:   r.line,
			Fields: SplitFixedWidth(text, r.widths),
		})
	}

	if err := r.scanner.Err(); err != nil {
		r.done = true
		return models.RawChunk{}, fmt.Errorf("read line %d: %w", r.line+1, err)
	}
	if len(records) == 0 {
		r.done = true
		return models.RawChunk{}, io.EOF
	}

	chunk := models.RawChunk{Index: r.chunk, Records: records}
	r.chunk++
	return chunk, nil
}

// LinesRead returns the number of lines consumed so far
func (r *FixedWidthReader) LinesRead() int {
	return r.line
}

// SplitFixedWidth cuts line into len(widths) whitespace-trimmed fields.
// Missing trailing fields are empty; characters past the last column are
// ignored.
func SplitFixedWidth(line string, widths []int) [models.RawFieldCount]string {
	var fields [models.RawFieldCount]string

	pos := 0
	for i, w := range widths {
		if i >= models.RawFieldCount || pos >= len(line) {
			break
		}
		end := pos
		for n := 0; n < w && end < len(line); n++ {
			_, size := utf8.DecodeRuneInString(line[end:])
			end += size
		}
		fields[i] = strings.TrimSpace(line[pos:end])
		pos = end
	}
	return fields
}
