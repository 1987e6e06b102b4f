// Package csvtoken splits loosely formatted CSV text into rows of fields.
//
// Community-maintained sheets are exported by different tools, so the
// tokenizer accepts both RFC 4180 quote doubling ("") and backslash escaped
// quotes (\"), LF and CRLF line endings, and newlines inside quoted fields.
// It never fails: malformed input produces best-effort rows and callers decide
// which rows to skip.
package csvtoken

import (
	"io"
	"strings"
)

const bom = "\uFEFF"

// Parse tokenizes a complete CSV blob. Blank lines are dropped, the header
// row (if any) is returned as the first row.
func Parse(text string) [][]string {
	rows, _ := tokenize(strings.TrimPrefix(text, bom), true)
	return rows
}

// tokenize scans text and returns every row terminated by a line break outside
// quotes. consumed is the byte offset right after the last emitted row; when
// final is set the trailing unterminated row is emitted as well.
func tokenize(text string, final bool) (rows [][]string, consumed int) {
	var (
		field    strings.Builder
		row      []string
		inQuotes bool
	)

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text) && text[i+1] == '"':
			field.WriteByte('"')
			i++
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			row = append(row, field.String())
			field.Reset()
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			row = append(row, field.String())
			field.Reset()
			if !isBlank(row) {
				rows = append(rows, row)
			}
			row = nil
			consumed = i + 1
		default:
			field.WriteByte(c)
		}
	}

	if final {
		row = append(row, field.String())
		if !isBlank(row) {
			rows = append(rows, row)
		}
		consumed = len(text)
	}

	return rows, consumed
}

func isBlank(row []string) bool {
	return len(row) == 1 && strings.TrimSpace(row[0]) == ""
}

// Stream is an incremental tokenizer. Chunks may split lines, quoted fields
// or escape sequences at any point; incomplete trailing data is buffered until
// the next Write or Flush. The first non-empty row of the stream is kept as
// the header and is not returned as a data row.
type Stream struct {
	pending    string
	header     []string
	bomChecked bool
}

// NewStream creates an empty incremental tokenizer.
func NewStream() *Stream {
	return &Stream{}
}

// Write appends a chunk and returns the data rows completed by it.
func (s *Stream) Write(chunk string) [][]string {
	s.pending += chunk
	if !s.bomChecked {
		if len(s.pending) < len(bom) && strings.HasPrefix(bom, s.pending) {
			return nil
		}
		s.pending = strings.TrimPrefix(s.pending, bom)
		s.bomChecked = true
	}

	rows, consumed := tokenize(s.pending, false)
	s.pending = s.pending[consumed:]
	return s.takeHeader(rows)
}

// Flush emits whatever is still buffered as the final row(s).
func (s *Stream) Flush() [][]string {
	pending := s.pending
	if !s.bomChecked {
		pending = strings.TrimPrefix(pending, bom)
		s.bomChecked = true
	}
	s.pending = ""

	rows, _ := tokenize(pending, true)
	return s.takeHeader(rows)
}

// Header returns the header row, or nil while none has been seen.
func (s *Stream) Header() []string {
	return s.header
}

func (s *Stream) takeHeader(rows [][]string) [][]string {
	if s.header == nil && len(rows) > 0 {
		s.header = rows[0]
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil
	}
	return rows
}

// DefaultChunkSize is used by ReadAll when chunkSize <= 0.
const DefaultChunkSize = 32 * 1024

// ReadAll drives a Stream from r and returns the header and all data rows.
func ReadAll(r io.Reader, chunkSize int) (header []string, rows [][]string, err error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	s := NewStream()
	buf := make([]byte, chunkSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			rows = append(rows, s.Write(string(buf[:n]))...)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return s.Header(), rows, readErr
		}
	}

	rows = append(rows, s.Flush()...)
	return s.Header(), rows, nil
}
