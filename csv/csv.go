// Package csv streams customer rows out of a delimited file with a header line.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"customerstream/loader/appcontext"
	"customerstream/loader/customer"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrInvalidHeader is returned when the header line does not name the customer columns.
var ErrInvalidHeader = errors.New("invalid CSV header")

// InvalidHeaderError wraps ErrInvalidHeader with the reason it was rejected.
func InvalidHeaderError(path, reason string) error {
	return errors.Wrapf(ErrInvalidHeader, "%s: %s", path, reason)
}

// Reader yields the data rows of one file, in file order, one at a time.
// It is not safe for concurrent use.
type Reader struct {
	path     string
	file     *os.File
	reader   *csv.Reader
	colIndex map[string]int
	line     int
	closed   bool
}

// Open opens path and consumes its header line.
//
// A file with no content at all yields an empty sequence. A header missing one of
// customer.Columns, or naming one twice, fails with ErrInvalidHeader. Unknown
// extra columns are ignored.
func Open(ctx context.Context, path string) (*Reader, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Opening CSV source", "filePath", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file %s", path)
	}

	buffered := bufio.NewReader(file)
	if prefix, peekErr := buffered.Peek(len(utf8BOM)); peekErr == nil && string(prefix) == string(utf8BOM) {
		_, _ = buffered.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.Comma = ','
	reader.ReuseRecord = true

	r := &Reader{path: path, file: file, reader: reader}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			logger.WarnContext(ctx, "CSV source is empty", "filePath", path)
			return r, nil
		}
		_ = file.Close()
		return nil, errors.Wrapf(err, "failed to read CSV header from file %s", path)
	}

	colIndex, err := indexHeader(path, header)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	r.colIndex = colIndex

	return r, nil
}

func indexHeader(path string, header []string) (map[string]int, error) {
	known := make(map[string]bool, len(customer.Columns))
	for _, col := range customer.Columns {
		known[col] = true
	}

	colIndex := make(map[string]int, len(customer.Columns))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if !known[name] {
			continue
		}
		if _, dup := colIndex[name]; dup {
			return nil, InvalidHeaderError(path, "duplicate column "+name)
		}
		colIndex[name] = i
	}

	var missing []string
	for _, col := range customer.Columns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, InvalidHeaderError(path, "missing columns "+strings.Join(missing, ", "))
	}

	return colIndex, nil
}

// Next returns the next data row, or io.EOF once the file is exhausted.
// Cells past the end of a short line are absent from the returned row.
func (r *Reader) Next() (customer.Row, error) {
	if r.closed {
		return nil, errors.Newf("read from closed source %s", r.path)
	}
	if r.colIndex == nil {
		return nil, io.EOF
	}

	record, err := r.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "failed to read record %d from CSV in file %s", r.line+1, r.path)
	}
	r.line++

	row := make(customer.Row, len(r.colIndex))
	for col, idx := range r.colIndex {
		if idx < len(record) {
			row[col] = record[idx]
		}
	}

	return row, nil
}

// Line is the 1-based number of the last row returned by Next, header excluded.
func (r *Reader) Line() int {
	return r.line
}

// Close releases the underlying file. Calling it more than once is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.file.Close(); err != nil {
		return errors.Wrapf(err, "failed to close file %s", r.path)
	}

	return nil
}
