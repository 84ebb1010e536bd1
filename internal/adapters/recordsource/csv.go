package recordsource

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

func openCSV(path string) (*csv.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	br := stripUTF8BOM(bufio.NewReader(f))

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r, f.Close, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrInvalidRecord)
		}
		return nil, err
	}
	for i := range h {
		h[i] = strings.TrimSpace(h[i])
		if !utf8.ValidString(h[i]) {
			return nil, fmt.Errorf("%w: invalid header encoding", ErrInvalidRecord)
		}
	}
	return h, nil
}

// readCSVTable decodes a CSV file with a header row into records of type T.
// Each row is turned into a JSON object keyed by header so that the JSON
// field tags and date handling of T apply unchanged. Empty cells are left out.
func readCSVTable[T any](path string) ([]T, error) {
	r, closeFn, err := openCSV(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = closeFn() }()

	header, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var out []T
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrInvalidRecord, path, line, err)
		}
		obj := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				obj[name] = strings.TrimSpace(row[i])
			}
		}
		if len(obj) == 0 {
			continue
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		var rec T
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrInvalidRecord, path, line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
