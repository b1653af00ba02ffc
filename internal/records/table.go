package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"biopsycli/internal/dataprocessing"
	apperrors "biopsycli/internal/errors"
	"biopsycli/pkg/contracts/domain"
)

// ErrNoDataRows is returned when the file holds a header row only.
var ErrNoDataRows = errors.New("data file has no data rows")

// LoadTable reads and decodes the data file at path. A .xlsx path is read
// as a spreadsheet export of the register; anything else as JSON.
func LoadTable(path string, logger *slog.Logger) (*domain.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return dataprocessing.ParseWorkbook(path, logger)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("open data file %s", path), err)
	}
	defer f.Close()

	return DecodeTable(f)
}

// DecodeTable decodes a data file body. Cells may be strings, numbers,
// booleans or null; nested values are kept as compact JSON text.
func DecodeTable(r io.Reader) (*domain.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw [][]interface{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewParsingError("data file is empty", err)
		}
		return nil, apperrors.NewParsingError("decode data file", err)
	}
	if len(raw) == 0 {
		return nil, apperrors.NewParsingError("data file is empty", io.EOF)
	}
	if len(raw) < 2 {
		return nil, apperrors.NewParsingError("decode data file", ErrNoDataRows)
	}

	t := &domain.Table{
		Headers: cellsToStrings(raw[0]),
		Rows:    make([][]string, 0, len(raw)-1),
	}
	for _, row := range raw[1:] {
		t.Rows = append(t.Rows, cellsToStrings(row))
	}
	return t, nil
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = cellString(c)
	}
	return out
}

func cellString(c interface{}) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			return fmt.Sprint(v)
		}
		return string(bytes.TrimSpace(buf.Bytes()))
	}
}
