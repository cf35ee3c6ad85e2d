package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadRecords decodes an uploaded ticket file into an untyped tabular
// batch. TXT files are treated as comma-delimited text like CSV; XLSX
// files are read from their first sheet. The first row is the header.
// Decode failures surface as errors here, before the pipeline runs.
func ReadRecords(path string) (RawBatch, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return RawBatch{}, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		return readDelimited(f)
	default:
		return RawBatch{}, fmt.Errorf("unsupported upload type: %s", filepath.Base(path))
	}
}

func readDelimited(r io.Reader) (RawBatch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return RawBatch{}, fmt.Errorf("decode csv: %w", err)
	}
	return tableToBatch(rows), nil
}

func readXLSX(path string) (RawBatch, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return RawBatch{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return RawBatch{}, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return RawBatch{}, fmt.Errorf("read xlsx sheet '%s': %w", sheets[0], err)
	}
	return tableToBatch(rows), nil
}

// tableToBatch maps header-first row data into keyed records. Headers are
// trimmed since spreadsheet exports often pad them; cell values are kept
// as-is. Short rows read as empty cells, excess cells are dropped.
func tableToBatch(rows [][]string) RawBatch {
	if len(rows) == 0 {
		return RawBatch{}
	}

	headers := make([]string, len(rows[0]))
	var batch RawBatch
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != "" {
			batch.Columns = append(batch.Columns, headers[i])
		}
	}

	for _, row := range rows[1:] {
		record := make(RawRecord, len(batch.Columns))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				record[h] = row[i]
			}
		}
		batch.Rows = append(batch.Rows, record)
	}
	return batch
}
