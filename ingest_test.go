package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	return path
}

func TestReadRecordsCSV(t *testing.T) {
	content := "ORDER_NUMBER, SERVICE_CATEGORY ,CUSTOMER_NUMBER\n" +
		"T001,NET,C001\n" +
		"T002,KAV\n"
	path := writeUpload(t, "upload.csv", content)

	batch, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}

	want := []string{"ORDER_NUMBER", "SERVICE_CATEGORY", "CUSTOMER_NUMBER"}
	if len(batch.Columns) != len(want) {
		t.Fatalf("expected %d columns, got %v", len(want), batch.Columns)
	}
	for i, col := range want {
		if batch.Columns[i] != col {
			t.Fatalf("column %d is %q, want %q (headers should be trimmed)", i, batch.Columns[i], col)
		}
	}
	if len(batch.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(batch.Rows))
	}
	if batch.Rows[0]["SERVICE_CATEGORY"] != "NET" {
		t.Fatalf("unexpected cell: %q", batch.Rows[0]["SERVICE_CATEGORY"])
	}
	if batch.Rows[1]["CUSTOMER_NUMBER"] != "" {
		t.Fatalf("short row should read as empty cell, got %q", batch.Rows[1]["CUSTOMER_NUMBER"])
	}
}

func TestReadRecordsTXTAsDelimited(t *testing.T) {
	path := writeUpload(t, "upload.txt", "SERVICE_CATEGORY\nNET\n")

	batch, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if len(batch.Rows) != 1 || batch.Rows[0]["SERVICE_CATEGORY"] != "NET" {
		t.Fatalf("unexpected txt batch: %+v", batch)
	}
}

func TestReadRecordsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"ORDER_NUMBER", "SERVICE_CATEGORY", "ACCEPTANCE_TIME"},
		{"T001", "NET", "01/15/2024 10:30"},
		{"T002", "KAV", "01/16/2024 14:20"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}

	batch, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if len(batch.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(batch.Rows))
	}
	if batch.Rows[0]["ORDER_NUMBER"] != "T001" || batch.Rows[1]["SERVICE_CATEGORY"] != "KAV" {
		t.Fatalf("unexpected xlsx cells: %+v", batch.Rows)
	}

	normalized := NormalizeBatch(batch, DefaultSchema())
	if len(normalized.Tickets) != 2 {
		t.Fatalf("xlsx batch should normalize to 2 tickets, got %d", len(normalized.Tickets))
	}
	if normalized.Tickets[0].AcceptanceTime == nil {
		t.Fatalf("xlsx date cell did not parse")
	}
}

func TestReadRecordsUnsupportedType(t *testing.T) {
	path := writeUpload(t, "upload.pdf", "not tabular")

	_, err := ReadRecords(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported upload type") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestReadRecordsMissingFile(t *testing.T) {
	_, err := ReadRecords(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadRecordsEmptyFile(t *testing.T) {
	path := writeUpload(t, "empty.csv", "")

	batch, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("empty file should not be a decode error: %v", err)
	}
	if len(batch.Columns) != 0 || len(batch.Rows) != 0 {
		t.Fatalf("empty file should give an empty batch: %+v", batch)
	}
}
