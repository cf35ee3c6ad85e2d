package main

import (
	"sort"
	"time"
)

// NormalizeBatch turns a raw upload into a clean, typed, chronologically
// sorted ticket batch. It never fails: unusable input degrades to an empty
// batch, per-field anomalies degrade to nil timestamps or sentinel text.
// An empty result is a legitimate terminal state, not an error.
func NormalizeBatch(raw RawBatch, schema Schema) TicketBatch {
	projected := projectColumns(raw, schema)
	if !containsColumn(projected.Columns, ColServiceCategory) {
		return TicketBatch{}
	}
	filtered := filterByCategory(projected, schema.Categories)
	if len(filtered.Rows) == 0 {
		return TicketBatch{}
	}
	batch := buildTickets(filtered, schema)
	batch = sortByAcceptance(batch)
	batch = fillMissingText(batch)
	return batch
}

// projectColumns keeps only configured columns that are actually present
// in the upload, in schema order.
func projectColumns(raw RawBatch, schema Schema) RawBatch {
	present := make(map[string]bool, len(raw.Columns))
	for _, c := range raw.Columns {
		present[c] = true
	}

	var cols []string
	for _, c := range schema.Columns {
		if present[c] {
			cols = append(cols, c)
		}
	}

	out := RawBatch{Columns: cols}
	for _, row := range raw.Rows {
		projected := make(RawRecord, len(cols))
		for _, c := range cols {
			projected[c] = row[c]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// filterByCategory drops every row whose service category is not exactly
// one of the whitelist tokens. Matching is case-sensitive with no
// whitespace normalization: a near-miss token means the row is invalid,
// not that it needs repair.
func filterByCategory(raw RawBatch, categories []string) RawBatch {
	valid := make(map[string]bool, len(categories))
	for _, c := range categories {
		valid[c] = true
	}

	out := RawBatch{Columns: raw.Columns}
	for _, row := range raw.Rows {
		if valid[row[ColServiceCategory]] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// buildTickets types each surviving row: timestamps are parsed against the
// schema layout (nil when absent or unparsable) and the product is derived
// from the category map, which the filter step guarantees is in-domain.
func buildTickets(raw RawBatch, schema Schema) TicketBatch {
	batch := TicketBatch{Columns: append(append([]string{}, raw.Columns...), ColProduct)}
	for _, row := range raw.Rows {
		t := Ticket{
			ServiceCategory: row[ColServiceCategory],
		}
		t.Product = schema.ProductMap[t.ServiceCategory]
		for _, col := range raw.Columns {
			switch col {
			case ColServiceCategory:
				// already set
			case ColAcceptanceTime:
				t.AcceptanceTime = parseUploadTime(row[col], schema.DateLayout)
			case ColCompletionTime:
				t.CompletionTime = parseUploadTime(row[col], schema.DateLayout)
			case ColCustomerCompletionTime:
				t.CustomerCompletionTime = parseUploadTime(row[col], schema.DateLayout)
			case ColOrderNumber:
				t.OrderNumber = row[col]
			case ColCustomerNumber:
				t.CustomerNumber = row[col]
			case ColOrderType:
				t.OrderType = row[col]
			case ColProcessingStatus:
				t.ProcessingStatus = row[col]
			case ColOrderDescription1:
				t.OrderDescription1 = row[col]
			case ColOrderDescription2:
				t.OrderDescription2 = row[col]
			case ColCompletionResultKB:
				t.CompletionResultKB = row[col]
			case ColNoteMaximum:
				t.NoteMaximum = row[col]
			default:
				if t.Extra == nil {
					t.Extra = make(map[string]string)
				}
				t.Extra[col] = row[col]
			}
		}
		batch.Tickets = append(batch.Tickets, t)
	}
	return batch
}

// parseUploadTime parses a timestamp cell. Empty or malformed values come
// back as nil; parsing never fails the batch.
func parseUploadTime(s, layout string) *time.Time {
	if s == "" {
		return nil
	}
	parsed, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	return &parsed
}

// sortByAcceptance stable-sorts the batch ascending by acceptance time
// when that column is present. Rows without an acceptance time sort ahead
// of dated rows; ties keep their original order.
func sortByAcceptance(batch TicketBatch) TicketBatch {
	if !batch.HasColumn(ColAcceptanceTime) {
		return batch
	}
	out := TicketBatch{Columns: batch.Columns}
	out.Tickets = append([]Ticket{}, batch.Tickets...)
	sort.SliceStable(out.Tickets, func(i, j int) bool {
		a, b := out.Tickets[i].AcceptanceTime, out.Tickets[j].AcceptanceTime
		if a == nil {
			return b != nil
		}
		if b == nil {
			return false
		}
		return a.Before(*b)
	})
	return out
}

// fillMissingText replaces empty values in the free-text columns with the
// sentinel, but only for columns the upload actually carried.
func fillMissingText(batch TicketBatch) TicketBatch {
	out := TicketBatch{Columns: batch.Columns}
	out.Tickets = append([]Ticket{}, batch.Tickets...)
	for i := range out.Tickets {
		t := &out.Tickets[i]
		if batch.HasColumn(ColOrderDescription1) && t.OrderDescription1 == "" {
			t.OrderDescription1 = SentinelText
		}
		if batch.HasColumn(ColOrderDescription2) && t.OrderDescription2 == "" {
			t.OrderDescription2 = SentinelText
		}
		if batch.HasColumn(ColCompletionResultKB) && t.CompletionResultKB == "" {
			t.CompletionResultKB = SentinelText
		}
		if batch.HasColumn(ColNoteMaximum) && t.NoteMaximum == "" {
			t.NoteMaximum = SentinelText
		}
	}
	return out
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
