package main

import (
	"sort"
	"time"
)

// Column names in the default upload vocabulary. PRODUCT is derived during
// normalization and never read from an upload.
const (
	ColOrderNumber            = "ORDER_NUMBER"
	ColAcceptanceTime         = "ACCEPTANCE_TIME"
	ColCompletionTime         = "COMPLETION_TIME"
	ColCustomerCompletionTime = "CUSTOMER_COMPLETION_TIME"
	ColCustomerNumber         = "CUSTOMER_NUMBER"
	ColOrderType              = "ORDER_TYPE"
	ColProcessingStatus       = "PROCESSING_STATUS"
	ColServiceCategory        = "SERVICE_CATEGORY"
	ColOrderDescription1      = "ORDER_DESCRIPTION_1"
	ColOrderDescription2      = "ORDER_DESCRIPTION_2"
	ColCompletionResultKB     = "COMPLETION_RESULT_KB"
	ColNoteMaximum            = "NOTE_MAXIMUM"
	ColProduct                = "PRODUCT"
)

// SentinelText replaces missing free-text values during normalization.
// It is ordinary content afterwards, not an absence marker, and downstream
// consumers must not special-case it away.
const SentinelText = "No information available"

// RawRecord is one untyped row from an upload, keyed by column header.
// An absent or empty cell both read as "".
type RawRecord map[string]string

// RawBatch is what the ingestion adapter hands to the pipeline: untyped
// rows plus the header order they arrived in. A column is "present" only
// if it appears in Columns.
type RawBatch struct {
	Columns []string
	Rows    []RawRecord
}

// Ticket is one normalized support record. Timestamp fields are nil when
// the source value was absent or did not parse against the configured
// layout.
type Ticket struct {
	OrderNumber            string
	AcceptanceTime         *time.Time
	CompletionTime         *time.Time
	CustomerCompletionTime *time.Time
	CustomerNumber         string
	OrderType              string
	ProcessingStatus       string
	ServiceCategory        string
	Product                string
	OrderDescription1      string
	OrderDescription2      string
	CompletionResultKB     string
	NoteMaximum            string

	// Extra carries values of configured columns that have no dedicated
	// field (custom schemas only). Passed through unmodified.
	Extra map[string]string
}

// TicketBatch is an ordered batch of normalized tickets together with the
// projected column set that survived normalization. Batches are treated as
// immutable once produced; consumers derive new ones instead of mutating.
type TicketBatch struct {
	Columns []string
	Tickets []Ticket
}

func (b TicketBatch) HasColumn(name string) bool {
	for _, c := range b.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FilterProduct derives a new batch holding only tickets of one product,
// preserving order.
func (b TicketBatch) FilterProduct(product string) TicketBatch {
	out := TicketBatch{Columns: b.Columns}
	for _, t := range b.Tickets {
		if t.Product == product {
			out.Tickets = append(out.Tickets, t)
		}
	}
	return out
}

// Products returns the distinct product names in the batch, sorted.
func (b TicketBatch) Products() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range b.Tickets {
		if t.Product != "" && !seen[t.Product] {
			seen[t.Product] = true
			out = append(out, t.Product)
		}
	}
	sort.Strings(out)
	return out
}

// Value renders the ticket's cell for the named column, formatting
// timestamps with layout. Missing timestamps render as empty cells.
func (t Ticket) Value(col, layout string) string {
	switch col {
	case ColOrderNumber:
		return t.OrderNumber
	case ColAcceptanceTime:
		return formatTimePtr(t.AcceptanceTime, layout)
	case ColCompletionTime:
		return formatTimePtr(t.CompletionTime, layout)
	case ColCustomerCompletionTime:
		return formatTimePtr(t.CustomerCompletionTime, layout)
	case ColCustomerNumber:
		return t.CustomerNumber
	case ColOrderType:
		return t.OrderType
	case ColProcessingStatus:
		return t.ProcessingStatus
	case ColServiceCategory:
		return t.ServiceCategory
	case ColProduct:
		return t.Product
	case ColOrderDescription1:
		return t.OrderDescription1
	case ColOrderDescription2:
		return t.OrderDescription2
	case ColCompletionResultKB:
		return t.CompletionResultKB
	case ColNoteMaximum:
		return t.NoteMaximum
	default:
		return t.Extra[col]
	}
}

func formatTimePtr(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}
