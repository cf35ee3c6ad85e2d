package main

import "time"

// BatchSummary is the deterministic aggregate contract consumed by report
// builders. All fields are well-typed even for an empty batch: zero counts
// and empty (never nil) maps.
type BatchSummary struct {
	TotalTickets    int
	UniqueCustomers int
	DateRangeDays   int
	ProductCounts   map[string]int
	CategoryCounts  map[string]int
}

// Summarize derives the basic statistics of a normalized batch. Customer
// numbers that are empty are ignored for the distinct count, and the date
// span is 0 unless at least two rows carry distinct acceptance times.
func Summarize(batch TicketBatch) BatchSummary {
	s := BatchSummary{
		TotalTickets:   len(batch.Tickets),
		ProductCounts:  make(map[string]int),
		CategoryCounts: make(map[string]int),
	}

	customers := make(map[string]bool)
	var earliest, latest *time.Time
	for _, t := range batch.Tickets {
		if t.CustomerNumber != "" {
			customers[t.CustomerNumber] = true
		}
		if t.Product != "" {
			s.ProductCounts[t.Product]++
		}
		if t.ServiceCategory != "" {
			s.CategoryCounts[t.ServiceCategory]++
		}
		if t.AcceptanceTime != nil {
			if earliest == nil || t.AcceptanceTime.Before(*earliest) {
				earliest = t.AcceptanceTime
			}
			if latest == nil || t.AcceptanceTime.After(*latest) {
				latest = t.AcceptanceTime
			}
		}
	}
	s.UniqueCustomers = len(customers)
	if earliest != nil && latest != nil {
		s.DateRangeDays = int(latest.Sub(*earliest) / (24 * time.Hour))
	}
	return s
}
