package main

// StorySection is one chronological bucket of a product's ticket history.
type StorySection struct {
	Name    string
	Tickets []Ticket
}

// SectionBatch partitions an ordered batch into one section per name,
// using the batch's existing order. Section size is max(1, n/len(names));
// the last section absorbs the remainder, so for uneven batches it is
// strictly larger than the rest. Every name is always present, possibly
// with an empty slice. Concatenating the sections in order reproduces the
// batch exactly.
func SectionBatch(batch TicketBatch, names []string) []StorySection {
	n := len(batch.Tickets)
	sections := make([]StorySection, 0, len(names))
	if len(names) == 0 {
		return sections
	}

	size := n / len(names)
	if size < 1 {
		size = 1
	}

	for i, name := range names {
		start := i * size
		end := (i + 1) * size
		if i == len(names)-1 {
			end = n
		}
		if start > n {
			start = n
		}
		if end > n {
			end = n
		}
		sections = append(sections, StorySection{Name: name, Tickets: batch.Tickets[start:end]})
	}
	return sections
}
