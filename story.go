package main

import (
	"fmt"
	"strings"
	"time"
)

const storyDateLayout = "January 2, 2006"

// generateNarrativeFn is a seam for tests to stub the LLM call.
var generateNarrativeFn = GenerateNarrative

// BuildAllStories renders a service journey for every product in the
// batch, keyed by product name. An empty batch yields an empty map.
func BuildAllStories(cfg Config, batch TicketBatch) (map[string]string, LLMUsage) {
	stories := make(map[string]string)
	usage := LLMUsage{}
	for _, product := range batch.Products() {
		story, u := BuildProductStory(cfg, batch, product)
		usage.Add(u)
		stories[product] = story
	}
	return stories, usage
}

// BuildProductStory renders the markdown service journey for one product:
// the batch is filtered to the product, split into the configured story
// sections, and each non-empty section gets a timeframe, its ticket
// numbers, and a narrative. When the LLM call fails or is disabled, a
// deterministic fallback narrative is used so the story always completes.
func BuildProductStory(cfg Config, batch TicketBatch, product string) (string, LLMUsage) {
	usage := LLMUsage{}

	sub := batch.FilterProduct(product)
	if len(sub.Tickets) == 0 {
		return fmt.Sprintf("# %s Service Summary\n\nNo tickets found for this product.\n", product), usage
	}

	sections := SectionBatch(sub, cfg.Schema.SectionNames)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Service Journey\n\n", product)
	for _, sec := range sections {
		if len(sec.Tickets) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", sec.Name)
		fmt.Fprintf(&b, "**Timeframe:** %s\n\n", sectionTimeframe(sec))
		fmt.Fprintf(&b, "**Ticket Numbers:** %s\n\n", sectionTicketNumbers(sec))

		narrative, u, err := generateNarrativeFn(cfg, formatSectionTickets(sec), sec.Name, product)
		usage.Add(u)
		if err != nil {
			narrative = fallbackNarrative(sec, product, err)
		}
		fmt.Fprintf(&b, "**Narrative:** %s\n\n---\n\n", strings.TrimSpace(narrative))
	}
	return b.String(), usage
}

// sectionTimeframe describes the span of dated tickets in a section.
func sectionTimeframe(sec StorySection) string {
	var first, last *time.Time
	for _, t := range sec.Tickets {
		if t.AcceptanceTime == nil {
			continue
		}
		if first == nil || t.AcceptanceTime.Before(*first) {
			first = t.AcceptanceTime
		}
		if last == nil || t.AcceptanceTime.After(*last) {
			last = t.AcceptanceTime
		}
	}
	if first == nil {
		return "Date information unavailable"
	}
	start := first.Format(storyDateLayout)
	end := last.Format(storyDateLayout)
	if start == end {
		return start
	}
	return fmt.Sprintf("%s to %s", start, end)
}

// sectionTicketNumbers lists up to five order numbers, noting how many
// more the section holds.
func sectionTicketNumbers(sec StorySection) string {
	var numbers []string
	for _, t := range sec.Tickets {
		if t.OrderNumber != "" {
			numbers = append(numbers, t.OrderNumber)
		}
	}
	if len(numbers) == 0 {
		return "No ticket numbers available"
	}
	shown := numbers
	if len(shown) > 5 {
		shown = shown[:5]
	}
	out := strings.Join(shown, ", ")
	if len(numbers) > 5 {
		out += fmt.Sprintf(" (and %d more)", len(numbers)-5)
	}
	return out
}

// formatSectionTickets renders the section's tickets as the plain-text
// block handed to the narrative prompt. The sentinel text is passed
// through like any other content.
func formatSectionTickets(sec StorySection) string {
	if len(sec.Tickets) == 0 {
		return "No tickets in this section."
	}

	blocks := make([]string, 0, len(sec.Tickets))
	for _, t := range sec.Tickets {
		date := "Date unavailable"
		if t.AcceptanceTime != nil {
			date = t.AcceptanceTime.Format(storyDateLayout)
		}
		block := fmt.Sprintf("Ticket: %s\nDate: %s\nCustomer: %s\nIssue: %s - %s\nResolution: %s\nNotes: %s",
			orUnknown(t.OrderNumber), date, orUnknown(t.CustomerNumber),
			t.OrderDescription1, t.OrderDescription2, t.CompletionResultKB, t.NoteMaximum)
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n---\n")
}

func fallbackNarrative(sec StorySection, product string, err error) string {
	base := fmt.Sprintf("During this %s period, %d tickets were processed for %s services. The team worked on resolving various technical issues and maintaining service quality.",
		strings.ToLower(sec.Name), len(sec.Tickets), product)
	if err != nil && err != errNarrativeDisabled {
		base += fmt.Sprintf(" (AI summary unavailable: %v)", err)
	}
	return base
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
