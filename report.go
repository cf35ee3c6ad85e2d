package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BuildRunReport renders the combined markdown report for one processed
// upload: the aggregate overview followed by every product story.
func BuildRunReport(cfg Config, sourceFile string, summary BatchSummary, stories map[string]string, reportDate time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Ticket Summary Report\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n", reportDate.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Source file: %s\n\n", sourceFile)

	fmt.Fprintf(&b, "## Data Overview\n\n")
	fmt.Fprintf(&b, "- Total Tickets: %d\n", summary.TotalTickets)
	fmt.Fprintf(&b, "- Unique Customers: %d\n", summary.UniqueCustomers)
	fmt.Fprintf(&b, "- Date Range: %d days\n\n", summary.DateRangeDays)

	fmt.Fprintf(&b, "## Tickets by Product\n\n")
	for _, line := range countLines(summary.ProductCounts) {
		b.WriteString(line)
	}
	fmt.Fprintf(&b, "\n## Tickets by Category\n\n")
	for _, line := range countLines(summary.CategoryCounts) {
		b.WriteString(line)
	}

	var products []string
	for p := range stories {
		products = append(products, p)
	}
	sort.Strings(products)
	for _, p := range products {
		b.WriteString("\n")
		b.WriteString(stories[p])
	}
	return b.String()
}

// countLines renders a count map as markdown bullets, highest count first
// with name as the tie-breaker.
func countLines(counts map[string]int) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- %s: %d tickets\n", e.name, e.count))
	}
	return lines
}

func WriteReportFile(content, outputDir string, reportDate time.Time, teamName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.md", sanitizeFilename(teamName), reportDate.Format("20060102_1504"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}

// WriteProcessedCSV exports the normalized batch as CSV, echoing the
// projected columns in order. Timestamps are written back in the schema
// layout; missing ones stay empty cells.
func WriteProcessedCSV(batch TicketBatch, layout, outputDir string, reportDate time.Time, teamName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_processed_%s.csv", sanitizeFilename(teamName), reportDate.Format("20060102_1504"))
	path := filepath.Join(outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(batch.Columns); err != nil {
		return "", err
	}
	for _, t := range batch.Tickets {
		row := make([]string, 0, len(batch.Columns))
		for _, col := range batch.Columns {
			row = append(row, t.Value(col, layout))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}
