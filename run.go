package main

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"time"
)

// RunResult describes one completed pipeline run over a single upload.
type RunResult struct {
	SourceFile string
	Summary    BatchSummary
	RawRecords int
	ReportPath string
	CSVPath    string
	Usage      LLMUsage
}

// ProcessFile runs the full pipeline over one upload: ingest, normalize,
// summarize, narrate, write the report files, record the run. Only decode
// and write failures are errors; an upload with no valid tickets still
// produces a report with zeroed stats.
func ProcessFile(cfg Config, db *sql.DB, path string) (RunResult, error) {
	started := time.Now()
	sourceFile := filepath.Base(path)

	raw, err := ReadRecords(path)
	if err != nil {
		return RunResult{}, err
	}

	batch := NormalizeBatch(raw, cfg.Schema)
	summary := Summarize(batch)
	if summary.TotalTickets == 0 {
		log.Printf("run file=%s records=%d: no valid tickets", sourceFile, len(raw.Rows))
	}

	stories, usage := BuildAllStories(cfg, batch)

	reportDate := started
	if cfg.Location != nil {
		reportDate = reportDate.In(cfg.Location)
	}
	content := BuildRunReport(cfg, sourceFile, summary, stories, reportDate)
	reportPath, err := WriteReportFile(content, cfg.ReportOutputDir, reportDate, cfg.TeamName)
	if err != nil {
		return RunResult{}, fmt.Errorf("write report: %w", err)
	}
	csvPath, err := WriteProcessedCSV(batch, cfg.Schema.DateLayout, cfg.ReportOutputDir, reportDate, cfg.TeamName)
	if err != nil {
		return RunResult{}, fmt.Errorf("write processed csv: %w", err)
	}

	runID, err := InsertIngestRun(db, IngestRun{
		SourceFile:      sourceFile,
		TotalRecords:    len(raw.Rows),
		ValidTickets:    summary.TotalTickets,
		UniqueCustomers: summary.UniqueCustomers,
		DateRangeDays:   summary.DateRangeDays,
		ReportPath:      reportPath,
		StartedAt:       started,
		FinishedAt:      time.Now(),
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("record run: %w", err)
	}

	var narratives []NarrativeRecord
	for product, story := range stories {
		narratives = append(narratives, NarrativeRecord{
			Product:  product,
			Provider: cfg.LLMProvider,
			Model:    cfg.LLMModel,
			Content:  story,
		})
	}
	if err := InsertNarratives(db, runID, narratives); err != nil {
		return RunResult{}, fmt.Errorf("record narratives: %w", err)
	}

	log.Printf("run file=%s records=%d tickets=%d products=%d tokens=%d report=%s",
		sourceFile, len(raw.Rows), summary.TotalTickets, len(summary.ProductCounts),
		usage.TotalTokens(), reportPath)

	return RunResult{
		SourceFile: sourceFile,
		Summary:    summary,
		RawRecords: len(raw.Rows),
		ReportPath: reportPath,
		CSVPath:    csvPath,
		Usage:      usage,
	}, nil
}

// FormatRunSummary returns a human-readable one-liner for a finished run.
func FormatRunSummary(r RunResult) string {
	if r.Summary.TotalTickets == 0 {
		return fmt.Sprintf("Processed %s: no valid tickets in %d records. Report: %s",
			r.SourceFile, r.RawRecords, r.ReportPath)
	}
	return fmt.Sprintf("Processed %s: %d valid tickets from %d records, %d customers, %d products. Report: %s",
		r.SourceFile, r.Summary.TotalTickets, r.RawRecords,
		r.Summary.UniqueCustomers, len(r.Summary.ProductCounts), r.ReportPath)
}
