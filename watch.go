package main

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

var uploadExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xlsx": true,
}

// StartWatchScheduler runs a cron-based scheduler that periodically scans
// the input directory and processes uploads not seen before.
// The schedule is a standard 5-field cron expression (minute hour day-of-month month day-of-week).
// Examples: "*/15 * * * *" (every 15 minutes), "0 7 * * 1-5" (weekdays 7am).
func StartWatchScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.WatchSchedule)
	if schedule == "" {
		log.Println("Watch disabled (watch_schedule not set)")
		return
	}
	if cfg.InputDir == "" {
		log.Println("Watch disabled: input_dir not set")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid watch_schedule '%s': %v, watch disabled", schedule, err)
		return
	}

	log.Printf("Watch scheduled (cron: %s) on %s", schedule, cfg.InputDir)

	go func() {
		for {
			now := time.Now()
			if cfg.Location != nil {
				now = now.In(cfg.Location)
			}
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next watch pass at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)
			runWatchPass(cfg, db, api)
		}
	}()
}

func runWatchPass(cfg Config, db *sql.DB, api *slack.Client) {
	pending, err := findPendingUploads(cfg.InputDir, db)
	if err != nil {
		log.Printf("Watch pass error: %v", err)
		return
	}
	if len(pending) == 0 {
		log.Println("Watch pass: nothing new")
		return
	}

	for _, path := range pending {
		result, err := ProcessFile(cfg, db, path)
		if err != nil {
			log.Printf("Watch processing error file=%s: %v", filepath.Base(path), err)
			continue
		}
		notifyRun(api, cfg.ReportChannelID, FormatRunSummary(result))
	}
}

// findPendingUploads lists uploads in dir that have no recorded run yet,
// sorted by name for deterministic processing order.
func findPendingUploads(dir string, db *sql.DB) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() || !uploadExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		processed, err := SourceFileProcessed(db, entry.Name())
		if err != nil {
			return nil, err
		}
		if processed {
			continue
		}
		pending = append(pending, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(pending)
	return pending, nil
}

// notifyRun posts the run summary to the report channel when Slack is
// configured; otherwise it is a no-op.
func notifyRun(api *slack.Client, channelID, msg string) {
	if api == nil || channelID == "" {
		return
	}
	if _, _, err := api.PostMessage(channelID, slack.MsgOptionText(msg, false)); err != nil {
		log.Printf("Slack notify error: %v", err)
	}
}
