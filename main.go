package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/slack-go/slack"
)

func main() {
	filePath := flag.String("file", "", "process a single upload file and exit")
	flag.Parse()

	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	os.MkdirAll(cfg.ReportOutputDir, 0755)

	var api *slack.Client
	if cfg.SlackBotToken != "" {
		api = slack.New(cfg.SlackBotToken)
	}

	if *filePath != "" {
		result, err := ProcessFile(cfg, db, *filePath)
		if err != nil {
			log.Fatalf("Processing failed: %v", err)
		}
		summary := FormatRunSummary(result)
		log.Println(summary)
		notifyRun(api, cfg.ReportChannelID, summary)
		return
	}

	if strings.TrimSpace(cfg.WatchSchedule) == "" {
		log.Fatal("Nothing to do: pass -file <upload> or set watch_schedule")
	}

	log.Println("Starting Ticket Summary Bot...")
	StartWatchScheduler(cfg, db, api)
	select {}
}
