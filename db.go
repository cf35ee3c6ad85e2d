package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS ingest_runs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		source_file      TEXT NOT NULL,
		total_records    INTEGER NOT NULL DEFAULT 0,
		valid_tickets    INTEGER NOT NULL DEFAULT 0,
		unique_customers INTEGER NOT NULL DEFAULT 0,
		date_range_days  INTEGER NOT NULL DEFAULT 0,
		report_path      TEXT DEFAULT '',
		started_at       DATETIME NOT NULL,
		finished_at      DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ingest_runs_source ON ingest_runs(source_file);
	CREATE INDEX IF NOT EXISTS idx_ingest_runs_finished ON ingest_runs(finished_at);

	CREATE TABLE IF NOT EXISTS narratives (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     INTEGER NOT NULL,
		product    TEXT NOT NULL,
		provider   TEXT DEFAULT '',
		model      TEXT DEFAULT '',
		content    TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_narratives_run ON narratives(run_id);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}
	return db, nil
}

type IngestRun struct {
	ID              int64
	SourceFile      string
	TotalRecords    int
	ValidTickets    int
	UniqueCustomers int
	DateRangeDays   int
	ReportPath      string
	StartedAt       time.Time
	FinishedAt      time.Time
}

type NarrativeRecord struct {
	ID        int64
	RunID     int64
	Product   string
	Provider  string
	Model     string
	Content   string
	CreatedAt time.Time
}

func InsertIngestRun(db *sql.DB, run IngestRun) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO ingest_runs (source_file, total_records, valid_tickets, unique_customers, date_range_days, report_path, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.SourceFile, run.TotalRecords, run.ValidTickets, run.UniqueCustomers,
		run.DateRangeDays, run.ReportPath, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SourceFileProcessed reports whether an upload with this source file name
// has already been recorded. The watcher uses it to skip seen files.
func SourceFileProcessed(db *sql.DB, sourceFile string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM ingest_runs WHERE source_file = ?", sourceFile).Scan(&count)
	return count > 0, err
}

func GetRunsByDateRange(db *sql.DB, from, to time.Time) ([]IngestRun, error) {
	rows, err := db.Query(
		`SELECT id, source_file, total_records, valid_tickets, unique_customers, date_range_days, report_path, started_at, finished_at
		 FROM ingest_runs WHERE finished_at >= ? AND finished_at < ? ORDER BY finished_at, id`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []IngestRun
	for rows.Next() {
		var r IngestRun
		err := rows.Scan(
			&r.ID, &r.SourceFile, &r.TotalRecords, &r.ValidTickets, &r.UniqueCustomers,
			&r.DateRangeDays, &r.ReportPath, &r.StartedAt, &r.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func InsertNarratives(db *sql.DB, runID int64, records []NarrativeRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO narratives (run_id, product, provider, model, content) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(runID, r.Product, r.Provider, r.Model, r.Content); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func GetNarrativesByRun(db *sql.DB, runID int64) ([]NarrativeRecord, error) {
	rows, err := db.Query(
		`SELECT id, run_id, product, provider, model, content, created_at
		 FROM narratives WHERE run_id = ? ORDER BY product, id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NarrativeRecord
	for rows.Next() {
		var r NarrativeRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.Product, &r.Provider, &r.Model, &r.Content, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
