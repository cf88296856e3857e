package safety

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteAuditLog implements AuditSink (see system.go): every level
// transition is appended to a WAL-mode SQLite database, so a post-incident
// review can reconstruct exactly when and why the machine left a level.
//
// Grounded on the teacher's production/persister.go event-log table and on
// daviddao-clockmail's pkg/store WAL-mode SQLite setup.
type SQLiteAuditLog struct {
	db *sql.DB
}

// OpenSQLiteAuditLog opens (or creates) the audit database at path and
// ensures its schema exists.
func OpenSQLiteAuditLog(path string) (*SQLiteAuditLog, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS level_transitions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			tick       INTEGER NOT NULL,
			from_level TEXT NOT NULL,
			to_level   TEXT NOT NULL,
			event      TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transitions_tick ON level_transitions(tick);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}

	return &SQLiteAuditLog{db: db}, nil
}

// Record appends one transition. Satisfies AuditSink.
func (a *SQLiteAuditLog) Record(rec AuditRecord) error {
	_, err := a.db.Exec(
		`INSERT INTO level_transitions (tick, from_level, to_level, event, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.Tick, rec.From, rec.To, string(rec.Event), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Close closes the underlying database handle.
func (a *SQLiteAuditLog) Close() error { return a.db.Close() }

// Recent returns the most recent n transitions, newest first.
func (a *SQLiteAuditLog) Recent(n int) ([]AuditRecord, error) {
	rows, err := a.db.Query(
		`SELECT tick, from_level, to_level, event FROM level_transitions
		 ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		var event string
		if err := rows.Scan(&rec.Tick, &rec.From, &rec.To, &event); err != nil {
			return nil, err
		}
		rec.Event = EventID(event)
		out = append(out, rec)
	}
	return out, rows.Err()
}
