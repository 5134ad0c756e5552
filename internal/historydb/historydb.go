// Package historydb tracks the files pbedit has opened, in a small
// sqlite database, and offers a fuzzy filter over them (Filter);
// cmd/pbedit only records entries and never lists them. Grounded on sokmontrey-navi/store's db.go (schema/WAL setup) and
// history.go (frecency upsert/query), generalized from that package's
// directory-tree history to a flat opened-payload history, since pbedit
// has no directory tree of its own to track.
package historydb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sahilm/fuzzy"
)

// Entry is one previously opened payload, identified by its three CLI
// arguments (spec.md §6.1's data_file[;proto_file[;root_message]]).
type Entry struct {
	DataFile    string
	ProtoFile   string
	RootMessage string
	Frequency   int
	LastOpened  time.Time
}

// key is how an Entry is identified for upsert purposes: the same data
// file reopened with a different schema/root is tracked separately,
// since those materially change what gets edited.
func (e Entry) key() string {
	return e.DataFile + ";" + e.ProtoFile + ";" + e.RootMessage
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create historydb directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open historydb: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping historydb: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE,
		data_file TEXT NOT NULL,
		proto_file TEXT NOT NULL,
		root_message TEXT NOT NULL,
		frequency INTEGER DEFAULT 1,
		last_opened TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// Record upserts e, bumping frequency and last_opened if its key is
// already known.
func Record(db *sql.DB, e Entry) error {
	_, err := db.Exec(`
		INSERT INTO history (key, data_file, proto_file, root_message, frequency, last_opened)
		VALUES (?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			frequency = frequency + 1,
			last_opened = CURRENT_TIMESTAMP
	`, e.key(), e.DataFile, e.ProtoFile, e.RootMessage)
	if err != nil {
		return fmt.Errorf("record history entry: %w", err)
	}
	return nil
}

// Recent returns the limit most-recently-opened entries.
func Recent(db *sql.DB, limit int) ([]Entry, error) {
	rows, err := db.Query(`
		SELECT data_file, proto_file, root_message, frequency, last_opened
		FROM history ORDER BY last_opened DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.DataFile, &e.ProtoFile, &e.RootMessage, &e.Frequency, &e.LastOpened); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Filter fuzzy-matches query against every entry's DataFile, returning
// matches ordered best-first. An empty query returns every entry
// unranked, in the order given.
func Filter(entries []Entry, query string) []Entry {
	if query == "" {
		return entries
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.DataFile
	}
	matches := fuzzy.Find(query, paths)
	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = entries[m.Index]
	}
	return out
}
