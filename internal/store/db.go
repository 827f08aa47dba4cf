// Package store is the local persistence layer: cached scripture content,
// download progress metadata, the durable outbound message queue and small
// scalar app state, all in one profile-owned SQLite database.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a SQLite connection for the profile-owned selah.db.
type DB struct {
	*sql.DB
}

// Open creates a new SQLite connection with WAL mode and recommended pragmas.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, storageErr("open db", err)
	}
	// Verify connection.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, storageErr("ping db", err)
	}
	return &DB{db}, nil
}

// Namespace names one of the store's persisted key spaces.
type Namespace string

const (
	NamespaceChapters Namespace = "chapters"
	NamespaceVerses   Namespace = "verses"
	NamespaceMetadata Namespace = "metadata"
	NamespaceOutbox   Namespace = "outbox"
)

// table whitelists the SQL table backing each namespace.
func (ns Namespace) table() (string, error) {
	switch ns {
	case NamespaceChapters:
		return "chapters", nil
	case NamespaceVerses:
		return "verses", nil
	case NamespaceMetadata:
		return "download_meta", nil
	case NamespaceOutbox:
		return "outbox", nil
	}
	return "", fmt.Errorf("unknown namespace %q", ns)
}

// Count returns the number of records in a namespace.
func (db *DB) Count(ns Namespace) (int, error) {
	table, err := ns.table()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		return 0, storageErr("count "+string(ns), err)
	}
	return n, nil
}

// Clear removes every record in a namespace.
func (db *DB) Clear(ns Namespace) error {
	table, err := ns.table()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM " + table); err != nil {
		return storageErr("clear "+string(ns), err)
	}
	return nil
}
