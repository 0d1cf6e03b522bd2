package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const MemoryPath = ":memory:"

// OpenSqlite opens the service database. Every connection to ":memory:" gets
// its own database, so the pool is pinned to a single connection.
func OpenSqlite(path string) (*sql.DB, error) {
	if path == "" {
		path = MemoryPath
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
