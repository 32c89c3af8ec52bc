package db

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// LowerFunc is a SQL function that lowercases text with Unicode case rules.
// The built-in lower() only folds ASCII.
const LowerFunc = "unicode_lower"

func init() {
	// sqlx only knows the cgo driver name; the pure-Go driver uses '?' too.
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
	sqlite.MustRegisterDeterministicScalarFunction(LowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Open opens a SQLite database connection and configures pragmas.
//
// Times are written in SQLite's own layout so that DATETIME columns sort
// chronologically as text.
func Open(path string) (*sqlx.DB, error) {
	dsn := "file:" + path + "?_time_format=sqlite" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// An in-memory database lives and dies with its connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}
