package csql

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq" // load database driver for postgres
)

// DB encapsulates a standard sql.DB with a bounded connection pool.
// The pool is process-wide shared state: it is opened once at process
// start and closed once at process shutdown. Each request exclusively
// owns its acquired connection for the request's lifetime.
type DB struct {
	*sql.DB
}

// ErrNoRows is returned by Scan when QueryRow doesn't return a
// row. In such a case, QueryRow returns a placeholder *Row value that
// defers this error until a Scan.
var ErrNoRows = sql.ErrNoRows

// pool bounds. Acquisition beyond maxOpenConns blocks until a
// connection is returned or the request context expires.
const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// Open opens a kumande postgres database with a bounded connection pool.
// It pings the database and panics if the store is not reachable: the
// datastore is a startup requirement, never a lazy one.
func Open(dataSourceName string) *DB {
	log.Println("connecting to postgres database: ", dataSourceName)
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	err = db.Ping()
	if err != nil {
		panic(err)
	}
	return &DB{DB: db}
}
