package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrSchemaVersion is returned by OpenReadOnly for a database whose schema
// version differs from the one this build writes.
var ErrSchemaVersion = errors.New("unsupported schema version")

type pragma struct {
	name, value string
}

// writerPragmas configure a read-write connection.
var writerPragmas = []pragma{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// readerPragmas configure a read-only connection. journal_mode is left as
// the writer set it.
var readerPragmas = []pragma{
	{"busy_timeout", "5000"},
	{"query_only", "ON"},
}

type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order on databases whose user_version is below their
// version. schema.sql always holds the latest shape, so each statement must
// be a no-op on a fresh database.
var migrations = []migration{
	{1, "per-salesperson index", `CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, ts_nanos)`},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// Store provides durable storage for dashboard events.
type Store struct {
	db       *sql.DB
	readOnly bool
}

// Open creates or opens the event store at path and brings its schema up
// to date. Opening the same database again is a no-op.
func Open(path string) (*Store, error) {
	db, err := connect(path, writerPragmas)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing event store for reading. It never creates
// the file or changes the schema; a database at another schema version is
// rejected with ErrSchemaVersion.
func OpenReadOnly(path string) (*Store, error) {
	db, err := connect("file:"+path+"?mode=ro", readerPragmas)
	if err != nil {
		return nil, err
	}
	version, err := userVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version != currentSchemaVersion {
		db.Close()
		return nil, fmt.Errorf("%w: %s is at %d, want %d", ErrSchemaVersion, path, version, currentSchemaVersion)
	}
	return &Store{db: db, readOnly: true}, nil
}

func connect(dsn string, pragmas []pragma) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps
	// per-connection pragmas in force.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p.name, err)
		}
	}
	return db, nil
}

// migrate applies schema.sql, then every migration newer than the stored
// user_version.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	version, err := userVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection for queries Store does not wrap.
func (s *Store) DB() *sql.DB {
	return s.db
}
