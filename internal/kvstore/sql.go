package kvstore

import (
	"database/sql"
	"errors"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver
)

// SQL keeps the slot as one row of the kv_slot table, keyed by namespace.
type SQL struct {
	db        *sql.DB
	namespace string
}

// NewSQL opens dbURL and prepares the kv_slot table. libsql:// and wss://
// URLs use the libSQL driver, anything else is a local SQLite path or DSN.
func NewSQL(dbURL, namespace string) (*SQL, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQL{db: db, namespace: namespace}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_slot (
		namespace TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := db.Exec(query)
	return err
}

func (s *SQL) Load() ([]byte, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM kv_slot WHERE namespace = ?`, s.namespace).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}
	return []byte(data), nil
}

func (s *SQL) Save(data []byte) error {
	query := `INSERT INTO kv_slot (namespace, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			  ON CONFLICT(namespace) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	_, err := s.db.Exec(query, s.namespace, string(data))
	return err
}

func (s *SQL) Erase() error {
	_, err := s.db.Exec(`DELETE FROM kv_slot WHERE namespace = ?`, s.namespace)
	return err
}

// Close closes the database handle.
func (s *SQL) Close() error {
	return s.db.Close()
}
