package sqlitesink

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/openpass-sim/kernel/internal/datastore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Sink is a durable snapshot destination for datastore.Record flushes.
type Sink struct {
	db *sql.DB
}

// Open opens (creating if absent) a sqlite database at path and migrates
// it to the latest schema version.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitesink: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitesink: set journal_mode: %w", err)
	}

	sink := &Sink{db: db}
	if err := sink.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *Sink) migrateUp() error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("sqlitesink: sub-filesystem: %w", err)
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("sqlitesink: iofs source driver: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlitesink: sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("sqlitesink: new migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("sqlitesink: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}

// FlushCyclic persists every cyclic record. The orchestrator reaches it
// through FlushAll once per invocation rather than every tick.
func (s *Sink) FlushCyclic(records []datastore.Record) error {
	return s.flush("cyclic_records", records)
}

// FlushAcyclic persists every acyclic record.
func (s *Sink) FlushAcyclic(records []datastore.Record) error {
	return s.flush("acyclic_records", records)
}

func (s *Sink) flush(table string, records []datastore.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlitesink: begin: %w", err)
	}
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s (time_ms, agent_id, key, value_json) VALUES (?, ?, ?, ?)`, table))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlitesink: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		valueJSON, err := json.Marshal(r.Value)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlitesink: marshal value for %s: %w", r.Key, err)
		}
		if _, err := stmt.Exec(r.Time.Milliseconds(), r.AgentID, r.Key, string(valueJSON)); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlitesink: insert %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// FlushAll snapshots store and persists every record in one call,
// the shape the run orchestrator's end-of-invocation cleanup uses.
func (s *Sink) FlushAll(store *datastore.Store) error {
	cyclic, acyclic, static := store.Snapshot()
	if err := s.FlushCyclic(cyclic); err != nil {
		return err
	}
	if err := s.FlushAcyclic(acyclic); err != nil {
		return err
	}
	return s.FlushStatic(static)
}

// FlushStatic upserts every static record (persist flag carried through
// so a restored snapshot preserves datastore.Store.Clear semantics).
func (s *Sink) FlushStatic(records map[string]datastore.StaticSnapshotEntry) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlitesink: begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO static_records (key, value_json, persist) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, persist = excluded.persist`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlitesink: prepare: %w", err)
	}
	defer stmt.Close()

	for key, e := range records {
		valueJSON, err := json.Marshal(e.Value)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlitesink: marshal static %s: %w", key, err)
		}
		persist := 0
		if e.Persist {
			persist = 1
		}
		if _, err := stmt.Exec(key, string(valueJSON), persist); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlitesink: upsert static %s: %w", key, err)
		}
	}
	return tx.Commit()
}
