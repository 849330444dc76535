// Package sqlitesink implements an optional durable snapshot sink for
// internal/datastore: a thin wrapper over database/sql backed by
// modernc.org/sqlite, with schema managed by
// github.com/golang-migrate/migrate/v4 against an embedded migrations
// directory.
package sqlitesink
