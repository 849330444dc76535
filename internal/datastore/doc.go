// Package datastore implements the process-wide key/value bus: cyclic,
// acyclic, and static records, with an optional durable sqlite snapshot
// sink (internal/datastore/sqlitesink).
package datastore
