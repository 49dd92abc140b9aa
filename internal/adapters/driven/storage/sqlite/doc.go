// Package sqlite provides the SQLite-backed implementation of the
// VConStore driven port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It holds three concerns:
//
//   - Row codec (codec.go): pure encode/decode between one sub-entity
//     (party, dialog entry, analysis entry, attachment) and its flat
//     row, applying the field-presence rules
//   - Document assembler (assemble.go): decomposition of a vCon into
//     a header row plus position-tagged sub-collection rows, and the
//     lossless reverse
//   - Store gateway (store.go): the upsert/select/delete/search SQL
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files. The header table carries the record's own uuid plus a
// store-generated id; the four dependent tables reference that id with
// ON DELETE CASCADE and keep an explicit zero-based position column.
//
// # Data Location
//
// By default, the database is stored at ~/.vconstore/data/vcons.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
