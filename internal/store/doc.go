// Package store provides the SQLite-backed event log the dashboard reads.
//
// The dashboard loads the whole log once per process and treats the
// resulting event.Dataset as read-only; the engine never writes back.
// Events enter the store through WriteEvents (the import command); reports
// read through OpenReadOnly, which cannot create or alter a database.
//
// # Critical Patterns
//
// Deterministic reads:
//   - ReadEvents orders by ts_nanos ASC, id ASC COLLATE BINARY
//   - the same database always yields the same dataset order
//
// Idempotent writes:
//   - WriteEvents upserts by event id inside one transaction
//   - re-importing a file replaces rows instead of duplicating them
//
// Calendar fields:
//   - year and month are computed in Go at write time from the timestamp in
//     its own offset, so SQL year queries agree with time.Time.Year()
//
// Schema versions:
//   - schema.sql holds the latest shape; PRAGMA user_version records the
//     version, and migrations bring older files forward on Open
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - query_only=ON on read-only connections
package store
