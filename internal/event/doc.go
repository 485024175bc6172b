// Package event provides the typed event model the KPI engine reads.
//
// This package contains type definitions only. All other internal packages
// import event; event imports nothing internal.
//
// Key design constraints:
//   - Events arrive already cleaned; every Timestamp is a valid date
//   - A Dataset is immutable once constructed and is never mutated by the engine
//   - Boolean-like columns keep their raw text and are interpreted with
//     case folding (Flag.IsYes)
//   - Column access is typed (Event.Value), never reflective
package event
