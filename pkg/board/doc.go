// Package board provides type-safe Go definitions and Redis schema patterns
// for the Quartz board model. The board store is the central shared state
// system where all Quartz components (automation engine, CLI, external mutation
// layers) interact via well-defined data structures stored in Redis.
//
// The package covers three tightly coupled concerns:
//
//   - The typed column/value model: each board defines an ordered list of
//     columns with a type (text, status, timeline, people, ...), and each item
//     carries one value per column whose shape is validated against the owning
//     column's type contract. SetValue is the single write path for values.
//
//   - Item and group records, including subitems (one level) and dependency
//     references between items.
//
//   - Automation definitions (trigger, conditions, actions) and their run
//     metadata. The automation engine in internal/engine consumes these.
//
// All Redis keys and channels are namespaced by instance name to enable
// multiple Quartz instances to safely coexist on a single Redis server.
package board
