// Package domain contains the core entities and value objects for jointreplay.
//
// This package is the innermost layer. It has no dependencies on infrastructure
// concerns (files, WebSocket, logging) and contains only data and invariants.
//
// # Entities
//
//   - [Snapshot]: one recorded instant of all tracked part positions
//   - [Timeline]: the immutable, indexable sequence of snapshots produced by parsing
//   - [MappingTable]: static part -> URDF joint configuration
//   - [Frame]: one delivered playback update
//   - [ValidationReport]: non-fatal findings from comparing data with the mapping table
//
// # Design Principles
//
// Domain values are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
