// Package ports defines the interfaces that connect the replay core to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [RecordSource]: loads the persisted snapshot record array
//   - [MappingRepository]: loads the part -> URDF joint mapping table
//   - [ReportWriter]: persists analysis reports
//   - [Logger]: structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters (internal/adapters) implement them with concrete file system,
// zerolog and WebSocket code.
package ports
