// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - IndexCache: bounded cache of built lexical indexes, keyed by
//     content hash. The in-memory implementation in internal/index is
//     the default.
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - KBStore: raw knowledge-base document persistence. Without it,
//     loaded KBs live only in process memory.
//   - ConfigStore: application configuration. Without it, defaults
//     apply and mode changes are not persisted.
//
// # Import Rules
//
//   - Can Import: domain and the pure engine packages (index)
//   - Cannot Import: Any adapter package
package driven
