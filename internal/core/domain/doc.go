// Package domain defines the core business entities for PolicyKB.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: An addressable span of policy text, the unit of retrieval
//   - Bundle: The result of loading one knowledge-base text
//   - Result: A retrieved chunk with query-dependent annotations
//   - SourceRef: A citation record consumed by source compaction
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
