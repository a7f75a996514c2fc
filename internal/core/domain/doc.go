// Package domain defines the core business entities for Clearcut.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The central mutable aggregate, written by three
//     independent producers (fast path, deep analysis, index job)
//   - Chunk: A contiguous slice of raw text used as a retrieval unit
//   - DeepAnalysis: The settled aggregate of the capability fan-out
//   - ChatMessage: One turn of citation-grounded question answering
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
