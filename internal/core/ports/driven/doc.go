// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): persistence, the embedding and completion
// providers, the vector index, and the capability gateway.
//
// Implementations live in internal/adapters/driven and internal/gateway.
package driven
