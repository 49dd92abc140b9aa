// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - VConStore: Relational persistence of vCon records
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Cache: Key-value read acceleration with TTL. Without it, every
//     read goes straight to the store.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
