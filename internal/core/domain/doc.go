// Package domain defines the core business entities for vconstore.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - VCon: A conversation record with header fields and four
//     ordered sub-collections
//   - Party, Dialog, Analysis, Attachment: The sub-entities
//   - SearchQuery: Header-level search criteria
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
