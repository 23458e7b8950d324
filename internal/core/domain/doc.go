// Package domain defines the core business entities for Relist.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Category: A node in the marketplace category taxonomy
//   - ProductSignal: The free-text product context for one listing attempt
//   - Candidate: A retrieved category with its similarity score
//   - ListingDraft: The final category/title/brand decision
//   - AspectRequirement: A category-specific listing field schema
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
