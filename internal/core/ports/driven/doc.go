// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - EmbeddingService: Generates vector embeddings for queries and corpus text
//   - VectorIndex: Stores category vectors and answers nearest-neighbour queries
//   - TaxonomySource: Fetches the category tree and per-category aspect schemas
//   - CatalogStore: Persists the category tree, corpus metadata and embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - LLMService: Completion calls for disambiguation and aspect filling.
//     Without it, category selection falls back to pure retrieval and aspect
//     filling is skipped.
//   - PromptStore: User-customisable prompt templates.
//   - ListingPublisher: The downstream listing-creation boundary.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
