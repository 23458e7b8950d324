package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyTaxonomy indicates the category tree holds no usable
	// categories. The corpus cannot be built from it.
	ErrEmptyTaxonomy = errors.New("taxonomy is empty")

	// ErrEmptyCandidateSet indicates retrieval produced no candidates.
	// The pipeline cannot guess a category and must say so.
	ErrEmptyCandidateSet = errors.New("empty candidate set")

	// ErrRetrieverNotInitialized indicates the vector corpus is missing
	// or empty. Retrieval never fabricates a candidate.
	ErrRetrieverNotInitialized = errors.New("retriever not initialized")

	// ErrModelMismatch indicates the corpus was built with a different
	// embedding model than the one configured. Fatal at startup;
	// comparing vectors across models is meaningless.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrCorpusStale indicates the corpus outlived its configured age
	// and must be rebuilt before reuse.
	ErrCorpusStale = errors.New("corpus is stale")

	// ErrLLMUnavailable indicates the completion service is not
	// configured. Disambiguation degrades to pure retrieval.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. The pipeline cannot run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the marketplace API rate limit was hit.
	ErrRateLimited = errors.New("rate limited")

	// Authentication Errors.

	// ErrAuthRequired indicates marketplace credentials are missing.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the marketplace credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")
)
