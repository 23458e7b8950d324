package domain

import (
	"strings"
	"time"
)

// PathSeparator joins category path segments in display and corpus text.
const PathSeparator = " > "

// Category represents a node in the marketplace category taxonomy.
// Only leaf categories can be assigned to a listing.
type Category struct {
	// ID is the marketplace-assigned category identifier (opaque, stable).
	ID string

	// Name is the category display name.
	Name string

	// Path is the ordered sequence of names from root to this category,
	// including the category itself.
	Path []string

	// Depth is the distance from the root. Equals len(Path).
	Depth int

	// Leaf is true when the category has no children.
	Leaf bool

	// ParentID links to the parent category. Empty for roots.
	ParentID string
}

// PathString returns the full path joined with PathSeparator.
// Example: "Vehicle Parts & Accessories > Car Parts > Wiper Blades".
func (c Category) PathString() string {
	return strings.Join(c.Path, PathSeparator)
}

// Root returns the top-level segment of the category path.
// The root segment is the primary signal for domain disambiguation.
func (c Category) Root() string {
	if len(c.Path) == 0 {
		return ""
	}
	return c.Path[0]
}

// CorpusText builds the text a category embedding is derived from.
// Including the full path disambiguates identically-named leaves
// under different parents.
func (c Category) CorpusText() string {
	return c.Name + " - " + c.PathString()
}

// Validate checks the category invariants.
func (c Category) Validate() error {
	if c.ID == "" || c.Name == "" {
		return ErrInvalidInput
	}
	if c.Leaf && len(c.Path) == 0 {
		return ErrInvalidInput
	}
	if c.Depth != len(c.Path) {
		return ErrInvalidInput
	}
	return nil
}

// EmbeddingRecord is the derived artifact pairing a category with its
// vector. Kept alongside the index so retrieval hits can be mapped back
// to category metadata, and for auditability of what was embedded.
type EmbeddingRecord struct {
	// CategoryID links to the Category this vector was derived from.
	CategoryID string

	// Vector is the L2-normalized embedding.
	Vector []float32

	// SourceText is the exact text the vector was derived from.
	SourceText string
}

// CorpusInfo describes a built category corpus. The embedding model name
// is stamped so vectors from a different model are never compared.
type CorpusInfo struct {
	// ModelName is the embedding model the corpus was built with.
	ModelName string

	// Dimensions is the embedding vector size.
	Dimensions int

	// TreeVersion is the taxonomy version the corpus was built from.
	TreeVersion string

	// Size is the number of indexed categories.
	Size int

	// BuiltAt is when the corpus was generated.
	BuiltAt time.Time
}

// IsStale reports whether the corpus is older than maxAge.
// Marketplace taxonomies update roughly quarterly.
func (i CorpusInfo) IsStale(maxAge time.Duration) bool {
	if i.BuiltAt.IsZero() {
		return true
	}
	return time.Since(i.BuiltAt) > maxAge
}

// Candidate is one retrieved category with its similarity score.
type Candidate struct {
	// CategoryID is the matched category.
	CategoryID string

	// Name is the category display name.
	Name string

	// Path is the full root-to-leaf path.
	Path []string

	// Similarity is the cosine similarity of the query to the category
	// embedding. Ordinal evidence only: useful for ranking, not a
	// calibrated probability.
	Similarity float64
}

// PathString returns the candidate's path joined with PathSeparator.
func (c Candidate) PathString() string {
	return strings.Join(c.Path, PathSeparator)
}

// Root returns the top-level segment of the candidate's path.
func (c Candidate) Root() string {
	if len(c.Path) == 0 {
		return ""
	}
	return c.Path[0]
}

// CandidateSet is the ordered retrieval output (descending similarity).
// A non-empty set is a retrieval postcondition; an empty set is an error,
// never a silent result.
type CandidateSet []Candidate

// Top returns the highest-similarity candidate.
// Callers must check IsEmpty first.
func (s CandidateSet) Top() Candidate {
	return s[0]
}

// IsEmpty returns true when the set holds no candidates.
func (s CandidateSet) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether the given category id is in the set.
func (s CandidateSet) Contains(categoryID string) bool {
	for _, c := range s {
		if c.CategoryID == categoryID {
			return true
		}
	}
	return false
}

// Find returns the candidate with the given id.
func (s CandidateSet) Find(categoryID string) (Candidate, bool) {
	for _, c := range s {
		if c.CategoryID == categoryID {
			return c, true
		}
	}
	return Candidate{}, false
}
