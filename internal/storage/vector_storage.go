// ABOUTME: Fixed-capacity in-memory vector store with exact cosine similarity search
// ABOUTME: Holds (label, vector) records in insertion order and ranks them brute force
package storage

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// similarityEpsilon is added to both norms so near-zero vectors never divide by zero
const similarityEpsilon = 1e-6

// Record is a labelled vector. The label is returned verbatim on a match.
type Record struct {
	Label  string
	Vector []float64
}

// SearchResult is a ranked match with its slot index and similarity score
type SearchResult struct {
	Label           string  `json:"label"`
	Slot            int     `json:"slot"`
	SimilarityScore float64 `json:"similarity_score"`
}

// VectorStorage is an arena of at most capacity records, indexed by insertion order
type VectorStorage struct {
	dim      int
	capacity int
	labels   []string
	vectors  [][]float64
	norms    []float64
	mu       sync.RWMutex
}

// NewVectorStorage creates an empty store for vectors of length dim
func NewVectorStorage(dim, capacity int) (*VectorStorage, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	return &VectorStorage{
		dim:      dim,
		capacity: capacity,
		labels:   make([]string, 0, capacity),
		vectors:  make([][]float64, 0, capacity),
		norms:    make([]float64, 0, capacity),
	}, nil
}

// Insert appends records in order. Each record is checked on its own, so when a record
// fails every record before it in the batch stays committed.
func (vs *VectorStorage) Insert(records []Record) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for i, rec := range records {
		if len(vs.labels) >= vs.capacity {
			return fmt.Errorf("record %d of %d: %w (capacity %d)", i+1, len(records), ErrCapacityExceeded, vs.capacity)
		}
		if len(rec.Vector) != vs.dim {
			return fmt.Errorf("record %d of %d: %w", i+1, len(records), &DimensionError{Expected: vs.dim, Actual: len(rec.Vector)})
		}
		if j := nonFinite(rec.Vector); j >= 0 {
			return fmt.Errorf("record %d of %d: %w at index %d", i+1, len(records), ErrNonFiniteVector, j)
		}

		vec := make([]float64, vs.dim)
		copy(vec, rec.Vector)
		vs.labels = append(vs.labels, rec.Label)
		vs.vectors = append(vs.vectors, vec)
		vs.norms = append(vs.norms, norm(vec))
	}
	return nil
}

// Search returns the labels of the k records most similar to query, best first.
// If k exceeds the record count every label is returned.
func (vs *VectorStorage) Search(query []float64, k int) ([]string, error) {
	results, err := vs.SearchScored(query, k)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(results))
	for i, r := range results {
		labels[i] = r.Label
	}
	return labels, nil
}

// SearchScored is Search with slot indices and similarity scores attached
func (vs *VectorStorage) SearchScored(query []float64, k int) ([]SearchResult, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != vs.dim {
		return nil, &DimensionError{Expected: vs.dim, Actual: len(query)}
	}
	if j := nonFinite(query); j >= 0 {
		return nil, fmt.Errorf("query: %w at index %d", ErrNonFiniteVector, j)
	}

	vs.mu.RLock()
	defer vs.mu.RUnlock()

	n := len(vs.labels)
	if k == 0 || n == 0 {
		return []SearchResult{}, nil
	}

	queryNorm := norm(query) + similarityEpsilon
	results := make([]SearchResult, n)
	for i, vec := range vs.vectors {
		results[i] = SearchResult{
			Label:           vs.labels[i],
			Slot:            i,
			SimilarityScore: dot(vec, query) / ((vs.norms[i] + similarityEpsilon) * queryNorm),
		}
	}

	// Stable so equal scores keep insertion order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if k > n {
		k = n
	}
	return results[:k], nil
}

// Len returns the number of stored records
func (vs *VectorStorage) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.labels)
}

// Cap returns the fixed capacity
func (vs *VectorStorage) Cap() int {
	return vs.capacity
}

// Dim returns the vector dimension
func (vs *VectorStorage) Dim() int {
	return vs.dim
}

// Clear drops every record. Slot indices restart from zero.
func (vs *VectorStorage) Clear() {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.labels = vs.labels[:0]
	vs.vectors = vs.vectors[:0]
	vs.norms = vs.norms[:0]
}

// CosineSimilarity computes dot(a, b) / ((|a|+eps) * (|b|+eps)).
// Mismatched lengths score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	return dot(a, b) / ((norm(a) + similarityEpsilon) * (norm(b) + similarityEpsilon))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}

// nonFinite returns the index of the first NaN or infinite component, or -1
func nonFinite(v []float64) int {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}
	return -1
}
