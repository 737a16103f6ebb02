// Package churn implements C9: per-commit Added/Deleted/Churn totals and
// a Shannon-entropy-based measure of how evenly churn is spread across a
// commit's files.
package churn

import (
	"math"

	"github.com/svnchurn/svnchurn/internal/model"
)

// Totals is the per-commit churn summary from spec.md §4.9.
type Totals struct {
	Added   int
	Deleted int
	Churn   int
	Entropy float64
}

// Derive computes Totals for a commit whose FileDiffStats have already
// been through rename correction (C8).
func Derive(commit *model.Commit) Totals {
	return Totals{
		Added:   commit.Added(),
		Deleted: commit.Deleted(),
		Churn:   commit.Churn(),
		Entropy: Entropy(commit),
	}
}

// Entropy computes the normalized Shannon entropy of per-file churn
// within a commit, per spec.md §4.9: over files with churn > 0, with
// p_i = c_i / Σc_i, entropy = −Σ p_i·log2(p_i) / log2(n) when n ≥ 2,
// else 0. A single contributing file returns 0; perfectly uniform churn
// across n ≥ 2 files returns 1.
func Entropy(commit *model.Commit) float64 {
	var churns []int
	var total int
	for _, s := range commit.FileDiffStats {
		c := s.Churn()
		if c > 0 {
			churns = append(churns, c)
			total += c
		}
	}

	n := len(churns)
	if n < 2 || total == 0 {
		return 0
	}

	var sum float64
	for _, c := range churns {
		p := float64(c) / float64(total)
		sum -= p * math.Log2(p)
	}
	return sum / math.Log2(float64(n))
}
