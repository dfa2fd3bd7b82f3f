// Package match ranks known names by similarity to an unresolved reference,
// so that resolution failures can say "did you mean ...".
//
// Key functions:
//   - NormalizeRef: folds a reference for fuzzy comparison
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates: ranks known names against a reference
//   - Suggest: returns the best few candidates above a threshold
package match
