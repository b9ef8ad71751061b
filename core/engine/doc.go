// Package engine decodes a scored sequence under the two-state
// explicit-duration HMM.
//
// Positions are 1-based. Index j of a DP column means "a segment boundary
// after base j"; j = 0 is the virtual boundary before the first base, where
// the linker column holds log π_N and the nucleosome column log π_L so the
// first segment is seeded like any other. The last segment is cut off by the
// end of the sequence and is scored with the survival function of its
// duration instead of the pmf.
//
// Viterbi and Posterior are independent; both are O(N·D) per state with
// D = max(nucleosome max, linker cap). A Decoder is read-only after New and
// may be shared by goroutines.
package engine
