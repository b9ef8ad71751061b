// Package pipeline streams FASTA records through a Decoder on a pool of
// workers and hands the results to a visit callback in input order.
//
// The only contract to implement is Decoder (Predict + Cost).
// This keeps the pipeline swappable and testable.
package pipeline
