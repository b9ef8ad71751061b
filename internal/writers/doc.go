// Package writers turns decoded records into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (TSV, NuPoP table, JSON/JSONL, CSV).
//   - The core stays domain-only; the pipeline stays orchestration-only.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
//   - A writer that fails keeps draining its input so senders never block.
package writers
