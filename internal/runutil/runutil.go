// internal/runutil/runutil.go
package runutil

import (
	"fmt"
	"runtime"
)

// EffectiveThreads returns the worker count for a --threads value:
// n > 0 is used as-is, anything else means all CPUs.
func EffectiveThreads(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// PredictionPath names the NuPoP-layout file written by --save for a FASTA
// input: the input path, unchanged, plus "_Prediction<order>.txt".
// Stdin ("-") is saved as stdin_Prediction<order>.txt.
func PredictionPath(fasta string, order int) string {
	if fasta == "-" {
		fasta = "stdin"
	}
	return fmt.Sprintf("%s_Prediction%d.txt", fasta, order)
}
