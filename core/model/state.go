package model

// State is a hidden state of the two-state duration HMM.
type State uint8

const (
	Linker State = iota
	Nucleosome
)

// NumStates is the number of hidden states.
const NumStates = 2

// Other returns the state that must follow s.
func (s State) Other() State { return 1 - s }

// Bit is the N/L column value: 1 for nucleosome, 0 for linker.
func (s State) Bit() int { return int(s) }

func (s State) String() string {
	if s == Nucleosome {
		return "N"
	}
	return "L"
}
