package model

import (
	"nupop-core/dna"
)

// ContextRows is the number of transition-table rows an order-k chain needs:
// one per k-mer context, 2 bits per base.
func ContextRows(k int) int { return 1 << (2 * uint(k)) }

// EmissionModel is the closed set of emission variants: *OrderOne and
// *OrderFour. The variant is picked once by Params.Emission.
type EmissionModel interface {
	// Order is k, the number of preceding bases conditioned on.
	Order() int
	// Boundary returns the order-1 tables used where fewer than k bases of
	// context exist.
	Boundary() *OrderOne
	// Cond is log P(b | context row, s).
	Cond(s State, row int, b dna.Base) float64

	emissionModel()
}

// OrderOne is a first-order chain per state with an initial distribution.
// All values are natural logs.
type OrderOne struct {
	initial [NumStates][dna.AlphabetSize]float64
	trans   [NumStates][dna.AlphabetSize][dna.AlphabetSize]float64
}

func (m *OrderOne) Order() int          { return 1 }
func (m *OrderOne) Boundary() *OrderOne { return m }
func (m *OrderOne) emissionModel()      {}

func (m *OrderOne) Cond(s State, row int, b dna.Base) float64 { return m.trans[s][row][b] }

// Initial is log P(first base = b | s).
func (m *OrderOne) Initial(s State, b dna.Base) float64 { return m.initial[s][b] }

// OrderFour conditions on the four preceding bases (256 rows per state) and
// carries the order-1 tables for the sequence boundary.
type OrderFour struct {
	boundary *OrderOne
	trans    [NumStates][][dna.AlphabetSize]float64
}

func (m *OrderFour) Order() int          { return 4 }
func (m *OrderFour) Boundary() *OrderOne { return m.boundary }
func (m *OrderFour) emissionModel()      {}

func (m *OrderFour) Cond(s State, row int, b dna.Base) float64 { return m.trans[s][row][b] }
