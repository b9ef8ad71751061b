package model

import (
	"strconv"
	"strings"
)

// Known lists the species numbering shared by NuPoP parameter bundles.
// Bundles may carry any subset and may rename entries.
var Known = []struct {
	ID      int
	Name    string
	Aliases []string
}{
	{1, "human", []string{"h.sapiens", "homo sapiens"}},
	{2, "mouse", []string{"m.musculus", "mus musculus"}},
	{3, "rat", []string{"r.norvegicus", "rattus norvegicus"}},
	{4, "zebrafish", []string{"d.rerio", "danio rerio"}},
	{5, "d.melanogaster", []string{"fly", "drosophila"}},
	{6, "c.elegans", []string{"worm"}},
	{7, "s.cerevisiae", []string{"yeast", "budding yeast"}},
	{8, "c.albicans", []string{"candida"}},
	{9, "s.pombe", []string{"fission yeast"}},
	{10, "a.thaliana", []string{"arabidopsis"}},
	{11, "maize", []string{"z.mays", "zea mays", "corn"}},
}

// Linker dwell variants.
const (
	LinkerGeometric = "geometric"
	LinkerTable     = "table"
)

// Species carries the duration side of the model for one organism.
type Species struct {
	ID              int
	Name            string
	StartNucleosome float64 // π_N, probability the sequence opens inside a nucleosome

	Nucleosome Duration

	// Linker dwell: geometric continuation (LinkerContinuation, capped at
	// LinkerCap) or an explicit table already truncated at its own length.
	LinkerKind         string
	LinkerContinuation float64
	LinkerCap          int
	linkerTable        Duration
}

// Linker returns the linker dwell distribution truncated at cap; cap <= 0
// means the species' own cap.
func (s *Species) Linker(cap int) (Duration, error) {
	if cap <= 0 {
		cap = s.LinkerCap
	}
	if s.LinkerKind == LinkerTable {
		return s.linkerTable.Truncate(cap)
	}
	return Geometric(s.LinkerContinuation, cap)
}

// matches reports whether sel names s by id, bundle name or known alias.
func (s *Species) matches(sel string) bool {
	sel = normName(sel)
	if id, err := strconv.Atoi(sel); err == nil {
		return id == s.ID
	}
	if normName(s.Name) == sel {
		return true
	}
	for _, k := range Known {
		if k.ID != s.ID {
			continue
		}
		if normName(k.Name) == sel {
			return true
		}
		for _, a := range k.Aliases {
			if normName(a) == sel {
				return true
			}
		}
	}
	return false
}

func normName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", " ", "-", " ", ". ", ".").Replace(s)
}
