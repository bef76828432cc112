package structure

import (
	"strings"

	"github.com/mimminou/pdb2pqr/internal/topology"
)

const (
	// peptideCutoff is the longest C-N distance still taken as a peptide bond
	peptideCutoff = 2.0

	// disulfideCutoff is the longest SG-SG distance taken as a disulfide bridge
	disulfideCutoff = 2.5

	// bondTolerance is added to the covalent radii when bonding by distance
	bondTolerance = 0.45
)

// UpdateBonds recomputes every bond in the structure. Residues with a
// definition are bonded from it; atoms the definition does not know,
// and residues without one, are bonded by distance.
func (s *Structure) UpdateBonds() {
	for _, a := range s.Atoms() {
		a.Bonds = nil
	}

	for _, r := range s.residues {
		s.bondResidue(r)
	}

	for _, c := range s.Chains {
		for i := 1; i < len(c.Residues); i++ {
			prev, cur := c.Residues[i-1], c.Residues[i]
			if pc, n := peptideAtoms(prev, cur); pc != nil {
				pc.Bond(n)
			}
		}
	}

	for _, r := range s.residues {
		if r.SSPartner == nil {
			continue
		}
		if sg, other := r.Atom("SG"), r.SSPartner.Atom("SG"); sg != nil && other != nil {
			sg.Bond(other)
		}
	}
}

func (s *Structure) bondResidue(r *Residue) {
	known := map[string]bool{}
	for _, pair := range s.bondPairs(r) {
		known[pair[0]], known[pair[1]] = true, true
		a, b := r.Atom(pair[0]), r.Atom(pair[1])
		if a != nil && b != nil {
			a.Bond(b)
		}
	}

	for i, a := range r.Atoms {
		if known[a.Name] && r.Def != nil {
			continue
		}
		for j, b := range r.Atoms {
			if i == j {
				continue
			}
			if a.IsHydrogen() && b.IsHydrogen() {
				continue
			}
			limit := covalentRadius(a.Element) + covalentRadius(b.Element) + bondTolerance
			if a.Distance(b) <= limit {
				a.Bond(b)
			}
		}
	}
}

// bondPairs returns the definition bonds of a residue including those
// of the atoms added by its patches.
func (s *Structure) bondPairs(r *Residue) [][2]string {
	if r.Def == nil {
		return nil
	}
	pairs := r.Def.BondPairs()
	for _, name := range r.Patches {
		p, ok := s.defs.Patch(name)
		if !ok {
			continue
		}
		for _, a := range p.Add {
			if parent := a.Parent(); parent != "" && !strings.HasPrefix(parent, "-") {
				pairs = append(pairs, [2]string{parent, a.Name})
			}
		}
	}
	return pairs
}

// peptideAtoms returns the C and N atoms linking two amino acids, or nils
// when they are not within bonding distance.
func peptideAtoms(prev, cur *Residue) (*Atom, *Atom) {
	if prev == nil || prev.Kind != topology.KindAmino || cur.Kind != topology.KindAmino {
		return nil, nil
	}
	c, n := prev.Atom("C"), cur.Atom("N")
	if c == nil || n == nil || c.Distance(n) > peptideCutoff {
		return nil, nil
	}
	return c, n
}

// UpdateSSBridges bonds cysteines whose SG atoms are close enough to form
// a disulfide bridge and patches both to CYX.
func (s *Structure) UpdateSSBridges() error {
	var cys []*Residue
	for _, r := range s.residues {
		if r.Family == "CYS" && r.Atom("SG") != nil {
			cys = append(cys, r)
		}
	}

	for i, a := range cys {
		for _, b := range cys[i+1:] {
			if a.SSPartner != nil || b.SSPartner != nil {
				continue
			}
			if a.Atom("SG").Distance(b.Atom("SG")) > disulfideCutoff {
				continue
			}
			a.SSPartner, b.SSPartner = b, a
			a.Atom("SG").Bond(b.Atom("SG"))
			for _, r := range []*Residue{a, b} {
				if err := s.ApplyPatch("CYX", r); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
