package pipeline

import (
	"github.com/mimminou/pdb2pqr/internal/ligand"
	"github.com/mimminou/pdb2pqr/internal/structure"
	"github.com/mimminou/pdb2pqr/internal/topology"
)

// Parameterizer supplies the charges and radii of ligand atoms.
type Parameterizer interface {
	// Refresh updates the parameters for the residue's current atoms
	Refresh(r *structure.Residue)

	// Param returns the parameters of the named atom
	Param(name string) (ligand.Param, bool)
}

// ReconcileLigands assigns ligand parameters to the atoms of every
// ligand residue and moves the atoms that got them from miss to hit.
// A ligand whose net charge is not integral is removed from the
// structure and its atoms from both sets. It reports whether any ligand
// was parameterized and returns the removed residues.
//
// Running it again on a reconciled structure changes nothing.
func ReconcileLigands(s *structure.Structure, lig Parameterizer, hit, miss *AtomSet) (bool, []*structure.Residue) {
	success := false
	var dropped []*structure.Residue

	var ligands []*structure.Residue
	for _, r := range s.Residues() {
		if r.Kind == topology.KindLigand {
			ligands = append(ligands, r)
		}
	}

	for _, r := range ligands {
		lig.Refresh(r)

		var resolved []*structure.Atom
		for _, a := range r.Atoms {
			p, ok := lig.Param(a.Name)
			if !ok {
				continue
			}
			a.Charge, a.Radius = p.Charge, p.Radius
			if miss.Remove(a) {
				resolved = append(resolved, a)
			}
		}

		if !structure.Integral(r.Charge()) {
			s.RemoveResidue(r)
			for _, a := range r.Atoms {
				hit.Remove(a)
				miss.Remove(a)
			}
			dropped = append(dropped, r)
			continue
		}

		success = true
		for _, a := range resolved {
			hit.Add(a)
		}
	}
	return success, dropped
}

// PruneMissed removes the atoms of residues that are neither amino nor
// nucleic acids from miss. It runs once a ligand was parameterized.
func PruneMissed(miss *AtomSet) {
	for _, a := range miss.Atoms() {
		if !biopolymer(a) {
			miss.Remove(a)
		}
	}
}

// MissedLigands returns the names of the non-biopolymer residues with
// atoms in miss, in order of first appearance.
func MissedLigands(miss *AtomSet) []string {
	names := []string{}
	seen := map[string]bool{}
	for _, a := range miss.Atoms() {
		if biopolymer(a) || a.Residue == nil {
			continue
		}
		if name := a.Residue.Name; !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func biopolymer(a *structure.Atom) bool {
	return a.Residue != nil && a.Residue.Biopolymer()
}
