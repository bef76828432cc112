package optimize

import (
	"github.com/mimminou/pdb2pqr/internal/structure"
)

const (
	// bumpHeavy is the closest two heavy atoms may sit without clashing
	bumpHeavy = 2.0

	// bumpHydrogen is the closest a hydrogen may sit to any atom
	bumpHydrogen = 1.5

	// debumpCutoff limits the atoms checked against a residue
	debumpCutoff = 12.0
)

var backbone = map[string]bool{
	"N": true, "CA": true, "C": true, "O": true, "H": true, "HA": true,
	"H1": true, "H2": true, "H3": true, "OXT": true,
}

// Debump rotates the chi angles of side chains that clash with other
// residues until the overlap is as small as the rotamer search finds. It
// returns the residues that were moved.
func Debump(s *structure.Structure) []*structure.Residue {
	atoms := s.Atoms()

	var moved []*structure.Residue
	for _, r := range s.Residues() {
		if r.NumChi() == 0 || r.SSPartner != nil {
			continue
		}
		near := nearby(r, atoms)
		if overlap(r, near) == 0 {
			continue
		}
		if debumpResidue(r, near) {
			moved = append(moved, r)
		}
	}
	return moved
}

// debumpResidue turns each chi angle in order to its least clashing
// rotamer. It reports whether any angle changed.
func debumpResidue(r *structure.Residue, near []*structure.Atom) bool {
	changed := false
	for i := 0; i < r.NumChi(); i++ {
		chi := r.ChiAtoms(i)
		if chi == nil {
			continue
		}
		from, to := chi[1], chi[2]
		moving := structure.Downstream(r, from, to)
		if len(moving) == 0 {
			continue
		}

		best, bestOverlap := 0.0, overlap(r, near)
		if bestOverlap == 0 {
			break
		}
		for angle := stepDegrees; angle < 360; angle += stepDegrees {
			structure.RotateAtoms(moving, from, to, stepDegrees)
			if o := overlap(r, near); o < bestOverlap-1e-9 {
				best, bestOverlap = angle, o
			}
		}
		// a full turn leaves the atoms back at the start
		structure.RotateAtoms(moving, from, to, stepDegrees)
		if best != 0 {
			structure.RotateAtoms(moving, from, to, best)
			changed = true
		}
	}
	return changed
}

// nearby returns the atoms of other residues within debumpCutoff of r's CA.
func nearby(r *structure.Residue, atoms []*structure.Atom) []*structure.Atom {
	center := r.Atom("CA")
	if center == nil && len(r.Atoms) > 0 {
		center = r.Atoms[0]
	}
	var near []*structure.Atom
	for _, a := range atoms {
		if a.Residue == r {
			continue
		}
		if center == nil || a.Distance(center) <= debumpCutoff {
			near = append(near, a)
		}
	}
	return near
}

// overlap sums how far the side chain atoms of r intrude into the bump
// distance of the atoms near it.
func overlap(r *structure.Residue, near []*structure.Atom) float64 {
	total := 0.0
	for _, a := range r.Atoms {
		if backbone[a.Name] {
			continue
		}
		for _, b := range near {
			if a.BondedTo(b) {
				continue
			}
			if limit, d := bumpDistance(a, b), a.Distance(b); d < limit {
				total += limit - d
			}
		}
	}
	return total
}

// bumpDistance is the closest two unbonded atoms may approach.
func bumpDistance(a, b *structure.Atom) float64 {
	if a.IsHydrogen() || b.IsHydrogen() {
		return bumpHydrogen
	}
	return bumpHeavy
}
