package structure

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Downstream returns the atoms of r reached from to without passing
// through from, ie the atoms that move when the from-to bond turns.
func Downstream(r *Residue, from, to *Atom) []*Atom {
	seen := map[*Atom]bool{from: true, to: true}
	queue := []*Atom{to}
	var moved []*Atom
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, b := range cur.Bonds {
			if seen[b] || b.Residue != r {
				continue
			}
			seen[b] = true
			moved = append(moved, b)
			queue = append(queue, b)
		}
	}
	return moved
}

// RotateAtoms turns atoms by angle degrees around the from-to axis.
func RotateAtoms(atoms []*Atom, from, to *Atom, angle float64) {
	dir := r3.Sub(to.Coords, from.Coords)
	for _, a := range atoms {
		a.Coords = Rotate(a.Coords, to.Coords, dir, angle)
	}
}

// ChiAtoms returns the four atoms of the residue's i-th chi angle, or nil
// when the residue has no such angle or misses one of its atoms.
func (r *Residue) ChiAtoms(i int) []*Atom {
	if r.Def == nil || i >= len(r.Def.Chi) {
		return nil
	}
	var atoms []*Atom
	for _, name := range r.Def.Chi[i] {
		a := r.Atom(name)
		if a == nil {
			return nil
		}
		atoms = append(atoms, a)
	}
	if len(atoms) != 4 {
		return nil
	}
	return atoms
}

// NumChi is the number of chi angles the residue's definition has.
func (r *Residue) NumChi() int {
	if r.Def == nil {
		return 0
	}
	return len(r.Def.Chi)
}
