// Package optimize places hydrogens where they form the most hydrogen
// bonds, reduces dual conformations to one, and rotates side chains out
// of steric clashes.
package optimize

import (
	"github.com/mimminou/pdb2pqr/internal/structure"
	"github.com/mimminou/pdb2pqr/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// stepDegrees is the rotation step of the rotamer search
	stepDegrees = 10.0

	// hbondMin and hbondMax bound the H...acceptor distance of a hydrogen bond
	hbondMin = 1.5
	hbondMax = 2.6

	// neighborCutoff limits the atoms scored against a group
	neighborCutoff = 8.0
)

// group is a set of hydrogens that rotate together around a bond, or a
// water molecule that rotates freely around its oxygen.
type group struct {
	residue   *structure.Residue
	from, to  *structure.Atom
	hydrogens []*structure.Atom
	water     bool
}

// Hydrogens optimizes the positions of rotatable hydrogens.
type Hydrogens struct {
	s            *structure.Structure
	optimizeable []*group
	held         map[*structure.Residue]bool
	active       []*group
}

// NewHydrogens returns an optimizer for the structure's hydrogens.
func NewHydrogens(s *structure.Structure) *Hydrogens {
	return &Hydrogens{s: s, held: map[*structure.Residue]bool{}}
}

// SetOptimizeable marks every rotatable hydrogen group of the residue
// definitions and their patches. It returns the number of groups.
func (h *Hydrogens) SetOptimizeable() int {
	h.optimizeable = nil
	defs := h.s.Definitions()
	for _, r := range h.s.Residues() {
		if r.Def == nil {
			continue
		}
		rotatable := append([]topology.Rotatable(nil), r.Def.Rotatable...)
		for _, name := range r.Patches {
			if p, ok := defs.Patch(name); ok {
				rotatable = append(rotatable, p.Rotatable...)
			}
		}
		for _, rot := range rotatable {
			if g := newGroup(r, rot); g != nil {
				h.optimizeable = append(h.optimizeable, g)
			}
		}
	}
	return len(h.optimizeable)
}

func newGroup(r *structure.Residue, rot topology.Rotatable) *group {
	if len(rot.Axis) != 2 {
		return nil
	}
	g := &group{residue: r, from: r.Atom(rot.Axis[0]), to: r.Atom(rot.Axis[1])}
	if g.from == nil || g.to == nil {
		return nil
	}
	for _, name := range rot.Hydrogens {
		if a := r.Atom(name); a != nil {
			g.hydrogens = append(g.hydrogens, a)
		}
	}
	if len(g.hydrogens) == 0 {
		return nil
	}
	return g
}

// HoldResidues keeps the hydrogens of the given residues in place. A nil
// slice holds nothing.
func (h *Hydrogens) HoldResidues(residues []*structure.Residue) {
	h.held = map[*structure.Residue]bool{}
	for _, r := range residues {
		h.held[r] = true
	}
}

// InitializeFull makes every unheld rotatable group and every water
// eligible for optimization.
func (h *Hydrogens) InitializeFull() {
	h.active = nil
	for _, g := range h.optimizeable {
		if !h.held[g.residue] {
			h.active = append(h.active, g)
		}
	}
	h.active = append(h.active, h.waters()...)
}

// InitializeWater makes only waters eligible for optimization.
func (h *Hydrogens) InitializeWater() {
	h.active = h.waters()
}

func (h *Hydrogens) waters() []*group {
	var groups []*group
	for _, r := range h.s.Residues() {
		if r.Kind != topology.KindWater || h.held[r] {
			continue
		}
		o := r.Atom("O")
		if o == nil {
			continue
		}
		g := &group{residue: r, to: o, water: true}
		for _, a := range r.Atoms {
			if a.IsHydrogen() {
				g.hydrogens = append(g.hydrogens, a)
			}
		}
		if len(g.hydrogens) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Optimize turns every eligible group to the orientation with the best
// hydrogen bonding score and returns how many groups moved.
func (h *Hydrogens) Optimize() int {
	atoms := h.s.Atoms()
	moved := 0
	for _, g := range h.active {
		if h.optimizeGroup(g, atoms) {
			moved++
		}
	}
	return moved
}

func (h *Hydrogens) optimizeGroup(g *group, atoms []*structure.Atom) bool {
	neighbors := g.neighbors(atoms)
	start := positions(g.hydrogens)
	best := start
	bestScore := g.score(neighbors)
	moved := false

	for _, candidate := range g.candidates(start) {
		setPositions(g.hydrogens, candidate)
		if sc := g.score(neighbors); sc > bestScore+1e-9 {
			best, bestScore, moved = candidate, sc, true
		}
	}

	setPositions(g.hydrogens, best)
	return moved
}

// candidates returns the hydrogen positions of every orientation tried.
func (g *group) candidates(start []r3.Vec) [][]r3.Vec {
	var out [][]r3.Vec
	if !g.water {
		dir := r3.Sub(g.to.Coords, g.from.Coords)
		for angle := stepDegrees; angle < 360; angle += stepDegrees {
			out = append(out, rotateAll(start, g.to.Coords, dir, angle))
		}
		return out
	}

	// waters spin about two perpendicular axes through the oxygen
	for yaw := 0.0; yaw < 360; yaw += 3 * stepDegrees {
		turned := rotateAll(start, g.to.Coords, r3.Vec{Z: 1}, yaw)
		for pitch := 0.0; pitch < 360; pitch += 3 * stepDegrees {
			if yaw == 0 && pitch == 0 {
				continue
			}
			out = append(out, rotateAll(turned, g.to.Coords, r3.Vec{X: 1}, pitch))
		}
	}
	return out
}

// neighbors returns the atoms near the group that are not part of it or
// bonded to its pivot.
func (g *group) neighbors(atoms []*structure.Atom) []*structure.Atom {
	skip := map[*structure.Atom]bool{g.to: true}
	for _, a := range g.hydrogens {
		skip[a] = true
	}
	for _, a := range g.to.Bonds {
		skip[a] = true
	}

	var near []*structure.Atom
	for _, a := range atoms {
		if skip[a] {
			continue
		}
		if a.Distance(g.to) <= neighborCutoff {
			near = append(near, a)
		}
	}
	return near
}

// score counts hydrogen bonds from the group's hydrogens to nearby
// acceptors and subtracts the overlap of any clashes.
func (g *group) score(neighbors []*structure.Atom) float64 {
	total := 0.0
	for _, hyd := range g.hydrogens {
		total += hydrogenScore(hyd, neighbors)
	}
	return total
}

// hydrogenScore scores a single hydrogen against the atoms of other residues.
func hydrogenScore(hyd *structure.Atom, neighbors []*structure.Atom) float64 {
	sc := 0.0
	for _, a := range neighbors {
		if a.Residue == hyd.Residue {
			continue
		}
		d := hyd.Distance(a)
		if acceptor(a) && d >= hbondMin && d <= hbondMax {
			sc++
		}
		if limit := bumpDistance(hyd, a); d < limit {
			sc -= limit - d
		}
	}
	return sc
}

func acceptor(a *structure.Atom) bool {
	return a.Element == "O" || a.Element == "N"
}

// Cleanup reduces residues carrying alternate hydrogens, such as an
// unassigned histidine or ASH and GLH, to the single best scoring
// hydrogen. Ties keep the first alternate.
func (h *Hydrogens) Cleanup() error {
	atoms := h.s.Atoms()
	for _, r := range h.s.Residues() {
		if len(r.Alternates) == 0 {
			continue
		}

		var present []*structure.Atom
		for _, name := range r.Alternates {
			if a := r.Atom(name); a != nil {
				present = append(present, a)
			}
		}
		r.Alternates = nil
		if len(present) < 2 {
			continue
		}

		keep := present[0]
		keepScore := hydrogenScore(keep, atoms)
		for _, a := range present[1:] {
			if sc := hydrogenScore(a, atoms); sc > keepScore+1e-9 {
				keep, keepScore = a, sc
			}
		}
		for _, a := range present {
			if a != keep {
				r.RemoveAtom(a.Name)
			}
		}

		if patch, ok := tautomerPatches[keep.Name]; ok && r.Histidine() {
			if err := h.s.ApplyPatch(patch, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// tautomerPatches names the histidine patch that keeps a tautomer hydrogen.
var tautomerPatches = map[string]string{
	"HD1": "HID",
	"HE2": "HIE",
}

func positions(atoms []*structure.Atom) []r3.Vec {
	out := make([]r3.Vec, len(atoms))
	for i, a := range atoms {
		out[i] = a.Coords
	}
	return out
}

func setPositions(atoms []*structure.Atom, pos []r3.Vec) {
	for i, a := range atoms {
		a.Coords = pos[i]
	}
}

func rotateAll(points []r3.Vec, origin, dir r3.Vec, angle float64) []r3.Vec {
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = structure.Rotate(p, origin, dir, angle)
	}
	return out
}
