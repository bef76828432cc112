package structure

import (
	"fmt"
	"strings"

	"github.com/mimminou/pdb2pqr/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// AddMissingHeavy adds the heavy atoms amino acids are missing. An atom
// whose reference atoms are present is built from its internal
// coordinates; otherwise the residue template is superposed onto the
// atoms that are present.
func (s *Structure) AddMissingHeavy() ([]*Atom, error) {
	var added []*Atom
	for _, r := range s.residues {
		if r.Kind != topology.KindAmino || r.Def == nil {
			continue
		}

		var missing []topology.AtomDef
		for _, d := range s.atomDefs(r) {
			if !d.Hydrogen() && !r.HasAtom(d.Name) {
				missing = append(missing, d)
			}
		}
		if len(missing) == 0 {
			continue
		}

		var tmpl map[string]r3.Vec
		var fit func(r3.Vec) r3.Vec
		for _, d := range missing {
			pos, ok := s.placeFromDef(r, d)
			if !ok {
				if fit == nil {
					tmpl = s.template(r)
					var err error
					if fit, err = fitTemplate(r, tmpl); err != nil {
						return added, fmt.Errorf("too few atoms present to reconstruct or cap residue %s: %w", r, err)
					}
				}
				p, found := tmpl[d.Name]
				if !found {
					return added, fmt.Errorf("no template position for %s in %s", d.Name, r)
				}
				pos = fit(p)
			}

			a := &Atom{
				Name:      d.Name,
				Element:   d.Element,
				Record:    recordOf(r),
				Coords:    pos,
				Occupancy: 1,
				Added:     true,
			}
			r.AddAtom(a)
			added = append(added, a)
		}
	}

	if len(added) > 0 {
		s.UpdateBonds()
	}
	return added, nil
}

// AddHydrogens places every hydrogen a residue definition calls for that
// is not already present. Hydrogens whose reference atoms are missing are
// skipped. A histidine without a protonation patch gets both tautomer
// hydrogens, marked as alternates for a later cleanup.
func (s *Structure) AddHydrogens() []*Atom {
	var added []*Atom
	for _, r := range s.residues {
		if r.Def == nil {
			continue
		}

		for _, d := range s.atomDefs(r) {
			if !d.Hydrogen() || r.HasAtom(d.Name) {
				continue
			}
			pos, ok := s.placeFromDef(r, d)
			if !ok {
				continue
			}
			a := &Atom{
				Name:      d.Name,
				Element:   d.Element,
				Record:    recordOf(r),
				Coords:    pos,
				Occupancy: 1,
				Added:     true,
			}
			r.AddAtom(a)
			added = append(added, a)
		}

		if len(r.Alternates) == 0 && len(r.Def.Tautomers) > 0 && protonationPatch(r) == "" {
			both := true
			for _, name := range r.Def.Tautomers {
				both = both && r.HasAtom(name)
			}
			if both {
				r.Alternates = append([]string(nil), r.Def.Tautomers...)
			}
		}
	}

	if len(added) > 0 {
		s.UpdateBonds()
	}
	return added
}

// placeFromDef builds an atom position from its reference atoms in r.
func (s *Structure) placeFromDef(r *Residue, d topology.AtomDef) (r3.Vec, bool) {
	if len(d.Refs) == 0 {
		return r3.Vec{}, false
	}
	refs := make([]r3.Vec, 0, len(d.Refs))
	for _, name := range d.Refs {
		a := resolveRef(r, name)
		if a == nil {
			return r3.Vec{}, false
		}
		refs = append(refs, a.Coords)
	}
	return placePartial(refs, d.Geometry), true
}

// resolveRef finds a reference atom, looking in the previous residue for
// names prefixed with '-'.
func resolveRef(r *Residue, name string) *Atom {
	if !strings.HasPrefix(name, "-") {
		return r.Atom(name)
	}
	prev := r.Prev()
	if c, _ := peptideAtoms(prev, r); c == nil {
		return nil
	}
	return prev.Atom(strings.TrimPrefix(name, "-"))
}

// template builds ideal coordinates for every atom of a residue from the
// seed coordinates and internal coordinates of its definition.
func (s *Structure) template(r *Residue) map[string]r3.Vec {
	tmpl := map[string]r3.Vec{}
	for _, d := range s.atomDefs(r) {
		if d.Seed() {
			tmpl[d.Name] = r3.Vec{X: d.Coords[0], Y: d.Coords[1], Z: d.Coords[2]}
			continue
		}
		refs := make([]r3.Vec, 0, len(d.Refs))
		for _, name := range d.Refs {
			p, ok := tmpl[name]
			if !ok {
				break
			}
			refs = append(refs, p)
		}
		if len(refs) == len(d.Refs) && len(refs) > 0 {
			tmpl[d.Name] = placePartial(refs, d.Geometry)
		}
	}
	return tmpl
}

// fitTemplate superposes the template onto the heavy atoms present in r.
func fitTemplate(r *Residue, tmpl map[string]r3.Vec) (func(r3.Vec) r3.Vec, error) {
	var mobile, target []r3.Vec
	for _, a := range r.Atoms {
		if a.IsHydrogen() {
			continue
		}
		if p, ok := tmpl[a.Name]; ok {
			mobile = append(mobile, p)
			target = append(target, a.Coords)
		}
	}
	return superpose(mobile, target)
}

func recordOf(r *Residue) string {
	if len(r.Atoms) > 0 && r.Atoms[0].Record != "" {
		return r.Atoms[0].Record
	}
	return "ATOM"
}
