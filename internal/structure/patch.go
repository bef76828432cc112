package structure

import (
	"fmt"
	"sort"

	"github.com/mimminou/pdb2pqr/internal/topology"
)

// ApplyPatch applies a named patch to a residue. A residue carries at
// most one protonation patch: applying HID to a HIP residue replaces it
// and drops the hydrogens only HIP had.
func (s *Structure) ApplyPatch(name string, r *Residue) error {
	p, err := s.patch(name)
	if err != nil {
		return err
	}
	if !p.AppliesTo(r.Def) {
		return fmt.Errorf("patch %s does not apply to %s", name, r)
	}
	if r.HasPatch(name) {
		return nil
	}

	if !isTerminal(name) {
		if old := protonationPatch(r); old != "" {
			s.dropPatch(r, old, p)
		}
	}

	for _, atom := range p.Remove {
		r.RemoveAtom(atom)
	}
	r.Patches = append(r.Patches, name)
	if len(p.Alternates) > 0 {
		r.Alternates = append([]string(nil), p.Alternates...)
	}

	return nil
}

// dropPatch removes a patch and the atoms it added that next does not add.
func (s *Structure) dropPatch(r *Residue, name string, next *topology.Patch) {
	kept := r.Patches[:0]
	for _, p := range r.Patches {
		if p != name {
			kept = append(kept, p)
		}
	}
	r.Patches = kept
	r.Alternates = nil

	old, ok := s.defs.Patch(name)
	if !ok {
		return
	}
	readd := map[string]bool{}
	for _, a := range next.Add {
		readd[a.Name] = true
	}
	for _, a := range old.Add {
		if !readd[a.Name] {
			r.RemoveAtom(a.Name)
		}
	}
}

// protonationPatch is the last non-terminal patch applied to r, or "".
func protonationPatch(r *Residue) string {
	for i := len(r.Patches) - 1; i >= 0; i-- {
		if !isTerminal(r.Patches[i]) {
			return r.Patches[i]
		}
	}
	return ""
}

// SetTermini patches the first and last amino acid of every chain with
// charged or neutral terminus patches.
func (s *Structure) SetTermini(neutralN, neutralC bool) error {
	for _, c := range s.Chains {
		var amino []*Residue
		for _, r := range c.Residues {
			if r.Kind == topology.KindAmino && r.Def != nil {
				amino = append(amino, r)
			}
		}
		if len(amino) == 0 {
			continue
		}

		first, last := amino[0], amino[len(amino)-1]

		nterm := "NTERM"
		if neutralN {
			nterm = "NEUTRAL-NTERM"
		}
		if first.Family == "PRO" {
			nterm = "PRO-" + nterm
		}
		if err := s.ApplyPatch(nterm, first); err != nil {
			return fmt.Errorf("failed to set N-terminus: %w", err)
		}

		cterm := "CTERM"
		if neutralC {
			cterm = "NEUTRAL-CTERM"
		}
		if err := s.ApplyPatch(cterm, last); err != nil {
			return fmt.Errorf("failed to set C-terminus: %w", err)
		}
	}
	return nil
}

// SetStates commits the protonation state of every residue. Amino acids
// take their protonation patch if they have one; histidines without one
// are named by the hydrogens they carry.
func (s *Structure) SetStates() {
	for _, r := range s.residues {
		switch r.Kind {
		case topology.KindAmino:
			r.State = r.Family
			if p := protonationPatch(r); p != "" {
				r.State = p
			} else if r.Histidine() {
				r.State = histidineState(r)
			}
		case topology.KindWater:
			r.State = "WAT"
		case topology.KindNucleic, topology.KindLigand, topology.KindOther:
			r.State = r.Name
		}
	}
}

func histidineState(r *Residue) string {
	hd1, he2 := r.HasAtom("HD1"), r.HasAtom("HE2")
	switch {
	case hd1 && he2:
		return "HIP"
	case he2:
		return "HIE"
	default:
		return "HID"
	}
}

// atomDefs returns the definitions of every atom the residue should have
// with its patches applied. A residue with tautomers and no protonation
// patch gets the hydrogens of every tautomer.
func (s *Structure) atomDefs(r *Residue) []topology.AtomDef {
	if r.Def == nil {
		return nil
	}

	removed := map[string]bool{}
	var added []topology.AtomDef
	for _, name := range r.Patches {
		p, ok := s.defs.Patch(name)
		if !ok {
			continue
		}
		for _, atom := range p.Remove {
			removed[atom] = true
		}
		added = append(added, p.Add...)
	}

	if len(r.Def.Tautomers) > 0 && protonationPatch(r) == "" {
		for _, name := range r.Def.Tautomers {
			if def, ok := s.patchAtom(r.Def, name); ok {
				added = append(added, def)
			}
		}
	}

	seen := map[string]bool{}
	var defs []topology.AtomDef
	for _, list := range [][]topology.AtomDef{r.Def.Atoms, added} {
		for _, a := range list {
			if removed[a.Name] || seen[a.Name] {
				continue
			}
			seen[a.Name] = true
			defs = append(defs, a)
		}
	}
	return defs
}

// patchAtom finds the definition of an atom added by any patch valid for def.
func (s *Structure) patchAtom(def *topology.ResidueDef, name string) (topology.AtomDef, bool) {
	names := make([]string, 0, len(s.defs.Patches))
	for n := range s.defs.Patches {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		p := s.defs.Patches[n]
		if !p.AppliesTo(def) {
			continue
		}
		for _, a := range p.Add {
			if a.Name == name {
				return a, true
			}
		}
	}
	return topology.AtomDef{}, false
}
