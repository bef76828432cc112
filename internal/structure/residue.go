package structure

import (
	"fmt"
	"strings"

	"github.com/mimminou/pdb2pqr/internal/topology"
)

// Residue is an ordered group of atoms within a chain.
type Residue struct {
	// Name is the current residue name, rewritten by naming schemes
	Name string

	// Family is the topology definition the residue belongs to, eg HIS for HSD
	Family string

	// State is the committed protonation state, eg HIP
	State string

	Seq     int
	ICode   string
	ChainID string

	// Kind is classified once when the structure is built
	Kind topology.Kind
	Def  *topology.ResidueDef

	Atoms []*Atom

	// Patches applied to the residue in order
	Patches []string

	// Alternates are hydrogens of which only one should survive cleanup
	Alternates []string

	// SSPartner is the residue on the other side of a disulfide bridge
	SSPartner *Residue

	Chain *Chain
}

// String identifies the residue as "NAME CHAIN SEQ[ICODE]".
func (r *Residue) String() string {
	return fmt.Sprintf("%s %s %d%s", r.Name, r.ChainID, r.Seq, r.ICode)
}

// Atom returns the named atom or nil.
func (r *Residue) Atom(name string) *Atom {
	for _, a := range r.Atoms {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// HasAtom reports whether the residue has an atom with the name.
func (r *Residue) HasAtom(name string) bool {
	return r.Atom(name) != nil
}

// AddAtom appends an atom unless one with the same name is present.
func (r *Residue) AddAtom(a *Atom) bool {
	if r.HasAtom(a.Name) {
		return false
	}
	a.Residue = r
	r.Atoms = append(r.Atoms, a)
	return true
}

// RemoveAtom drops the named atom and its bonds.
func (r *Residue) RemoveAtom(name string) *Atom {
	for i, a := range r.Atoms {
		if a.Name == name {
			a.unbond()
			r.Atoms = append(r.Atoms[:i], r.Atoms[i+1:]...)
			return a
		}
	}
	return nil
}

// RenameAtom renames an atom in place.
func (r *Residue) RenameAtom(from, to string) {
	if a := r.Atom(from); a != nil {
		a.Name = to
	}
}

// Charge is the sum of the charges of the residue's atoms.
func (r *Residue) Charge() float64 {
	q := 0.0
	for _, a := range r.Atoms {
		q += a.Charge
	}
	return q
}

// HasPatch reports whether the patch was applied to the residue.
func (r *Residue) HasPatch(name string) bool {
	for _, p := range r.Patches {
		if p == name {
			return true
		}
	}
	return false
}

// TerminalPatches returns the applied terminus patches, eg NTERM.
func (r *Residue) TerminalPatches() []string {
	var terms []string
	for _, p := range r.Patches {
		if isTerminal(p) {
			terms = append(terms, p)
		}
	}
	return terms
}

// Biopolymer reports whether the residue is a standard amino or nucleic acid.
func (r *Residue) Biopolymer() bool {
	switch r.Kind {
	case topology.KindAmino, topology.KindNucleic:
		return true
	case topology.KindWater, topology.KindLigand, topology.KindOther:
		return false
	default:
		return false
	}
}

// Histidine reports whether the residue belongs to the histidine family.
func (r *Residue) Histidine() bool {
	return r.Kind == topology.KindAmino && r.Family == "HIS"
}

// Prev returns the residue before r in its chain, or nil.
func (r *Residue) Prev() *Residue {
	if r.Chain == nil {
		return nil
	}
	for i, o := range r.Chain.Residues {
		if o == r && i > 0 {
			return r.Chain.Residues[i-1]
		}
	}
	return nil
}

// Next returns the residue after r in its chain, or nil.
func (r *Residue) Next() *Residue {
	if r.Chain == nil {
		return nil
	}
	for i, o := range r.Chain.Residues {
		if o == r && i+1 < len(r.Chain.Residues) {
			return r.Chain.Residues[i+1]
		}
	}
	return nil
}

func isTerminal(patch string) bool {
	return strings.HasSuffix(patch, "TERM")
}
