// Package structure is the in-memory molecular graph: chains of residues
// of atoms, their bonds and the routines that complete and patch them.
package structure

import (
	"errors"
	"fmt"
	"math"

	"github.com/mimminou/pdb2pqr/internal/pdb"
	"github.com/mimminou/pdb2pqr/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// ChargeTolerance is how far a net charge may sit from the nearest
// integer and still count as integral.
const ChargeTolerance = 0.001

// Chain is an ordered sequence of residues sharing a chain identifier.
type Chain struct {
	ID       string
	Residues []*Residue
}

// Structure is a macromolecule built from PDB records.
type Structure struct {
	Chains []*Chain

	// residues is every residue in chain order
	residues []*Residue

	defs *topology.Definitions
}

// New builds a structure from the ATOM and HETATM records. Residues are
// split on a change of chain, sequence number, insertion code or name,
// and on TER records. A repeated atom name within a residue (an alternate
// location) keeps the first occurrence.
func New(records []pdb.Record, defs *topology.Definitions) (*Structure, error) {
	s := &Structure{defs: defs}
	chains := map[string]*Chain{}

	var res *Residue
	var resName string
	for _, rec := range records {
		switch rec.Kind {
		case pdb.KindTer:
			res = nil
			continue
		case pdb.KindAtom, pdb.KindHetAtm:
		default:
			continue
		}

		pa := rec.Atom
		if res == nil || res.ChainID != pa.ChainID || res.Seq != pa.ResSeq || res.ICode != pa.ICode || resName != pa.ResName {
			chain, ok := chains[pa.ChainID]
			if !ok {
				chain = &Chain{ID: pa.ChainID}
				chains[pa.ChainID] = chain
				s.Chains = append(s.Chains, chain)
			}
			res = s.newResidue(pa)
			res.Chain = chain
			resName = pa.ResName
			chain.Residues = append(chain.Residues, res)
			s.residues = append(s.residues, res)
		}

		res.AddAtom(&Atom{
			Serial:     pa.Serial,
			Name:       pa.Name,
			AltLoc:     pa.AltLoc,
			Record:     rec.Kind.String(),
			Element:    pa.Element,
			Coords:     r3.Vec{X: pa.X, Y: pa.Y, Z: pa.Z},
			Occupancy:  pa.Occupancy,
			TempFactor: pa.TempFactor,
		})
	}

	if len(s.residues) == 0 {
		return nil, errors.New("no ATOM or HETATM records to build a structure from")
	}

	return s, nil
}

func (s *Structure) newResidue(pa *pdb.Atom) *Residue {
	family, patch := s.defs.Resolve(pa.ResName)
	r := &Residue{
		Name:    pa.ResName,
		Family:  family,
		Seq:     pa.ResSeq,
		ICode:   pa.ICode,
		ChainID: pa.ChainID,
		Kind:    s.defs.Classify(pa.ResName),
	}
	if def, ok := s.defs.Residue(family); ok {
		r.Def = def
	}
	if patch != "" {
		r.Patches = append(r.Patches, patch)
	}
	return r
}

// Definitions returns the residue definitions the structure was built with.
func (s *Structure) Definitions() *topology.Definitions {
	return s.defs
}

// Residues returns every residue in chain order.
func (s *Structure) Residues() []*Residue {
	return s.residues
}

// Atoms returns every atom in chain order.
func (s *Structure) Atoms() []*Atom {
	var atoms []*Atom
	for _, r := range s.residues {
		atoms = append(atoms, r.Atoms...)
	}
	return atoms
}

// NumResidues is the number of residues in the structure.
func (s *Structure) NumResidues() int {
	return len(s.residues)
}

// NumAtoms is the number of atoms in the structure.
func (s *Structure) NumAtoms() int {
	n := 0
	for _, r := range s.residues {
		n += len(r.Atoms)
	}
	return n
}

// RemoveResidue drops a residue from its chain and from the structure.
// It reports whether the residue was found.
func (s *Structure) RemoveResidue(r *Residue) bool {
	found := false
	for i, o := range s.residues {
		if o == r {
			s.residues = append(s.residues[:i], s.residues[i+1:]...)
			found = true
			break
		}
	}
	for _, c := range s.Chains {
		for i, o := range c.Residues {
			if o == r {
				c.Residues = append(c.Residues[:i], c.Residues[i+1:]...)
				break
			}
		}
	}
	for _, a := range r.Atoms {
		a.unbond()
	}
	return found
}

// Charge returns the net charge of the structure and the residues whose
// net charge is not integral.
func (s *Structure) Charge() (float64, []*Residue) {
	total := 0.0
	var nonIntegral []*Residue
	for _, r := range s.residues {
		q := r.Charge()
		total += q
		if !Integral(q) {
			nonIntegral = append(nonIntegral, r)
		}
	}
	return total, nonIntegral
}

// Integral reports whether a charge is within ChargeTolerance of an integer.
func Integral(q float64) bool {
	return math.Abs(q-math.Round(q)) <= ChargeTolerance
}

// Reserialize renumbers the atoms from 1 in chain order.
func (s *Structure) Reserialize() {
	for i, a := range s.Atoms() {
		a.Serial = i + 1
	}
}

// Residue returns the residue with the chain and sequence number, or nil.
func (s *Structure) Residue(chainID string, seq int) *Residue {
	for _, r := range s.residues {
		if r.ChainID == chainID && r.Seq == seq {
			return r
		}
	}
	return nil
}

func (s *Structure) patch(name string) (*topology.Patch, error) {
	p, ok := s.defs.Patch(name)
	if !ok {
		return nil, fmt.Errorf("unknown patch %s", name)
	}
	return p, nil
}
