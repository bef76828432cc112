package pipeline

import "github.com/mimminou/pdb2pqr/internal/structure"

// AtomSet is a set of atoms keyed by identity that remembers the order
// atoms were added in.
type AtomSet struct {
	index map[*structure.Atom]int
	atoms []*structure.Atom
}

// NewAtomSet returns a set holding the atoms.
func NewAtomSet(atoms ...*structure.Atom) *AtomSet {
	s := &AtomSet{index: map[*structure.Atom]int{}}
	for _, a := range atoms {
		s.Add(a)
	}
	return s
}

// Add inserts an atom, reporting false if it was present.
func (s *AtomSet) Add(a *structure.Atom) bool {
	if _, ok := s.index[a]; ok {
		return false
	}
	s.index[a] = len(s.atoms)
	s.atoms = append(s.atoms, a)
	return true
}

// Remove drops an atom, reporting false if it was absent. The slot is
// compacted away by Atoms.
func (s *AtomSet) Remove(a *structure.Atom) bool {
	i, ok := s.index[a]
	if !ok {
		return false
	}
	delete(s.index, a)
	s.atoms[i] = nil
	return true
}

// Contains reports whether the atom is in the set.
func (s *AtomSet) Contains(a *structure.Atom) bool {
	_, ok := s.index[a]
	return ok
}

// Len is the number of atoms in the set.
func (s *AtomSet) Len() int {
	return len(s.index)
}

// Atoms returns the atoms in insertion order.
func (s *AtomSet) Atoms() []*structure.Atom {
	if len(s.atoms) != len(s.index) {
		s.compact()
	}
	return append([]*structure.Atom(nil), s.atoms...)
}

func (s *AtomSet) compact() {
	kept := s.atoms[:0]
	for _, a := range s.atoms {
		if a != nil {
			s.index[a] = len(kept)
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(s.atoms); i++ {
		s.atoms[i] = nil
	}
	s.atoms = kept
}
