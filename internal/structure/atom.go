package structure

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Atom is a single atom of a residue.
type Atom struct {
	Serial int
	Name   string
	AltLoc string

	// Record is ATOM or HETATM
	Record  string
	Element string
	Coords  r3.Vec

	Occupancy  float64
	TempFactor float64

	// Charge and Radius are set by a parameter source
	Charge float64
	Radius float64

	// Residue is the owning residue
	Residue *Residue

	// Bonds are the atoms this one is covalently bonded to
	Bonds []*Atom

	// Added is set on atoms that were not in the input
	Added bool
}

// IsHydrogen reports whether the atom is a hydrogen.
func (a *Atom) IsHydrogen() bool {
	return a.Element == "H" || a.Element == "D"
}

// Bond connects a and b. Repeated calls are no-ops.
func (a *Atom) Bond(b *Atom) {
	if a == b || a.BondedTo(b) {
		return
	}
	a.Bonds = append(a.Bonds, b)
	b.Bonds = append(b.Bonds, a)
}

// BondedTo reports whether a and b share a bond.
func (a *Atom) BondedTo(b *Atom) bool {
	for _, o := range a.Bonds {
		if o == b {
			return true
		}
	}
	return false
}

// Distance returns the distance between two atoms in Angstroms.
func (a *Atom) Distance(b *Atom) float64 {
	return r3.Norm(r3.Sub(a.Coords, b.Coords))
}

// String identifies the atom by name and residue, eg "CA in ALA A 1".
func (a *Atom) String() string {
	if a.Residue == nil {
		return a.Name
	}
	return fmt.Sprintf("%s in %s", a.Name, a.Residue)
}

func (a *Atom) unbond() {
	for _, o := range a.Bonds {
		for i, back := range o.Bonds {
			if back == a {
				o.Bonds = append(o.Bonds[:i], o.Bonds[i+1:]...)
				break
			}
		}
	}
	a.Bonds = nil
}

// covalentRadii are used to bond atoms that have no definition.
var covalentRadii = map[string]float64{
	"H":  0.31,
	"C":  0.76,
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"P":  1.07,
	"S":  1.05,
	"CL": 1.02,
	"BR": 1.20,
	"I":  1.39,
	"FE": 1.32,
	"ZN": 1.22,
	"MG": 1.41,
	"CA": 1.76,
}

func covalentRadius(element string) float64 {
	if r, ok := covalentRadii[strings.ToUpper(element)]; ok {
		return r
	}
	return 0.77
}
