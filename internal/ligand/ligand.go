// Package ligand parameterizes a non-standard ligand residue from a MOL2
// file: partial charges come from the file and radii from the element.
package ligand

import (
	"fmt"

	"github.com/mimminou/pdb2pqr/internal/pdb"
	"github.com/mimminou/pdb2pqr/internal/structure"
	"github.com/mimminou/pdb2pqr/internal/topology"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// ChainID is the chain the ligand residue is placed in.
const ChainID = "L"

// radii are the ligand atom radii by element, in angstroms.
var radii = map[string]float64{
	"C":  1.70,
	"N":  1.50,
	"O":  1.40,
	"S":  1.85,
	"P":  2.00,
	"H":  1.00,
	"F":  1.20,
	"CL": 1.75,
	"BR": 1.85,
	"I":  2.00,
}

// defaultRadius is used for elements missing from radii.
const defaultRadius = 1.80

// Param is the charge and radius of one ligand atom.
type Param struct {
	Charge float64
	Radius float64
}

// Ligand holds the molecule read from a MOL2 file and the parameters of
// the atoms of its residue in the structure.
type Ligand struct {
	Molecule *Molecule
	params   map[string]Param
}

// New returns a ligand for the molecule.
func New(m *Molecule) *Ligand {
	return &Ligand{Molecule: m, params: map[string]Param{}}
}

// ResName is the residue name of the ligand in the structure.
func (l *Ligand) ResName() string {
	return l.Molecule.ResName
}

// Definition is the residue definition of the ligand: its atoms and the
// bonds listed in the MOL2 file.
func (l *Ligand) Definition() *topology.ResidueDef {
	def := &topology.ResidueDef{Name: l.ResName(), Kind: topology.KindLigand}
	for _, a := range l.Molecule.Atoms {
		def.Atoms = append(def.Atoms, topology.AtomDef{Name: a.Name, Element: a.Element})
	}
	for _, b := range l.Molecule.Bonds {
		def.Bonds = append(def.Bonds, []string{b[0], b[1]})
	}
	return def
}

// Refresh rebuilds the parameter cache from the atoms the residue holds
// now. Atoms the MOL2 file does not list get no parameters.
func (l *Ligand) Refresh(r *structure.Residue) {
	byName := map[string]Atom{}
	for _, a := range l.Molecule.Atoms {
		byName[a.Name] = a
	}

	l.params = map[string]Param{}
	for _, a := range r.Atoms {
		ma, ok := byName[a.Name]
		if !ok {
			continue
		}
		l.params[a.Name] = Param{Charge: ma.Charge, Radius: radius(ma.Element)}
	}
}

// Param returns the parameters of the named atom of the last refreshed
// residue.
func (l *Ligand) Param(name string) (Param, bool) {
	p, ok := l.params[name]
	return p, ok
}

func radius(element string) float64 {
	if r, ok := radii[element]; ok {
		return r
	}
	return defaultRadius
}

// Initialize reads the MOL2 file and builds the structure from the
// records plus the ligand, using definitions extended with the ligand
// residue. Records that already carry the ligand's residue name are
// replaced by the MOL2 atoms.
func Initialize(defs *topology.Definitions, filename string, records []pdb.Record) (*structure.Structure, *topology.Definitions, *Ligand, error) {
	m, err := ReadMOL2File(filename)
	if err != nil {
		return nil, nil, nil, err
	}
	l := New(m)

	if defs.Classify(l.ResName()) != topology.KindOther {
		return nil, nil, nil, fmt.Errorf("ligand residue name %s clashes with a standard residue", l.ResName())
	}
	ext := defs.Extend(l.Definition())

	s, err := structure.New(l.Records(records), ext)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build structure with ligand %s: %w", l.ResName(), err)
	}
	return s, ext, l, nil
}

// Records returns the records with the ligand appended as HETATM records
// before the closing END. Existing records of the ligand residue are
// dropped.
func (l *Ligand) Records(records []pdb.Record) []pdb.Record {
	var out []pdb.Record
	var tail []pdb.Record
	serial := 0
	for _, rec := range records {
		if rec.HasResidue() && rec.ResName == l.ResName() {
			continue
		}
		if rec.Kind == pdb.KindEnd {
			tail = append(tail, rec)
			continue
		}
		if rec.Atom != nil && rec.Atom.Serial > serial {
			serial = rec.Atom.Serial
		}
		out = append(out, rec)
	}

	out = append(out, pdb.Record{Kind: pdb.KindTer, Name: "TER", Line: "TER"})
	for _, a := range l.Molecule.Atoms {
		serial++
		out = append(out, pdb.NewAtomRecord(pdb.KindHetAtm, pdb.Atom{
			Serial:    serial,
			Name:      a.Name,
			ResName:   l.ResName(),
			ChainID:   ChainID,
			ResSeq:    1,
			X:         a.X,
			Y:         a.Y,
			Z:         a.Z,
			Occupancy: 1,
			Element:   a.Element,
		}))
	}
	return append(out, tail...)
}
