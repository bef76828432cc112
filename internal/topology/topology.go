// Package topology holds the residue definitions: which atoms a residue
// has, how they are bonded, where they sit relative to one another and
// which patches can modify them.
package topology

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed residues.yaml
var residuesYAML []byte

// Kind is the classification of a residue, computed once when a
// structure is built.
type Kind int

const (
	KindOther Kind = iota
	KindAmino
	KindNucleic
	KindWater
	KindLigand
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAmino:
		return "amino"
	case KindNucleic:
		return "nucleic"
	case KindWater:
		return "water"
	case KindLigand:
		return "ligand"
	default:
		return "other"
	}
}

// UnmarshalYAML reads a kind from its lowercase name.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "amino":
		*k = KindAmino
	case "nucleic":
		*k = KindNucleic
	case "water":
		*k = KindWater
	case "ligand":
		*k = KindLigand
	case "other", "":
		*k = KindOther
	default:
		return fmt.Errorf("unknown residue kind %q on line %d", value.Value, value.Line)
	}
	return nil
}

// AtomDef is one atom of a residue definition.
type AtomDef struct {
	Name    string `yaml:"name"`
	Element string `yaml:"element"`

	// Coords places seed atoms in the template frame
	Coords []float64 `yaml:"coords"`

	// Refs are the parent, angle and dihedral reference atoms
	Refs []string `yaml:"refs"`

	// Geometry is the bond length, bond angle and dihedral (degrees)
	Geometry []float64 `yaml:"geometry"`
}

// Seed reports whether the atom is placed from fixed template coordinates.
func (a AtomDef) Seed() bool {
	return len(a.Coords) == 3
}

// Hydrogen reports whether the atom is a hydrogen.
func (a AtomDef) Hydrogen() bool {
	return a.Element == "H"
}

// Parent returns the atom this one is bonded to, or "" for seeds.
func (a AtomDef) Parent() string {
	if len(a.Refs) == 0 {
		return ""
	}
	return a.Refs[0]
}

// Rotatable is a group of hydrogens that can spin around a bond.
type Rotatable struct {
	Axis      []string `yaml:"axis"`
	Hydrogens []string `yaml:"hydrogens"`
}

// ResidueDef is the definition of a residue type.
type ResidueDef struct {
	Name      string      `yaml:"-"`
	Kind      Kind        `yaml:"kind"`
	Atoms     []AtomDef   `yaml:"atoms"`
	Bonds     [][]string  `yaml:"bonds"`
	Chi       [][]string  `yaml:"chi"`
	Rotatable []Rotatable `yaml:"rotatable"`

	// Tautomers are the hydrogens of alternative protonation forms,
	// placed together when no form has been chosen
	Tautomers []string `yaml:"tautomers"`
}

// Atom returns the definition of the named atom.
func (r *ResidueDef) Atom(name string) (AtomDef, bool) {
	for _, a := range r.Atoms {
		if a.Name == name {
			return a, true
		}
	}
	return AtomDef{}, false
}

// HeavyAtoms returns the non-hydrogen atoms of the residue.
func (r *ResidueDef) HeavyAtoms() []AtomDef {
	var heavy []AtomDef
	for _, a := range r.Atoms {
		if !a.Hydrogen() {
			heavy = append(heavy, a)
		}
	}
	return heavy
}

// BondPairs returns every intra-residue bond of the definition: parent
// bonds, bonds between consecutive seeds and the explicit extra bonds.
func (r *ResidueDef) BondPairs() [][2]string {
	var pairs [][2]string
	prevSeed := ""
	for _, a := range r.Atoms {
		if a.Seed() {
			if prevSeed != "" {
				pairs = append(pairs, [2]string{prevSeed, a.Name})
			}
			prevSeed = a.Name
			continue
		}
		if p := a.Parent(); p != "" && !strings.HasPrefix(p, "-") {
			pairs = append(pairs, [2]string{p, a.Name})
		}
	}
	for _, b := range r.Bonds {
		if len(b) == 2 {
			pairs = append(pairs, [2]string{b[0], b[1]})
		}
	}
	return pairs
}

// Patch modifies the atoms of a residue: terminal caps, protonation
// variants and disulfide bridges.
type Patch struct {
	Name string `yaml:"-"`

	// Applies lists the residue families the patch is valid for, empty
	// meaning every amino acid
	Applies    []string    `yaml:"applies"`
	Remove     []string    `yaml:"remove"`
	Add        []AtomDef   `yaml:"add"`
	Alternates []string    `yaml:"alternates"`
	Rotatable  []Rotatable `yaml:"rotatable"`
}

// AppliesTo reports whether the patch is valid for a residue.
func (p *Patch) AppliesTo(def *ResidueDef) bool {
	if def == nil {
		return false
	}
	if len(p.Applies) == 0 {
		return def.Kind == KindAmino
	}
	for _, name := range p.Applies {
		if name == def.Name {
			return true
		}
	}
	return false
}

// Alias maps a residue name onto a definition and a patch.
type Alias struct {
	Family string `yaml:"family"`
	Patch  string `yaml:"patch"`
}

// Definitions are all residue definitions and patches.
type Definitions struct {
	Residues map[string]*ResidueDef `yaml:"residues"`
	Patches  map[string]*Patch      `yaml:"patches"`
	Aliases  map[string]Alias       `yaml:"aliases"`
	Water    []string               `yaml:"water"`
	Nucleic  []string               `yaml:"nucleic"`

	water   map[string]bool
	nucleic map[string]bool
}

// Load returns the built-in definitions.
func Load() (*Definitions, error) {
	return Parse(residuesYAML)
}

// Parse reads definitions from YAML.
func Parse(data []byte) (*Definitions, error) {
	defs := &Definitions{}
	if err := yaml.Unmarshal(data, defs); err != nil {
		return nil, fmt.Errorf("failed to parse residue definitions: %w", err)
	}

	for name, r := range defs.Residues {
		r.Name = name
		for _, a := range r.Atoms {
			if !a.Seed() && len(a.Refs) != len(a.Geometry) {
				return nil, fmt.Errorf("atom %s of %s has %d refs and %d geometry values", a.Name, name, len(a.Refs), len(a.Geometry))
			}
		}
	}
	for name, p := range defs.Patches {
		p.Name = name
	}
	defs.index()

	return defs, nil
}

func (d *Definitions) index() {
	d.water = make(map[string]bool, len(d.Water))
	for _, w := range d.Water {
		d.water[w] = true
	}
	d.nucleic = make(map[string]bool, len(d.Nucleic))
	for _, n := range d.Nucleic {
		d.nucleic[n] = true
	}
}

// Residue returns the definition of a residue family.
func (d *Definitions) Residue(name string) (*ResidueDef, bool) {
	r, ok := d.Residues[name]
	return r, ok
}

// Patch returns a patch by name.
func (d *Definitions) Patch(name string) (*Patch, bool) {
	p, ok := d.Patches[name]
	return p, ok
}

// Resolve maps a residue name from a structure file onto its family and
// the patch that name implies, eg HSD onto HIS with the HID patch.
func (d *Definitions) Resolve(resName string) (family, patch string) {
	if a, ok := d.Aliases[resName]; ok {
		return a.Family, a.Patch
	}
	return resName, ""
}

// IsWater reports whether a residue name is a known water name.
func (d *Definitions) IsWater(resName string) bool {
	return d.water[resName]
}

// Classify returns the kind of a residue by its name.
func (d *Definitions) Classify(resName string) Kind {
	if d.water[resName] {
		return KindWater
	}
	if d.nucleic[resName] {
		return KindNucleic
	}
	family, _ := d.Resolve(resName)
	if r, ok := d.Residues[family]; ok {
		return r.Kind
	}
	return KindOther
}

// Extend returns a copy of the definitions with one more residue,
// eg a ligand read from a MOL2 file. The receiver is not changed.
func (d *Definitions) Extend(def *ResidueDef) *Definitions {
	ext := *d
	ext.Residues = make(map[string]*ResidueDef, len(d.Residues)+1)
	for name, r := range d.Residues {
		ext.Residues[name] = r
	}
	ext.Residues[def.Name] = def
	return &ext
}

// Names returns the sorted residue family names.
func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.Residues))
	for name := range d.Residues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
