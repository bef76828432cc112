package forcefield

import (
	"fmt"
	"os"
	"path"

	"github.com/mimminou/pdb2pqr/internal/structure"
	"github.com/mimminou/pdb2pqr/internal/topology"
	"github.com/pelletier/go-toml"
)

// nameMap renames a residue and its atoms.
type nameMap struct {
	// Name replaces the residue name when set
	Name string `toml:"name"`

	// Prefix is prepended to the residue name, eg N for N-terminal residues
	Prefix string `toml:"prefix"`

	// Atoms maps atom names onto their names in the scheme
	Atoms map[string]string `toml:"atoms"`
}

// Names is a naming scheme. Patch maps take precedence over residue
// maps, which take precedence over the default map for amino acids.
type Names struct {
	Default  nameMap            `toml:"default"`
	Residues map[string]nameMap `toml:"residues"`
	Patches  map[string]nameMap `toml:"patches"`
}

// loadNames reads a user names file or the built-in scheme of the force
// field. It returns nil when neither exists.
func loadNames(name, userNames string) (*Names, error) {
	var raw []byte
	var err error
	switch {
	case userNames != "":
		if raw, err = os.ReadFile(userNames); err != nil {
			return nil, fmt.Errorf("failed to read names file %s: %w", userNames, err)
		}
	case name != "":
		if raw, err = data.ReadFile(path.Join("data", name+".toml")); err != nil {
			return nil, nil
		}
	default:
		return nil, nil
	}

	names := &Names{}
	if err := toml.Unmarshal(raw, names); err != nil {
		return nil, fmt.Errorf("failed to parse naming scheme %s: %w", name, err)
	}
	return names, nil
}

// atomName returns the name of an atom under the scheme.
func (n *Names) atomName(r *structure.Residue, atom string) string {
	for _, patch := range r.TerminalPatches() {
		if to, ok := n.Patches[patch].Atoms[atom]; ok {
			return to
		}
	}
	if to, ok := n.Residues[r.State].Atoms[atom]; ok {
		return to
	}
	if r.Kind == topology.KindAmino {
		if to, ok := n.Default.Atoms[atom]; ok {
			return to
		}
	}
	return atom
}

// residueName returns the name of a residue under the scheme.
func (n *Names) residueName(r *structure.Residue) string {
	name := r.Name
	if m, ok := n.Residues[r.State]; ok && m.Name != "" {
		name = m.Name
	}
	for _, patch := range r.TerminalPatches() {
		if m, ok := n.Patches[patch]; ok && m.Prefix != "" {
			name = m.Prefix + name
		}
	}
	return name
}

// ApplyNames renames the residues and atoms of s into the naming scheme
// of target. Charges and radii are left untouched.
func ApplyNames(s *structure.Structure, target *Source) {
	if target == nil || target.names == nil {
		return
	}
	n := target.names

	for _, r := range s.Residues() {
		renames := map[*structure.Atom]string{}
		for _, a := range r.Atoms {
			if to := n.atomName(r, a.Name); to != a.Name {
				renames[a] = to
			}
		}
		// rename after the lookups so a chain like O->OT1 cannot cascade
		for a, to := range renames {
			a.Name = to
		}
		r.Name = n.residueName(r)
	}
}
