package pipeline

import (
	"errors"
	"fmt"

	"github.com/mimminou/pdb2pqr/internal/structure"
)

// ErrUnsupportedPKa is returned when a pKa method is requested. Neither
// method can be run yet.
var ErrUnsupportedPKa = errors.New("pKa calculation is not supported")

// PKaMethod is the method used to assign titration states.
type PKaMethod int

const (
	// PKaNone skips pKa calculation.
	PKaNone PKaMethod = iota
	// PKaPropka calculates pKas with PROPKA.
	PKaPropka
	// PKaPDB2PKA calculates pKas with PDB2PKA.
	PKaPDB2PKA
)

// String returns the method name as it is written in headers.
func (m PKaMethod) String() string {
	switch m {
	case PKaPropka:
		return "propka"
	case PKaPDB2PKA:
		return "pdb2pka"
	default:
		return ""
	}
}

// ParsePKaMethod reads a method name. The empty string and "none" mean
// no pKa calculation.
func ParsePKaMethod(name string) (PKaMethod, error) {
	switch lower.String(name) {
	case "", "none":
		return PKaNone, nil
	case "propka":
		return PKaPropka, nil
	case "pdb2pka":
		return PKaPDB2PKA, nil
	default:
		return PKaNone, fmt.Errorf("unknown pKa method %q", name)
	}
}

// ParseFormat reads an output format name, "pqr" or "cif".
func ParseFormat(name string) (structure.Format, error) {
	switch lower.String(name) {
	case "", "pqr", "pdb":
		return structure.FormatPQR, nil
	case "cif":
		return structure.FormatCIF, nil
	default:
		return structure.FormatPQR, fmt.Errorf("unknown output format %q", name)
	}
}

// Options are the settings of one preparation run.
type Options struct {
	// DropWater removes water residues before the structure is built
	DropWater bool

	// Ligand is the path of a MOL2 file with a ligand to parameterize
	Ligand string

	// NeutralN and NeutralC leave the N- and C-termini neutral
	NeutralN bool
	NeutralC bool

	// AssignOnly assigns charges and radii without adding atoms
	AssignOnly bool

	// Debump rotates side chains out of clashes
	Debump bool

	// Optimize optimizes the hydrogen bonding network; otherwise only
	// waters are turned
	Optimize bool

	PKaMethod PKaMethod
	PH        float64

	// ForceField is the name of a built-in force field
	ForceField string

	// NamingScheme is the force field whose names are written out
	NamingScheme string

	// UserForceField and UserNames are paths of user parameter and name files
	UserForceField string
	UserNames      string

	// Clean only restructures the input, nothing is parameterized
	Clean bool

	Format structure.Format

	// IncludeHeader echoes the input's header records in the output header
	IncludeHeader bool

	// ChainIDs writes chain identifiers in PQR lines
	ChainIDs bool

	// TypeMap writes an HTML table of the atom types next to the output
	TypeMap bool

	// Extensions are the requested post-processing extensions
	Extensions []string

	// OutputRoot is the output path without its extension, the base of
	// the side files
	OutputRoot string
}

// Validate rejects option combinations that cannot be run. Clean runs
// stop before any of the checked options is used.
func (o Options) Validate() error {
	if o.Clean {
		return nil
	}
	if o.PKaMethod != PKaNone {
		return fmt.Errorf("%w: %s", ErrUnsupportedPKa, o.PKaMethod)
	}
	if o.TypeMap && o.OutputRoot == "" {
		return errors.New("a type map needs an output root to be written next to")
	}
	if o.ForceField == "" && o.UserForceField == "" {
		return errors.New("a force field or a user force field file is required")
	}
	if o.UserNames != "" && o.UserForceField == "" {
		return errors.New("a user names file needs a user force field file")
	}
	if (o.NeutralN || o.NeutralC) && (o.UserForceField != "" || lower.String(o.ForceField) != "parse") {
		return errors.New("neutral termini are only available with the PARSE force field")
	}
	if o.PH < 0 || o.PH > 14 {
		return fmt.Errorf("pH %.2f is outside of 0 to 14", o.PH)
	}
	return nil
}
