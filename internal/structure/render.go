package structure

import (
	"fmt"
	"strings"
)

// Format is the dialect of the rendered atom lines.
type Format int

const (
	// FormatPQR is the legacy fixed-column PQR format.
	FormatPQR Format = iota
	// FormatCIF is the structured mmCIF-like format.
	FormatCIF
)

// String returns the file extension of the format.
func (f Format) String() string {
	switch f {
	case FormatCIF:
		return "cif"
	default:
		return "pqr"
	}
}

// RenderAtoms renders one line per atom in the given format. Chain
// identifiers are written only when chainIDs is set.
func (s *Structure) RenderAtoms(atoms []*Atom, chainIDs bool, format Format) []string {
	lines := make([]string, 0, len(atoms))
	for _, a := range atoms {
		switch format {
		case FormatCIF:
			lines = append(lines, a.CIFString())
		default:
			lines = append(lines, a.PQRString(chainIDs))
		}
	}
	return lines
}

// PQRString renders the atom as a PQR line: PDB columns up to the
// coordinates, then charge and radius.
func (a *Atom) PQRString(chainIDs bool) string {
	name := a.Name
	if len(name) < 4 {
		name = " " + name
	}

	resName, chain, seq, icode := "", " ", 0, " "
	if r := a.Residue; r != nil {
		resName, seq = r.Name, r.Seq
		if chainIDs && r.ChainID != "" {
			chain = r.ChainID[:1]
		}
		if r.ICode != "" {
			icode = r.ICode[:1]
		}
	}

	record := a.Record
	if record == "" {
		record = "ATOM"
	}

	return fmt.Sprintf(
		"%-6s%5d %-4s %-4s%s%4d%s   %8.3f%8.3f%8.3f %7.4f %6.4f",
		record, a.Serial, name, resName, chain, seq, icode,
		a.Coords.X, a.Coords.Y, a.Coords.Z, a.Charge, a.Radius,
	)
}

// CIFString renders the atom as a row of the _atom_site loop.
func (a *Atom) CIFString() string {
	resName, seq := ".", 0
	if r := a.Residue; r != nil {
		resName, seq = r.Name, r.Seq
	}
	record := a.Record
	if record == "" {
		record = "ATOM"
	}
	name := a.Name
	if strings.ContainsAny(name, "' ") {
		name = `"` + name + `"`
	}

	return fmt.Sprintf(
		"%-6s %5d %-4s %-4s %4d %8.3f %8.3f %8.3f %7.4f %6.4f",
		record, a.Serial, name, resName, seq,
		a.Coords.X, a.Coords.Y, a.Coords.Z, a.Charge, a.Radius,
	)
}
