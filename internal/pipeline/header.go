package pipeline

import (
	"fmt"
	"strings"

	"github.com/mimminou/pdb2pqr/internal/pdb"
	"github.com/mimminou/pdb2pqr/internal/structure"
)

// HeaderInfo is the content of an output header.
type HeaderInfo struct {
	// Missed are the atoms that got no parameters
	Missed []*structure.Atom

	// NonIntegral are the residues with a non-integral net charge
	NonIntegral []*structure.Residue

	// Charge is the net charge of the structure
	Charge float64

	// ForceField is the force field name or the user force field path
	ForceField string

	// PKaMethod is the pKa method, "" if none was used
	PKaMethod string
	PH        float64

	// NamingScheme is the naming scheme of the output, "" if unchanged
	NamingScheme string

	// IncludeOriginal echoes the header records of Records
	IncludeOriginal bool
	Records         []pdb.Record
}

func (h HeaderInfo) forceField() string {
	if h.ForceField == "" {
		return "User force field"
	}
	return upper.String(h.ForceField)
}

// missedNote explains why atoms got no parameters.
var missedNote = []string{
	"This is usually due to the fact that this residue is not",
	"an amino acid or nucleic acid; or, there are no parameters",
	"available for the specific protonation state of this",
	"residue in the selected forcefield.",
}

// LegacyHeader renders the REMARK lines of a PQR file.
func LegacyHeader(h HeaderInfo) string {
	var b strings.Builder
	remark := func(n int, format string, args ...interface{}) {
		line := fmt.Sprintf(format, args...)
		if line == "" {
			fmt.Fprintf(&b, "REMARK %3d\n", n)
			return
		}
		fmt.Fprintf(&b, "REMARK %3d %s\n", n, line)
	}

	remark(1, "PQR file generated by PDB2PQR (Version %s)", Version)
	remark(1, "")
	remark(1, "Forcefield Used: %s", h.forceField())
	if h.NamingScheme != "" {
		remark(1, "Naming Scheme Used: %s", h.NamingScheme)
	}
	remark(1, "")

	if h.PKaMethod != "" {
		remark(1, "pKas calculated by %s and assigned using pH %.2f", h.PKaMethod, h.PH)
		remark(1, "")
	}

	if len(h.Missed) > 0 {
		remark(5, "WARNING: PDB2PQR was unable to assign charges")
		remark(5, "         to the following atoms (omitted below):")
		for _, a := range h.Missed {
			resName, seq := residueOf(a)
			remark(5, "             %d %s in %s %d", a.Serial, a.Name, resName, seq)
		}
		for _, line := range missedNote {
			remark(5, "%s", line)
		}
		remark(5, "")
	}

	if len(h.NonIntegral) > 0 {
		remark(5, "WARNING: Non-integral net charges were found in")
		remark(5, "         the following residues:")
		for _, r := range h.NonIntegral {
			remark(5, "             %s - Residue Charge: %.4f", r, r.Charge())
		}
		remark(5, "")
	}

	remark(6, "Total charge on this protein: %.4f e", h.Charge)
	remark(6, "")

	if h.IncludeOriginal {
		remark(7, "Original PDB header follows")
		remark(7, "")
		b.WriteString(OriginalHeader(h.Records))
	}
	return b.String()
}

// CIFHeader renders the remark loop and the atom site columns of a CIF
// file.
func CIFHeader(h HeaderInfo) string {
	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("#")
	line("loop_")
	line("_pdbx_database_remark.id")
	line("_pdbx_database_remark.text")

	line("1")
	line(";")
	line("PQR file generated by PDB2PQR (Version %s)", Version)
	line("")
	line("Forcefield used: %s", h.forceField())
	if h.NamingScheme != "" {
		line("Naming scheme used: %s", h.NamingScheme)
	}
	line("")
	if h.PKaMethod != "" {
		line("pKas calculated by %s and assigned using pH %.2f", h.PKaMethod, h.PH)
	}
	line(";")

	line("2")
	line(";")
	if len(h.Missed) > 0 {
		line("Warning: PDB2PQR was unable to assign charges")
		line("to the following atoms (omitted below):")
		for _, a := range h.Missed {
			resName, seq := residueOf(a)
			line("             %d %s in %s %d", a.Serial, a.Name, resName, seq)
		}
		for _, note := range missedNote {
			line("%s", note)
		}
	}
	if len(h.NonIntegral) > 0 {
		line("")
		line("Warning: Non-integral net charges were found in")
		line("the following residues:")
		for _, r := range h.NonIntegral {
			line("              %s - Residue Charge: %.4f", r, r.Charge())
		}
	}
	line(";")

	line("3")
	line(";")
	line("Total charge on this protein: %.4f e", h.Charge)
	line(";")

	if h.IncludeOriginal {
		line("4")
		line(";")
		line("Including original cif header is not implemented yet.")
		line(";")
	}

	line("#")
	line("loop_")
	for _, col := range atomSiteColumns {
		line("_atom_site.%s", col)
	}
	return b.String()
}

// atomSiteColumns are the fields of a CIF atom line.
var atomSiteColumns = []string{
	"group_PDB",
	"id",
	"label_atom_id",
	"label_comp_id",
	"label_seq_id",
	"Cartn_x",
	"Cartn_y",
	"Cartn_z",
	"pqr_partial_charge",
	"pqr_radius",
}

// OriginalHeader returns the header records at the front of the input,
// one per line, up to the first record of another kind.
func OriginalHeader(records []pdb.Record) string {
	var b strings.Builder
	for _, rec := range records {
		if !rec.IsHeader() {
			break
		}
		b.WriteString(rec.String())
		b.WriteString("\n")
	}
	return b.String()
}

func residueOf(a *structure.Atom) (string, int) {
	if a.Residue == nil {
		return "", 0
	}
	return a.Residue.Name, a.Residue.Seq
}
