package ligand

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mimminou/pdb2pqr/internal/pdb"
	"github.com/mimminou/pdb2pqr/internal/structure"
	"github.com/mimminou/pdb2pqr/internal/topology"
)

func input(name string) string {
	return filepath.Join("..", "..", "test", "input", name)
}

func TestReadMOL2File(t *testing.T) {
	m, err := ReadMOL2File(input("ligand.mol2"))
	if err != nil {
		t.Fatal(err)
	}

	if m.Name != "acetate" {
		t.Errorf("Name = %q, want acetate", m.Name)
	}
	if m.ResName != "ACT" {
		t.Errorf("ResName = %q, want ACT", m.ResName)
	}
	if len(m.Atoms) != 7 || len(m.Bonds) != 6 {
		t.Fatalf("got %d atoms and %d bonds, want 7 and 6", len(m.Atoms), len(m.Bonds))
	}
	if got := m.Atoms[2]; got.Name != "O1" || got.Element != "O" || got.Charge != -0.8 || got.Y != 21.08 {
		t.Errorf("third atom = %+v", got)
	}
	if m.Bonds[1] != [2]string{"C2", "O1"} {
		t.Errorf("second bond = %v, want C2-O1", m.Bonds[1])
	}
	if q := m.Charge(); math.Abs(q+1) > 1e-9 {
		t.Errorf("Charge() = %f, want -1", q)
	}
}

func TestReadMOL2_errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			"no atoms",
			"@<TRIPOS>MOLECULE\nempty\n",
			"no atoms",
		},
		{
			"short atom line",
			"@<TRIPOS>ATOM\n1 C1 0.0 0.0\n",
			"at least 6",
		},
		{
			"bad coordinate",
			"@<TRIPOS>ATOM\n1 C1 0.0 x 0.0 C.3\n",
			"coordinate",
		},
		{
			"unknown bond atom",
			"@<TRIPOS>ATOM\n1 C1 0.0 0.0 0.0 C.3\n@<TRIPOS>BOND\n1 1 2 1\n",
			"unknown atom 2",
		},
		{
			"duplicate name",
			"@<TRIPOS>ATOM\n1 C1 0.0 0.0 0.0 C.3\n2 C1 1.0 0.0 0.0 C.3\n",
			"duplicate atom name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMOL2(strings.NewReader(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadMOL2() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestElementOf(t *testing.T) {
	tests := map[string]string{
		"C.ar":  "C",
		"N.pl3": "N",
		"Cl":    "CL",
		"H":     "H",
		"O.co2": "O",
	}
	for sybyl, want := range tests {
		if got := elementOf(sybyl); got != want {
			t.Errorf("elementOf(%s) = %s, want %s", sybyl, got, want)
		}
	}
}

func TestResidueName(t *testing.T) {
	tests := map[string]string{
		"ACT1":  "ACT",
		"lig12": "LIG",
		"":      "LIG",
		"123":   "LIG",
		"HEME1": "HEM",
	}
	for subst, want := range tests {
		if got := residueName(subst); got != want {
			t.Errorf("residueName(%q) = %s, want %s", subst, got, want)
		}
	}
}

func TestInitialize(t *testing.T) {
	defs, err := topology.Load()
	if err != nil {
		t.Fatal(err)
	}
	records, err := pdb.ReadFile(input("peptide.pdb"))
	if err != nil {
		t.Fatal(err)
	}

	s, ext, l, err := Initialize(defs, input("ligand.mol2"), records)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := defs.Residue("ACT"); ok {
		t.Error("Initialize() changed the base definitions")
	}
	if def, ok := ext.Residue("ACT"); !ok || def.Kind != topology.KindLigand {
		t.Fatalf("extended definitions lack the ligand")
	}

	residues := s.Residues()
	lig := residues[len(residues)-1]
	if lig.Name != "ACT" || lig.Kind != topology.KindLigand || lig.ChainID != ChainID {
		t.Fatalf("last residue = %s (%s), want the ligand", lig, lig.Kind)
	}
	if len(lig.Atoms) != 7 {
		t.Errorf("ligand has %d atoms, want 7", len(lig.Atoms))
	}
	for _, a := range lig.Atoms {
		if a.Record != "HETATM" {
			t.Errorf("%s is an %s record", a, a.Record)
		}
	}

	s.UpdateBonds()
	if c2, o1 := lig.Atom("C2"), lig.Atom("O1"); !c2.BondedTo(o1) {
		t.Error("MOL2 bond C2-O1 missing from the structure")
	}

	l.Refresh(lig)
	p, ok := l.Param("O1")
	if !ok || p.Charge != -0.8 || p.Radius != 1.40 {
		t.Errorf("Param(O1) = %+v, %v", p, ok)
	}
	if _, ok := l.Param("CA"); ok {
		t.Error("Param() returned parameters for an atom outside the ligand")
	}
}

func TestLigand_Refresh(t *testing.T) {
	m, err := ReadMOL2File(input("ligand.mol2"))
	if err != nil {
		t.Fatal(err)
	}
	l := New(m)

	r := &structure.Residue{Name: "ACT"}
	r.AddAtom(&structure.Atom{Name: "C1", Element: "C"})
	r.AddAtom(&structure.Atom{Name: "XX", Element: "C"})
	l.Refresh(r)

	if p, ok := l.Param("C1"); !ok || p.Radius != 1.70 {
		t.Errorf("Param(C1) = %+v, %v", p, ok)
	}
	if _, ok := l.Param("XX"); ok {
		t.Error("an atom missing from the MOL2 file got parameters")
	}
	if _, ok := l.Param("O1"); ok {
		t.Error("an atom missing from the residue kept parameters")
	}
}

func TestInitialize_errors(t *testing.T) {
	defs, err := topology.Load()
	if err != nil {
		t.Fatal(err)
	}

	clash := filepath.Join(t.TempDir(), "ala.mol2")
	data := "@<TRIPOS>ATOM\n1 C1 0.0 0.0 0.0 C.3 1 ALA1 0.0\n"
	if err := os.WriteFile(clash, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		file string
		want string
	}{
		{"missing file", input("missing.mol2"), "failed to open"},
		{"standard residue name", clash, "clashes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Initialize(defs, tt.file, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Initialize() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLigand_Records(t *testing.T) {
	m, err := ReadMOL2File(input("ligand.mol2"))
	if err != nil {
		t.Fatal(err)
	}
	records, err := pdb.ReadFile(input("ligand-only.pdb"))
	if err != nil {
		t.Fatal(err)
	}

	out := New(m).Records(records)
	if last := out[len(out)-1]; last.Kind != pdb.KindEnd {
		t.Errorf("last record = %s, want END", last.Kind)
	}
	if out[0].Kind != pdb.KindHeader {
		t.Errorf("first record = %s, want the header", out[0].Kind)
	}

	atoms := 0
	for _, rec := range out {
		if rec.Kind == pdb.KindHetAtm {
			atoms++
			if rec.Atom.Serial != atoms {
				t.Errorf("serial %d, want %d", rec.Atom.Serial, atoms)
			}
		}
	}
	if atoms != 7 {
		t.Errorf("%d HETATM records, want 7", atoms)
	}
}
