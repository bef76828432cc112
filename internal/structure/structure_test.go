package structure

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mimminou/pdb2pqr/internal/pdb"
	"github.com/mimminou/pdb2pqr/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// load builds a structure from a file in test/input.
func load(t *testing.T, name string) *Structure {
	t.Helper()

	defs, err := topology.Load()
	if err != nil {
		t.Fatal(err)
	}
	records, err := pdb.ReadFile(filepath.Join("..", "..", "test", "input", name))
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(records, defs)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := load(t, "peptide.pdb")

	if len(s.Chains) != 1 {
		t.Fatalf("New() built %d chains, want 1", len(s.Chains))
	}
	if s.NumResidues() != 4 {
		t.Fatalf("New() built %d residues, want 4", s.NumResidues())
	}

	kinds := []topology.Kind{topology.KindAmino, topology.KindAmino, topology.KindAmino, topology.KindWater}
	for i, r := range s.Residues() {
		if r.Kind != kinds[i] {
			t.Errorf("residue %s kind = %v, want %v", r, r.Kind, kinds[i])
		}
	}

	// the second alternate location of ALA CB is dropped
	ala := s.Residues()[0]
	if len(ala.Atoms) != 5 {
		t.Errorf("ALA has %d atoms, want 5", len(ala.Atoms))
	}
	if cb := ala.Atom("CB"); cb == nil || cb.AltLoc != "A" {
		t.Errorf("ALA CB should be the first alternate location, got %+v", cb)
	}
	if s.NumAtoms() != 21 {
		t.Errorf("NumAtoms() = %d, want 21", s.NumAtoms())
	}
}

func TestNew_empty(t *testing.T) {
	defs, err := topology.Load()
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := pdb.Parse("END")
	if _, err := New([]pdb.Record{rec}, defs); err == nil {
		t.Error("expected an error building a structure without atoms")
	}
}

func TestStructure_SetTermini(t *testing.T) {
	tests := []struct {
		name     string
		neutralN bool
		neutralC bool
		wantN    string
		wantC    string
	}{
		{"charged", false, false, "NTERM", "CTERM"},
		{"neutral", true, true, "NEUTRAL-NTERM", "NEUTRAL-CTERM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := load(t, "peptide.pdb")
			if err := s.SetTermini(tt.neutralN, tt.neutralC); err != nil {
				t.Fatal(err)
			}

			rs := s.Residues()
			if !rs[0].HasPatch(tt.wantN) {
				t.Errorf("first residue patches = %v, want %s", rs[0].Patches, tt.wantN)
			}
			if !rs[2].HasPatch(tt.wantC) {
				t.Errorf("last amino acid patches = %v, want %s", rs[2].Patches, tt.wantC)
			}
			if len(rs[3].Patches) != 0 {
				t.Errorf("water should not be patched, got %v", rs[3].Patches)
			}
		})
	}
}

func TestStructure_UpdateBonds(t *testing.T) {
	s := load(t, "peptide.pdb")
	s.UpdateBonds()

	rs := s.Residues()
	if !rs[0].Atom("C").BondedTo(rs[1].Atom("N")) {
		t.Error("missing peptide bond between ALA 1 and HIS 2")
	}
	if !rs[1].Atom("CE1").BondedTo(rs[1].Atom("NE2")) {
		t.Error("missing ring closure in HIS 2")
	}
	if !rs[1].Atom("N").BondedTo(rs[1].Atom("CA")) {
		t.Error("missing backbone bond N-CA in HIS 2")
	}
	if rs[0].Atom("N").BondedTo(rs[2].Atom("N")) {
		t.Error("unexpected bond between distant atoms")
	}
}

func TestStructure_AddMissingHeavy(t *testing.T) {
	s := load(t, "peptide.pdb")
	if err := s.SetTermini(false, false); err != nil {
		t.Fatal(err)
	}
	s.UpdateBonds()

	added, err := s.AddMissingHeavy()
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 2 {
		t.Fatalf("AddMissingHeavy() added %d atoms, want 2 (SER OG and OXT)", len(added))
	}

	ser := s.Residues()[2]
	og := ser.Atom("OG")
	if og == nil || !og.Added {
		t.Fatal("SER OG was not added")
	}
	if d := og.Distance(ser.Atom("CB")); math.Abs(d-1.417) > 0.01 {
		t.Errorf("OG-CB distance = %.3f, want 1.417", d)
	}
	if !og.BondedTo(ser.Atom("CB")) {
		t.Error("added atom was not bonded")
	}
	if ser.Atom("OXT") == nil {
		t.Error("C-terminal OXT was not added")
	}
}

func TestStructure_AddMissingHeavy_superpose(t *testing.T) {
	defs, err := topology.Load()
	if err != nil {
		t.Fatal(err)
	}
	records, err := pdb.ReadFile(filepath.Join("..", "..", "test", "input", "peptide.pdb"))
	if err != nil {
		t.Fatal(err)
	}

	// drop HIS 2 CA, which can only be rebuilt by fitting the template
	var kept []pdb.Record
	var want r3.Vec
	for _, rec := range records {
		if rec.Atom != nil && rec.Atom.ResSeq == 2 && rec.Atom.Name == "CA" {
			want = r3.Vec{X: rec.Atom.X, Y: rec.Atom.Y, Z: rec.Atom.Z}
			continue
		}
		kept = append(kept, rec)
	}

	s, err := New(kept, defs)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddMissingHeavy(); err != nil {
		t.Fatal(err)
	}

	ca := s.Residues()[1].Atom("CA")
	if ca == nil {
		t.Fatal("HIS CA was not rebuilt")
	}
	if d := r3.Norm(r3.Sub(ca.Coords, want)); d > 0.5 {
		t.Errorf("rebuilt CA is %.2f A from the original", d)
	}
}

func TestStructure_AddHydrogens(t *testing.T) {
	s := load(t, "peptide.pdb")
	if err := s.SetTermini(false, false); err != nil {
		t.Fatal(err)
	}
	s.UpdateBonds()
	if _, err := s.AddMissingHeavy(); err != nil {
		t.Fatal(err)
	}

	added := s.AddHydrogens()
	if len(added) != 22 {
		t.Errorf("AddHydrogens() added %d hydrogens, want 22", len(added))
	}

	rs := s.Residues()
	for _, name := range []string{"H1", "H2", "H3"} {
		if rs[0].Atom(name) == nil {
			t.Errorf("N-terminal %s missing", name)
		}
	}
	if rs[0].Atom("H") != nil {
		t.Error("N-terminal residue kept its backbone H")
	}

	his := rs[1]
	if his.Atom("HD1") == nil || his.Atom("HE2") == nil {
		t.Error("unpatched histidine should carry both tautomer hydrogens")
	}
	if len(his.Alternates) != 2 {
		t.Errorf("histidine alternates = %v, want [HD1 HE2]", his.Alternates)
	}

	h := his.Atom("H")
	if h == nil {
		t.Fatal("HIS backbone H missing")
	}
	if d := h.Distance(his.Atom("N")); math.Abs(d-1.01) > 0.01 {
		t.Errorf("H-N distance = %.3f, want 1.01", d)
	}

	wat := rs[3]
	if wat.Atom("H1") == nil || wat.Atom("H2") == nil {
		t.Error("water hydrogens missing")
	}
	if d := wat.Atom("H2").Distance(wat.Atom("O")); math.Abs(d-0.9572) > 0.001 {
		t.Errorf("water O-H2 distance = %.4f", d)
	}
}

func TestStructure_UpdateSSBridges(t *testing.T) {
	s := load(t, "disulfide.pdb")
	s.UpdateBonds()
	if err := s.UpdateSSBridges(); err != nil {
		t.Fatal(err)
	}

	a, b := s.Residues()[0], s.Residues()[1]
	if a.SSPartner != b || b.SSPartner != a {
		t.Fatal("cysteines were not bridged")
	}
	if !a.HasPatch("CYX") || !b.HasPatch("CYX") {
		t.Errorf("bridged cysteines should be patched to CYX, got %v and %v", a.Patches, b.Patches)
	}
	if !a.Atom("SG").BondedTo(b.Atom("SG")) {
		t.Error("SG atoms were not bonded")
	}

	s.AddHydrogens()
	if a.Atom("HG") != nil {
		t.Error("CYX should not get an HG")
	}

	s.SetStates()
	if a.State != "CYX" {
		t.Errorf("state = %s, want CYX", a.State)
	}
}

func TestStructure_ApplyPatch(t *testing.T) {
	s := load(t, "his.pdb")
	his := s.Residues()[0]

	if err := s.ApplyPatch("HIP", his); err != nil {
		t.Fatal(err)
	}
	s.AddHydrogens()
	if his.Atom("HD1") == nil || his.Atom("HE2") == nil {
		t.Fatal("HIP should carry HD1 and HE2")
	}

	if err := s.ApplyPatch("HID", his); err != nil {
		t.Fatal(err)
	}
	if his.Atom("HE2") != nil {
		t.Error("switching to HID should drop HE2")
	}
	if his.HasPatch("HIP") {
		t.Errorf("HIP patch kept after HID: %v", his.Patches)
	}

	if err := s.ApplyPatch("CYX", his); err == nil {
		t.Error("expected an error applying CYX to a histidine")
	}
	if err := s.ApplyPatch("NOPE", his); err == nil {
		t.Error("expected an error for an unknown patch")
	}
}

func TestStructure_SetStates(t *testing.T) {
	tests := []struct {
		name  string
		atoms []string
		want  string
	}{
		{"both tautomers", []string{"HD1", "HE2"}, "HIP"},
		{"epsilon", []string{"HE2"}, "HIE"},
		{"delta", []string{"HD1"}, "HID"},
		{"none", nil, "HID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := load(t, "his.pdb")
			his := s.Residues()[0]
			for _, name := range tt.atoms {
				his.AddAtom(&Atom{Name: name, Element: "H"})
			}
			s.SetStates()
			if his.State != tt.want {
				t.Errorf("SetStates() = %s, want %s", his.State, tt.want)
			}
		})
	}
}

func TestStructure_Charge(t *testing.T) {
	s := load(t, "peptide.pdb")
	rs := s.Residues()
	rs[0].Atoms[0].Charge = 0.5023
	rs[1].Atoms[0].Charge = 1.0
	rs[2].Atoms[0].Charge = -0.9995

	total, nonIntegral := s.Charge()
	if math.Abs(total-0.5028) > 1e-9 {
		t.Errorf("Charge() total = %.4f, want 0.5028", total)
	}
	if len(nonIntegral) != 1 || nonIntegral[0] != rs[0] {
		t.Errorf("Charge() non-integral = %v, want [%s]", nonIntegral, rs[0])
	}
}

func TestStructure_RemoveResidue(t *testing.T) {
	s := load(t, "peptide.pdb")
	water := s.Residues()[3]

	if !s.RemoveResidue(water) {
		t.Fatal("RemoveResidue() did not find the water")
	}
	if s.NumResidues() != 3 || len(s.Chains[0].Residues) != 3 {
		t.Error("water still present in the structure or its chain")
	}
	if s.RemoveResidue(water) {
		t.Error("second RemoveResidue() should report the residue missing")
	}
}

func TestStructure_RenderAtoms(t *testing.T) {
	s := load(t, "peptide.pdb")
	ca := s.Residues()[0].Atom("CA")
	ca.Charge, ca.Radius = 0.1, 1.7

	tests := []struct {
		name     string
		chainIDs bool
		format   Format
		want     string
	}{
		{"pqr without chain", false, FormatPQR, "ATOM      2  CA  ALA     1       1.458   0.000   0.000  0.1000 1.7000"},
		{"pqr with chain", true, FormatPQR, "ATOM      2  CA  ALA A   1       1.458   0.000   0.000  0.1000 1.7000"},
		{"cif", false, FormatCIF, "ATOM       2 CA   ALA     1    1.458    0.000    0.000  0.1000 1.7000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := s.RenderAtoms([]*Atom{ca}, tt.chainIDs, tt.format)
			if len(lines) != 1 || lines[0] != tt.want {
				t.Errorf("RenderAtoms() =\n%q\nwant\n%q", lines, tt.want)
			}
		})
	}

	if got := len(s.RenderAtoms(s.Atoms(), false, FormatPQR)); got != s.NumAtoms() {
		t.Errorf("RenderAtoms() rendered %d lines for %d atoms", got, s.NumAtoms())
	}
}

func TestStructure_RenderTypeMap(t *testing.T) {
	s := load(t, "peptide.pdb")
	s.SetStates()

	var buf bytes.Buffer
	if err := s.RenderTypeMap(&buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "<tr><td>"); got != s.NumAtoms() {
		t.Errorf("type map has %d rows, want %d", got, s.NumAtoms())
	}
}

func TestStructure_Reserialize(t *testing.T) {
	s := load(t, "peptide.pdb")
	s.Reserialize()
	for i, a := range s.Atoms() {
		if a.Serial != i+1 {
			t.Fatalf("atom %s serial = %d, want %d", a, a.Serial, i+1)
		}
	}
}
