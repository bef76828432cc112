package forcefield

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

// prepared builds the test tripeptide with hydrogens and committed states.
func prepared(t *testing.T) (*structure.Structure, *topology.Definitions) {
	t.Helper()

	defs, err := topology.Load()
	if err != nil {
		t.Fatal(err)
	}
	records, err := pdb.ReadFile(filepath.Join("..", "..", "test", "input", "peptide.pdb"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := structure.New(records, defs)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetTermini(false, false); err != nil {
		t.Fatal(err)
	}
	s.UpdateBonds()
	if _, err := s.AddMissingHeavy(); err != nil {
		t.Fatal(err)
	}
	s.AddHydrogens()

	// settle the histidine as HIE
	his := s.Residues()[1]
	his.RemoveAtom("HD1")
	if err := s.ApplyPatch("HIE", his); err != nil {
		t.Fatal(err)
	}
	s.SetStates()
	return s, defs
}

func TestNew(t *testing.T) {
	defs, err := topology.Load()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		ff      string
		wantErr bool
	}{
		{"parse", "parse", false},
		{"upper case", "PARSE", false},
		{"unknown", "nope", true},
		{"names only", "charmm", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.ff, defs, "", "")
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSource_Apply(t *testing.T) {
	s, defs := prepared(t)

	src, err := New("parse", defs, "", "")
	if err != nil {
		t.Fatal(err)
	}
	hit, miss := src.Apply(s)

	if len(hit)+len(miss) != s.NumAtoms() {
		t.Errorf("hit (%d) + miss (%d) != atoms (%d)", len(hit), len(miss), s.NumAtoms())
	}
	if len(miss) != 0 {
		t.Errorf("unexpected misses: %v", miss)
	}

	for _, r := range s.Residues() {
		if q := r.Charge(); !structure.Integral(q) {
			t.Errorf("%s has non-integral charge %.4f", r, q)
		}
	}

	total, _ := s.Charge()
	// +1 N-terminus, -1 C-terminus, neutral HIE and water
	if math.Abs(total) > 1e-6 {
		t.Errorf("total charge = %.4f, want 0", total)
	}

	n := s.Residues()[0].Atom("N")
	if n.Charge != -0.32 || n.Radius != 1.5 {
		t.Errorf("N-terminal N got %+v, want the NTERM parameters", n)
	}
}

func TestSource_Apply_userFF(t *testing.T) {
	s, defs := prepared(t)

	dir := t.TempDir()
	userFF := filepath.Join(dir, "user.dat")
	content := "# only water\nWAT O -0.834 1.77\nWAT H1 0.417 1.0\nWAT H2 0.417 1.0\n"
	if err := os.WriteFile(userFF, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := New("parse", defs, userFF, "")
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "" {
		t.Errorf("user force field name = %q, want empty", src.Name)
	}

	hit, miss := src.Apply(s)
	if len(hit) != 3 {
		t.Errorf("user force field hit %d atoms, want the 3 water atoms", len(hit))
	}
	if len(miss) != s.NumAtoms()-3 {
		t.Errorf("user force field missed %d atoms, want %d", len(miss), s.NumAtoms()-3)
	}
}

func TestReadDAT_errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"short line", "ALA N -0.4\n"},
		{"bad charge", "ALA N x 1.5\n"},
		{"bad radius", "ALA N -0.4 y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readDAT(strings.NewReader(tt.in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestApplyNames(t *testing.T) {
	s, defs := prepared(t)

	src, err := New("parse", defs, "", "")
	if err != nil {
		t.Fatal(err)
	}
	src.Apply(s)

	charges := map[*structure.Atom]float64{}
	for _, a := range s.Atoms() {
		charges[a] = a.Charge
	}

	scheme, err := NamingScheme("CHARMM", defs)
	if err != nil {
		t.Fatal(err)
	}
	ApplyNames(s, scheme)

	rs := s.Residues()
	if rs[0].Atom("HT1") == nil || rs[0].Atom("H1") != nil {
		t.Error("N-terminal hydrogens were not renamed to HT1-HT3")
	}
	if rs[1].Name != "HSE" {
		t.Errorf("HIE renamed to %s, want HSE", rs[1].Name)
	}
	if rs[1].Atom("HN") == nil {
		t.Error("backbone H was not renamed to HN")
	}
	if rs[2].Atom("OT1") == nil || rs[2].Atom("OT2") == nil {
		t.Error("C-terminal oxygens were not renamed to OT1 and OT2")
	}
	if rs[3].Name != "TIP3" || rs[3].Atom("OH2") == nil {
		t.Errorf("water renamed to %s, want TIP3 with OH2", rs[3].Name)
	}

	for a, q := range charges {
		if a.Charge != q {
			t.Errorf("renaming changed the charge of %s", a)
		}
	}
}

func TestNamingScheme_unknown(t *testing.T) {
	defs, err := topology.Load()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NamingScheme("gromos", defs); err == nil {
		t.Error("expected an error for an unknown naming scheme")
	}
}

func TestAvailable(t *testing.T) {
	infos := Available()

	want := map[string]Info{
		"amber":  {Name: "amber", Names: true},
		"charmm": {Name: "charmm", Names: true},
		"parse":  {Name: "parse", Parameters: true, Names: true},
	}
	if len(infos) != len(want) {
		t.Fatalf("Available() = %v", infos)
	}
	for _, info := range infos {
		if want[info.Name] != info {
			t.Errorf("Available() entry %+v, want %+v", info, want[info.Name])
		}
	}
}
