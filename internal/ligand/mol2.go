package ligand

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Atom is one atom of a MOL2 molecule.
type Atom struct {
	ID      int
	Name    string
	Type    string
	Element string
	X, Y, Z float64
	Charge  float64
}

// Molecule is the contents of a Tripos MOL2 file.
type Molecule struct {
	Name string

	// ResName is the residue name the molecule is given in the structure
	ResName string

	Atoms []Atom

	// Bonds are pairs of atom names
	Bonds [][2]string
}

// Charge is the sum of the atoms' partial charges.
func (m *Molecule) Charge() float64 {
	q := 0.0
	for _, a := range m.Atoms {
		q += a.Charge
	}
	return q
}

// ReadMOL2File reads the molecule in a MOL2 file.
func ReadMOL2File(filename string) (*Molecule, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ligand file %s: %w", filename, err)
	}
	defer f.Close()

	m, err := ReadMOL2(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read ligand file %s: %w", filename, err)
	}
	return m, nil
}

// ReadMOL2 parses the MOLECULE, ATOM, BOND and SUBSTRUCTURE sections of
// the first molecule in a MOL2 stream.
func ReadMOL2(r io.Reader) (*Molecule, error) {
	m := &Molecule{}
	byID := map[int]string{}
	substName := ""

	section := ""
	sectionLine := 0
	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "@<TRIPOS>") {
			next := strings.TrimPrefix(line, "@<TRIPOS>")
			if next == "MOLECULE" && len(m.Atoms) > 0 {
				break
			}
			section, sectionLine = next, 0
			continue
		}
		sectionLine++

		fields := strings.Fields(line)
		switch section {
		case "MOLECULE":
			if sectionLine == 1 {
				m.Name = line
			}
		case "ATOM":
			a, subst, err := parseAtom(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if _, ok := byID[a.ID]; ok {
				return nil, fmt.Errorf("line %d: duplicate atom id %d", lineNum, a.ID)
			}
			for _, o := range m.Atoms {
				if o.Name == a.Name {
					return nil, fmt.Errorf("line %d: duplicate atom name %s", lineNum, a.Name)
				}
			}
			byID[a.ID] = a.Name
			m.Atoms = append(m.Atoms, a)
			if substName == "" {
				substName = subst
			}
		case "BOND":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: want bond id, origin and target, got %q", lineNum, line)
			}
			var pair [2]string
			for i, f := range fields[1:3] {
				id, err := strconv.Atoi(f)
				if err != nil {
					return nil, fmt.Errorf("line %d: failed to parse bond atom: %w", lineNum, err)
				}
				name, ok := byID[id]
				if !ok {
					return nil, fmt.Errorf("line %d: bond to unknown atom %d", lineNum, id)
				}
				pair[i] = name
			}
			m.Bonds = append(m.Bonds, pair)
		case "SUBSTRUCTURE":
			if sectionLine == 1 && len(fields) >= 2 {
				substName = fields[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(m.Atoms) == 0 {
		return nil, fmt.Errorf("no atoms in MOL2 ATOM section")
	}
	m.ResName = residueName(substName)
	return m, nil
}

// parseAtom reads "id name x y z type [subst_id [subst_name [charge]]]".
func parseAtom(fields []string) (Atom, string, error) {
	if len(fields) < 6 {
		return Atom{}, "", fmt.Errorf("want at least 6 atom fields, got %d", len(fields))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Atom{}, "", fmt.Errorf("failed to parse atom id: %w", err)
	}
	var coords [3]float64
	for i := range coords {
		if coords[i], err = strconv.ParseFloat(fields[2+i], 64); err != nil {
			return Atom{}, "", fmt.Errorf("failed to parse coordinate: %w", err)
		}
	}

	a := Atom{
		ID:      id,
		Name:    fields[1],
		Type:    fields[5],
		Element: elementOf(fields[5]),
		X:       coords[0],
		Y:       coords[1],
		Z:       coords[2],
	}
	if len(a.Name) > 4 {
		return Atom{}, "", fmt.Errorf("atom name %s is longer than 4 characters", a.Name)
	}

	subst := ""
	if len(fields) > 7 {
		subst = fields[7]
	}
	if len(fields) > 8 {
		if a.Charge, err = strconv.ParseFloat(fields[8], 64); err != nil {
			return Atom{}, "", fmt.Errorf("failed to parse charge: %w", err)
		}
	}
	return a, subst, nil
}

// elementOf takes the element from a SYBYL atom type such as C.ar or Cl.
func elementOf(sybyl string) string {
	el, _, _ := strings.Cut(sybyl, ".")
	return upper.String(el)
}

// residueName strips the substructure number from a name like LIG1.
func residueName(subst string) string {
	name := strings.TrimRightFunc(subst, unicode.IsDigit)
	if name == "" {
		return "LIG"
	}
	name = upper.String(name)
	if len(name) > 3 {
		name = name[:3]
	}
	return name
}
