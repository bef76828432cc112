// Package forcefield assigns charges and radii to atoms from force field
// parameter files and renames atoms and residues into naming schemes.
package forcefield

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/mimminou/pdb2pqr/internal/structure"
	"github.com/mimminou/pdb2pqr/internal/topology"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed data
var data embed.FS

var lower = cases.Lower(language.Und)

// Param is the charge and radius of one atom.
type Param struct {
	Charge float64
	Radius float64
}

// Source maps residue states and atom names onto parameters and names.
type Source struct {
	// Name is the lowercase force field name, "" for a user force field
	Name string

	// params maps a residue state or patch name to its atoms' parameters
	params map[string]map[string]Param

	names *Names
	defs  *topology.Definitions
}

// New builds a parameter source. A user force field file replaces the
// built-in parameters and a user names file the built-in naming scheme.
func New(name string, defs *topology.Definitions, userFF, userNames string) (*Source, error) {
	src := &Source{Name: lower.String(name), defs: defs}

	var err error
	switch {
	case userFF != "":
		src.Name = ""
		if src.params, err = readDATFile(userFF); err != nil {
			return nil, err
		}
	case src.Name != "":
		f, openErr := data.Open(path.Join("data", src.Name+".dat"))
		if openErr != nil {
			return nil, fmt.Errorf("no parameters for force field %q", name)
		}
		defer f.Close()
		if src.params, err = readDAT(f); err != nil {
			return nil, fmt.Errorf("failed to read %s parameters: %w", src.Name, err)
		}
	default:
		return nil, errors.New("no force field or user force field file given")
	}

	if src.names, err = loadNames(src.Name, userNames); err != nil {
		return nil, err
	}
	return src, nil
}

// NamingScheme builds a source that only carries a naming scheme, used to
// rename atoms after parameters were assigned by another source.
func NamingScheme(name string, defs *topology.Definitions) (*Source, error) {
	name = lower.String(name)
	names, err := loadNames(name, "")
	if err != nil {
		return nil, err
	}
	if names == nil {
		return nil, fmt.Errorf("unknown naming scheme %q", name)
	}
	return &Source{Name: name, names: names, defs: defs}, nil
}

// Lookup returns the parameters of an atom. Terminal patch sections are
// searched before the residue's state.
func (src *Source) Lookup(a *structure.Atom) (Param, bool) {
	r := a.Residue
	if r == nil {
		return Param{}, false
	}
	for _, patch := range r.TerminalPatches() {
		if p, ok := src.params[patch][a.Name]; ok {
			return p, true
		}
	}
	state := r.State
	if state == "" {
		state = r.Name
	}
	p, ok := src.params[state][a.Name]
	return p, ok
}

// Apply assigns parameters to every atom, returning the atoms that got
// parameters and those that did not. Atoms that miss keep a zero charge
// and radius.
func (src *Source) Apply(s *structure.Structure) (hit, miss []*structure.Atom) {
	for _, a := range s.Atoms() {
		p, ok := src.Lookup(a)
		if !ok {
			a.Charge, a.Radius = 0, 0
			miss = append(miss, a)
			continue
		}
		a.Charge, a.Radius = p.Charge, p.Radius
		hit = append(hit, a)
	}
	return hit, miss
}

// HasParameters reports whether the source can assign parameters.
func (src *Source) HasParameters() bool {
	return src.params != nil
}

// readDATFile reads a user force field file.
func readDATFile(filename string) (map[string]map[string]Param, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open force field file %s: %w", filename, err)
	}
	defer f.Close()

	params, err := readDAT(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read force field file %s: %w", filename, err)
	}
	return params, nil
}

// readDAT parses whitespace separated "residue atom charge radius" lines.
func readDAT(r io.Reader) (map[string]map[string]Param, error) {
	params := map[string]map[string]Param{}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("line %d: want residue, atom, charge and radius, got %q", lineNum, line)
		}

		charge, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: failed to parse charge: %w", lineNum, err)
		}
		radius, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: failed to parse radius: %w", lineNum, err)
		}

		if params[fields[0]] == nil {
			params[fields[0]] = map[string]Param{}
		}
		params[fields[0]][fields[1]] = Param{Charge: charge, Radius: radius}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return params, nil
}

// Info describes a built-in force field or naming scheme.
type Info struct {
	Name       string
	Parameters bool
	Names      bool
}

// Available lists the built-in force fields and naming schemes.
func Available() []Info {
	byName := map[string]*Info{}
	entries, err := fs.ReadDir(data, "data")
	if err != nil {
		return nil
	}
	for _, e := range entries {
		ext := path.Ext(e.Name())
		name := strings.TrimSuffix(e.Name(), ext)
		info, ok := byName[name]
		if !ok {
			info = &Info{Name: name}
			byName[name] = info
		}
		switch ext {
		case ".dat":
			info.Parameters = true
		case ".toml":
			info.Names = true
		}
	}

	infos := make([]Info, 0, len(byName))
	for _, info := range byName {
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
