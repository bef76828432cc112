// Package pdb reads and writes the fixed-column records of PDB files.
package pdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the classification of a record by its record name.
type Kind int

const (
	// KindOther is any record the pipeline does not look at.
	KindOther Kind = iota
	// KindHeader is a header-type record (HEADER, TITLE, REMARK, ...).
	KindHeader
	KindAtom
	KindHetAtm
	KindSigAtm
	KindSeqAdv
	KindTer
	KindModel
	KindEndModel
	KindEnd
)

// headerNames are the record names echoed back in an original header block.
var headerNames = map[string]bool{
	"HEADER": true,
	"TITLE":  true,
	"COMPND": true,
	"SOURCE": true,
	"KEYWDS": true,
	"EXPDTA": true,
	"AUTHOR": true,
	"REVDAT": true,
	"JRNL":   true,
	"REMARK": true,
	"SPRSDE": true,
	"NUMMDL": true,
}

var kinds = map[string]Kind{
	"ATOM":   KindAtom,
	"HETATM": KindHetAtm,
	"SIGATM": KindSigAtm,
	"SEQADV": KindSeqAdv,
	"TER":    KindTer,
	"MODEL":  KindModel,
	"ENDMDL": KindEndModel,
	"END":    KindEnd,
}

// String returns the record name of the kind.
func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "HEADER"
	case KindAtom:
		return "ATOM"
	case KindHetAtm:
		return "HETATM"
	case KindSigAtm:
		return "SIGATM"
	case KindSeqAdv:
		return "SEQADV"
	case KindTer:
		return "TER"
	case KindModel:
		return "MODEL"
	case KindEndModel:
		return "ENDMDL"
	case KindEnd:
		return "END"
	default:
		return "OTHER"
	}
}

// Record is a single line of a PDB file.
type Record struct {
	// Kind of the record, computed once from its name
	Kind Kind

	// Name is the record name in columns 1-6, trimmed
	Name string

	// Line is the original text of the record
	Line string

	// Atom is set for ATOM and HETATM records
	Atom *Atom

	// ResName is the residue name for ATOM, HETATM, SIGATM and SEQADV records
	ResName string
}

// Atom holds the fields of an ATOM or HETATM record.
type Atom struct {
	Serial     int
	Name       string
	AltLoc     string
	ResName    string
	ChainID    string
	ResSeq     int
	ICode      string
	X, Y, Z    float64
	Occupancy  float64
	TempFactor float64
	SegID      string
	Element    string
	Charge     string
}

// String returns the original line of the record.
func (r Record) String() string {
	return r.Line
}

// IsHeader reports whether the record is a header-type record.
func (r Record) IsHeader() bool {
	return r.Kind == KindHeader
}

// HasResidue reports whether the record names a residue, ie whether
// it is an ATOM, HETATM, SIGATM or SEQADV record.
func (r Record) HasResidue() bool {
	switch r.Kind {
	case KindAtom, KindHetAtm, KindSigAtm, KindSeqAdv:
		return true
	default:
		return false
	}
}

// Parse turns a single line into a Record.
func Parse(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	name := strings.TrimSpace(column(line, 0, 6))

	rec := Record{Kind: KindOther, Name: name, Line: line}
	if headerNames[name] {
		rec.Kind = KindHeader
		return rec, nil
	}
	if k, ok := kinds[name]; ok {
		rec.Kind = k
	}

	switch rec.Kind {
	case KindAtom, KindHetAtm:
		atom, err := parseAtom(line)
		if err != nil {
			return rec, err
		}
		rec.Atom = atom
		rec.ResName = atom.ResName
	case KindSigAtm:
		rec.ResName = strings.TrimSpace(column(line, 17, 21))
	case KindSeqAdv:
		rec.ResName = strings.TrimSpace(column(line, 12, 15))
	}

	return rec, nil
}

// NewAtomRecord formats an atom as an ATOM or HETATM record.
func NewAtomRecord(kind Kind, a Atom) Record {
	if kind != KindAtom {
		kind = KindHetAtm
	}
	a.ResName = strings.TrimSpace(a.ResName)
	return Record{
		Kind:    kind,
		Name:    kind.String(),
		Line:    formatAtom(kind, a),
		Atom:    &a,
		ResName: a.ResName,
	}
}

func parseAtom(line string) (*Atom, error) {
	a := &Atom{
		Name:    strings.TrimSpace(column(line, 12, 16)),
		AltLoc:  strings.TrimSpace(column(line, 16, 17)),
		ResName: strings.TrimSpace(column(line, 17, 21)),
		ChainID: strings.TrimSpace(column(line, 21, 22)),
		ICode:   strings.TrimSpace(column(line, 26, 27)),
		SegID:   strings.TrimSpace(column(line, 72, 76)),
		Element: strings.TrimSpace(column(line, 76, 78)),
		Charge:  strings.TrimSpace(column(line, 78, 80)),
	}

	var err error
	if a.Serial, err = parseInt(column(line, 6, 11), 0); err != nil {
		return nil, fmt.Errorf("failed to parse atom serial: %w", err)
	}
	if a.ResSeq, err = parseInt(column(line, 22, 26), 0); err != nil {
		return nil, fmt.Errorf("failed to parse residue sequence number: %w", err)
	}
	if a.X, err = parseFloat(column(line, 30, 38), 0); err != nil {
		return nil, fmt.Errorf("failed to parse x coordinate: %w", err)
	}
	if a.Y, err = parseFloat(column(line, 38, 46), 0); err != nil {
		return nil, fmt.Errorf("failed to parse y coordinate: %w", err)
	}
	if a.Z, err = parseFloat(column(line, 46, 54), 0); err != nil {
		return nil, fmt.Errorf("failed to parse z coordinate: %w", err)
	}
	if a.Occupancy, err = parseFloat(column(line, 54, 60), 1); err != nil {
		return nil, fmt.Errorf("failed to parse occupancy: %w", err)
	}
	if a.TempFactor, err = parseFloat(column(line, 60, 66), 0); err != nil {
		return nil, fmt.Errorf("failed to parse temperature factor: %w", err)
	}

	if a.Element == "" {
		a.Element = guessElement(a.Name)
	}

	return a, nil
}

func formatAtom(kind Kind, a Atom) string {
	name := a.Name
	if len(name) < 4 && len(a.Element) < 2 {
		name = " " + name
	}
	return fmt.Sprintf(
		"%-6s%5d %-4s%1s%-4s%1s%4d%1s   %8.3f%8.3f%8.3f%6.2f%6.2f      %-4s%2s%2s",
		kind.String(), a.Serial, name, a.AltLoc, a.ResName, a.ChainID, a.ResSeq, a.ICode,
		a.X, a.Y, a.Z, a.Occupancy, a.TempFactor, a.SegID, a.Element, a.Charge,
	)
}

// guessElement takes the element from the first letter of the atom name,
// skipping leading digits as in "1HB".
func guessElement(name string) string {
	for _, c := range name {
		if c >= 'A' && c <= 'Z' {
			return string(c)
		}
	}
	return ""
}

// column returns line[start:end], clipped to the length of the line.
func column(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

func parseInt(field string, empty int) (int, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return empty, nil
	}
	return strconv.Atoi(field)
}

func parseFloat(field string, empty float64) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return empty, nil
	}
	return strconv.ParseFloat(field, 64)
}
