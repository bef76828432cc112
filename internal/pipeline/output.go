package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mimminou/pdb2pqr/internal/structure"
)

// Render returns the contents of an output file: the header and atom
// lines, with a TER after every chain and a closing END for PQR, or a
// data block for CIF.
func Render(name string, result *Result, format structure.Format) string {
	var b strings.Builder

	if format == structure.FormatCIF {
		fmt.Fprintf(&b, "data_%s\n", name)
		b.WriteString(result.Header)
		for _, line := range result.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("#\n")
		return b.String()
	}

	b.WriteString(result.Header)
	var chain *structure.Chain
	for i, line := range result.Lines {
		if i < len(result.Atoms) {
			if c := chainOf(result.Atoms[i]); c != chain {
				if chain != nil {
					b.WriteString("TER\n")
				}
				chain = c
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(result.Lines) > 0 {
		b.WriteString("TER\n")
	}
	b.WriteString("END\n")
	return b.String()
}

func chainOf(a *structure.Atom) *structure.Chain {
	if a.Residue == nil {
		return nil
	}
	return a.Residue.Chain
}

// WriteFile writes the result to filename. The CIF data block is named
// after the file.
func WriteFile(filename string, result *Result, format structure.Format) error {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if err := os.WriteFile(filename, []byte(Render(name, result, format)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// Summary is a JSON report of a run.
type Summary struct {
	// ID uniquely identifies the run
	ID string `json:"id"`

	// Input and Output are the paths of the structure files
	Input  string `json:"input"`
	Output string `json:"output"`

	// Time, ex: "2018/01/01 20:41:00"
	Time string `json:"time"`

	// Execution is the number of seconds the run took
	Execution float64 `json:"execution"`

	ForceField    string   `json:"forcefield"`
	Residues      int      `json:"residues"`
	Atoms         int      `json:"atoms"`
	Missed        int      `json:"missed"`
	Charge        float64  `json:"charge"`
	MissedLigands []string `json:"missedLigands"`
	Warnings      []string `json:"warnings"`
	Stages        []string `json:"stages"`
}

// NewSummary summarizes a result.
func NewSummary(input, output string, opts Options, result *Result, seconds float64) Summary {
	// same format as log.Println
	t := time.Now()
	sum := Summary{
		ID:     uuid.New().String(),
		Input:  input,
		Output: output,
		Time: fmt.Sprintf(
			"%d/%02d/%02d %02d:%02d:%02d",
			t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		),
		Execution:     seconds,
		ForceField:    lower.String(opts.ForceField),
		Atoms:         len(result.Lines),
		Charge:        result.Charge,
		MissedLigands: result.MissedLigands,
		Warnings:      result.Warnings,
		Stages:        result.Stages,
	}
	if opts.UserForceField != "" {
		sum.ForceField = opts.UserForceField
	}
	if result.Structure != nil {
		sum.Residues = result.Structure.NumResidues()
	}
	if result.Miss != nil {
		sum.Missed = result.Miss.Len()
	}
	return sum
}

// WriteSummary writes the summary as indented JSON.
func WriteSummary(filename string, sum Summary) error {
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", filename, err)
	}
	return nil
}
