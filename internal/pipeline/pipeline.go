// Package pipeline prepares a parsed structure for electrostatics: it
// completes and protonates the structure, assigns charges and radii, and
// renders the atoms with a diagnostic header.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mimminou/pdb2pqr/internal/forcefield"
	"github.com/mimminou/pdb2pqr/internal/ligand"
	"github.com/mimminou/pdb2pqr/internal/optimize"
	"github.com/mimminou/pdb2pqr/internal/pdb"
	"github.com/mimminou/pdb2pqr/internal/structure"
	"github.com/mimminou/pdb2pqr/internal/topology"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Version is written in the headers of the output files.
const Version = "0.1.0"

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)

	lower = cases.Lower(language.Und)
	upper = cases.Upper(language.Und)
)

// Result is the product of a preparation run.
type Result struct {
	// Header is the diagnostic header, empty in clean mode
	Header string

	// Lines are the rendered atom lines
	Lines []string

	// Atoms are the rendered atoms, in the order of Lines
	Atoms []*structure.Atom

	// MissedLigands are the names of non-standard residues with atoms
	// that got no parameters. It is nil in clean mode.
	MissedLigands []string

	// Structure is the prepared structure
	Structure *structure.Structure

	// Hit and Miss are the atoms that did and did not get parameters
	Hit  *AtomSet
	Miss *AtomSet

	// Charge is the net charge of the structure
	Charge float64

	// Warnings are the user visible warnings of the run
	Warnings []string

	// Stages are the names of the stages that ran, in order
	Stages []string
}

// Pipeline runs the preparation stages.
type Pipeline struct {
	defs *topology.Definitions
	log  *log.Logger

	// Verbose logs the progress of every stage
	Verbose bool
}

// New returns a pipeline using the residue definitions. A nil logger
// discards log output.
func New(defs *topology.Definitions, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{defs: defs, log: logger}
}

// Prepare runs the pipeline with the built-in residue definitions,
// logging to stderr.
func Prepare(records []pdb.Record, opts Options) (*Result, error) {
	defs, err := topology.Load()
	if err != nil {
		return nil, err
	}
	return New(defs, stderr).Prepare(records, opts)
}

// run is the state handed from stage to stage.
type run struct {
	opts    Options
	records []pdb.Record
	defs    *topology.Definitions

	s         *structure.Structure
	lig       *ligand.Ligand
	atomCount int

	forceField   string
	namingScheme string
	ff           *forcefield.Source

	hit, miss     *AtomSet
	ligandSuccess bool

	charge      float64
	nonIntegral []*structure.Residue

	result *Result
	done   bool
}

// stage is one step of the pipeline. when gates the stage, nil meaning
// it always runs.
type stage struct {
	name string
	when func(r *run) bool
	run  func(p *Pipeline, r *run) error
}

// stages are run strictly in order, each on the output of the last.
var stages = []stage{
	{"drop water", func(r *run) bool { return r.opts.DropWater }, (*Pipeline).dropWater},
	{"build structure", nil, (*Pipeline).build},
	{"scan occupancy", nil, (*Pipeline).scanOccupancy},
	{"set termini and bonds", nil, (*Pipeline).setTermini},
	{"clean", func(r *run) bool { return r.opts.Clean }, (*Pipeline).clean},
	{"resolve force field", nil, (*Pipeline).resolveForceField},
	{"add heavy atoms", func(r *run) bool { return full(r) && !(r.atomCount == 0 && r.lig != nil) }, (*Pipeline).addHeavy},
	{"update disulfide bridges", full, (*Pipeline).updateSSBridges},
	{"debump", func(r *run) bool { return full(r) && r.opts.Debump }, (*Pipeline).debump},
	{"assign pKas", func(r *run) bool { return full(r) && r.opts.PKaMethod != PKaNone }, (*Pipeline).assignPKas},
	{"add hydrogens", full, (*Pipeline).addHydrogens},
	{"protonate histidines", func(r *run) bool { return r.opts.AssignOnly }, (*Pipeline).protonateHistidines},
	{"set states", nil, (*Pipeline).setStates},
	{"assign parameters", nil, (*Pipeline).parameterize},
	{"reconcile ligands", func(r *run) bool { return r.lig != nil }, (*Pipeline).reconcileLigands},
	{"prune missed ligand atoms", func(r *run) bool { return r.ligandSuccess }, (*Pipeline).pruneMissed},
	{"write type map", func(r *run) bool { return r.opts.TypeMap }, (*Pipeline).writeTypeMap},
	{"compute charge", nil, (*Pipeline).computeCharge},
	{"apply naming scheme", func(r *run) bool { return r.namingScheme != "" }, (*Pipeline).applyNamingScheme},
	{"write header", nil, (*Pipeline).writeHeader},
	{"render atoms", nil, (*Pipeline).renderAtoms},
	{"find missed ligands", nil, (*Pipeline).findMissedLigands},
	{"run extensions", nil, (*Pipeline).runExtensions},
}

func full(r *run) bool {
	return !r.opts.AssignOnly
}

// Prepare runs every stage against the records. It fails fast with
// ErrUnsupportedPKa before any stage when a pKa method is requested
// outside of a clean run.
func (p *Pipeline) Prepare(records []pdb.Record, opts Options) (*Result, error) {
	start := time.Now()

	if opts.PKaMethod == PKaPropka && opts.OutputRoot != "" {
		if err := os.Remove(opts.OutputRoot + ".propka"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale propka output: %w", err)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		opts:    opts,
		records: records,
		defs:    p.defs,
		result:  &Result{},
	}
	for _, st := range stages {
		if st.when != nil && !st.when(r) {
			continue
		}
		p.debugf("running stage: %s", st.name)
		r.result.Stages = append(r.result.Stages, st.name)
		if err := st.run(p, r); err != nil {
			return nil, err
		}
		if r.done {
			break
		}
	}

	p.debugf("Total time taken: %.2f seconds", time.Since(start).Seconds())
	return r.result, nil
}

func (p *Pipeline) debugf(format string, args ...interface{}) {
	if p.Verbose {
		p.log.Printf(format, args...)
	}
}

func (p *Pipeline) warnf(r *run, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.result.Warnings = append(r.result.Warnings, msg)
	p.log.Print("WARNING: " + msg)
}

func (p *Pipeline) dropWater(r *run) error {
	kept := make([]pdb.Record, 0, len(r.records))
	for _, rec := range r.records {
		if rec.HasResidue() && r.defs.IsWater(rec.ResName) {
			continue
		}
		kept = append(kept, rec)
	}
	p.debugf("dropped %d water records", len(r.records)-len(kept))
	r.records = kept
	return nil
}

func (p *Pipeline) build(r *run) error {
	var err error
	if r.opts.Ligand != "" {
		r.s, r.defs, r.lig, err = ligand.Initialize(r.defs, r.opts.Ligand, r.records)
		if err != nil {
			return err
		}
		for _, a := range r.s.Atoms() {
			if a.Record == pdb.KindAtom.String() {
				r.atomCount++
			}
		}
	} else if r.s, err = structure.New(r.records, r.defs); err != nil {
		return err
	}

	p.debugf("Created structure:")
	p.debugf("  Number of residues in structure: %d", r.s.NumResidues())
	p.debugf("  Number of atoms in structure   : %d", r.s.NumAtoms())
	r.result.Structure = r.s
	return nil
}

func (p *Pipeline) scanOccupancy(r *run) error {
	for _, res := range r.s.Residues() {
		multiple := false
		for _, a := range res.Atoms {
			if a.AltLoc != "" {
				multiple = true
				p.warnf(r, "multiple occupancies found: %s in %s", a.Name, res)
			}
		}
		if multiple {
			p.warnf(r, "multiple occupancies found in %s, at least one of the instances is being ignored", res)
		}
	}
	return nil
}

func (p *Pipeline) setTermini(r *run) error {
	if err := r.s.SetTermini(r.opts.NeutralN, r.opts.NeutralC); err != nil {
		return fmt.Errorf("failed to set termini: %w", err)
	}
	r.s.UpdateBonds()
	return nil
}

func (p *Pipeline) clean(r *run) error {
	atoms := r.s.Atoms()
	r.result.Atoms = atoms
	r.result.Lines = r.s.RenderAtoms(atoms, r.opts.ChainIDs, r.opts.Format)
	for _, ext := range r.opts.Extensions {
		p.log.Printf("ERROR: Ignoring extension: %s", ext)
	}
	r.done = true
	return nil
}

func (p *Pipeline) resolveForceField(r *run) error {
	r.forceField = lower.String(r.opts.ForceField)
	if r.opts.UserForceField != "" {
		r.forceField = lower.String(r.opts.UserForceField)
	}
	r.namingScheme = lower.String(r.opts.NamingScheme)
	return nil
}

func (p *Pipeline) addHeavy(r *run) error {
	added, err := r.s.AddMissingHeavy()
	if err != nil {
		return fmt.Errorf("failed to add missing heavy atoms: %w", err)
	}
	for _, a := range added {
		p.debugf("added missing heavy atom %s", a)
	}
	return nil
}

func (p *Pipeline) updateSSBridges(r *run) error {
	if err := r.s.UpdateSSBridges(); err != nil {
		return fmt.Errorf("failed to update disulfide bridges: %w", err)
	}
	return nil
}

func (p *Pipeline) debump(r *run) error {
	for _, res := range optimize.Debump(r.s) {
		p.debugf("debumped %s", res)
	}
	return nil
}

// assignPKas guards the stage order: Validate already rejects every pKa
// method.
func (p *Pipeline) assignPKas(r *run) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedPKa, r.opts.PKaMethod)
}

func (p *Pipeline) addHydrogens(r *run) error {
	added := r.s.AddHydrogens()
	p.debugf("added %d hydrogens", len(added))

	if r.opts.Debump {
		if err := p.debump(r); err != nil {
			return err
		}
	}

	h := optimize.NewHydrogens(r.s)
	if r.opts.Optimize {
		h.SetOptimizeable()
		h.HoldResidues(nil)
		h.InitializeFull()
	} else {
		h.InitializeWater()
	}
	p.debugf("optimized %d hydrogen groups", h.Optimize())

	if err := h.Cleanup(); err != nil {
		return fmt.Errorf("failed to clean up alternate hydrogens: %w", err)
	}
	r.s.Reserialize()
	return nil
}

func (p *Pipeline) protonateHistidines(r *run) error {
	for _, res := range r.s.Residues() {
		if !res.Histidine() {
			continue
		}
		if err := r.s.ApplyPatch("HIP", res); err != nil {
			return fmt.Errorf("failed to protonate %s: %w", res, err)
		}
	}
	return nil
}

func (p *Pipeline) setStates(r *run) error {
	r.s.SetStates()
	return nil
}

func (p *Pipeline) parameterize(r *run) error {
	ff, err := forcefield.New(r.forceField, r.defs, r.opts.UserForceField, r.opts.UserNames)
	if err != nil {
		return fmt.Errorf("failed to load force field: %w", err)
	}
	r.ff = ff

	hit, miss := ff.Apply(r.s)
	r.hit, r.miss = NewAtomSet(hit...), NewAtomSet(miss...)
	r.result.Hit, r.result.Miss = r.hit, r.miss
	p.debugf("assigned parameters to %d atoms, %d missed", r.hit.Len(), r.miss.Len())
	return nil
}

func (p *Pipeline) reconcileLigands(r *run) error {
	success, dropped := ReconcileLigands(r.s, r.lig, r.hit, r.miss)
	for _, res := range dropped {
		p.warnf(r, "PDB2PQR could not successfully parameterize the desired ligand %s; it has been left out of the PQR file", res)
	}
	r.ligandSuccess = success
	return nil
}

func (p *Pipeline) pruneMissed(r *run) error {
	PruneMissed(r.miss)
	return nil
}

func (p *Pipeline) writeTypeMap(r *run) error {
	name := r.opts.OutputRoot + "-typemap.html"
	if err := r.s.WriteTypeMap(name); err != nil {
		return err
	}
	p.debugf("wrote type map to %s", name)
	return nil
}

func (p *Pipeline) computeCharge(r *run) error {
	r.charge, r.nonIntegral = r.s.Charge()
	r.result.Charge = r.charge
	return nil
}

func (p *Pipeline) applyNamingScheme(r *run) error {
	target := r.ff
	if r.namingScheme != r.forceField {
		var err error
		if target, err = forcefield.NamingScheme(r.namingScheme, r.defs); err != nil {
			return fmt.Errorf("failed to load naming scheme: %w", err)
		}
	}
	forcefield.ApplyNames(r.s, target)
	return nil
}

func (p *Pipeline) writeHeader(r *run) error {
	info := HeaderInfo{
		Missed:          r.miss.Atoms(),
		NonIntegral:     r.nonIntegral,
		Charge:          r.charge,
		ForceField:      r.forceField,
		PKaMethod:       r.opts.PKaMethod.String(),
		PH:              r.opts.PH,
		NamingScheme:    r.namingScheme,
		IncludeOriginal: r.opts.IncludeHeader,
		Records:         r.records,
	}
	switch r.opts.Format {
	case structure.FormatCIF:
		r.result.Header = CIFHeader(info)
	default:
		r.result.Header = LegacyHeader(info)
	}
	return nil
}

func (p *Pipeline) renderAtoms(r *run) error {
	atoms := r.hit.Atoms()
	r.result.Atoms = atoms
	r.result.Lines = r.s.RenderAtoms(atoms, r.opts.ChainIDs, r.opts.Format)
	return nil
}

func (p *Pipeline) findMissedLigands(r *run) error {
	r.result.MissedLigands = MissedLigands(r.miss)
	return nil
}

func (p *Pipeline) runExtensions(r *run) error {
	for _, ext := range r.opts.Extensions {
		p.log.Printf("ERROR: Unable to run extension: %s", ext)
	}
	return nil
}
