package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mimminou/pdb2pqr/config"
	"github.com/mimminou/pdb2pqr/internal/forcefield"
	"github.com/mimminou/pdb2pqr/internal/pdb"
	"github.com/mimminou/pdb2pqr/internal/topology"
	"github.com/spf13/cobra"
)

// NewOptions converts the settings into run options. The side files of
// the run are named after output.
func NewOptions(c config.Config, output string) (Options, error) {
	method, err := ParsePKaMethod(c.PKa.Method)
	if err != nil {
		return Options{}, err
	}
	format, err := ParseFormat(c.Output.Format)
	if err != nil {
		return Options{}, err
	}

	return Options{
		DropWater:      c.DropWater,
		Ligand:         c.Ligand,
		NeutralN:       c.NeutralN,
		NeutralC:       c.NeutralC,
		AssignOnly:     c.AssignOnly,
		Debump:         !c.NoDebump,
		Optimize:       !c.NoOpt,
		PKaMethod:      method,
		PH:             c.PKa.PH,
		ForceField:     c.ForceField,
		NamingScheme:   c.FFOut,
		UserForceField: c.UserFF,
		UserNames:      c.UserNames,
		Clean:          c.Clean,
		Format:         format,
		IncludeHeader:  c.Output.IncludeHeader,
		ChainIDs:       c.Output.Chain,
		TypeMap:        c.Output.TypeMap,
		Extensions:     c.Extensions,
		OutputRoot:     strings.TrimSuffix(output, filepath.Ext(output)),
	}, nil
}

// RunCmd takes a cobra command (with its flags) and prepares the input
// structure, writing it to the output path.
func RunCmd(cmd *cobra.Command, args []string) {
	if len(args) != 2 {
		cmd.Help()
		stderr.Fatalln("\nwant an input and an output path")
	}
	Run(args[0], args[1], config.New())
}

// Run prepares the structure in the input file and writes it to output.
func Run(input, output string, conf config.Config) *Result {
	start := time.Now()

	opts, err := NewOptions(conf, output)
	if err != nil {
		stderr.Fatalln(err)
	}

	records, err := pdb.ReadFile(input)
	if err != nil {
		stderr.Fatalln(err)
	}

	defs, err := topology.Load()
	if err != nil {
		stderr.Fatalln(err)
	}
	p := New(defs, stderr)
	p.Verbose = conf.Verbose

	result, err := p.Prepare(records, opts)
	if err != nil {
		stderr.Fatalln(err)
	}

	if err := WriteFile(output, result, opts.Format); err != nil {
		stderr.Fatalln(err)
	}

	elapsed := time.Since(start)
	if conf.Output.Summary {
		sum := NewSummary(input, output, opts, result, elapsed.Seconds())
		if err := WriteSummary(opts.OutputRoot+".json", sum); err != nil {
			stderr.Fatalln(err)
		}
	}

	if conf.Verbose {
		fmt.Printf("%s\n\n", elapsed)
	}
	return result
}

// ForceFieldsCmd lists the built-in force fields and naming schemes.
func ForceFieldsCmd(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 3, ' ', 0)
	fmt.Fprintf(w, "name\tparameters\tnames\n")
	for _, ff := range forcefield.Available() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ff.Name, yesNo(ff.Parameters), yesNo(ff.Names))
	}
	w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
