package cmd

import (
	"github.com/mimminou/pdb2pqr/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd is for preparing a structure and writing it as PQR or CIF
var runCmd = &cobra.Command{
	Use:                        "run [input] [output]",
	Short:                      "Prepare a PDB structure and write a PQR file",
	Run:                        pipeline.RunCmd,
	Args:                       cobra.ExactArgs(2),
	SuggestionsMinimumDistance: 2,
	Long: `
Prepare a structure for continuum electrostatics. Missing heavy atoms and
hydrogens are added, side chains are debumped, the hydrogen bonding network
is optimized and every atom is assigned a charge and radius from the
force field.

The input is a PDB file (optionally gzipped). Atoms that can't be assigned
parameters are listed in the output header.`,
}

// set flags
func init() {
	runCmd.Flags().String("ff", "parse", "force field for charges and radii ('pdb2pqr forcefields' lists them)")
	runCmd.Flags().String("userff", "", "user force field file (residue atom charge radius)")
	runCmd.Flags().String("usernames", "", "user naming scheme file (TOML), needs --userff")
	runCmd.Flags().String("ffout", "", "force field whose naming scheme is written out")
	runCmd.Flags().String("ligand", "", "MOL2 file of a ligand to parameterize")
	runCmd.Flags().Bool("clean", false, "only restructure the input, no debumping, hydrogens or parameters")
	runCmd.Flags().Bool("nodebump", false, "don't debump side chains")
	runCmd.Flags().Bool("noopt", false, "don't optimize the hydrogen bonding network")
	runCmd.Flags().Bool("assign-only", false, "only assign charges and radii, don't add atoms")
	runCmd.Flags().Bool("neutraln", false, "make the N-terminus neutral (PARSE only)")
	runCmd.Flags().Bool("neutralc", false, "make the C-terminus neutral (PARSE only)")
	runCmd.Flags().Bool("drop-water", false, "remove waters from the output")
	runCmd.Flags().StringSlice("extensions", nil, "post-processing extensions to run")
	runCmd.Flags().String("titration-state-method", "none", "pKa method: none, propka or pdb2pka")
	runCmd.Flags().Float64("with-ph", 7.0, "pH for titration state assignment")
	runCmd.Flags().String("format", "pqr", "output format: pqr or cif")
	runCmd.Flags().Bool("chain", false, "keep chain identifiers in PQR lines")
	runCmd.Flags().Bool("include-header", false, "echo the input PDB header in the output")
	runCmd.Flags().Bool("typemap", false, "write an HTML type map next to the output")
	runCmd.Flags().Bool("summary", false, "write a JSON run summary next to the output")

	for _, name := range []string{
		"ff", "userff", "usernames", "ffout", "ligand", "clean", "nodebump", "noopt",
		"assign-only", "neutraln", "neutralc", "drop-water", "extensions",
	} {
		viper.BindPFlag(name, runCmd.Flags().Lookup(name))
	}
	viper.BindPFlag("pka.method", runCmd.Flags().Lookup("titration-state-method"))
	viper.BindPFlag("pka.ph", runCmd.Flags().Lookup("with-ph"))
	viper.BindPFlag("output.format", runCmd.Flags().Lookup("format"))
	viper.BindPFlag("output.chain", runCmd.Flags().Lookup("chain"))
	viper.BindPFlag("output.include-header", runCmd.Flags().Lookup("include-header"))
	viper.BindPFlag("output.typemap", runCmd.Flags().Lookup("typemap"))
	viper.BindPFlag("output.summary", runCmd.Flags().Lookup("summary"))

	RootCmd.AddCommand(runCmd)
}
