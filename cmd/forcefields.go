package cmd

import (
	"github.com/mimminou/pdb2pqr/internal/pipeline"
	"github.com/spf13/cobra"
)

// forceFieldsCmd lists the built-in force fields and naming schemes
var forceFieldsCmd = &cobra.Command{
	Use:     "forcefields",
	Short:   "List the built-in force fields and naming schemes",
	Run:     pipeline.ForceFieldsCmd,
	Aliases: []string{"ff"},
}

func init() {
	RootCmd.AddCommand(forceFieldsCmd)
}
