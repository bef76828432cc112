// Package cmd is for command line interactions with the pdb2pqr application
package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mimminou/pdb2pqr/config"
	"github.com/mimminou/pdb2pqr/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)

	settingsFile string
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "pdb2pqr",
	Short: `Prepare structures for electrostatics calculations.
Add missing atoms, protonate, and assign charges and radii from a force field`,
	Version: pipeline.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (YAML)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "print the progress of every stage")

	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in a .env file, the settings file and PDB2PQR_ variables.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stderr.Printf("failed to load .env: %v", err)
	}

	config.SetDefaults()

	viper.SetEnvPrefix("PDB2PQR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if settingsFile != "" {
		viper.SetConfigFile(settingsFile)
		if err := viper.ReadInConfig(); err != nil {
			stderr.Fatalf("failed to read settings file %s: %v", settingsFile, err)
		}
	}
}
