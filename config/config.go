// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"

	"github.com/spf13/viper"
)

// PKaConfig is settings for titration state assignment
type PKaConfig struct {
	// the pKa method, "none", "propka" or "pdb2pka"
	Method string `mapstructure:"method"`

	// the pH the titration states are assigned at
	PH float64 `mapstructure:"ph"`
}

// OutputConfig is settings for the written files
type OutputConfig struct {
	// the file format, "pqr" or "cif"
	Format string `mapstructure:"format"`

	// whether chain identifiers are written in PQR lines
	Chain bool `mapstructure:"chain"`

	// whether the input's header is echoed in the output header
	IncludeHeader bool `mapstructure:"include-header"`

	// whether an HTML type map is written next to the output
	TypeMap bool `mapstructure:"typemap"`

	// whether a JSON run summary is written next to the output
	Summary bool `mapstructure:"summary"`
}

// Config is the root-level settings struct and is a mix
// of settings available in a settings file, the environment
// and those available from the command line
type Config struct {
	// the built-in force field
	ForceField string `mapstructure:"ff"`

	// the paths of user force field and names files
	UserFF    string `mapstructure:"userff"`
	UserNames string `mapstructure:"usernames"`

	// the naming scheme of the output
	FFOut string `mapstructure:"ffout"`

	// the path of a MOL2 ligand
	Ligand string `mapstructure:"ligand"`

	// only restructure the input, don't parameterize it
	Clean bool `mapstructure:"clean"`

	// skip side chain debumping and hydrogen optimization
	NoDebump bool `mapstructure:"nodebump"`
	NoOpt    bool `mapstructure:"noopt"`

	// only assign charges and radii
	AssignOnly bool `mapstructure:"assign-only"`

	// leave termini neutral (PARSE only)
	NeutralN bool `mapstructure:"neutraln"`
	NeutralC bool `mapstructure:"neutralc"`

	// remove waters before processing
	DropWater bool `mapstructure:"drop-water"`

	// post-processing extensions to run
	Extensions []string `mapstructure:"extensions"`

	// log the progress of every stage
	Verbose bool `mapstructure:"verbose"`

	// titration settings
	PKa PKaConfig `mapstructure:"pka"`

	// output settings
	Output OutputConfig `mapstructure:"output"`
}

// SetDefaults registers the default of every setting with Viper
func SetDefaults() {
	viper.SetDefault("ff", "parse")
	viper.SetDefault("pka.method", "none")
	viper.SetDefault("pka.ph", 7.0)
	viper.SetDefault("output.format", "pqr")
}

// New returns a new Config struct populated by
// Viper settings (either from a settings file, the environment)
// and/or command line arguments
func New() Config {
	var c Config

	err := viper.Unmarshal(&c)
	if err != nil {
		log.Fatalf("unable to decode into struct, %v", err)
	}

	return c
}
