// Package cmd wires the holocron CLI: a server command and a one-shot sync
// command sharing the same engine.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var version string

// SetVersion sets the version string reported by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "holocron",
	Short: "Mirror of the galactic catalogs with uniform search and CRUD",
	Long: `holocron mirrors the six upstream catalogs (films, people, planets,
species, starships, vehicles) into a local sqlite store and serves uniform
search/CRUD access over the mirror.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
