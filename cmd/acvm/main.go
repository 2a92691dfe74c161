package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/acirlabs/acvm/logger"
	"github.com/rs/zerolog"
)

var rootCmd = &cobra.Command{
	Use:   "acvm",
	Short: "Execute compiled circuits and bytecode.",
	Long:  "acvm solves the witness of a compiled circuit, running its unconstrained bytecode and cryptographic primitives as needed.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
			logger.Set(logger.Logger().Level(zerolog.InfoLevel))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
