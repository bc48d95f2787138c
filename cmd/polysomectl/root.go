package main

import "github.com/spf13/cobra"

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "polysomectl",
	Short: "Stochastic single-molecule simulation of transcription and translation",
	Long: `polysomectl runs discrete-event simulations of gene expression: RNA
polymerases bind promoters on a genome and spawn transcripts, ribosomes bind
the transcripts, and species abundances are sampled onto a fixed time grid.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}
