package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "fe",
	Short: "fe - ETF signal screening and risk-sized portfolio construction",
	Long: `fe screens a directory of daily ETF bar files through a multi-factor
pullback checklist, sizes the survivors by ATR risk, and writes a
markdown dashboard plus an append-only signal ledger.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
