package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gora/internal"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	logLevel    string
	optionsFile string
	showOptions bool
	save        bool
	excel       excelFlags
}

type excelFlags struct {
	sheet     string
	dv        string
	frequency string
	ignore    []string
}

func (g *globalFlags) logger() *internal.Logger {
	return internal.NewLogger(internal.ParseLogLevel(g.logLevel))
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "gora",
		Short: "Reconstructability analysis of nominal data",
		Long: `Fit and search loglinear structure models over nominal variables.

Input is an OCCAM-style file (:nominal and :data blocks) or a CSV/XLSX case table.
Run options follow "--" in the usual short or long form, for example:

  gora fit data.in -- -m AB:BC -m A:B:C --ddf-method 1
  gora search cases.xlsx --dv outcome -- -w 3 -l 5 --sort-by bic --sort-direction ascending`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "WARN", "Log level (ERROR, WARN, INFO, DEBUG, TRACE)")
	pf.StringVar(&g.optionsFile, "options-file", "", "YAML file of run options applied before the command arguments")
	pf.BoolVar(&g.showOptions, "show-options", false, "Print the active run options before the report")
	pf.BoolVar(&g.save, "save", false, "Store the run in the database named by DATABASE_URL")
	pf.StringVar(&g.excel.sheet, "sheet", "", "Worksheet of an XLSX input (default: first sheet)")
	pf.StringVar(&g.excel.dv, "dv", "", "Dependent variable column of a CSV/XLSX input")
	pf.StringVar(&g.excel.frequency, "frequency", "", "Case weight column of a CSV/XLSX input")
	pf.StringSliceVar(&g.excel.ignore, "ignore", nil, "Columns of a CSV/XLSX input to leave out")

	rootCmd.AddCommand(
		newFitCmd(g),
		newSearchCmd(g),
		newRunCmd(g),
		newStatsCmd(g),
		newOptionsCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}
