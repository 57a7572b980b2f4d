package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"MarketLens/internal/model"
	"MarketLens/internal/report"

	"github.com/spf13/cobra"
)

var analyzeFlags struct {
	period string
	from   string
	to     string
	json   bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Analyze one stock and print the report",
	Example: `  marketlens analyze AAPL
  marketlens analyze MSFT --period 5y
  marketlens analyze TSLA --from 2024-01-02 --to 2024-06-28 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := model.ParseQuery(analyzeFlags.period, analyzeFlags.from, analyzeFlags.to)
		if err != nil {
			return errors.New(report.FormatError(err))
		}

		d, err := buildDeps(cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		rep, err := d.analyzer.Analyze(cmd.Context(), args[0], q)
		if err != nil {
			return errors.New(report.FormatError(err))
		}

		out := cmd.OutOrStdout()
		if analyzeFlags.json {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		_, err = fmt.Fprint(out, report.FormatReport(rep))
		return err
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFlags.period, "period", "p", "", "look-back period (1d,5d,1mo,3mo,6mo,1y,2y,5y,max); default 1y")
	f.StringVar(&analyzeFlags.from, "from", "", "start date YYYY-MM-DD (with --to)")
	f.StringVar(&analyzeFlags.to, "to", "", "end date YYYY-MM-DD (with --from)")
	f.BoolVar(&analyzeFlags.json, "json", false, "print the report as JSON")
}
