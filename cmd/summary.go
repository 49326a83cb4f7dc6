package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ctr/config"
	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/audit"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/report"
	"github.com/kilianp07/ctr/infra/dataset"
	"github.com/kilianp07/ctr/infra/logger"
	"github.com/kilianp07/ctr/pkg/export"
)

var (
	summaryScopes []string
	summaryCycles []string
	summaryFormat string
	summaryOut    string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Compute the summary report and print it",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringSliceVar(&summaryScopes, "scope", nil, "scopes (dt, odt, citywide); all when empty")
	summaryCmd.Flags().StringSliceVar(&summaryCycles, "cycle", nil, "survey cycles; all when empty")
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "csv", "output format: csv or json")
	summaryCmd.Flags().StringVarP(&summaryOut, "output", "o", "", "output file (stdout when empty)")
	rootCmd.AddCommand(summaryCmd)
}

func parseSelection(scopes, cycles []string) (aggregate.Selection, error) {
	var sel aggregate.Selection
	for _, s := range scopes {
		scope, err := model.ParseScope(s)
		if err != nil {
			return sel, err
		}
		sel.Geographies = append(sel.Geographies, scope)
	}
	for _, c := range cycles {
		cy := model.Cycle(c)
		if err := cy.Validate(); err != nil {
			return sel, err
		}
		sel.Cycles = append(sel.Cycles, cy)
	}
	return sel, nil
}

// newEngine builds a report engine from the configuration without the
// service's sinks and API.
func newEngine(cfg *config.Config) (*report.Engine, audit.Store, error) {
	src, err := dataset.Open(cfg.Dataset, nil)
	if err != nil {
		return nil, nil, err
	}
	store, err := audit.Open(cfg.Audit)
	if err != nil {
		return nil, nil, err
	}
	eng, err := report.NewEngine(src, cfg.Summary, report.WithAudit(store), report.WithLogger(logger.New("report")))
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return eng, store, nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	sel, err := parseSelection(summaryScopes, summaryCycles)
	if err != nil {
		return err
	}
	if summaryFormat != "csv" && summaryFormat != "json" {
		return fmt.Errorf("unknown format %s", summaryFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, store, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rep, err := eng.Build(cmd.Context(), sel, report.TriggerCLI)
	if err != nil {
		return err
	}
	w, closeOut, err := output(cmd, summaryOut)
	if err != nil {
		return err
	}
	defer closeOut()
	if summaryFormat == "json" {
		return export.WriteJSON(w, rep)
	}
	return export.WriteCSV(w, rep)
}

func output(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
