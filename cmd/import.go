package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ctr/infra/dataset"
)

var importCmd = &cobra.Command{
	Use:   "import <csv> <db>",
	Short: "Validate a survey CSV and copy it into a SQLite database",
	Args:  cobra.ExactArgs(2),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	tbl, err := dataset.LoadCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	src, err := dataset.NewSQLiteSource(args[1])
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	n, err := src.Import(cmd.Context(), tbl.Records())
	if err != nil {
		return err
	}
	for _, is := range tbl.Issues() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: row %d %s: %s\n", is.Row, is.OrganizationID, is.Msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (%d cycles) into %s\n", n, len(tbl.Cycles()), args[1])
	return nil
}
