package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a journal snapshot to the archive",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Replace the journal with an archived snapshot",
	Long:  "Replace the journal with an archived snapshot. Without a path the latest snapshot is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, _, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.ExportSnapshot(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, _, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	path, n, err := a.ImportSnapshot(cmd.Context(), path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d trades from %s\n", n, path)
	return nil
}
