package main

import (
	"encoding/json"
	"io"

	"paycompliance/internal/taxtable"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	tablesDir string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Offline payroll and tax table tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.tablesDir, "tables-dir", "", "directory of tax table YAML files (default: built-in tables)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(
		newCalculateCmd(opts),
		newProjectCmd(opts),
		newTablesCmd(opts),
	)
	return cmd
}

func (o *rootOptions) registry() (*taxtable.Registry, error) {
	return taxtable.Load(taxtable.SourceFor(o.tablesDir))
}

func (o *rootOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
