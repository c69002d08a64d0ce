package main

import (
	"github.com/spf13/cobra"

	"github.com/wesdoyle/hyperloglog/internal/source"
)

func (a *app) newSQLiteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sqlite <db_path> <table_name> <column_name>",
		Short: "Count distinct words in a SQLite column",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.OpenSQLite(args[0], args[1], args[2], a.cfg.BatchSize)
			if err != nil {
				return err
			}
			defer src.Close()
			return a.compare(cmd.Context(), cmd, src)
		},
	}
}
