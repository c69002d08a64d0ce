package main

import (
	"github.com/spf13/cobra"

	"github.com/wesdoyle/hyperloglog/internal/source"
)

func (a *app) newFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>",
		Short: "Count distinct words in a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.compare(cmd.Context(), cmd, source.NewFile(args[0]))
		},
	}
}
