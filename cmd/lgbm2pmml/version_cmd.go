package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/lgbm2pmml/export"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of lgbm2pmml",
		Long:  `All software has versions. This is lgbm2pmml's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", export.ApplicationName, export.Version)
		},
	}
}
