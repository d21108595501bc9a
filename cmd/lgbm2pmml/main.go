package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/lgbm2pmml/config"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
)

type rootCmdConfig struct {
	verbose  bool
	logLevel string
}

func main() {
	if err := cliParser().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootConfig := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "lgbm2pmml",
		Short: "lgbm2pmml converts LightGBM models to PMML",
		Long:  `A tool to translate LightGBM model dumps (the JSON written by dump_model) into PMML 4.4 documents that reproduce the model's predictions`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.SetupLogger(rootConfig.level())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&(rootConfig.verbose), "verbose", "v", false, "log debug messages")
	rootCmd.PersistentFlags().StringVar(&(rootConfig.logLevel), "log-level", "", "one of debug, info, warn, error (defaults to $"+config.EnvLogLevel+" or info)")
	rootCmd.AddCommand(versionCmd(), exportCmd(rootConfig), inspectCmd(rootConfig))
	return rootCmd
}

// level resolves the log level: --verbose, then --log-level, then the environment.
func (rc *rootCmdConfig) level() string {
	if rc.verbose {
		return "debug"
	}
	if rc.logLevel != "" {
		return rc.logLevel
	}
	return os.Getenv(config.EnvLogLevel)
}
