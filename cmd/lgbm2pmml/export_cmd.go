package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/lgbm2pmml/config"
	"github.com/YuminosukeSato/lgbm2pmml/export"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

type exportCmdConfig struct {
	*rootCmdConfig
	modelInput    string
	metadataInput string
	output        string
}

func exportCmd(rootConfig *rootCmdConfig) *cobra.Command {
	ecc := &exportCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a LightGBM model dump as PMML",
		Long:  `Read a model dumped with dump_model(), translate it and write the PMML document to a file or stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ecc.Validate(); err != nil {
				return err
			}
			return ecc.run(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&(ecc.modelInput), "model", "m", "", "path to the JSON model dump (required)")
	cmd.Flags().StringVarP(&(ecc.metadataInput), "metadata", "d", "", "path to a YML file with target, class labels and feature names")
	cmd.Flags().StringVarP(&(ecc.output), "output", "o", "-", "path of the PMML file to write, - for stdout")
	return cmd
}

func (ecc *exportCmdConfig) Validate() error {
	if ecc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	if ecc.output == "" {
		return fmt.Errorf("output flag must not be empty")
	}
	return nil
}

func (ecc *exportCmdConfig) run(stdout io.Writer) error {
	cfg, err := config.Load(ecc.metadataInput)
	if err != nil {
		return err
	}
	// Flags win over the metadata file; the environment is already folded
	// into cfg.LogLevel by config.Load.
	if !ecc.verbose && ecc.logLevel == "" && cfg.LogLevel != "" {
		if err := log.SetupLogger(cfg.LogLevel); err != nil {
			return err
		}
	}
	logger := log.GetLogger().With(log.ComponentKey, "cli")
	logger.Debug("metadata loaded", "path", ecc.metadataInput)

	model, err := lightgbm.LoadFromJSONFile(ecc.modelInput)
	if err != nil {
		return err
	}
	logger.Debug("model loaded", log.OperationKey, log.OperationLoad, log.TreesKey, len(model.Trees))

	doc, err := export.Export(model, append(cfg.Options(), export.WithLogger(logger))...)
	if err != nil {
		return err
	}

	if ecc.output == "-" {
		_, err = doc.WriteTo(stdout)
		return err
	}
	if err := writeFile(ecc.output, doc); err != nil {
		return err
	}
	logger.Info("pmml written", log.OperationKey, log.OperationWrite, log.OutputPathKey, ecc.output)
	return nil
}

// writeFile writes doc next to path and renames it into place, so a failed
// export never leaves a truncated document behind.
func writeFile(path string, doc *pmml.PMML) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = doc.WriteTo(tmp); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "renaming to %s", path)
	}
	return nil
}
