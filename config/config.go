/*
Package config reads export metadata from a YAML file.

A metadata file names the target, the class labels and the feature columns
of a dumped model:

	target: species
	class_labels: [setosa, versicolor, virginica]
	feature_names: [sepal_length, sepal_width, petal_length, petal_width]
	workers: 4
	header:
	  copyright: ACME
	  description: iris classifier

Every key is optional. LGBM2PMML_TARGET, LGBM2PMML_WORKERS and
LGBM2PMML_LOG_LEVEL override the file.
*/
package config

import (
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v2"

	"github.com/YuminosukeSato/lgbm2pmml/export"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
)

// Environment variables that override the metadata file.
const (
	EnvTarget   = "LGBM2PMML_TARGET"
	EnvWorkers  = "LGBM2PMML_WORKERS"
	EnvLogLevel = "LGBM2PMML_LOG_LEVEL"
)

// Header holds the optional document header attributes.
type Header struct {
	Copyright   string `yaml:"copyright"`
	Description string `yaml:"description"`
	Timestamp   string `yaml:"timestamp"`
}

// Config is the export metadata.
type Config struct {
	Target       string   `yaml:"target"`
	ClassLabels  []string `yaml:"class_labels"`
	FeatureNames []string `yaml:"feature_names"`
	DerivedNames []string `yaml:"derived_names"`
	Workers      int      `yaml:"workers"`
	LogLevel     string   `yaml:"log_level"`
	Header       Header   `yaml:"header"`
}

// Parse decodes a YAML metadata document. Unknown keys are rejected so a
// misspelt key does not silently fall back to a default.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, errors.Wrap(err, "parsing yml metadata")
	}
	return c, nil
}

// Load reads the metadata file at path, applies environment overrides and
// validates the result. An empty path yields a configuration built from the
// environment alone.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewModelError("config.Load", "reading metadata file "+path, err)
		}
		if c, err = Parse(data); err != nil {
			return nil, errors.Wrapf(err, "metadata file %s", path)
		}
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTarget); ok && v != "" {
		c.Target = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError(EnvWorkers, "must be an integer", v)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the values that can be checked without the model.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.NewValidationError("workers", "must not be negative", c.Workers)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := noDuplicates("class_labels", c.ClassLabels); err != nil {
		return err
	}
	if err := noDuplicates("feature_names", c.FeatureNames); err != nil {
		return err
	}
	for _, l := range c.ClassLabels {
		if l == "" {
			return errors.NewValidationError("class_labels", "must not contain empty labels", c.ClassLabels)
		}
	}
	return nil
}

// Options converts the configuration into export options. Unset fields
// produce no option, so export defaults apply.
func (c *Config) Options() []export.Option {
	var opts []export.Option
	if c.Target != "" {
		opts = append(opts, export.WithTargetName(c.Target))
	}
	if len(c.ClassLabels) > 0 {
		opts = append(opts, export.WithClassLabels(c.ClassLabels))
	}
	if len(c.FeatureNames) > 0 {
		opts = append(opts, export.WithFeatureNames(c.FeatureNames))
	}
	if len(c.DerivedNames) > 0 {
		opts = append(opts, export.WithDerivedNames(c.DerivedNames))
	}
	if c.Workers > 0 {
		opts = append(opts, export.WithWorkers(c.Workers))
	}
	if c.Header != (Header{}) {
		opts = append(opts, export.WithHeader(export.HeaderInfo{
			Copyright:   c.Header.Copyright,
			Description: c.Header.Description,
			Timestamp:   c.Header.Timestamp,
		}))
	}
	return opts
}

func noDuplicates(param string, values []string) error {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return errors.NewValidationError(param, "duplicate value", v)
		}
		seen[v] = true
	}
	return nil
}
