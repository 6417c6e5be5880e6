package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type outputFlags struct {
	json bool
	yaml bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Print JSON instead of tables")
	cmd.Flags().BoolVar(&o.yaml, "yaml", false, "Print YAML instead of tables")
}

func (o *outputFlags) validate() error {
	if o.json && o.yaml {
		return errors.New("--json and --yaml are mutually exclusive")
	}
	return nil
}

// write encodes v in the selected machine format. It reports false when
// table output was requested.
func (o *outputFlags) write(cmd *cobra.Command, v any) (bool, error) {
	switch {
	case o.json:
		return true, writeJSON(cmd, v)
	case o.yaml:
		return true, writeYAML(cmd, v)
	default:
		return false, nil
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML to the command's stdout.
func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
