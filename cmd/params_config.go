package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jit-sim/jit-sim/sim/layout"
)

// ParamsFile is the layout of a --params YAML file.
// All top-level keys must be listed to satisfy KnownFields(true) strict parsing.
type ParamsFile struct {
	Layout     string         `yaml:"layout"`
	Seed       *int64         `yaml:"seed"`
	Parametros map[string]any `yaml:"parametros"`
}

// loadParamsFile parses a parameter file with strict field checking, so a
// misspelled top-level key is an error rather than silently ignored.
func loadParamsFile(path string) (*ParamsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading params file: %w", err)
	}
	var pf ParamsFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&pf); err != nil {
		return nil, fmt.Errorf("parsing params file %s: %w", path, err)
	}
	return &pf, nil
}

// applyOverrides parses each --set value as a number and writes it over params.
func applyOverrides(params layout.Parameters, sets map[string]string) error {
	for k, raw := range sets {
		k = strings.TrimSpace(k)
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("--set %s=%s: not a number", k, raw)
		}
		params[k] = v
	}
	return nil
}

// buildRunConfig merges the params file (if any), the --layout flag and the
// --set overrides, in that order of precedence from lowest to highest.
func buildRunConfig(paramsPath, layoutFlag string, sets map[string]string) (string, layout.Parameters, *int64, error) {
	params := layout.Parameters{}
	layoutID := layoutFlag
	var seed *int64
	if paramsPath != "" {
		pf, err := loadParamsFile(paramsPath)
		if err != nil {
			return "", nil, nil, err
		}
		for k, v := range pf.Parametros {
			params[k] = v
		}
		if layoutID == "" {
			layoutID = pf.Layout
		}
		seed = pf.Seed
	}
	if layoutID == "" {
		return "", nil, nil, fmt.Errorf("no layout given (use --layout or the params file's layout key)")
	}
	if err := applyOverrides(params, sets); err != nil {
		return "", nil, nil, err
	}
	return layoutID, params, seed, nil
}
