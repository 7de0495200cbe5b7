package config

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"mediaremote-go/errcode"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	if err := decode(defaultYAML, &cfg); err != nil {
		panic("config: embedded default.yaml: " + err.Error())
	}
	return &cfg
}

// Parse decodes data over the defaults. Keys absent from data keep their
// default value; unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "config.parse", err)
	}
	return cfg, nil
}

// Load reads and parses a YAML file. It does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
	}
	return Parse(data)
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
