// Copyright 2025 Victor Butler
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🎨 DefaultTemplate is the destination layout used when none is configured.
const DefaultTemplate = "{author}/{title_short}"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete configuration
type Config struct {
	InputRoot       string `json:"input_root" yaml:"input_root" hcl:"input_root"`
	OutputRoot      string `json:"output_root" yaml:"output_root" hcl:"output_root"`
	Template        string `json:"template,omitempty" yaml:"template,omitempty" hcl:"template,optional"`
	Watch           bool   `json:"watch,omitempty" yaml:"watch,omitempty" hcl:"watch,optional"`
	Poll            bool   `json:"poll,omitempty" yaml:"poll,omitempty" hcl:"poll,optional"`
	DebounceSeconds int    `json:"debounce_seconds,omitempty" yaml:"debounce_seconds,omitempty" hcl:"debounce_seconds,optional"`

	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	// Check required fields
	if cfg.InputRoot == "" {
		return errors.Errorf("input_root is required")
	}
	if cfg.OutputRoot == "" {
		return errors.Errorf("output_root is required")
	}

	// Clean up paths
	cfg.InputRoot = filepath.Clean(cfg.InputRoot)
	cfg.OutputRoot = filepath.Clean(cfg.OutputRoot)

	if cfg.InputRoot == cfg.OutputRoot {
		return errors.Errorf("input_root and output_root must differ")
	}

	// Set defaults
	if cfg.Template == "" {
		cfg.Template = DefaultTemplate
	}
	if cfg.DebounceSeconds <= 0 {
		cfg.DebounceSeconds = 2
	}

	return nil
}

// ⏱️ Debounce returns the debounce window as a duration.
func (cfg *Config) Debounce() time.Duration {
	return time.Duration(cfg.DebounceSeconds) * time.Second
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (%s)", cfg.InputRoot, cfg.OutputRoot, cfg.Template)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
