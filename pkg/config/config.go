package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
)

type Config struct {
	// Export
	OutputFile    string `yaml:"output_file" validate:"required"`
	SaveHierarchy bool   `yaml:"save_hierarchy"`

	// Import
	InputFile         string `yaml:"input_file"`
	LoadExplicitPaths bool   `yaml:"load_explicit_paths"`
	LoadUnkeyed       bool   `yaml:"load_unkeyed"`

	// Remapping
	UseSearchReplace bool   `yaml:"use_search_replace"`
	Search           string `yaml:"search"`
	Replace          string `yaml:"replace"`
	Prefix           string `yaml:"prefix"`
	TopNodesOnly     bool   `yaml:"top_nodes_only"`

	// Channel Scope
	UseChannelScope    bool `yaml:"use_channel_scope"`
	KeepScopeSelection bool `yaml:"keep_scope_selection"`

	// UI Settings
	Editor     string `yaml:"editor"`
	ColorTheme string `yaml:"color_theme" validate:"oneof=auto dark light"`
	TableWidth int    `yaml:"table_width" validate:"gte=0"`

	// Performance
	WatchDebounceMS int `yaml:"watch_debounce_ms" validate:"gte=0"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		OutputFile:         "out.dkanim",
		SaveHierarchy:      true,
		InputFile:          "in.dkanim",
		LoadExplicitPaths:  true,
		LoadUnkeyed:        false,
		UseSearchReplace:   false,
		Search:             "",
		Replace:            "",
		Prefix:             "",
		TopNodesOnly:       false,
		UseChannelScope:    false,
		KeepScopeSelection: true,
		Editor:             "",
		ColorTheme:         "auto",
		TableWidth:         0,
		WatchDebounceMS:    500,
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for essential values if missing
	if cfg.OutputFile == "" {
		cfg.OutputFile = "out.dkanim"
	}
	if cfg.InputFile == "" {
		cfg.InputFile = "in.dkanim"
	}
	if cfg.ColorTheme == "" {
		cfg.ColorTheme = "auto"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Transfer returns the configured transfer defaults
func (c *Config) Transfer() domain.TransferConfiguration {
	return domain.TransferConfiguration{
		OutputFile:        c.OutputFile,
		InputFile:         c.InputFile,
		SaveHierarchy:     c.SaveHierarchy,
		Search:            c.Search,
		Replace:           c.Replace,
		UseSearchReplace:  c.UseSearchReplace,
		Prefix:            c.Prefix,
		TopNodesOnly:      c.TopNodesOnly,
		LoadExplicitPaths: c.LoadExplicitPaths,
		LoadUnkeyed:       c.LoadUnkeyed,
		UseChannelScope:   c.UseChannelScope,
	}
}

// Validate checks the config against its validate tags
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		// Use YAML key in error messages
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("key=%q, value=%q, failed %q validation", e.Field(), fmt.Sprint(e.Value()), e.ActualTag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
