package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"OutputFile", cfg.OutputFile, "out.dkanim"},
		{"InputFile", cfg.InputFile, "in.dkanim"},
		{"SaveHierarchy", cfg.SaveHierarchy, true},
		{"LoadExplicitPaths", cfg.LoadExplicitPaths, true},
		{"LoadUnkeyed", cfg.LoadUnkeyed, false},
		{"TopNodesOnly", cfg.TopNodesOnly, false},
		{"UseSearchReplace", cfg.UseSearchReplace, false},
		{"UseChannelScope", cfg.UseChannelScope, false},
		{"KeepScopeSelection", cfg.KeepScopeSelection, true},
		{"ColorTheme", cfg.ColorTheme, "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	// Loading a non-existent file should return default config
	cfg, err := Load("/nonexistent/path/config.yaml")

	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg.OutputFile != "out.dkanim" {
		t.Errorf("expected default OutputFile='out.dkanim', got %q", cfg.OutputFile)
	}
}

func TestSave_And_Load(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Prefix = "char01_"
	cfg.TopNodesOnly = true
	cfg.SaveHierarchy = false
	cfg.Editor = "vim"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loadedCfg.Prefix != "char01_" {
		t.Errorf("Prefix: expected %q, got %q", "char01_", loadedCfg.Prefix)
	}
	if !loadedCfg.TopNodesOnly {
		t.Error("TopNodesOnly should survive a save/load")
	}
	if loadedCfg.SaveHierarchy {
		t.Error("SaveHierarchy=false should survive a save/load")
	}
	if loadedCfg.Editor != "vim" {
		t.Errorf("Editor: expected %q, got %q", "vim", loadedCfg.Editor)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `output_file: ""
prefix: grp_
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.OutputFile != "out.dkanim" {
		t.Errorf("expected default OutputFile for empty value, got %q", cfg.OutputFile)
	}
	if !cfg.SaveHierarchy {
		t.Error("missing keys should keep their defaults")
	}
	if cfg.Prefix != "grp_" {
		t.Errorf("expected Prefix='grp_', got %q", cfg.Prefix)
	}
}

func TestLoad_InvalidTheme(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("color_theme: neon\n"), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected validation error for unknown theme")
	}
	if !strings.Contains(err.Error(), "color_theme") {
		t.Errorf("error should name the yaml key, got %v", err)
	}
}

func TestValidate_NegativeDebounce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WatchDebounceMS = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative debounce")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `output_file: out.dkanim
prefix: [invalid yaml structure
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected error loading invalid YAML, got nil")
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "dir", "config.yaml")

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestTransfer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prefix = "grp_"
	cfg.UseChannelScope = true

	tc := cfg.Transfer()
	if tc.OutputFile != "out.dkanim" || tc.InputFile != "in.dkanim" {
		t.Errorf("files = %q, %q", tc.OutputFile, tc.InputFile)
	}
	if !tc.SaveHierarchy || !tc.LoadExplicitPaths || tc.LoadUnkeyed {
		t.Errorf("unexpected flags: %+v", tc)
	}
	if tc.Prefix != "grp_" || !tc.UseChannelScope {
		t.Errorf("overrides not carried: %+v", tc)
	}
}
