package services

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/pkg/animfile"
	"github.com/kamal-hamza/dkanim-cli/pkg/naming"
)

// ScopeService builds and persists channel scope indexes
type ScopeService struct {
	fs  afero.Fs
	log *zap.SugaredLogger
}

// NewScopeService creates a new scope service
func NewScopeService(fs afero.Fs, log *zap.SugaredLogger) *ScopeService {
	return &ScopeService{fs: fs, log: log}
}

// ScanRequest represents a request to (re)build a scope index from a file
type ScanRequest struct {
	Config domain.TransferConfiguration

	// KeepOnMissing leaves the index and its selection alone when the input
	// file is gone, e.g. while an editor replaces it
	KeepOnMissing bool
}

// ScanResponse summarizes a finished scan
type ScanResponse struct {
	Entries  int
	Selected int
	Label    string
	Duration time.Duration
}

// Scan rebuilds idx from the record headers of the input file. Each header is
// remapped with the import options so keys match what an import will look up.
// Static headers are only listed when unkeyed values are loaded.
func (s *ScopeService) Scan(ctx context.Context, idx *domain.ChannelScopeIndex, req ScanRequest) (*ScanResponse, error) {
	start := time.Now()
	cfg := req.Config

	if exists, _ := afero.Exists(s.fs, cfg.InputFile); !exists {
		if !req.KeepOnMissing {
			idx.Reset()
		}
		return nil, &domain.FileNotFoundError{Path: cfg.InputFile}
	}

	file, err := s.fs.Open(cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.InputFile, err)
	}
	defer file.Close()

	s.log.Debugw("loading channel list", "file", cfg.InputFile)

	transformer := naming.NewTransformer(RemapOptions(cfg))
	previous := idx.BeginLoad(cfg.InputFile)

	_, err = animfile.ScanHeaders(file, func(h animfile.Header) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.Record.Kind == domain.RecordStatic && !cfg.LoadUnkeyed {
			return nil
		}
		node := transformer.Transform(h.Record.NodePath, h.Record.HasParent)
		idx.Append(node, h.Record.Attribute())
		return nil
	})
	if err != nil {
		idx.Reset()
		return nil, fmt.Errorf("failed to scan channels: %w", err)
	}

	idx.FinishLoad(previous)

	resp := &ScanResponse{
		Entries:  idx.Len(),
		Selected: idx.SelectedCount(),
		Label:    idx.Label(),
		Duration: time.Since(start),
	}
	s.log.Debugw("done loading channel list", "entries", resp.Entries, "selected", resp.Selected)
	return resp, nil
}

// ScopeFile is the YAML layout of a saved channel selection
type ScopeFile struct {
	Source   string   `yaml:"source"`
	Selected []string `yaml:"selected"`
}

// SaveSelection writes the selected keys of idx to path
func (s *ScopeService) SaveSelection(idx *domain.ChannelScopeIndex, path string) error {
	data, err := yaml.Marshal(ScopeFile{
		Source:   idx.Source(),
		Selected: idx.SelectedKeys(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal scope: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scope file: %w", err)
	}
	return nil
}

// LoadSelection replaces the selection of idx with the keys saved at path.
// It returns how many entries ended up selected.
func (s *ScopeService) LoadSelection(idx *domain.ChannelScopeIndex, path string) (int, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read scope file: %w", err)
	}

	var sf ScopeFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return 0, fmt.Errorf("failed to parse scope file %s: %w", path, err)
	}
	if sf.Source != "" && idx.Source() != "" && sf.Source != idx.Source() {
		s.log.Warnw("scope file was saved for another animation file", "saved", sf.Source, "current", idx.Source())
	}

	idx.ClearSelection()
	idx.SelectKeys(sf.Selected)
	return idx.SelectedCount(), nil
}

// Filter selects or deselects every entry matching a wildcard pattern
func (s *ScopeService) Filter(idx *domain.ChannelScopeIndex, pattern string, additive bool) int {
	return idx.FilterSelect(naming.CompileWildcard(pattern), additive)
}

// StaleAfter reports how a configuration change affects a loaded scope.
// Changing the input file or the unkeyed option starts the next scan from a
// full selection; other remapping changes keep the current one.
func StaleAfter(prev, next domain.TransferConfiguration) (stale bool, keep bool) {
	if prev.InputFile != next.InputFile || prev.LoadUnkeyed != next.LoadUnkeyed {
		return true, false
	}
	if RemapOptions(prev) != RemapOptions(next) {
		return true, true
	}
	return false, true
}
