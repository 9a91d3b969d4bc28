package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/ports"
	"github.com/kamal-hamza/dkanim-cli/pkg/animfile"
	"github.com/kamal-hamza/dkanim-cli/pkg/naming"
)

// ImportService applies an animation file onto the scene
type ImportService struct {
	scene    ports.SceneStore
	fs       afero.Fs
	progress ports.ProgressSink
	prompter ports.Prompter
	scopes   *ScopeService
	log      *zap.SugaredLogger
}

// NewImportService creates a new import service
func NewImportService(scene ports.SceneStore, fs afero.Fs, progress ports.ProgressSink, prompter ports.Prompter, scopes *ScopeService, log *zap.SugaredLogger) *ImportService {
	return &ImportService{
		scene:    scene,
		fs:       fs,
		progress: progress,
		prompter: prompter,
		scopes:   scopes,
		log:      log,
	}
}

// ImportRequest represents a request to import animation
type ImportRequest struct {
	Config domain.TransferConfiguration
	// Scope limits the import when Config.UseChannelScope is set
	Scope *domain.ChannelScopeIndex
}

// ImportResponse represents the outcome of an import
type ImportResponse struct {
	InputFile string
	Records   int
	Applied   int
	// Skipped counts records outside the channel scope
	Skipped int
	// Nodes is the number of distinct target nodes named by the records read
	Nodes             int
	MissingObjects    []string
	MissingAttributes []string
	Locked            []string
	// Cancelled is set when the user declined the job or stopped it midway
	Cancelled bool
	// Aborted is set when the user chose to stop after the first object was missing
	Aborted  bool
	Duration time.Duration
}

// importRun carries the mutable state of a single import
type importRun struct {
	cfg         domain.TransferConfiguration
	transformer *naming.Transformer
	scope       naming.Scope

	resp         *ImportResponse
	ordinal      int
	nodes        map[string]bool
	unitCaptured bool
	originalUnit string
}

// Execute checks the file, asks for confirmation and applies every record in file order
func (s *ImportService) Execute(ctx context.Context, req ImportRequest) (*ImportResponse, error) {
	start := time.Now()
	cfg := req.Config
	resp := &ImportResponse{InputFile: cfg.InputFile}

	if exists, _ := afero.Exists(s.fs, cfg.InputFile); !exists {
		return nil, &domain.FileNotFoundError{Path: cfg.InputFile}
	}

	stats, err := s.stat(cfg.InputFile)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Are you sure you want to read animation for %d attributes in the file\n\n%s ?", stats.Records, filepath.Base(cfg.InputFile))
	if !s.prompter.Confirm(fmt.Sprintf("Read Anim for %d channels?", stats.Records), msg, true) {
		resp.Cancelled = true
		return resp, nil
	}

	run := &importRun{
		cfg:         cfg,
		transformer: naming.NewTransformer(RemapOptions(cfg)),
		resp:        resp,
		nodes:       make(map[string]bool),
	}

	if cfg.UseChannelScope && req.Scope != nil {
		if req.Scope.State() != domain.ScopeLoaded || req.Scope.RefreshNeeded() {
			if s.scopes == nil {
				return nil, errors.New("channel scope needs a rescan but no scope service is configured")
			}
			if _, err := s.scopes.Scan(ctx, req.Scope, ScanRequest{Config: cfg}); err != nil {
				return nil, fmt.Errorf("failed to refresh channel scope: %w", err)
			}
		}
		run.scope = req.Scope
	}

	file, err := s.fs.Open(cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.InputFile, err)
	}
	defer file.Close()

	s.log.Infow("reading animation curves", "file", cfg.InputFile, "records", stats.Records)

	selection := s.scene.Selection(ctx)
	defer s.restoreSelection(ctx, selection)
	defer s.restoreUnit(ctx, run)

	s.progress.Begin("Importing Animation", stats.Lines)
	defer s.progress.End()

	err = s.apply(ctx, run, animfile.NewDecoder(file))
	s.finish(run, start)
	if err != nil {
		return resp, err
	}
	return resp, nil
}

func (s *ImportService) stat(path string) (animfile.FileStats, error) {
	file, err := s.fs.Open(path)
	if err != nil {
		return animfile.FileStats{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return animfile.Stat(file)
}

// apply runs the decode loop. Cancellation is checked once per outer item.
func (s *ImportService) apply(ctx context.Context, run *importRun, dec *animfile.Decoder) error {
	lastLine := 0
	for {
		if cancelled(ctx, s.progress) {
			s.log.Info("user cancelled importing animation file")
			run.resp.Cancelled = true
			return nil
		}

		item, err := dec.Next()
		s.progress.Tick(dec.Line() - lastLine)
		lastLine = dec.Line()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", run.cfg.InputFile, err)
		}

		switch item.Kind {
		case animfile.ItemSceneUnit:
			if err := s.applySceneUnit(ctx, run, item.Unit); err != nil {
				return err
			}
		case animfile.ItemRecord:
			stop, err := s.applyRecord(ctx, run, item.Record)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
}

func (s *ImportService) applySceneUnit(ctx context.Context, run *importRun, unit string) error {
	if !run.unitCaptured {
		run.originalUnit = s.scene.LinearUnit(ctx)
		run.unitCaptured = true
		s.log.Infow("storing current scene unit preference", "unit", run.originalUnit)
	}
	s.log.Infow("setting current scene unit preference", "unit", unit)
	if err := s.scene.SetLinearUnit(ctx, unit); err != nil {
		return fmt.Errorf("failed to set scene unit %s: %w", unit, err)
	}
	return nil
}

// applyRecord returns stop=true when the user aborts on a missing first object
func (s *ImportService) applyRecord(ctx context.Context, run *importRun, rec domain.AnimationRecord) (bool, error) {
	run.ordinal++
	run.resp.Records++

	if rec.Kind == domain.RecordStatic && !run.cfg.LoadUnkeyed {
		return false, nil
	}

	target := run.transformer.Remap(rec.NodePath, rec.Attribute(), rec.HasParent, run.scope)
	if target.Skip {
		run.resp.Skipped++
		return false, nil
	}
	run.nodes[target.Node] = true

	node, ok := s.scene.Resolve(ctx, target.Node)
	if !ok {
		if run.ordinal == 1 {
			msg := fmt.Sprintf("Object to import animation onto does not exist:\n%s\nAnimation may not import properly.\nDo you want to continue trying to import animation?", target.Node)
			if !s.prompter.Confirm("Continue?? Object Does not Exist...", msg, false) {
				s.log.Infow("user stopped animation import", "node", target.Node)
				run.resp.Aborted = true
				return true, nil
			}
			s.log.Infow("user continued animation import", "node", target.Node)
		} else {
			s.log.Warnw("object does not exist, skipping", "node", target.Node)
		}
		run.resp.MissingObjects = append(run.resp.MissingObjects, target.Node)
		return false, nil
	}

	channel := domain.ChannelKey(target.Node, target.Attribute)
	if !s.scene.HasAttribute(ctx, node, target.Attribute) {
		s.log.Warnw("attribute does not exist, skipping", "channel", channel)
		run.resp.MissingAttributes = append(run.resp.MissingAttributes, channel)
		return false, nil
	}

	if rec.Kind == domain.RecordStatic {
		if s.scene.IsLocked(ctx, node, target.Attribute) || s.scene.HasIncomingConnection(ctx, node, target.Attribute) {
			s.log.Warnw("attribute is locked or connected", "channel", channel)
			run.resp.Locked = append(run.resp.Locked, channel)
			return false, nil
		}
		if err := s.scene.SetValue(ctx, node, target.Attribute, rec.StaticValue); err != nil {
			return false, fmt.Errorf("failed to set %s: %w", channel, err)
		}
		run.resp.Applied++
		return false, nil
	}

	if err := s.applyCurve(ctx, node, target.Attribute, rec); err != nil {
		return false, fmt.Errorf("failed to key %s: %w", channel, err)
	}
	run.resp.Applied++
	return false, nil
}

// applyCurve keys every key in file order, then sets infinity once
func (s *ImportService) applyCurve(ctx context.Context, node, attr string, rec domain.AnimationRecord) error {
	if rec.Anim == nil || !rec.HasKeysBlock {
		return nil
	}
	data := rec.Anim
	if len(data.Keys) == 0 && !s.scene.IsKeyed(ctx, node, attr) {
		return nil
	}

	for _, key := range data.Keys {
		if err := s.scene.SetKeyframe(ctx, node, attr, key.Time, key.Value, key.Breakdown); err != nil {
			return err
		}
		if err := s.scene.SetTangentLock(ctx, node, attr, key.Time, key.TangentsLocked); err != nil {
			return err
		}
		if data.Weighted {
			if err := s.scene.SetWeightedTangents(ctx, node, attr, true); err != nil {
				return err
			}
			if err := s.scene.SetWeightLock(ctx, node, attr, key.Time, key.WeightLocked); err != nil {
				return err
			}
		}
		if err := s.scene.SetTangents(ctx, node, attr, key.Time, domain.TangentEditFor(key)); err != nil {
			return err
		}
	}

	return s.scene.SetInfinity(ctx, node, attr, data.PreInfinity, data.PostInfinity)
}

func (s *ImportService) restoreUnit(ctx context.Context, run *importRun) {
	if !run.unitCaptured {
		return
	}
	s.log.Infow("setting current scene unit preference back", "unit", run.originalUnit)
	if err := s.scene.SetLinearUnit(context.WithoutCancel(ctx), run.originalUnit); err != nil {
		s.log.Errorw("failed to restore scene unit", "unit", run.originalUnit, "error", err)
	}
}

func (s *ImportService) restoreSelection(ctx context.Context, selection []string) {
	if err := s.scene.SetSelection(context.WithoutCancel(ctx), selection); err != nil {
		s.log.Errorw("failed to restore selection", "error", err)
	}
}

func (s *ImportService) finish(run *importRun, start time.Time) {
	resp := run.resp
	resp.MissingObjects = distinct(resp.MissingObjects)
	resp.MissingAttributes = distinct(resp.MissingAttributes)
	resp.Locked = distinct(resp.Locked)
	resp.Nodes = len(run.nodes)
	resp.Duration = time.Since(start)

	if len(resp.MissingAttributes) > 0 {
		s.log.Warnw("some attributes did not exist", "count", len(resp.MissingAttributes))
	}
	if len(resp.MissingObjects) > 0 {
		s.log.Warnw("some objects did not exist", "count", len(resp.MissingObjects))
	}
	s.log.Infow("done reading animation curves",
		"nodes", resp.Nodes,
		"applied", resp.Applied,
		"skipped", resp.Skipped,
		"elapsed", resp.Duration,
	)
}
