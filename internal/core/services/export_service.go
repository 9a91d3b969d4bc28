package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/ports"
	"github.com/kamal-hamza/dkanim-cli/pkg/animfile"
	"github.com/kamal-hamza/dkanim-cli/pkg/paths"
)

// ExportService writes the animation of selected nodes to an animation file
type ExportService struct {
	scene    ports.SceneStore
	fs       afero.Fs
	progress ports.ProgressSink
	prompter ports.Prompter
	log      *zap.SugaredLogger
}

// NewExportService creates a new export service
func NewExportService(scene ports.SceneStore, fs afero.Fs, progress ports.ProgressSink, prompter ports.Prompter, log *zap.SugaredLogger) *ExportService {
	return &ExportService{
		scene:    scene,
		fs:       fs,
		progress: progress,
		prompter: prompter,
		log:      log,
	}
}

// ExportRequest represents a request to export animation
type ExportRequest struct {
	OutputFile    string
	SaveHierarchy bool
	// Objects overrides the scene selection when not empty
	Objects []string
}

// ExportResponse represents the outcome of an export
type ExportResponse struct {
	OutputFile string
	Objects    int
	Anim       int
	Static     int
	// Cancelled is set when the user declined a confirmation or stopped the job
	Cancelled bool
	Duration  time.Duration
}

// Execute validates the request, asks for confirmation and writes the file
func (s *ExportService) Execute(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	start := time.Now()
	resp := &ExportResponse{OutputFile: req.OutputFile}

	objects, err := s.collectObjects(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Objects = len(objects)

	if err := s.checkDestination(req.OutputFile); err != nil {
		return nil, err
	}

	if exists, _ := afero.Exists(s.fs, req.OutputFile); exists {
		msg := fmt.Sprintf("%s already exists.\nDo you want to replace it?", req.OutputFile)
		if !s.prompter.Confirm("Confirm Save As", msg, false) {
			resp.Cancelled = true
			return resp, nil
		}
	}

	msg := fmt.Sprintf("Are you sure you want to write animation for %d objects to\n%s ?", len(objects), filepath.Base(req.OutputFile))
	if !s.prompter.Confirm(fmt.Sprintf("Write Anim for %d objects?", len(objects)), msg, true) {
		resp.Cancelled = true
		return resp, nil
	}

	s.log.Infow("writing animation curves", "file", req.OutputFile, "objects", len(objects))

	file, err := s.fs.Create(req.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", req.OutputFile, err)
	}
	defer file.Close()

	s.progress.Begin("Exporting Animation", len(objects))
	defer s.progress.End()

	enc := animfile.NewEncoder(file)
	if err := enc.WriteHeader(s.scene.FilePath(ctx)); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := enc.WriteSceneUnit(s.scene.LinearUnit(ctx)); err != nil {
		return nil, fmt.Errorf("failed to write scene unit: %w", err)
	}

	for _, obj := range objects {
		if cancelled(ctx, s.progress) {
			s.log.Infow("user cancelled exporting animation", "written", resp.Anim+resp.Static)
			resp.Cancelled = true
			break
		}

		anim, static, err := s.writeObject(ctx, enc, obj)
		resp.Anim += anim
		resp.Static += static
		if err != nil {
			_ = enc.Flush()
			return resp, err
		}
		s.progress.Tick(1)
	}

	if err := enc.Flush(); err != nil {
		return resp, fmt.Errorf("failed to write %s: %w", req.OutputFile, err)
	}

	resp.Duration = time.Since(start)
	s.log.Infow("done writing animation curves", "anim", resp.Anim, "static", resp.Static, "elapsed", resp.Duration)
	return resp, nil
}

// collectObjects resolves the object set and expands it to descendants when requested
func (s *ExportService) collectObjects(ctx context.Context, req ExportRequest) ([]string, error) {
	var objects []string
	if len(req.Objects) > 0 {
		for _, name := range req.Objects {
			long, ok := s.scene.Resolve(ctx, name)
			if !ok {
				return nil, fmt.Errorf("object not found: %s", name)
			}
			objects = append(objects, long)
		}
	} else {
		objects = s.scene.Selection(ctx)
	}

	if len(objects) == 0 {
		return nil, domain.ErrNoSelection
	}

	if req.SaveHierarchy {
		expanded := make([]string, 0, len(objects))
		for _, obj := range objects {
			expanded = append(expanded, obj)
			desc, err := s.scene.Descendants(ctx, obj)
			if err != nil {
				return nil, fmt.Errorf("failed to list descendants of %s: %w", obj, err)
			}
			expanded = append(expanded, desc...)
		}
		objects = expanded
	}

	return distinct(objects), nil
}

func (s *ExportService) checkDestination(path string) error {
	if !paths.HasDirComponent(path) {
		return &domain.PathError{Path: path, Reason: "no directory given"}
	}
	dir := filepath.Dir(path)
	ok, err := afero.DirExists(s.fs, dir)
	if err != nil || !ok {
		return &domain.PathError{Path: path, Reason: fmt.Sprintf("directory %s doesn't exist", dir)}
	}
	return nil
}

// writeObject emits one anim record per keyed animatable curve, then one static
// record per animatable attribute that is neither keyed nor connected
func (s *ExportService) writeObject(ctx context.Context, enc *animfile.Encoder, obj string) (int, int, error) {
	anim, static := 0, 0
	hasParent := s.scene.HasParent(ctx, obj)

	curves, err := s.scene.AnimCurves(ctx, obj)
	if err != nil {
		return anim, static, fmt.Errorf("failed to list curves of %s: %w", obj, err)
	}
	for _, c := range curves {
		if !s.scene.IsAnimatable(ctx, c.Node, c.Attribute) {
			continue
		}
		data, err := s.scene.CurveData(ctx, c.Curve)
		if err != nil {
			return anim, static, fmt.Errorf("failed to read curve %s: %w", c.Curve, err)
		}
		if len(data.Keys) == 0 {
			continue
		}

		rec := domain.AnimationRecord{
			Kind:           domain.RecordAnimated,
			ShortAttribute: s.scene.AttributeShortName(ctx, c.Node, c.Attribute),
			LongAttribute:  c.Attribute,
			NodePath:       obj,
			HasParent:      hasParent,
			Anim:           &data,
			HasKeysBlock:   true,
		}
		if err := enc.WriteRecord(rec); err != nil {
			return anim, static, fmt.Errorf("failed to write %s: %w", domain.ChannelKey(obj, c.Attribute), err)
		}
		anim++
	}

	attrs, err := s.scene.AnimatableAttributes(ctx, obj)
	if err != nil {
		return anim, static, fmt.Errorf("failed to list attributes of %s: %w", obj, err)
	}
	for _, attr := range attrs {
		if s.scene.IsKeyed(ctx, obj, attr) || s.scene.HasIncomingConnection(ctx, obj, attr) {
			continue
		}
		value, err := s.scene.Value(ctx, obj, attr)
		if err != nil {
			s.log.Warnw("cannot read attribute", "channel", domain.ChannelKey(obj, attr), "error", err)
			continue
		}

		rec := domain.AnimationRecord{
			Kind:           domain.RecordStatic,
			ShortAttribute: s.scene.AttributeShortName(ctx, obj, attr),
			LongAttribute:  attr,
			NodePath:       obj,
			HasParent:      hasParent,
			StaticValue:    value,
		}
		if err := enc.WriteRecord(rec); err != nil {
			return anim, static, fmt.Errorf("failed to write %s: %w", domain.ChannelKey(obj, attr), err)
		}
		static++
	}

	return anim, static, nil
}
