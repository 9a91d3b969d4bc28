package ports

import (
	"context"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
)

// SceneStore defines the port to the scene graph animation is read from and written to.
// Node arguments are long names as returned by Resolve.
type SceneStore interface {
	// Resolve looks up a node by short name, partial path or full path
	Resolve(ctx context.Context, name string) (string, bool)

	// HasAttribute checks if the node carries the attribute
	HasAttribute(ctx context.Context, node, attr string) bool

	// HasParent reports whether the node is below another node
	HasParent(ctx context.Context, node string) bool

	// Descendants returns every node below node, in traversal order
	Descendants(ctx context.Context, node string) ([]string, error)

	// AnimCurves lists the animation curves driving attributes of node
	AnimCurves(ctx context.Context, node string) ([]domain.CurveBinding, error)

	// AnimatableAttributes lists the attributes of node that can carry keys
	AnimatableAttributes(ctx context.Context, node string) ([]string, error)

	// IsAnimatable checks if an attribute can carry keys
	IsAnimatable(ctx context.Context, node, attr string) bool

	// AttributeShortName returns the short form of an attribute name
	AttributeShortName(ctx context.Context, node, attr string) string

	// CurveData returns the keys and curve settings of an animation curve
	CurveData(ctx context.Context, curve string) (domain.AnimData, error)

	// IsKeyed checks if an attribute is driven by an animation curve
	IsKeyed(ctx context.Context, node, attr string) bool

	Value(ctx context.Context, node, attr string) (float64, error)
	SetValue(ctx context.Context, node, attr string, value float64) error
	IsLocked(ctx context.Context, node, attr string) bool
	HasIncomingConnection(ctx context.Context, node, attr string) bool

	// SetKeyframe inserts or replaces the key at time
	SetKeyframe(ctx context.Context, node, attr string, time, value float64, breakdown bool) error
	SetTangentLock(ctx context.Context, node, attr string, time float64, locked bool) error
	SetWeightedTangents(ctx context.Context, node, attr string, weighted bool) error
	SetWeightLock(ctx context.Context, node, attr string, time float64, locked bool) error
	SetTangents(ctx context.Context, node, attr string, time float64, edit domain.TangentEdit) error
	SetInfinity(ctx context.Context, node, attr, pre, post string) error

	LinearUnit(ctx context.Context) string
	SetLinearUnit(ctx context.Context, unit string) error

	// Selection returns the currently selected nodes
	Selection(ctx context.Context) []string
	SetSelection(ctx context.Context, nodes []string) error

	// FilePath returns the path of the scene document
	FilePath(ctx context.Context) string
}

// ProgressSink defines the port for reporting job progress and polling for cancellation
type ProgressSink interface {
	// Begin starts a job of max steps
	Begin(title string, max int)

	// Tick advances the job by n steps
	Tick(n int)

	// IsCancelled reports whether the user asked to stop
	IsCancelled() bool

	// End closes the job
	End()
}

// Prompter defines the port for yes/no decisions taken by the user
type Prompter interface {
	Confirm(title, message string, defaultYes bool) bool
}

