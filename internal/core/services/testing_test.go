package services

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/kamal-hamza/dkanim-cli/internal/adapters/scene"
	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/pkg/logger"
)

func translateCurve() *domain.AnimData {
	return &domain.AnimData{
		PreInfinity:  "constant",
		PostInfinity: "linear",
		Keys: []domain.Keyframe{
			{Time: 1, Value: 0, InTangentType: "spline", OutTangentType: "spline", TangentsLocked: true, WeightLocked: true},
			{Time: 10, Value: 5, InTangentType: "linear", OutTangentType: "linear", WeightLocked: true, Breakdown: true},
		},
	}
}

func rotateCurve() *domain.AnimData {
	return &domain.AnimData{
		Weighted:     true,
		PreInfinity:  "cycle",
		PostInfinity: "cycle",
		Keys: []domain.Keyframe{
			{Time: 0, Value: 10, InTangentType: "fixed", OutTangentType: "fixed", InAngle: 15, InWeight: 2, OutAngle: -15, OutWeight: 3},
			{Time: 24, Value: -10, InTangentType: "flat", OutTangentType: "fixed", TangentsLocked: true, OutAngle: 5, OutWeight: 1},
		},
	}
}

// newRig builds |root|arm. With animated set, root.translateX and
// arm.rotateX carry curves and root.scaleX holds 2.
func newRig(animated bool) *scene.Store {
	root := &scene.Node{
		Name: "root",
		Attributes: []*scene.Attribute{
			{Name: "translateX", Short: "tx"},
			{Name: "scaleX", Short: "sx"},
		},
	}
	arm := &scene.Node{
		Name: "arm",
		Attributes: []*scene.Attribute{
			{Name: "rotateX", Short: "rx"},
			{Name: "rotateY", Short: "ry", Locked: true},
			{Name: "rotateZ", Short: "rz", Connected: true},
		},
	}
	root.Children = []*scene.Node{arm}

	if animated {
		root.Attributes[0].Curve = translateCurve()
		root.Attributes[1].Value = 2
		arm.Attributes[0].Curve = rotateCurve()
	}

	return scene.New(&scene.Document{
		Unit:      "cm",
		Selection: []string{"root"},
		Nodes:     []*scene.Node{root},
	}, "/scenes/rig.yaml")
}

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/anim", 0755); err != nil {
		t.Fatal(err)
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

var nopLog = logger.Nop()
