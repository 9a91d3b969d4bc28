package scene

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
)

const rigYAML = `unit: cm
selection: [root]
nodes:
  - name: root
    attributes:
      - {name: translateX, short: tx, value: 1}
      - {name: visibility, short: v, value: 1, animatable: false}
    children:
      - name: arm
        attributes:
          - name: rotateX
            short: rx
            curve:
              pre_infinity: constant
              post_infinity: linear
              keys:
                - {time: 1, value: 0, in_tangent: spline, out_tangent: spline, tangents_locked: true, weight_locked: true}
          - {name: rotateY, short: ry, locked: true}
          - {name: rotateZ, short: rz, connected: true}
        children:
          - name: hand
  - name: other
    children:
      - name: hand
`

func loadRig(t *testing.T) *Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/scenes/rig.yaml", []byte(rigYAML), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := Load(fs, "/scenes/rig.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store
}

func TestResolve(t *testing.T) {
	store := loadRig(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"root", "|root", true},
		{"arm", "|root|arm", true},
		{"|root|arm", "|root|arm", true},
		{"arm|hand", "|root|arm|hand", true},
		{"hand", "", false},
		{"|root|missing", "|root|missing", false},
		{"missing", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := store.Resolve(ctx, tt.name)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestHierarchy(t *testing.T) {
	store := loadRig(t)
	ctx := context.Background()

	desc, err := store.Descendants(ctx, "|root")
	if err != nil {
		t.Fatal(err)
	}
	if len(desc) != 2 || desc[0] != "|root|arm" || desc[1] != "|root|arm|hand" {
		t.Errorf("Descendants(|root) = %v", desc)
	}
	if store.HasParent(ctx, "|root") {
		t.Error("root should not have a parent")
	}
	if !store.HasParent(ctx, "|root|arm") {
		t.Error("arm should have a parent")
	}
}

func TestAttributes(t *testing.T) {
	store := loadRig(t)
	ctx := context.Background()

	attrs, err := store.AnimatableAttributes(ctx, "|root")
	if err != nil {
		t.Fatal(err)
	}
	if len(attrs) != 1 || attrs[0] != "translateX" {
		t.Errorf("AnimatableAttributes(|root) = %v", attrs)
	}
	if !store.HasAttribute(ctx, "|root", "tx") {
		t.Error("short attribute name should resolve")
	}
	if got := store.AttributeShortName(ctx, "|root", "translateX"); got != "tx" {
		t.Errorf("AttributeShortName() = %q", got)
	}
	if !store.IsKeyed(ctx, "|root|arm", "rotateX") || store.IsKeyed(ctx, "|root|arm", "rotateY") {
		t.Error("unexpected keyed state")
	}
	if !store.IsLocked(ctx, "|root|arm", "rotateY") {
		t.Error("rotateY should be locked")
	}
	if !store.HasIncomingConnection(ctx, "|root|arm", "rotateZ") {
		t.Error("rotateZ should be connected")
	}
	if err := store.SetValue(ctx, "|root|arm", "rotateY", 3); err == nil {
		t.Error("expected error setting a locked attribute")
	}
}

func TestCurves(t *testing.T) {
	store := loadRig(t)
	ctx := context.Background()

	curves, err := store.AnimCurves(ctx, "|root|arm")
	if err != nil {
		t.Fatal(err)
	}
	if len(curves) != 1 || curves[0].Attribute != "rotateX" {
		t.Fatalf("AnimCurves() = %+v", curves)
	}

	data, err := store.CurveData(ctx, curves[0].Curve)
	if err != nil {
		t.Fatal(err)
	}
	if data.PostInfinity != "linear" || len(data.Keys) != 1 {
		t.Errorf("CurveData() = %+v", data)
	}

	// the returned keys are a copy
	data.Keys[0].Value = 99
	again, _ := store.CurveData(ctx, curves[0].Curve)
	if again.Keys[0].Value != 0 {
		t.Error("CurveData() leaked internal state")
	}
}

func TestSetKeyframe(t *testing.T) {
	store := loadRig(t)
	ctx := context.Background()

	for _, tm := range []float64{10, 5, 5} {
		if err := store.SetKeyframe(ctx, "|root", "translateX", tm, tm*2, false); err != nil {
			t.Fatalf("SetKeyframe() error = %v", err)
		}
	}

	data, err := store.CurveData(ctx, "|root.translateX")
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Keys) != 2 || data.Keys[0].Time != 5 || data.Keys[1].Time != 10 {
		t.Errorf("keys = %+v", data.Keys)
	}

	angle := 30.0
	edit := domain.TangentEdit{InType: "fixed", OutType: "linear", InAngle: &angle}
	if err := store.SetTangents(ctx, "|root", "translateX", 5, edit); err != nil {
		t.Fatal(err)
	}
	if err := store.SetTangents(ctx, "|root", "translateX", 7, edit); err == nil {
		t.Error("expected error for missing key time")
	}
	data, _ = store.CurveData(ctx, "|root.translateX")
	if data.Keys[0].InTangentType != "fixed" || data.Keys[0].InAngle != 30 {
		t.Errorf("tangent edit not applied: %+v", data.Keys[0])
	}
}

func TestUnitAndSelection(t *testing.T) {
	store := loadRig(t)
	ctx := context.Background()

	if err := store.SetLinearUnit(ctx, "parsec"); err == nil {
		t.Error("expected error for unknown unit")
	}
	if err := store.SetLinearUnit(ctx, "m"); err != nil {
		t.Fatal(err)
	}
	if store.LinearUnit(ctx) != "m" {
		t.Errorf("LinearUnit() = %q", store.LinearUnit(ctx))
	}

	sel := store.Selection(ctx)
	if len(sel) != 1 || sel[0] != "|root" {
		t.Errorf("Selection() = %v", sel)
	}
	if err := store.SetSelection(ctx, []string{"arm"}); err != nil {
		t.Fatal(err)
	}
	if sel := store.Selection(ctx); len(sel) != 1 || sel[0] != "|root|arm" {
		t.Errorf("Selection() after set = %v", sel)
	}
	if err := store.SetSelection(ctx, []string{"hand"}); err == nil {
		t.Error("expected error for ambiguous selection")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	store := loadRig(t)
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	if err := store.SetKeyframe(ctx, "|root", "translateX", 3, 4, true); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(fs, "/out/rig.yaml"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := Load(fs, "/out/rig.yaml")
	if err != nil {
		t.Fatal(err)
	}
	data, err := reloaded.CurveData(ctx, "|root.translateX")
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Keys) != 1 || !data.Keys[0].Breakdown {
		t.Errorf("reloaded keys = %+v", data.Keys)
	}
	if len(reloaded.Nodes()) != len(store.Nodes()) {
		t.Errorf("node count changed: %d vs %d", len(reloaded.Nodes()), len(store.Nodes()))
	}
}
