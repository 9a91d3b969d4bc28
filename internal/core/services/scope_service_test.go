package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
)

const scopeFile = twoRecordFile + `static sx scaleX |root 0 2.0
`

func TestScopeService_Scan(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.TransferConfiguration)
		want   []string
	}{
		{
			name: "keyed only",
			want: []string{"|root.translateX", "|root|arm.rotateX"},
		},
		{
			name:   "with unkeyed",
			mutate: func(c *domain.TransferConfiguration) { c.LoadUnkeyed = true },
			want:   []string{"|root.translateX", "|root|arm.rotateX", "|root.scaleX"},
		},
		{
			name:   "collapsed names",
			mutate: func(c *domain.TransferConfiguration) { c.LoadExplicitPaths = false },
			want:   []string{"root.translateX", "arm.rotateX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewScopeService(newFs(t, map[string]string{"/anim/in.dkanim": scopeFile}), nopLog)
			cfg := domain.TransferConfiguration{InputFile: "/anim/in.dkanim", LoadExplicitPaths: true}
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			idx := domain.NewChannelScopeIndex()
			resp, err := svc.Scan(context.Background(), idx, ScanRequest{Config: cfg})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, idx.Keys()); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
			if resp.Selected != len(tt.want) {
				t.Errorf("a first scan selects everything, got %d of %d", resp.Selected, len(tt.want))
			}
			if idx.State() != domain.ScopeLoaded || idx.RefreshNeeded() {
				t.Errorf("state=%v refresh=%v after scan", idx.State(), idx.RefreshNeeded())
			}
		})
	}
}

func TestScopeService_Scan_KeepsSelection(t *testing.T) {
	svc := NewScopeService(newFs(t, map[string]string{"/anim/in.dkanim": scopeFile}), nopLog)
	cfg := domain.TransferConfiguration{InputFile: "/anim/in.dkanim", LoadExplicitPaths: true}
	idx := domain.NewChannelScopeIndex()
	ctx := context.Background()

	if _, err := svc.Scan(ctx, idx, ScanRequest{Config: cfg}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Toggle(1); err != nil {
		t.Fatal(err)
	}

	idx.MarkStale(true)
	if _, err := svc.Scan(ctx, idx, ScanRequest{Config: cfg}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"|root|arm.rotateX"}, idx.SelectedKeys()); diff != "" {
		t.Errorf("selection not kept (-want +got):\n%s", diff)
	}

	idx.MarkStale(false)
	resp, err := svc.Scan(ctx, idx, ScanRequest{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Selected != 2 {
		t.Errorf("expected a full selection after a reset rescan, got %d", resp.Selected)
	}
	if resp.Label != "2 Channels Scoped (Refreshed)" {
		t.Errorf("label = %q", resp.Label)
	}
}

func TestScopeService_Scan_MissingFile(t *testing.T) {
	svc := NewScopeService(newFs(t, map[string]string{"/anim/in.dkanim": scopeFile}), nopLog)
	idx := domain.NewChannelScopeIndex()
	ctx := context.Background()

	if _, err := svc.Scan(ctx, idx, ScanRequest{Config: domain.TransferConfiguration{InputFile: "/anim/in.dkanim"}}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Scan(ctx, idx, ScanRequest{Config: domain.TransferConfiguration{InputFile: "/anim/gone.dkanim"}})
	var notFound *domain.FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *FileNotFoundError, got %v", err)
	}
	if idx.State() != domain.ScopeEmpty || idx.Len() != 0 {
		t.Errorf("index should be reset, got state=%v len=%d", idx.State(), idx.Len())
	}
}

func TestScopeService_Scan_KeepsSelectionAcrossRemap(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.TransferConfiguration)
		want   []string
	}{
		{
			name:   "prefix",
			mutate: func(c *domain.TransferConfiguration) { c.Prefix = "grp_" },
			want:   []string{"|grp_root.translateX"},
		},
		{
			name: "search and replace",
			mutate: func(c *domain.TransferConfiguration) {
				c.UseSearchReplace = true
				c.Search = "root"
				c.Replace = "hips"
			},
			want: []string{"|hips.translateX"},
		},
		{
			name:   "collapsed paths",
			mutate: func(c *domain.TransferConfiguration) { c.LoadExplicitPaths = false },
			want:   []string{"root.translateX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewScopeService(newFs(t, map[string]string{"/anim/in.dkanim": scopeFile}), nopLog)
			cfg := domain.TransferConfiguration{InputFile: "/anim/in.dkanim", LoadExplicitPaths: true}
			idx := domain.NewChannelScopeIndex()
			ctx := context.Background()

			if _, err := svc.Scan(ctx, idx, ScanRequest{Config: cfg}); err != nil {
				t.Fatal(err)
			}
			if err := idx.Toggle(2); err != nil {
				t.Fatal(err)
			}

			next := cfg
			tt.mutate(&next)
			stale, keep := StaleAfter(cfg, next)
			if !stale || !keep {
				t.Fatalf("StaleAfter() = %v, %v, want a kept refresh", stale, keep)
			}
			idx.MarkStale(keep)
			if _, err := svc.Scan(ctx, idx, ScanRequest{Config: next}); err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.want, idx.SelectedKeys()); diff != "" {
				t.Errorf("selection after remap (-want +got):\n%s", diff)
			}
			deselected := idx.Keys()[1]
			if idx.IsSelected(deselected) {
				t.Errorf("%s was deselected but is in scope after the rescan", deselected)
			}
		})
	}
}

func TestScopeService_Scan_KeepOnMissing(t *testing.T) {
	fs := newFs(t, map[string]string{"/anim/in.dkanim": scopeFile})
	svc := NewScopeService(fs, nopLog)
	cfg := domain.TransferConfiguration{InputFile: "/anim/in.dkanim", LoadExplicitPaths: true}
	idx := domain.NewChannelScopeIndex()
	ctx := context.Background()

	if _, err := svc.Scan(ctx, idx, ScanRequest{Config: cfg}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Toggle(1); err != nil {
		t.Fatal(err)
	}
	idx.MarkStale(true)

	if err := fs.Rename("/anim/in.dkanim", "/anim/in.dkanim~"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Scan(ctx, idx, ScanRequest{Config: cfg, KeepOnMissing: true})
	var notFound *domain.FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *FileNotFoundError, got %v", err)
	}
	if idx.Len() != 2 || !idx.RefreshNeeded() {
		t.Errorf("index should be left alone, got len=%d refresh=%v", idx.Len(), idx.RefreshNeeded())
	}

	if err := fs.Rename("/anim/in.dkanim~", "/anim/in.dkanim"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Scan(ctx, idx, ScanRequest{Config: cfg, KeepOnMissing: true}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"|root|arm.rotateX"}, idx.SelectedKeys()); diff != "" {
		t.Errorf("selection lost across a missing file (-want +got):\n%s", diff)
	}
}

func TestScopeService_SaveLoadSelection(t *testing.T) {
	fs := newFs(t, map[string]string{"/anim/in.dkanim": scopeFile})
	svc := NewScopeService(fs, nopLog)
	cfg := domain.TransferConfiguration{InputFile: "/anim/in.dkanim", LoadExplicitPaths: true, LoadUnkeyed: true}
	ctx := context.Background()

	idx := domain.NewChannelScopeIndex()
	if _, err := svc.Scan(ctx, idx, ScanRequest{Config: cfg}); err != nil {
		t.Fatal(err)
	}
	idx.ClearSelection()
	idx.SelectKeys([]string{"|root.scaleX", "|root.translateX"})

	if err := svc.SaveSelection(idx, "/anim/in.scope.yaml"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	fresh := domain.NewChannelScopeIndex()
	if _, err := svc.Scan(ctx, fresh, ScanRequest{Config: cfg}); err != nil {
		t.Fatal(err)
	}
	n, err := svc.LoadSelection(fresh, "/anim/in.scope.yaml")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 selected, got %d", n)
	}
	if diff := cmp.Diff([]string{"|root.translateX", "|root.scaleX"}, fresh.SelectedKeys()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.LoadSelection(fresh, "/anim/none.yaml"); err == nil {
		t.Error("expected error for a missing scope file")
	}
}

func TestScopeService_Filter(t *testing.T) {
	svc := NewScopeService(newFs(t, map[string]string{"/anim/in.dkanim": scopeFile}), nopLog)
	cfg := domain.TransferConfiguration{InputFile: "/anim/in.dkanim", LoadExplicitPaths: true, LoadUnkeyed: true}
	idx := domain.NewChannelScopeIndex()
	if _, err := svc.Scan(context.Background(), idx, ScanRequest{Config: cfg}); err != nil {
		t.Fatal(err)
	}

	if n := svc.Filter(idx, "*.translate?", false); n != 1 {
		t.Errorf("expected 1 match, got %d", n)
	}
	if diff := cmp.Diff([]string{"|root|arm.rotateX", "|root.scaleX"}, idx.SelectedKeys()); diff != "" {
		t.Errorf("after deselect (-want +got):\n%s", diff)
	}

	idx.ClearSelection()
	if n := svc.Filter(idx, "ARM", true); n != 1 {
		t.Errorf("expected a case insensitive match, got %d", n)
	}
	if diff := cmp.Diff([]string{"|root|arm.rotateX"}, idx.SelectedKeys()); diff != "" {
		t.Errorf("after select (-want +got):\n%s", diff)
	}
}

func TestStaleAfter(t *testing.T) {
	base := domain.TransferConfiguration{InputFile: "/anim/in.dkanim", LoadExplicitPaths: true}

	tests := []struct {
		name      string
		mutate    func(*domain.TransferConfiguration)
		wantStale bool
		wantKeep  bool
	}{
		{"unchanged", func(c *domain.TransferConfiguration) {}, false, true},
		{"input file", func(c *domain.TransferConfiguration) { c.InputFile = "/anim/other.dkanim" }, true, false},
		{"unkeyed", func(c *domain.TransferConfiguration) { c.LoadUnkeyed = true }, true, false},
		{"prefix", func(c *domain.TransferConfiguration) { c.Prefix = "p_" }, true, true},
		{"explicit paths", func(c *domain.TransferConfiguration) { c.LoadExplicitPaths = false }, true, true},
		{"output file only", func(c *domain.TransferConfiguration) { c.OutputFile = "/anim/x.dkanim" }, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := base
			tt.mutate(&next)
			stale, keep := StaleAfter(base, next)
			if stale != tt.wantStale || keep != tt.wantKeep {
				t.Errorf("StaleAfter() = (%v, %v), want (%v, %v)", stale, keep, tt.wantStale, tt.wantKeep)
			}
		})
	}
}
