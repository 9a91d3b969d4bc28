package terminal

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bar := NewProgressBar(ctx, &out)
	bar.Begin("Importing Animation", 4)
	bar.Tick(1)
	bar.Tick(1)

	if got := bar.Percent(); got != 0.5 {
		t.Errorf("Percent() = %v, want 0.5", got)
	}
	if !strings.Contains(out.String(), "Importing Animation") {
		t.Errorf("title not drawn: %q", out.String())
	}

	bar.Tick(10)
	if got := bar.Percent(); got != 1 {
		t.Errorf("ticks past max should clamp, got %v", got)
	}

	if bar.IsCancelled() {
		t.Error("should not be cancelled before the context is done")
	}
	cancel()
	if !bar.IsCancelled() {
		t.Error("should be cancelled once the context is done")
	}

	bar.End()
	if !strings.HasSuffix(out.String(), "\n") {
		t.Error("End should finish the line")
	}
}

func TestProgressBar_Silent(t *testing.T) {
	bar := NewProgressBar(context.Background(), nil)
	bar.Begin("Exporting Animation", 0)
	bar.Tick(1)
	bar.End()
	if got := bar.Percent(); got != 1 {
		t.Errorf("an empty job is complete, got %v", got)
	}
}

func TestProgressBar_RedrawsOnPercentChange(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(context.Background(), &out)
	bar.Begin("Importing Animation", 1000)
	draws := strings.Count(out.String(), "\r")

	bar.Tick(1)
	bar.Tick(1)
	if got := strings.Count(out.String(), "\r"); got != draws {
		t.Errorf("sub-percent ticks should not redraw, %d draws -> %d", draws, got)
	}

	bar.Tick(10)
	if got := strings.Count(out.String(), "\r"); got != draws+1 {
		t.Errorf("expected one redraw, got %d", got-draws)
	}
}

func TestSurveyPrompter_NonInteractive(t *testing.T) {
	p := NewSurveyPrompter(os.Stdin, os.Stdout, os.Stderr, true)
	if !p.Confirm("Write Anim for 2 objects?", "", true) {
		t.Error("expected the default yes")
	}
	if p.Confirm("Confirm Save As", "", false) {
		t.Error("expected the default no")
	}
}

func TestAlwaysYes(t *testing.T) {
	if !(AlwaysYes{}).Confirm("Confirm Save As", "replace?", false) {
		t.Error("AlwaysYes must accept")
	}
}
