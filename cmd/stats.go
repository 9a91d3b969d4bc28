package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/pkg/animfile"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var statsTransfer transferFlags

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for a .dkanim file",
	Long: `Analyze an animation file and display what it holds.

Includes:
  - Record, node and key counts
  - The time range covered by the keys
  - Most animated attributes
  - Tangent type distribution`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	addTransferFlags(statsCmd, &statsTransfer)
}

// fileSummary aggregates the items of one animation file
type fileSummary struct {
	Size     datasize.ByteSize
	Unit     string
	Records  int
	Anim     int
	Static   int
	Nodes    int
	Keys     int
	Weighted int
	First    float64
	Last     float64

	Attributes map[string]int
	Tangents   map[string]int
}

func summarize(items []animfile.Item) fileSummary {
	s := fileSummary{
		Attributes: make(map[string]int),
		Tangents:   make(map[string]int),
		First:      math.Inf(1),
		Last:       math.Inf(-1),
	}
	nodes := make(map[string]bool)

	for _, item := range items {
		if item.Kind == animfile.ItemSceneUnit {
			if s.Unit == "" {
				s.Unit = item.Unit
			}
			continue
		}

		rec := item.Record
		s.Records++
		nodes[rec.NodePath] = true
		s.Attributes[rec.Attribute()]++

		if rec.Kind == domain.RecordStatic || rec.Anim == nil {
			s.Static++
			continue
		}
		s.Anim++
		if rec.Anim.Weighted {
			s.Weighted++
		}
		for _, k := range rec.Anim.Keys {
			s.Keys++
			s.Tangents[k.InTangentType]++
			s.Tangents[k.OutTangentType]++
			s.First = math.Min(s.First, k.Time)
			s.Last = math.Max(s.Last, k.Time)
		}
	}

	s.Nodes = len(nodes)
	if s.Keys == 0 {
		s.First, s.Last = 0, 0
	}
	return s
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := statsTransfer.resolve(cmd, appConfig)

	f, err := appFs.Open(cfg.InputFile)
	if err != nil {
		return reportFileError(&domain.FileNotFoundError{Path: cfg.InputFile})
	}
	defer f.Close()

	fmt.Println(ui.FormatRocket("Analyzing " + cfg.InputFile + "..."))

	items, err := animfile.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.InputFile, err)
	}
	s := summarize(items)
	if info, err := appFs.Stat(cfg.InputFile); err == nil {
		s.Size = datasize.ByteSize(info.Size())
	}

	fmt.Println()
	fmt.Println(ui.FormatTitle("Animation File"))
	fmt.Println()
	renderStats(os.Stdout, s)
	return nil
}

func renderStats(out io.Writer, s fileSummary) {
	unit := s.Unit
	if unit == "" {
		unit = "(not set)"
	}

	w := tabwriter.NewWriter(out, 0, 0, 4, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", ui.FormatBold("File Size:"), s.Size.HumanReadable())
	fmt.Fprintf(w, "%s\t%s\n", ui.FormatBold("Scene Unit:"), unit)
	fmt.Fprintf(w, "%s\t%d\n", ui.FormatBold("Nodes:"), s.Nodes)
	fmt.Fprintf(w, "%s\t%d (%d anim, %d static)\n", ui.FormatBold("Records:"), s.Records, s.Anim, s.Static)
	fmt.Fprintf(w, "%s\t%d\n", ui.FormatBold("Keys:"), s.Keys)
	fmt.Fprintf(w, "%s\t%d\n", ui.FormatBold("Weighted Curves:"), s.Weighted)

	avg := 0.0
	if s.Anim > 0 {
		avg = float64(s.Keys) / float64(s.Anim)
	}
	fmt.Fprintf(w, "%s\t%.1f keys/curve\n", ui.FormatBold("Average Density:"), avg)
	if s.Keys > 0 {
		fmt.Fprintf(w, "%s\t%s to %s\n", ui.FormatBold("Time Range:"),
			animfile.FormatFloat(s.First), animfile.FormatFloat(s.Last))
	}
	w.Flush()
	fmt.Fprintln(out)

	renderTopCounts(out, "Top Attributes", s.Attributes)
	renderTopCounts(out, "Tangent Types", s.Tangents)
}

type countPair struct {
	Name  string
	Count int
}

// topCounts sorts counts by count then name and keeps the first limit entries
func topCounts(counts map[string]int, limit int) []countPair {
	sorted := make([]countPair, 0, len(counts))
	for k, v := range counts {
		sorted = append(sorted, countPair{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Name < sorted[j].Name
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// renderTopCounts displays a horizontal bar chart
func renderTopCounts(out io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	fmt.Fprintln(out, ui.StyleHeader.Render(title))

	sorted := topCounts(counts, 5)
	maxCount := sorted[0].Count
	barWidth := 20

	for _, t := range sorted {
		length := int(math.Ceil(float64(t.Count) / float64(maxCount) * float64(barWidth)))
		bar := strings.Repeat("█", length)

		fmt.Fprintf(out, "%s %-15s %s\n",
			ui.StyleAccent.Render(bar),
			t.Name,
			ui.StyleMuted.Render(fmt.Sprintf("%d", t.Count)),
		)
	}
	fmt.Fprintln(out)
}
