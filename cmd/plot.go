package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/services"
	"github.com/kamal-hamza/dkanim-cli/pkg/animfile"
	"github.com/kamal-hamza/dkanim-cli/pkg/naming"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var (
	plotTransfer transferFlags
	plotOutput   string
	plotScopes   []string
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the keys of a .dkanim file as HTML charts",
	Long: `Render every keyed channel of an animation file as a line chart, one chart
per node. Keys are plotted as points joined in file order; tangents are not evaluated.

Examples:
  dkanim plot -i walk.dkanim -o walk.html
  dkanim plot -i walk.dkanim --scope "*.rotate?"`,
	Args: cobra.NoArgs,
	RunE: runPlot,
}

func init() {
	addTransferFlags(plotCmd, &plotTransfer)
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "HTML file to write (default next to the input)")
	plotCmd.Flags().StringSliceVar(&plotScopes, "scope", nil, "Only plot channels matching these patterns")
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg := plotTransfer.resolve(cmd, appConfig)

	f, err := appFs.Open(cfg.InputFile)
	if err != nil {
		return reportFileError(&domain.FileNotFoundError{Path: cfg.InputFile})
	}
	defer f.Close()

	items, err := animfile.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.InputFile, err)
	}

	var matchers []*naming.Wildcard
	for _, p := range plotScopes {
		matchers = append(matchers, naming.CompileWildcard(p))
	}
	transformer := naming.NewTransformer(services.RemapOptions(cfg))

	page := curvePage(cfg.InputFile, items, func(rec domain.AnimationRecord) (string, bool) {
		node := transformer.Transform(rec.NodePath, rec.HasParent)
		if len(matchers) == 0 {
			return node, true
		}
		key := domain.ChannelKey(node, rec.Attribute())
		for _, m := range matchers {
			if m.MatchString(key) {
				return node, true
			}
		}
		return node, false
	})
	if len(page.Charts) == 0 {
		fmt.Println(ui.FormatWarning("No keyed channels to plot"))
		return nil
	}

	output := plotOutput
	if output == "" {
		output = strings.TrimSuffix(cfg.InputFile, filepath.Ext(cfg.InputFile)) + ".html"
	}
	out, err := appFs.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer out.Close()

	if err := page.Render(out); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("%d charts written to %s", len(page.Charts), output)))
	return nil
}

// curvePage builds one line chart per node holding a series per keyed attribute.
// include remaps the record's node and reports whether to plot it.
func curvePage(title string, items []animfile.Item, include func(domain.AnimationRecord) (string, bool)) *components.Page {
	page := components.NewPage()
	page.PageTitle = title

	lines := make(map[string]*charts.Line)
	var order []string

	for _, item := range items {
		rec := item.Record
		if item.Kind != animfile.ItemRecord || rec.Kind != domain.RecordAnimated || rec.Anim == nil || len(rec.Anim.Keys) == 0 {
			continue
		}
		node, ok := include(rec)
		if !ok {
			continue
		}

		line, exists := lines[node]
		if !exists {
			line = charts.NewLine()
			line.SetGlobalOptions(
				charts.WithTitleOpts(opts.Title{Title: node}),
				charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
				charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
				charts.WithXAxisOpts(opts.XAxis{Name: "time", Type: "value"}),
				charts.WithYAxisOpts(opts.YAxis{Name: "value", Type: "value"}),
			)
			lines[node] = line
			order = append(order, node)
		}

		data := make([]opts.LineData, 0, len(rec.Anim.Keys))
		for _, k := range rec.Anim.Keys {
			data = append(data, opts.LineData{Value: []interface{}{k.Time, k.Value}})
		}
		line.AddSeries(rec.Attribute(), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
		)
	}

	for _, node := range order {
		page.AddCharts(lines[node])
	}
	return page
}
