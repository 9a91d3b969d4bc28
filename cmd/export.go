package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dkanim-cli/internal/adapters/scene"
	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/services"
	"github.com/kamal-hamza/dkanim-cli/pkg/paths"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var (
	exportScene     string
	exportOutput    string
	exportObjects   []string
	exportHierarchy bool
	exportPick      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the animation of selected nodes to a .dkanim file",
	Long: `Write every keyed curve and every unkeyed animatable value of the selected
nodes to an animation file.

The scene's stored selection is used unless --select or --pick is given.
With --hierarchy all descendants of the selected nodes are written too.

Examples:
  dkanim export --scene shot.yaml -o anim/walk.dkanim
  dkanim export --scene shot.yaml --select root --hierarchy
  dkanim export --scene shot.yaml --pick`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportScene, "scene", "", "Scene document to read")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Animation file to write (default from config)")
	exportCmd.Flags().StringSliceVar(&exportObjects, "select", nil, "Nodes to export instead of the scene selection")
	exportCmd.Flags().BoolVar(&exportHierarchy, "hierarchy", true, "Also export all descendants")
	exportCmd.Flags().BoolVar(&exportPick, "pick", false, "Pick nodes interactively")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := getContext()
	defer stop()

	store, err := loadScene(exportScene)
	if err != nil {
		return err
	}

	objects := exportObjects
	if exportPick {
		picked, err := pickNodes(ctx, store)
		if err != nil {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
		objects = picked
	}

	output := appConfig.OutputFile
	if cmd.Flags().Changed("output") {
		output = exportOutput
	}
	output = paths.WithAnimExtension(output)
	if !paths.HasDirComponent(output) {
		// a bare name is written next to the scene file
		output = filepath.Join(paths.BrowseDir(appFs, "", exportScene), output)
		if !paths.HasDirComponent(output) {
			output = "." + string(filepath.Separator) + output
		}
	}

	hierarchy := appConfig.SaveHierarchy
	if cmd.Flags().Changed("hierarchy") {
		hierarchy = exportHierarchy
	}

	svc := services.NewExportService(store, appFs, newProgress(ctx), newPrompter(), appLog)
	resp, err := svc.Execute(ctx, services.ExportRequest{
		OutputFile:    output,
		SaveHierarchy: hierarchy,
		Objects:       objects,
	})
	if err != nil {
		var pathErr *domain.PathError
		switch {
		case errors.Is(err, domain.ErrNoSelection):
			fmt.Println(ui.FormatWarning("Please select something"))
			fmt.Println(ui.FormatInfo("Store a selection in the scene or pass --select / --pick"))
		case errors.As(err, &pathErr):
			fmt.Println(ui.FormatError("Bad output path: " + pathErr.Reason))
		}
		return err
	}

	if resp.Cancelled {
		fmt.Println(ui.FormatWarning(fmt.Sprintf("Export cancelled after %d records", resp.Anim+resp.Static)))
		return nil
	}

	fmt.Println(ui.FormatSuccess("Animation written to " + resp.OutputFile))
	fmt.Print(ui.RenderSummary("Export", [][2]string{
		{"Objects", fmt.Sprint(resp.Objects)},
		{"Curves", fmt.Sprint(resp.Anim)},
		{"Static values", fmt.Sprint(resp.Static)},
		{"Elapsed", resp.Duration.Round(time.Millisecond).String()},
	}))
	return nil
}

// pickNodes lets the user choose nodes with a fuzzy finder. The preview lists
// the curves a node would export.
func pickNodes(ctx context.Context, store *scene.Store) ([]string, error) {
	nodes := store.Nodes()
	if len(nodes) == 0 {
		return nil, fmt.Errorf("scene has no nodes")
	}

	idxs, err := fuzzyfinder.FindMulti(
		nodes,
		func(i int) string {
			return nodes[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			curves, _ := store.AnimCurves(ctx, nodes[i])
			names := make([]string, 0, len(curves))
			for _, c := range curves {
				names = append(names, c.Attribute)
			}
			preview := fmt.Sprintf("Node: %s\nCurves: %d", nodes[i], len(curves))
			if len(names) > 0 {
				preview += "\n\n" + strings.Join(names, "\n")
			}
			return preview
		}),
		fuzzyfinder.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}

	picked := make([]string, 0, len(idxs))
	for _, i := range idxs {
		picked = append(picked, nodes[i])
	}
	return picked, nil
}
