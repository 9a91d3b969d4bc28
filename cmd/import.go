package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/services"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var (
	importScene     string
	importTransfer  transferFlags
	importScopes    []string
	importScopeFile string
	importDryRun    bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Apply a .dkanim file onto a scene",
	Long: `Read an animation file and key its curves onto the scene, record by record.

Node paths from the file can be remapped before lookup:
  --search/--replace  substitute text in the full path
  --prefix            prefix every node (or only the top node with --top-nodes-only)
  --explicit-paths    match by full path; set to false to match by short name

Limit the import to some channels with --scope patterns (wildcards * and ?)
or a selection saved by 'dkanim channels --save'.

The scene document is written back unless --dry-run is given.

Examples:
  dkanim import --scene shot.yaml -i anim/walk.dkanim
  dkanim import --scene shot.yaml -i walk.dkanim --search L_ --replace R_
  dkanim import --scene shot.yaml -i walk.dkanim --scope "*.rotate?"`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importScene, "scene", "", "Scene document to modify")
	addTransferFlags(importCmd, &importTransfer)
	importCmd.Flags().StringSliceVar(&importScopes, "scope", nil, "Only import channels matching these patterns")
	importCmd.Flags().StringVar(&importScopeFile, "scope-file", "", "Only import channels saved in this scope file")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Do not write the scene back")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := getContext()
	defer stop()

	if importScene != "" && !importDryRun {
		release, err := lockScene(importScene)
		if err != nil {
			return err
		}
		defer release()
	}

	store, err := loadScene(importScene)
	if err != nil {
		return err
	}

	cfg := importTransfer.resolve(cmd, appConfig)
	if len(importScopes) > 0 || importScopeFile != "" {
		cfg.UseChannelScope = true
	}

	var scope *domain.ChannelScopeIndex
	if cfg.UseChannelScope {
		scope, err = buildScope(ctx, cfg, importScopeFile, importScopes)
		if err != nil {
			return reportFileError(err)
		}
		fmt.Println(ui.FormatScopeLabel(scope.Label(), scope.RefreshNeeded()))
	}

	svc := services.NewImportService(store, appFs, newProgress(ctx), newPrompter(), scopeService, appLog)
	resp, err := svc.Execute(ctx, services.ImportRequest{Config: cfg, Scope: scope})
	if err != nil && resp == nil {
		return reportFileError(err)
	}

	if resp.Aborted || (resp.Cancelled && resp.Records == 0) {
		fmt.Println(ui.FormatWarning("Import stopped, nothing was applied"))
		return err
	}

	printImportSummary(resp)

	if importDryRun {
		fmt.Println(ui.FormatMuted("Dry run: scene not written"))
		return err
	}
	if resp.Applied > 0 {
		if saveErr := store.Save(appFs, importScene); saveErr != nil {
			return fmt.Errorf("failed to write scene: %w", saveErr)
		}
		fmt.Println(ui.FormatSuccess("Scene written to " + importScene))
	}
	return err
}

// buildScope scans the input file and applies the saved selection and patterns
func buildScope(ctx context.Context, cfg domain.TransferConfiguration, scopeFile string, patterns []string) (*domain.ChannelScopeIndex, error) {
	idx := domain.NewChannelScopeIndex()
	if !appConfig.KeepScopeSelection {
		idx.MarkStale(false)
	}
	if _, err := scopeService.Scan(ctx, idx, services.ScanRequest{Config: cfg}); err != nil {
		return nil, err
	}

	if scopeFile != "" {
		if _, err := scopeService.LoadSelection(idx, scopeFile); err != nil {
			return nil, err
		}
	}
	if len(patterns) > 0 {
		idx.ClearSelection()
		for _, p := range patterns {
			scopeService.Filter(idx, p, true)
		}
	}
	return idx, nil
}

func reportFileError(err error) error {
	var notFound *domain.FileNotFoundError
	if errors.As(err, &notFound) {
		fmt.Println(ui.FormatError("File does not exist: " + notFound.Path))
	}
	return err
}

func printImportSummary(resp *services.ImportResponse) {
	if resp.Cancelled {
		fmt.Println(ui.FormatWarning(fmt.Sprintf("Import cancelled after %d records, applied records are kept", resp.Records)))
	} else {
		fmt.Println(ui.FormatSuccess("Animation read from " + resp.InputFile))
	}

	fmt.Print(ui.RenderSummary("Import", [][2]string{
		{"Nodes", fmt.Sprint(resp.Nodes)},
		{"Records", fmt.Sprint(resp.Records)},
		{"Applied", fmt.Sprint(resp.Applied)},
		{"Out of scope", fmt.Sprint(resp.Skipped)},
		{"Elapsed", resp.Duration.Round(time.Millisecond).String()},
	}))

	if len(resp.MissingObjects) > 0 {
		fmt.Println(ui.FormatWarning("Objects that did not exist:"))
		fmt.Print(ui.RenderSimpleList(resp.MissingObjects))
	}
	if len(resp.MissingAttributes) > 0 {
		fmt.Println(ui.FormatWarning("Attributes that did not exist:"))
		fmt.Print(ui.RenderSimpleList(resp.MissingAttributes))
	}
	if len(resp.Locked) > 0 {
		fmt.Println(ui.FormatWarning("Locked or connected attributes left alone:"))
		fmt.Print(ui.RenderSimpleList(resp.Locked))
	}
}
