package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/services"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var (
	channelsTransfer transferFlags
	channelsSelect   []string
	channelsDeselect []string
	channelsLoad     string
	channelsSave     string
	channelsCopy     bool
	channelsBrowse   bool
	channelsWatch    bool
)

var channelsCmd = &cobra.Command{
	Use:     "channels",
	Aliases: []string{"ch"},
	Short:   "List and scope the channels of a .dkanim file",
	Long: `Scan an animation file and list its channels as "{node}.{attribute}" keys,
remapped with the same options an import would use.

Patterns use * and ? wildcards and match anywhere in the key, ignoring case.

Examples:
  dkanim channels -i walk.dkanim
  dkanim channels -i walk.dkanim --deselect "*.scale?" --save walk.scope.yaml
  dkanim channels -i walk.dkanim --browse
  dkanim channels -i walk.dkanim --watch`,
	Args: cobra.NoArgs,
	RunE: runChannels,
}

func init() {
	addTransferFlags(channelsCmd, &channelsTransfer)
	channelsCmd.Flags().StringSliceVar(&channelsSelect, "select", nil, "Select channels matching these patterns")
	channelsCmd.Flags().StringSliceVar(&channelsDeselect, "deselect", nil, "Deselect channels matching these patterns")
	channelsCmd.Flags().StringVar(&channelsLoad, "load", "", "Start from a saved scope file")
	channelsCmd.Flags().StringVar(&channelsSave, "save", "", "Save the selection to a scope file")
	channelsCmd.Flags().BoolVar(&channelsCopy, "copy", false, "Copy the selected keys to the clipboard")
	channelsCmd.Flags().BoolVarP(&channelsBrowse, "browse", "b", false, "Browse and toggle channels interactively")
	channelsCmd.Flags().BoolVarP(&channelsWatch, "watch", "w", false, "Rescan whenever the file changes")
}

func runChannels(cmd *cobra.Command, args []string) error {
	ctx, stop := getContext()
	defer stop()

	cfg := channelsTransfer.resolve(cmd, appConfig)

	idx := domain.NewChannelScopeIndex()
	if !appConfig.KeepScopeSelection {
		idx.MarkStale(false)
	}
	if _, err := scopeService.Scan(ctx, idx, services.ScanRequest{Config: cfg}); err != nil {
		return reportFileError(err)
	}

	if channelsLoad != "" {
		if _, err := scopeService.LoadSelection(idx, channelsLoad); err != nil {
			return err
		}
	}
	for _, p := range channelsSelect {
		scopeService.Filter(idx, p, true)
	}
	for _, p := range channelsDeselect {
		scopeService.Filter(idx, p, false)
	}

	if channelsBrowse {
		final, err := runChannelBrowser(ctx, idx, cfg)
		if err != nil {
			return err
		}
		cfg = final
	} else if channelsWatch {
		if err := watchChannels(ctx, idx, cfg); err != nil {
			return err
		}
	} else {
		fmt.Print(renderScopeTable(idx))
	}

	fmt.Println(ui.FormatScopeLabel(idx.Label(), idx.RefreshNeeded()))

	if channelsSave != "" {
		if err := scopeService.SaveSelection(idx, channelsSave); err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess("Scope saved to " + channelsSave))
	}

	if channelsCopy {
		if err := clipboard.WriteAll(strings.Join(idx.SelectedKeys(), "\n")); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Copied %d keys to the clipboard", idx.SelectedCount())))
	}

	return nil
}

// renderScopeTable lists every entry with its ordinal and selection box
func renderScopeTable(idx *domain.ChannelScopeIndex) string {
	if idx.Len() == 0 {
		return ui.FormatMuted("No channels found.") + "\n"
	}

	table := ui.NewTable([]ui.TableColumn{
		{Header: "#", Align: "right"},
		{Header: "Scope"},
		{Header: "Channel"},
	})
	table.MaxCellWidth = appConfig.TableWidth

	for _, e := range idx.Entries() {
		box := ui.IconUnchecked
		if e.Selected {
			box = ui.IconChecked
		}
		table.AddRow([]string{fmt.Sprint(e.Ordinal), box, e.Key()})
	}
	return table.Render()
}

// watchChannels rescans the scope every time the input file settles after a
// change. Rescans keep the current selection.
func watchChannels(ctx context.Context, idx *domain.ChannelScopeIndex, cfg domain.TransferConfiguration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so the directory is watched
	target := filepath.Clean(cfg.InputFile)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	fmt.Print(renderScopeTable(idx))
	fmt.Println(ui.FormatRocket("Watching " + target))
	fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))

	debounceDuration := time.Duration(appConfig.WatchDebounceMS) * time.Millisecond
	var debounce <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				idx.MarkStale(true)
				debounce = time.After(debounceDuration)
			}

		case <-debounce:
			debounce = nil
			resp, err := scopeService.Scan(ctx, idx, services.ScanRequest{Config: cfg, KeepOnMissing: true})
			if err != nil {
				fmt.Println(ui.FormatError("Rescan failed: " + err.Error()))
				continue
			}
			fmt.Println()
			fmt.Print(renderScopeTable(idx))
			fmt.Println(ui.FormatInfo(fmt.Sprintf("%s in %s", resp.Label, resp.Duration.Round(time.Millisecond))))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLog.Warnw("watcher error", "error", err)

		case <-ctx.Done():
			fmt.Println()
			fmt.Println(ui.FormatMuted("Watcher stopped"))
			return nil
		}
	}
}
