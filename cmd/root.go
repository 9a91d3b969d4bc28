package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamal-hamza/dkanim-cli/internal/adapters/scene"
	"github.com/kamal-hamza/dkanim-cli/internal/adapters/terminal"
	"github.com/kamal-hamza/dkanim-cli/internal/core/ports"
	"github.com/kamal-hamza/dkanim-cli/internal/core/services"
	"github.com/kamal-hamza/dkanim-cli/pkg/config"
	"github.com/kamal-hamza/dkanim-cli/pkg/logger"
	"github.com/kamal-hamza/dkanim-cli/pkg/paths"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var (
	// Global configuration
	appConfig  *config.Config
	configPath string

	appFs  afero.Fs
	appLog *zap.SugaredLogger

	// Global flags
	configFlag string
	verbose    bool
	assumeYes  bool

	// Services
	scopeService *services.ScopeService
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dkanim",
	Short: "dkanim - copy animation curves between scenes",
	Long: ui.StyleTitle.Render("dkanim") + " - Animation Curve Transfer\n\n" +
		"Export keyed curves and static values of scene nodes to a text file,\n" +
		"then import them onto another scene with node remapping and channel scoping.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default is $XDG_CONFIG_HOME/dkanim/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")
}

// initializeApp loads configuration and wires shared services
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configPath = configFlag
	if configPath == "" {
		p, err := paths.ConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = cfg
	ui.SetTheme(appConfig.ColorTheme)

	appLog = logger.New(os.Stderr, verbose)
	appFs = afero.NewOsFs()

	scopeService = services.NewScopeService(appFs, appLog)

	return nil
}

// getContext returns a context cancelled by Ctrl+C
func getContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newPrompter returns the prompter for confirmations. Without a terminal every
// question takes its default answer.
func newPrompter() ports.Prompter {
	if assumeYes {
		return terminal.AlwaysYes{}
	}
	return terminal.NewSurveyPrompter(os.Stdin, os.Stdout, os.Stderr, !isTerminal(os.Stdin))
}

// newProgress draws on stderr when it is a terminal
func newProgress(ctx context.Context) ports.ProgressSink {
	if isTerminal(os.Stderr) {
		return terminal.NewProgressBar(ctx, os.Stderr)
	}
	return terminal.NewProgressBar(ctx, nil)
}

func loadScene(path string) (*scene.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no scene given, use --scene")
	}
	return scene.Load(appFs, path)
}

// lockScene holds an exclusive lock next to a scene document while a command
// reads, modifies and writes it back
func lockScene(path string) (func(), error) {
	lock := flock.New(path + ".lock")
	if locked, err := lock.TryLock(); err != nil {
		return nil, fmt.Errorf(`cannot acquire scene lock "%s": %w`, lock.Path(), err)
	} else if !locked {
		return nil, fmt.Errorf(`cannot acquire scene lock "%s": already locked by another dkanim process`, lock.Path())
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			appLog.Warnw("cannot release scene lock", "path", lock.Path(), "error", err)
		}
		if err := os.Remove(lock.Path()); err != nil {
			appLog.Warnw("cannot remove scene lock", "path", lock.Path(), "error", err)
		}
	}, nil
}
