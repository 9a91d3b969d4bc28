package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dkanim-cli/pkg/config"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var configPrint bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the dkanim configuration file",
	Long: `Open the configuration file in your editor. The file is created with
default values when it does not exist yet.

The editor is taken from the "editor" setting, then $EDITOR, then vi.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configPrint, "path", false, "Print the config file path and exit")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configPrint {
		fmt.Println(configPath)
		return nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess("Created default config: " + configPath))
	}

	argv, err := editorCommand(appConfig.Editor, os.Getenv("EDITOR"))
	if err != nil {
		return err
	}

	fmt.Println(ui.FormatInfo("Opening config: " + configPath))

	c := exec.Command(argv[0], append(argv[1:], configPath)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// editorCommand splits the first non-empty editor setting into argv, so
// values like "code --wait" work
func editorCommand(configured, env string) ([]string, error) {
	editor := configured
	if editor == "" {
		editor = env
	}
	if editor == "" {
		editor = "vi"
	}
	argv, err := shlex.Split(editor)
	if err != nil {
		return nil, fmt.Errorf("invalid editor command %q: %w", editor, err)
	}
	if len(argv) == 0 {
		return []string{"vi"}, nil
	}
	return argv, nil
}
