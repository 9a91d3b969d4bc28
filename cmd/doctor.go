package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dkanim-cli/pkg/animfile"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your dkanim setup",
	Long: `Diagnose issues with your dkanim setup.

Checks for:
  - Configuration file existence and validity
  - The configured editor
  - The default input file and output directory
  - Clipboard and terminal support`,
	Args: cobra.NoArgs,
	Run:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println(ui.FormatTitle("dkanim Doctor"))
	fmt.Println()

	checkStep("Configuration File", func() error {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults in use, run 'dkanim config' to create it)", configPath)
		}
		return nil
	})

	checkStep("Configuration Values", appConfig.Validate)

	checkStep("Editor", func() error {
		argv, err := editorCommand(appConfig.Editor, os.Getenv("EDITOR"))
		if err != nil {
			return err
		}
		if _, err := exec.LookPath(argv[0]); err != nil {
			return fmt.Errorf("%s not found in PATH", argv[0])
		}
		return nil
	})

	checkStep("Default Input File", func() error {
		return checkAnimFile(appFs, appConfig.Transfer().InputFile)
	})

	checkStep("Output Directory", func() error {
		dir := filepath.Dir(appConfig.OutputFile)
		if ok, _ := afero.DirExists(appFs, dir); !ok {
			return fmt.Errorf("%s does not exist", dir)
		}
		return nil
	})

	checkStep("Clipboard", func() error {
		if clipboard.Unsupported {
			return fmt.Errorf("not available ('channels --copy' will fail)")
		}
		return nil
	})

	checkStep("Interactive Terminal", func() error {
		if !isTerminal(os.Stdin) {
			return fmt.Errorf("stdin is not a terminal (confirmations take their default answer)")
		}
		return nil
	})
}

// checkAnimFile verifies path exists and holds at least one record header
func checkAnimFile(fs afero.Fs, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("%s not found", path)
	}
	defer f.Close()

	stats, err := animfile.Stat(f)
	if err != nil {
		return err
	}
	if stats.Records == 0 {
		return fmt.Errorf("%s has no records", path)
	}
	return nil
}

// checkStep runs a check function and prints the result
func checkStep(name string, check func() error) {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.StyleSuccess.Render("✔"), name)
	} else {
		fmt.Printf("%s %s\n", ui.StyleError.Render("✘"), name)
		fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	}
}
