package terminal

import (
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	surveyterm "github.com/AlecAivazis/survey/v2/terminal"

	"github.com/kamal-hamza/dkanim-cli/internal/core/ports"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

var (
	_ ports.Prompter = (*SurveyPrompter)(nil)
	_ ports.Prompter = AlwaysYes{}
)

// SurveyPrompter asks yes/no questions on the terminal.
// In non-interactive mode every question takes its default answer.
type SurveyPrompter struct {
	out            io.Writer
	stdio          survey.AskOpt
	nonInteractive bool
}

// NewSurveyPrompter creates a prompter over the given stdio streams
func NewSurveyPrompter(in surveyterm.FileReader, out surveyterm.FileWriter, errOut io.Writer, nonInteractive bool) *SurveyPrompter {
	return &SurveyPrompter{
		out:            out,
		stdio:          survey.WithStdio(in, out, errOut),
		nonInteractive: nonInteractive,
	}
}

// Confirm prints the title and message, then asks for a yes/no answer.
// An interrupted prompt counts as "no".
func (p *SurveyPrompter) Confirm(title, message string, defaultYes bool) bool {
	if p.nonInteractive {
		return defaultYes
	}

	fmt.Fprintln(p.out, ui.StyleWarning.Render(title))
	if message != "" {
		fmt.Fprintln(p.out, message)
	}

	answer := defaultYes
	err := survey.AskOne(&survey.Confirm{Message: "Proceed?", Default: defaultYes}, &answer, p.stdio)
	if errors.Is(err, surveyterm.InterruptErr) {
		return false
	}
	if err != nil {
		return defaultYes
	}
	return answer
}

// AlwaysYes accepts every confirmation, used by --yes
type AlwaysYes struct{}

func (AlwaysYes) Confirm(title, message string, defaultYes bool) bool {
	return true
}
