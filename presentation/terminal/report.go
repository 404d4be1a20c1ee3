package terminal

import (
	"fmt"
	"io"
	"strings"

	"chatbot_ui_e2e/application/settings"
	"chatbot_ui_e2e/domain/entities"

	"github.com/fatih/color"
)

const suiteName = "SettingsTabTests"

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
)

// Reporter prints results in the unittest verbosity 2 layout.
type Reporter struct {
	out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// CaseStarted - prints the case header
func (r *Reporter) CaseStarted(c settings.Case) {
	fmt.Fprintf(r.out, "%s (%s.%s)\n", c.Name, suiteName, c.Name)
	if c.Doc != "" {
		fmt.Fprintf(r.out, "%s", c.Doc)
	}
	fmt.Fprint(r.out, " ... ")
}

// CaseFinished - prints the case outcome
func (r *Reporter) CaseFinished(result entities.CaseResult) {
	switch result.Status {
	case entities.CaseStatusOK:
		okColor.Fprintln(r.out, "ok")
	default:
		failColor.Fprintln(r.out, string(result.Status))
	}
}

// Summary - prints failure details and the totals line
func (r *Reporter) Summary(report *entities.Report) {
	for _, res := range report.Results {
		if res.Status != entities.CaseStatusFail && res.Status != entities.CaseStatusError {
			continue
		}
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, strings.Repeat("=", 70))
		failColor.Fprintf(r.out, "%s: %s (%s.%s)\n", res.Status, res.Name, suiteName, res.Name)
		fmt.Fprintln(r.out, strings.Repeat("-", 70))
		fmt.Fprintln(r.out, res.Err)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, strings.Repeat("-", 70))
	fmt.Fprintf(r.out, "Ran %d tests in %.3fs\n\n", report.Ran(), report.Duration.Seconds())

	var details []string
	if n := report.Count(entities.CaseStatusFail); n > 0 {
		details = append(details, fmt.Sprintf("failures=%d", n))
	}
	if n := report.Count(entities.CaseStatusError); n > 0 {
		details = append(details, fmt.Sprintf("errors=%d", n))
	}
	if n := report.Count(entities.CaseStatusSkipped); n > 0 {
		details = append(details, fmt.Sprintf("skipped=%d", n))
	}

	status := "OK"
	c := okColor
	if !report.OK() {
		status = "FAILED"
		c = failColor
	}
	if len(details) > 0 {
		status += " (" + strings.Join(details, ", ") + ")"
	}
	c.Fprintln(r.out, status)
}
