package ui

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// CallSummary is the end-of-call report.
type CallSummary struct {
	Room     string
	Role     string
	Outcome  string
	Duration string
}

// RenderCallSummary prints the summary table after the call ends.
func RenderCallSummary(title string, summary CallSummary) {
	fmt.Println()
	fmt.Println(TitleStyle.Render(title))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Room", summary.Room},
		{"Role", summary.Role},
		{"Outcome", summary.Outcome},
		{"Duration", summary.Duration},
	})
	t.Render()
}
