package console

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"

	"log-analyzer/application"
	"log-analyzer/infrastructure/report"
)

// ConsoleUI shows parsing progress and a short summary of the top paths.
type ConsoleUI struct {
	bar  *progressbar.ProgressBar
	out  io.Writer
	err  io.Writer
	rows int
}

// NewConsoleUI prints at most rows paths in the summary table.
func NewConsoleUI(rows int) *ConsoleUI {
	return &ConsoleUI{out: os.Stdout, err: os.Stderr, rows: rows}
}

func (c *ConsoleUI) Init(total int) {
	c.bar = progressbar.NewOptions(
		total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription("[1/2 PARSING LOG]"),
		progressbar.OptionSetWriter(c.err),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (c *ConsoleUI) Update(current int) {
	if c.bar != nil {
		c.bar.Set(current)
	}
}

func (c *ConsoleUI) RenderReport(result application.RunResult) {
	fmt.Fprintf(c.out, "\n[2/2 REPORT READY] %s\n", result.ReportPath)
	fmt.Fprintf(c.out, "Lines: %d total, %d parsed, %d failed (error rate %.2f%%), %d distinct paths\n",
		result.TotalLines, result.ParsedLines(), result.FailedLines, result.ErrorRate()*100, result.Paths)

	if len(result.Stats) == 0 || c.rows <= 0 {
		return
	}

	rows := report.Rows(result.Stats)
	if len(rows) > c.rows {
		rows = rows[:c.rows]
	}

	t := report.Table(rows)
	t.SetOutputMirror(c.out)
	t.SetTitle("Slowest paths by total time")
	t.SetStyle(table.StyleLight)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 60},
	})
	t.Render()
}

func (c *ConsoleUI) Close() {
	if c.bar != nil {
		c.bar.Finish()
	}
}
