package console

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"log-analyzer/application"
	"log-analyzer/domain"
)

func TestConsoleUI_RenderReport(t *testing.T) {
	var out, errOut bytes.Buffer
	ui := &ConsoleUI{out: &out, err: &errOut, rows: 2}

	var records []domain.LogRecord
	for i := 0; i < 5; i++ {
		records = append(records, domain.LogRecord{Request: fmt.Sprintf("/p%d", i), RequestTime: float64(i + 1)})
	}

	ui.Init(100)
	ui.Update(50)
	ui.Close()

	ui.RenderReport(application.RunResult{
		State:       application.StateSucceeded,
		ReportPath:  "reports/report-2017-06-30.html",
		TotalLines:  10,
		FailedLines: 5,
		Paths:       5,
		Stats:       domain.Aggregate(records),
	})

	s := out.String()
	assert.Contains(t, s, "reports/report-2017-06-30.html")
	assert.Contains(t, s, "error rate 50.00%")
	assert.Contains(t, s, "/p4")
	assert.Contains(t, s, "/p3")
	assert.NotContains(t, s, "/p0")
}

func TestConsoleUI_NoRows(t *testing.T) {
	var out bytes.Buffer
	ui := &ConsoleUI{out: &out, err: &out, rows: 10}

	ui.Update(1)
	ui.RenderReport(application.RunResult{State: application.StateSucceeded})
	assert.Contains(t, out.String(), "0 total")
}
