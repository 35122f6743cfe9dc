package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"log-analyzer/domain"
)

const (
	// Precision is the number of decimals every float in a report carries.
	Precision = 3

	Placeholder = "$table_json"
	dateLayout  = "2006-01-02"
)

// Row is one entry of the report table, in the shape report.html expects.
type Row struct {
	URL       string  `json:"url"`
	Count     int     `json:"count"`
	CountPerc float64 `json:"count_perc"`
	TimeSum   float64 `json:"time_sum"`
	TimePerc  float64 `json:"time_perc"`
	TimeAvg   float64 `json:"time_avg"`
	TimeMax   float64 `json:"time_max"`
	TimeMin   float64 `json:"time_min"`
	TimeMed   float64 `json:"time_med"`
}

// Rows converts stats into report rows, largest total time first.
func Rows(stats []domain.PathStats) []Row {
	sorted := domain.SortByTimeSumDesc(stats)
	rows := make([]Row, 0, len(sorted))
	for _, s := range sorted {
		r := s.Rounded(Precision)
		rows = append(rows, Row{
			URL:       r.URL,
			Count:     r.Count,
			CountPerc: round(s.CountShare * 100),
			TimeSum:   r.TimeSum,
			TimePerc:  round(s.TimeShare * 100),
			TimeAvg:   r.TimeAvg,
			TimeMax:   r.TimeMax,
			TimeMin:   r.TimeMin,
			TimeMed:   r.TimeMedian,
		})
	}
	return rows
}

func round(v float64) float64 {
	p := math.Pow10(Precision)
	return math.Round(v*p) / p
}

// HTMLRenderer writes report-YYYY-MM-DD.html files into Dir.
type HTMLRenderer struct {
	Dir string
	// Template, when set, is a file whose $table_json placeholder is replaced
	// by the rows as a JSON array.
	Template string
}

func NewHTMLRenderer(dir, template string) *HTMLRenderer {
	return &HTMLRenderer{Dir: dir, Template: template}
}

// Path returns the report file name for a log date.
func (r *HTMLRenderer) Path(date time.Time) string {
	return filepath.Join(r.Dir, "report-"+date.Format(dateLayout)+".html")
}

func (r *HTMLRenderer) Exists(date time.Time) (bool, error) {
	_, err := os.Stat(r.Path(date))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (r *HTMLRenderer) Render(ctx context.Context, date time.Time, stats []domain.PathStats) (string, error) {
	rows := Rows(stats)

	var (
		body []byte
		err  error
	)
	if r.Template != "" {
		body, err = r.fromTemplate(rows)
	} else {
		body = []byte(standalonePage(date, rows))
	}
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", r.Dir, err)
	}
	path := r.Path(date)
	if err := writeAtomic(path, body); err != nil {
		return "", err
	}
	return path, nil
}

func (r *HTMLRenderer) fromTemplate(rows []Row) ([]byte, error) {
	tpl, err := os.ReadFile(r.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to read report template: %w", err)
	}
	if !bytes.Contains(tpl, []byte(Placeholder)) {
		return nil, fmt.Errorf("report template %s has no %s placeholder", r.Template, Placeholder)
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report rows: %w", err)
	}
	return bytes.ReplaceAll(tpl, []byte(Placeholder), data), nil
}

// Table builds the go-pretty table shared by the HTML page and the console.
func Table(rows []Row) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"URL", "Count", "Count %", "Time sum", "Time %", "Time avg", "Time max", "Time min", "Time med"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.URL, row.Count, row.CountPerc, row.TimeSum, row.TimePerc,
			row.TimeAvg, row.TimeMax, row.TimeMin, row.TimeMed,
		})
	}
	return t
}

func standalonePage(date time.Time, rows []Row) string {
	t := Table(rows)
	t.Style().HTML.CSSClass = "report"

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>rbui log analysis report %s</title>\n", date.Format(dateLayout))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(t.RenderHTML())
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// writeAtomic writes through a temporary file so readers never see a
// partial report.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
