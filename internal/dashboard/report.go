package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/drew/studydash/assets"
	"github.com/drew/studydash/internal/charts"
	"github.com/drew/studydash/internal/config"
	"github.com/drew/studydash/internal/logging"
	"github.com/drew/studydash/internal/model"
)

// ReportSection is one page of the static report
type ReportSection struct {
	ID       string
	Title    string
	Canvases []string
}

type reportBody struct {
	Generated time.Time
	Backend   string
	Sections  []ReportSection
	Failed    []string
}

// ReportResult summarises a generated report
type ReportResult struct {
	Path     string
	Rendered int
	Failed   []string
}

type reportPage struct {
	id        string
	title     string
	renderers []charts.Renderer
}

func reportPages() []reportPage {
	return []reportPage{
		{id: "meals", title: "Meals", renderers: charts.MealsPage()},
		{id: "messages", title: "Messages", renderers: charts.MessagesPage()},
		{id: "users", title: "Users", renderers: charts.GroupRenderers()},
	}
}

// GenerateReport renders every chart for all groups into one self-contained
// HTML file at path. Charts that fail are listed in the report and the
// result; they do not fail the report.
func GenerateReport(ctx context.Context, cfg config.Config, src charts.Source, path string, now time.Time, logger *slog.Logger) (*ReportResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	start, known := ParseStart(cfg.Server.StudyStart)
	data := pageData{
		Title:     "Study Report",
		Timer:     TimerText(start, known, now),
		Charts:    map[string]*charts.Chart{},
		Confirm:   ConfirmMessages(),
		InlineCSS: template.CSS(assets.DashboardCSS),
		InlineJS:  template.JS(assets.DashboardJS),
	}
	if known {
		data.StartDate = start.Format(time.RFC3339)
	}

	body := reportBody{Generated: now, Backend: cfg.Server.Backend}
	for _, p := range reportPages() {
		section := ReportSection{ID: p.id, Title: p.title}
		data.Anchors = append(data.Anchors, Anchor{Target: p.id, Label: p.title})
		for _, r := range charts.ComposeResults(ctx, src, p.renderers, model.GroupAll, nil, logger) {
			section.Canvases = append(section.Canvases, r.Canvas)
			if r.Err != nil {
				body.Failed = append(body.Failed, r.Canvas)
				continue
			}
			data.Charts[r.Canvas] = r.Chart
		}
		body.Sections = append(body.Sections, section)
	}
	sort.Strings(body.Failed)
	data.Body = body

	var buf bytes.Buffer
	if err := pages[pageReport].Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &ReportResult{Path: path, Rendered: len(data.Charts), Failed: body.Failed}, nil
}
