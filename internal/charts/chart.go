// Package charts turns backend statistics into Chart.js configurations.
//
// Every tooltip line a chart can show is computed here from the fetched
// series, so hovering in the browser never needs another request.
package charts

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/drew/studydash/internal/model"
)

var (
	// ErrNoData means the backend returned an empty series
	ErrNoData = errors.New("no data available")
	// ErrNoGroupData means the active/inactive payload lacks the selected group
	ErrNoGroupData = errors.New("no data for selected group")
	// ErrCanvasMissing means the page has no canvas for a renderer
	ErrCanvasMissing = errors.New("canvas not found")
)

// Type is the Chart.js chart type
type Type string

const (
	Bar      Type = "bar"
	Line     Type = "line"
	Doughnut Type = "doughnut"
)

// Chart is one renderable chart bound to a canvas id
type Chart struct {
	ID       string
	Type     Type
	Labels   []string
	Datasets []Dataset
	Axes     Axes
	// Cutout is the doughnut hole size, e.g. "50%"
	Cutout string
	// LegendBottom places the legend under the chart
	LegendBottom bool
	Tooltips     Tooltips
}

// Dataset is one series of a chart
type Dataset struct {
	Label string    `json:"label,omitempty"`
	Data  []float64 `json:"data"`
	// Colors holds one colour for the whole series or one per point
	Colors      []string `json:"-"`
	BorderColor []string `json:"-"`
	BorderWidth int      `json:"borderWidth,omitempty"`
	Fill        bool     `json:"fill"`
	Tension     float64  `json:"tension,omitempty"`
}

// Axes holds the cartesian axis settings; ignored for doughnuts
type Axes struct {
	XTitle  string
	YTitle  string
	Stacked bool
	// YMax caps the y axis when non-zero
	YMax float64
}

// Tooltips holds the pre-computed hover text, indexed by point and dataset
type Tooltips struct {
	// Title per point
	Title []string `json:"title,omitempty"`
	// Label lines per dataset per point
	Label [][][]string `json:"label,omitempty"`
	// AfterLabel per dataset per point, empty means none
	AfterLabel [][]string `json:"afterLabel,omitempty"`
	// AfterBody per point
	AfterBody []string `json:"afterBody,omitempty"`
}

// TitleAt returns the tooltip title of point i
func (t Tooltips) TitleAt(i int) string {
	if i < 0 || i >= len(t.Title) {
		return ""
	}
	return t.Title[i]
}

// LabelAt returns the tooltip lines of dataset ds at point i
func (t Tooltips) LabelAt(ds, i int) []string {
	if ds < 0 || ds >= len(t.Label) || i < 0 || i >= len(t.Label[ds]) {
		return nil
	}
	return t.Label[ds][i]
}

// AfterLabelAt returns the line shown after the label of dataset ds at point i
func (t Tooltips) AfterLabelAt(ds, i int) string {
	if ds < 0 || ds >= len(t.AfterLabel) || i < 0 || i >= len(t.AfterLabel[ds]) {
		return ""
	}
	return t.AfterLabel[ds][i]
}

// AfterBodyAt returns the footer line of point i
func (t Tooltips) AfterBodyAt(i int) string {
	if i < 0 || i >= len(t.AfterBody) {
		return ""
	}
	return t.AfterBody[i]
}

func colorValue(colors []string) any {
	switch len(colors) {
	case 0:
		return nil
	case 1:
		return colors[0]
	default:
		return colors
	}
}

// MarshalJSON emits the dataset in Chart.js form
func (d Dataset) MarshalJSON() ([]byte, error) {
	type plain Dataset
	return json.Marshal(struct {
		plain
		BackgroundColor any `json:"backgroundColor,omitempty"`
		Border          any `json:"borderColor,omitempty"`
	}{
		plain:           plain(d),
		BackgroundColor: colorValue(d.Colors),
		Border:          colorValue(d.BorderColor),
	})
}

// MarshalJSON emits a Chart.js config. The tooltips live beside the config
// and are wired to tooltip callbacks by the page script.
func (c Chart) MarshalJSON() ([]byte, error) {
	legend := map[string]any{
		"labels": map[string]any{"usePointStyle": true, "pointStyle": "circle"},
	}
	if c.LegendBottom {
		legend["position"] = "bottom"
	}

	options := map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
		"interaction":         map[string]any{"intersect": false, "mode": "index"},
		"plugins":             map[string]any{"legend": legend},
	}

	if c.Type == Doughnut {
		options["interaction"] = map[string]any{"intersect": false}
		if c.Cutout != "" {
			options["cutout"] = c.Cutout
		}
	} else {
		x := map[string]any{"stacked": c.Axes.Stacked}
		if c.Axes.XTitle != "" {
			x["title"] = map[string]any{"display": true, "text": c.Axes.XTitle}
		}
		y := map[string]any{"stacked": c.Axes.Stacked, "beginAtZero": true}
		if c.Axes.YTitle != "" {
			y["title"] = map[string]any{"display": true, "text": c.Axes.YTitle}
		}
		if c.Axes.YMax != 0 {
			y["max"] = c.Axes.YMax
		}
		options["scales"] = map[string]any{"x": x, "y": y}
	}

	datasets := c.Datasets
	if datasets == nil {
		datasets = []Dataset{}
	}
	labels := c.Labels
	if labels == nil {
		labels = []string{}
	}

	return json.Marshal(map[string]any{
		"id":   c.ID,
		"type": c.Type,
		"data": map[string]any{
			"labels":   labels,
			"datasets": datasets,
		},
		"options":  options,
		"tooltips": c.Tooltips,
	})
}

// Source is the subset of the backend client the renderers read from
type Source interface {
	MealRetentionByHour(ctx context.Context) ([]model.HourCount, error)
	LoggingFrequency(ctx context.Context) ([]model.DateCount, error)
	MealsPerDay(ctx context.Context) ([]model.GroupDateCount, error)
	CohortRetention(ctx context.Context) ([]model.DateUsers, error)
	MessageStats(ctx context.Context) ([]model.MessageDay, error)
	MessagesPerDayAndGroup(ctx context.Context) (*model.GroupMessages, error)
	MessagesPerHour(ctx context.Context) ([]model.HourUsers, error)
	ActiveInactiveUsers(ctx context.Context, group model.Group) (*model.ActiveInactive, error)
	GenderDistribution(ctx context.Context, group model.Group) (model.Distribution, error)
	AgeDistribution(ctx context.Context, group model.Group) (model.Distribution, error)
	LanguageDistribution(ctx context.Context, group model.Group) (model.Distribution, error)
}

// Renderer fetches one statistic and builds its chart
type Renderer interface {
	// Canvas is the base canvas id
	Canvas() string
	Render(ctx context.Context, src Source, group model.Group) (*Chart, error)
}

// GroupScoped is implemented by renderers whose canvas id carries the
// selected group's suffix
type GroupScoped interface {
	GroupScoped() bool
}

// CanvasID returns the canvas a renderer draws on for group
func CanvasID(r Renderer, group model.Group) string {
	if gs, ok := r.(GroupScoped); ok && gs.GroupScoped() {
		return r.Canvas() + group.Suffix()
	}
	return r.Canvas()
}

// renderer adapts a build function to Renderer
type renderer struct {
	canvas string
	scoped bool
	build  func(ctx context.Context, src Source, group model.Group) (*Chart, error)
}

func (r renderer) Canvas() string {
	return r.canvas
}

func (r renderer) GroupScoped() bool {
	return r.scoped
}

func (r renderer) Render(ctx context.Context, src Source, group model.Group) (*Chart, error) {
	if !r.scoped {
		group = model.GroupAll
	}
	chart, err := r.build(ctx, src, group)
	if err != nil {
		return nil, err
	}
	chart.ID = CanvasID(r, group)
	return chart, nil
}
