package charts

import (
	"context"
	"fmt"

	"github.com/drew/studydash/internal/model"
)

// Base canvas ids of the users page; a selected group appends its suffix
const (
	CanvasGender         = "genderChart"
	CanvasAge            = "ageChart"
	CanvasLanguage       = "languageChart"
	CanvasActiveInactive = "activeInactiveUsersChart"
)

var (
	genderPalette   = []string{"#cf6400", "#f7c048", "#ffce56"}
	languagePalette = []string{"#4caf50", "#ff9800", "#2196f3", "#9c27b0"}
)

// GroupRenderers returns the group-scoped renderers of the users page
func GroupRenderers() []Renderer {
	return []Renderer{Gender(), Age(), Language(), ActiveInactive()}
}

// Gender renders the gender share as a doughnut
func Gender() Renderer {
	return renderer{canvas: CanvasGender, scoped: true, build: func(ctx context.Context, src Source, group model.Group) (*Chart, error) {
		data, err := src.GenderDistribution(ctx, group)
		if err != nil {
			return nil, err
		}
		return shareDoughnut(data, "Gender Distribution", genderPalette)
	}}
}

// Language renders the language share as a doughnut
func Language() Renderer {
	return renderer{canvas: CanvasLanguage, scoped: true, build: func(ctx context.Context, src Source, group model.Group) (*Chart, error) {
		data, err := src.LanguageDistribution(ctx, group)
		if err != nil {
			return nil, err
		}
		return shareDoughnut(data, "Language Distribution", languagePalette)
	}}
}

func shareDoughnut(data model.Distribution, title string, palette []string) (*Chart, error) {
	if len(data) == 0 {
		return nil, ErrNoData
	}

	values := data.Counts()
	total := sum(values)
	colors := cycle(palette, len(values))

	tips := Tooltips{
		Title: make([]string, len(values)),
		Label: [][][]string{make([][]string, len(values))},
	}
	for i, b := range data {
		tips.Title[i] = title
		tips.Label[0][i] = []string{fmt.Sprintf("%s: %d (%s%%)", b.Label, b.Count, fixed(Percent(values[i], total), 1))}
	}

	return &Chart{
		Type:   Doughnut,
		Labels: data.Labels(),
		Datasets: []Dataset{{
			Data:        values,
			Colors:      colors,
			BorderColor: colors,
			BorderWidth: 3,
		}},
		Cutout:       "50%",
		LegendBottom: true,
		Tooltips:     tips,
	}, nil
}

// Age renders users per age range as a bar chart
func Age() Renderer {
	return renderer{canvas: CanvasAge, scoped: true, build: func(ctx context.Context, src Source, group model.Group) (*Chart, error) {
		data, err := src.AgeDistribution(ctx, group)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, ErrNoData
		}

		label := "Age Distribution - All Users"
		if !group.IsAll() {
			label = "Age Distribution - " + group.Label()
		}

		tips := Tooltips{
			Title: make([]string, len(data)),
			Label: [][][]string{make([][]string, len(data))},
		}
		for i, b := range data {
			tips.Title[i] = "Age Range: " + b.Label
			tips.Label[0][i] = []string{fmt.Sprintf("Users: %d", b.Count)}
		}

		return &Chart{
			Type:   Bar,
			Labels: data.Labels(),
			Datasets: []Dataset{{
				Label:       label,
				Data:        data.Counts(),
				Colors:      []string{brandOrange},
				BorderColor: []string{brandOrange},
				BorderWidth: 1,
			}},
			Axes:     Axes{XTitle: "Age Range", YTitle: "Number of Users"},
			Tooltips: tips,
		}, nil
	}}
}

// ActiveInactive renders the started/never-started share per group as a
// stacked percentage bar. A selected group shows only that group.
func ActiveInactive() Renderer {
	return renderer{canvas: CanvasActiveInactive, scoped: true, build: buildActiveInactive}
}

func buildActiveInactive(ctx context.Context, src Source, group model.Group) (*Chart, error) {
	data, err := src.ActiveInactiveUsers(ctx, group)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoData
	}

	keys := data.Groups
	if !group.IsAll() {
		if _, ok := data.ByGroup[string(group)]; !ok {
			return nil, fmt.Errorf("group %s: %w", group, ErrNoGroupData)
		}
		keys = []string{string(group)}
	}
	if len(keys) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(keys))
	active := make([]float64, len(keys))
	inactive := make([]float64, len(keys))
	pairs := make([]model.ActivePair, len(keys))
	for i, k := range keys {
		p := data.ByGroup[k]
		pairs[i] = p
		labels[i] = "Group " + k
		total := float64(p.Total())
		active[i] = Percent(float64(p.Active), total)
		inactive[i] = Percent(float64(p.Inactive), total)
	}

	datasets := []Dataset{
		{Label: `"Has started" Users`, Data: active, Colors: []string{"#008080"}, BorderColor: []string{"#008080"}, BorderWidth: 2},
		{Label: `"Never started" Users`, Data: inactive, Colors: []string{"#cccccc"}, BorderColor: []string{"#cccccc"}, BorderWidth: 2},
	}

	tips := Tooltips{
		Title:     make([]string, len(keys)),
		Label:     [][][]string{make([][]string, len(keys)), make([][]string, len(keys))},
		AfterBody: make([]string, len(keys)),
	}
	for i, p := range pairs {
		tips.Title[i] = labels[i]
		tips.Label[0][i] = []string{fmt.Sprintf("%s: %d (%s%%)", datasets[0].Label, p.Active, fixed(active[i], 2))}
		tips.Label[1][i] = []string{fmt.Sprintf("%s: %d (%s%%)", datasets[1].Label, p.Inactive, fixed(inactive[i], 2))}
		tips.AfterBody[i] = fmt.Sprintf("Total users: %d", p.Total())
	}

	return &Chart{
		Type:     Bar,
		Labels:   labels,
		Datasets: datasets,
		Axes:     Axes{XTitle: "Study Group", YTitle: "Percentage of Users (%)", Stacked: true, YMax: 100},
		Tooltips: tips,
	}, nil
}

func cycle(palette []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}
