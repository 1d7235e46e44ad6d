package charts

import (
	"context"
	"fmt"

	"github.com/drew/studydash/internal/model"
)

// Canvas ids of the meals page
const (
	CanvasMealRetention    = "mealRetentionChart"
	CanvasLoggingFrequency = "loggingFrequencyChart"
	CanvasMealsPerDay      = "mealsPerDayChart"
	CanvasCohortRetention  = "cohortRetentionChart"
)

const brandOrange = "#de7012"

// MealsPage returns the renderers of the meals page
func MealsPage() []Renderer {
	return []Renderer{MealRetention(), LoggingFrequency(), MealsPerDay(), CohortRetention()}
}

// MealRetention renders meals logged per hour of day as a heat-mapped bar chart
func MealRetention() Renderer {
	return renderer{canvas: CanvasMealRetention, build: buildMealRetention}
}

func buildMealRetention(ctx context.Context, src Source, _ model.Group) (*Chart, error) {
	data, err := src.MealRetentionByHour(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(data))
	values := make([]float64, len(data))
	for i, d := range data {
		labels[i] = d.Hour
		values[i] = float64(d.MealCount)
	}
	top := maxOf(values)

	tips := Tooltips{
		Title:      make([]string, len(data)),
		Label:      [][][]string{make([][]string, len(data))},
		AfterLabel: [][]string{make([]string, len(data))},
	}
	for i, v := range values {
		tips.Title[i] = "Time: " + labels[i]
		tips.Label[0][i] = []string{
			"Meals logged: " + count(v),
			"Relative activity: " + fixed(Percent(v, top), 1) + "%",
		}
		tips.AfterLabel[0][i] = TimeOfDay(labels[i])
	}

	return &Chart{
		Type:   Bar,
		Labels: labels,
		Datasets: []Dataset{{
			Label:       "Meals Logged",
			Data:        values,
			Colors:      Intensity(values),
			BorderColor: []string{"#2c3e50"},
			BorderWidth: 1,
		}},
		Axes:     Axes{XTitle: "Hour of Day", YTitle: "Number of Meals Logged"},
		Tooltips: tips,
	}, nil
}

// LoggingFrequency renders meals logged per date with an alpha ramp
func LoggingFrequency() Renderer {
	return renderer{canvas: CanvasLoggingFrequency, build: buildLoggingFrequency}
}

func buildLoggingFrequency(ctx context.Context, src Source, _ model.Group) (*Chart, error) {
	data, err := src.LoggingFrequency(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(data))
	values := make([]float64, len(data))
	for i, d := range data {
		labels[i] = d.Date
		values[i] = float64(d.MealCount)
	}
	top := maxOf(values)

	tips := Tooltips{
		Title: make([]string, len(data)),
		Label: [][][]string{make([][]string, len(data))},
	}
	for i, v := range values {
		tips.Title[i] = "Date: " + labels[i]
		tips.Label[0][i] = []string{
			"Meals logged: " + count(v),
			"Relative activity: " + fixed(Percent(v, top), 1) + "%",
		}
	}

	return &Chart{
		Type:   Bar,
		Labels: labels,
		Datasets: []Dataset{{
			Label:       "Meals Logged",
			Data:        values,
			Colors:      Alpha(values),
			BorderColor: []string{brandOrange},
			BorderWidth: 1,
		}},
		Axes:     Axes{XTitle: "Date", YTitle: "Number of Meals Logged"},
		Tooltips: tips,
	}, nil
}

// MealsPerDay renders one line per study group over the union of dates
func MealsPerDay() Renderer {
	return renderer{canvas: CanvasMealsPerDay, build: buildMealsPerDay}
}

func buildMealsPerDay(ctx context.Context, src Source, _ model.Group) (*Chart, error) {
	data, err := src.MealsPerDay(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}

	points := make([]Point, len(data))
	for i, d := range data {
		points[i] = Point{Date: d.Date, Series: d.StudyGroup, Value: float64(d.MealCount)}
	}
	aligned := AlignByDate(nil, points)

	return groupLines(aligned, "Group %s", "meals", "Number of Meals Logged"), nil
}

// groupLines builds a line chart with one dataset per aligned series
func groupLines(aligned Aligned, labelFormat, unit, yTitle string) *Chart {
	datasets := make([]Dataset, len(aligned.Series))
	tips := Tooltips{
		Title:     make([]string, len(aligned.Dates)),
		Label:     make([][][]string, len(aligned.Series)),
		AfterBody: make([]string, len(aligned.Dates)),
	}

	for s, group := range aligned.Series {
		color := GroupColor(group)
		label := fmt.Sprintf(labelFormat, group)
		datasets[s] = Dataset{
			Label:       label,
			Data:        aligned.Values[s],
			Colors:      []string{color + "20"},
			BorderColor: []string{color},
			BorderWidth: 3,
			Tension:     0.4,
		}
		tips.Label[s] = make([][]string, len(aligned.Dates))
		for d, v := range aligned.Values[s] {
			tips.Label[s][d] = []string{fmt.Sprintf("%s: %s %s", label, count(v), unit)}
		}
	}

	for d, total := range aligned.DayTotals() {
		tips.Title[d] = "Date: " + aligned.Dates[d]
		tips.AfterBody[d] = fmt.Sprintf("Total for day: %s %s", count(total), unit)
	}

	return &Chart{
		Type:     Line,
		Labels:   aligned.Dates,
		Datasets: datasets,
		Axes:     Axes{XTitle: "Date", YTitle: yTitle},
		Tooltips: tips,
	}
}

// CohortRetention renders active users per date with retention and change
func CohortRetention() Renderer {
	return renderer{canvas: CanvasCohortRetention, build: buildCohortRetention}
}

func buildCohortRetention(ctx context.Context, src Source, _ model.Group) (*Chart, error) {
	data, err := src.CohortRetention(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(data))
	values := make([]float64, len(data))
	for i, d := range data {
		labels[i] = d.Date
		values[i] = float64(d.UserCount)
	}
	top := maxOf(values)

	tips := Tooltips{
		Title:      make([]string, len(data)),
		Label:      [][][]string{make([][]string, len(data))},
		AfterLabel: [][]string{make([]string, len(data))},
	}
	for i, v := range values {
		tips.Title[i] = "Date: " + labels[i]
		tips.Label[0][i] = []string{
			"Active users: " + count(v),
			"Retention rate: " + fixed(Percent(v, top), 1) + "%",
		}
		if delta, ok := Delta(values, i); ok {
			if delta >= 0 {
				tips.AfterLabel[0][i] = "📈 Change: +" + count(delta)
			} else {
				tips.AfterLabel[0][i] = "📉 Change: " + count(delta)
			}
		}
	}

	return &Chart{
		Type:   Line,
		Labels: labels,
		Datasets: []Dataset{{
			Label:       "Active Users",
			Data:        values,
			Colors:      []string{"rgba(222, 112, 18, 0.3)"},
			BorderColor: []string{brandOrange},
			BorderWidth: 3,
			Fill:        true,
			Tension:     0.4,
		}},
		Axes:     Axes{XTitle: "Date", YTitle: "Number of Active Users"},
		Tooltips: tips,
	}, nil
}
