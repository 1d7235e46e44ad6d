package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Heat-map tiers from hottest to coldest
var intensityColors = []string{
	"rgba(220, 20, 60, 0.8)",   // crimson
	"rgba(255, 140, 0, 0.7)",   // orange
	"rgba(255, 215, 0, 0.6)",   // gold
	"rgba(135, 206, 250, 0.5)", // light sky blue
	"rgba(211, 211, 211, 0.4)", // light grey
}

// Intensity colours each value by its ratio to the series max.
// An all-zero series gets the lowest tier throughout.
func Intensity(values []float64) []string {
	top := maxOf(values)
	out := make([]string, len(values))
	for i, v := range values {
		ratio := 0.0
		if top > 0 {
			ratio = v / top
		}
		switch {
		case ratio > 0.8:
			out[i] = intensityColors[0]
		case ratio > 0.6:
			out[i] = intensityColors[1]
		case ratio > 0.4:
			out[i] = intensityColors[2]
		case ratio > 0.2:
			out[i] = intensityColors[3]
		default:
			out[i] = intensityColors[4]
		}
	}
	return out
}

// Alpha shades each value with the brand orange, alpha 0.3 + 0.5*ratio
func Alpha(values []float64) []string {
	top := maxOf(values)
	out := make([]string, len(values))
	for i, v := range values {
		ratio := 0.0
		if top > 0 {
			ratio = v / top
		}
		alpha := math.Round((0.3+ratio*0.5)*1000) / 1000
		out[i] = fmt.Sprintf("rgba(222, 112, 18, %s)", strconv.FormatFloat(alpha, 'f', -1, 64))
	}
	return out
}

// Percent returns part as a percentage of total, 0 when total is 0
func Percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// Delta returns the change of point i against point i-1. ok is false for
// the first point.
func Delta(series []float64, i int) (delta float64, ok bool) {
	if i <= 0 || i >= len(series) {
		return 0, false
	}
	return series[i] - series[i-1], true
}

// TimeOfDay names the band of an hour label such as "07:00" or "7"
func TimeOfDay(hour string) string {
	h, err := strconv.Atoi(strings.TrimSpace(strings.SplitN(hour, ":", 2)[0]))
	switch {
	case err != nil:
		return "🌙 Night"
	case h >= 6 && h < 12:
		return "🌅 Morning"
	case h >= 12 && h < 17:
		return "☀️ Afternoon"
	case h >= 17 && h < 21:
		return "🌆 Evening"
	default:
		return "🌙 Night"
	}
}

var groupColors = map[string]string{
	"0": "#6c757d",
	"1": "#17a2b8",
	"2": "#28a745",
	"3": "#7100b3",
}

// GroupColor returns the line colour of a study group
func GroupColor(group string) string {
	if c, ok := groupColors[group]; ok {
		return c
	}
	return "#cccccc"
}

// Point is one value of one series on one date
type Point struct {
	Date   string
	Series string
	Value  float64
}

// Aligned is a set of series sharing one date axis
type Aligned struct {
	Dates  []string
	Series []string
	// Values[s][d] is series s on date d, 0 when the series has no record
	Values [][]float64
}

// AlignByDate left-joins every series onto the sorted union of dates.
// Series follow order, then any series only seen in points, in order of
// first appearance.
func AlignByDate(order []string, points []Point) Aligned {
	seriesIdx := map[string]int{}
	var series []string
	addSeries := func(s string) {
		if _, ok := seriesIdx[s]; !ok {
			seriesIdx[s] = len(series)
			series = append(series, s)
		}
	}
	for _, s := range order {
		addSeries(s)
	}

	dateSet := map[string]struct{}{}
	for _, p := range points {
		addSeries(p.Series)
		dateSet[p.Date] = struct{}{}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	dateIdx := make(map[string]int, len(dates))
	for i, d := range dates {
		dateIdx[d] = i
	}

	values := make([][]float64, len(series))
	for i := range values {
		values[i] = make([]float64, len(dates))
	}
	for _, p := range points {
		values[seriesIdx[p.Series]][dateIdx[p.Date]] += p.Value
	}

	return Aligned{Dates: dates, Series: series, Values: values}
}

// DayTotals sums every series per date
func (a Aligned) DayTotals() []float64 {
	totals := make([]float64, len(a.Dates))
	for _, vals := range a.Values {
		for i, v := range vals {
			totals[i] += v
		}
	}
	return totals
}

func maxOf(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		if v > top {
			top = v
		}
	}
	return top
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// fixed formats v with n decimals the way the chart library does
func fixed(v float64, n int) string {
	return strconv.FormatFloat(v, 'f', n, 64)
}

// count formats a whole-number value
func count(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
