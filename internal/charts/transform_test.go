package charts

import (
	"reflect"
	"testing"
)

func TestIntensity(t *testing.T) {
	got := Intensity([]float64{100, 81, 61, 41, 21, 20, 0})
	want := []string{
		"rgba(220, 20, 60, 0.8)",
		"rgba(220, 20, 60, 0.8)",
		"rgba(255, 140, 0, 0.7)",
		"rgba(255, 215, 0, 0.6)",
		"rgba(135, 206, 250, 0.5)",
		"rgba(211, 211, 211, 0.4)",
		"rgba(211, 211, 211, 0.4)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Intensity() = %v, want %v", got, want)
	}

	for _, c := range Intensity([]float64{0, 0}) {
		if c != "rgba(211, 211, 211, 0.4)" {
			t.Errorf("Expected lowest tier for all-zero series, got %s", c)
		}
	}
}

func TestAlpha(t *testing.T) {
	got := Alpha([]float64{10, 0})
	want := []string{"rgba(222, 112, 18, 0.8)", "rgba(222, 112, 18, 0.3)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Alpha() = %v, want %v", got, want)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total, want float64
	}{
		{1, 4, 25},
		{0, 0, 0},
		{5, 0, 0},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.part, tt.total); got != tt.want {
			t.Errorf("Percent(%v, %v) = %v, want %v", tt.part, tt.total, got, tt.want)
		}
	}
}

func TestDelta(t *testing.T) {
	series := []float64{5, 8, 3}
	if _, ok := Delta(series, 0); ok {
		t.Error("Expected no delta for first point")
	}
	if d, ok := Delta(series, 1); !ok || d != 3 {
		t.Errorf("Expected +3, got %v (%v)", d, ok)
	}
	if d, ok := Delta(series, 2); !ok || d != -5 {
		t.Errorf("Expected -5, got %v (%v)", d, ok)
	}
	if _, ok := Delta(series, 3); ok {
		t.Error("Expected no delta out of range")
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour string
		want string
	}{
		{"06:00", "🌅 Morning"},
		{"11:00", "🌅 Morning"},
		{"12:00", "☀️ Afternoon"},
		{"16", "☀️ Afternoon"},
		{"17:00", "🌆 Evening"},
		{"20:00", "🌆 Evening"},
		{"21:00", "🌙 Night"},
		{"05:00", "🌙 Night"},
		{"noon", "🌙 Night"},
	}
	for _, tt := range tests {
		t.Run(tt.hour, func(t *testing.T) {
			if got := TimeOfDay(tt.hour); got != tt.want {
				t.Errorf("TimeOfDay(%q) = %q, want %q", tt.hour, got, tt.want)
			}
		})
	}
}

func TestGroupColor(t *testing.T) {
	if GroupColor("2") != "#28a745" {
		t.Errorf("Unexpected colour for group 2: %s", GroupColor("2"))
	}
	if GroupColor("9") != "#cccccc" {
		t.Errorf("Expected fallback colour, got %s", GroupColor("9"))
	}
}

func TestAlignByDate(t *testing.T) {
	points := []Point{
		{Date: "2024-01-05", Series: "1", Value: 4},
		{Date: "2024-01-04", Series: "3", Value: 2},
		{Date: "2024-01-04", Series: "1", Value: 1},
	}

	got := AlignByDate(nil, points)

	if !reflect.DeepEqual(got.Dates, []string{"2024-01-04", "2024-01-05"}) {
		t.Errorf("Expected sorted date union, got %v", got.Dates)
	}
	if !reflect.DeepEqual(got.Series, []string{"1", "3"}) {
		t.Errorf("Expected series in first-seen order, got %v", got.Series)
	}
	if !reflect.DeepEqual(got.Values[1], []float64{2, 0}) {
		t.Errorf("Expected group 3 zero-filled on 2024-01-05, got %v", got.Values[1])
	}
	if !reflect.DeepEqual(got.DayTotals(), []float64{3, 4}) {
		t.Errorf("Unexpected day totals %v", got.DayTotals())
	}

	ordered := AlignByDate([]string{"2", "1"}, points)
	if !reflect.DeepEqual(ordered.Series, []string{"2", "1", "3"}) {
		t.Errorf("Expected explicit order first, got %v", ordered.Series)
	}
	if !reflect.DeepEqual(ordered.Values[0], []float64{0, 0}) {
		t.Errorf("Expected empty series zero-filled, got %v", ordered.Values[0])
	}
}
