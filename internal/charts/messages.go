package charts

import (
	"context"
	"fmt"

	"github.com/drew/studydash/internal/model"
)

// Canvas ids of the messages page
const (
	CanvasMessageStats       = "messageChart"
	CanvasGroupMessages      = "studyGroupMessagesChart"
	CanvasUserMessagesByHour = "userMessagesChart"
)

// MessagesPage returns the renderers of the messages page
func MessagesPage() []Renderer {
	return []Renderer{MessageStats(), GroupMessages(), UserMessagesPerHour()}
}

// MessageStats renders assistant and user messages per date
func MessageStats() Renderer {
	return renderer{canvas: CanvasMessageStats, build: buildMessageStats}
}

func buildMessageStats(ctx context.Context, src Source, _ model.Group) (*Chart, error) {
	data, err := src.MessageStats(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(data))
	assistant := make([]float64, len(data))
	user := make([]float64, len(data))
	for i, d := range data {
		labels[i] = d.Date
		assistant[i] = float64(d.AssistantCount)
		user[i] = float64(d.UserCount)
	}

	datasets := []Dataset{
		{Label: "Assistant Messages", Data: assistant, Colors: []string{"#683b0020"}, BorderColor: []string{"#683b00"}, BorderWidth: 3, Tension: 0.4},
		{Label: "User Messages", Data: user, Colors: []string{"#de701220"}, BorderColor: []string{brandOrange}, BorderWidth: 3, Tension: 0.4},
	}

	tips := Tooltips{
		Title:     make([]string, len(data)),
		Label:     make([][][]string, len(datasets)),
		AfterBody: make([]string, len(data)),
	}
	for s, ds := range datasets {
		tips.Label[s] = make([][]string, len(data))
		for i, v := range ds.Data {
			tips.Label[s][i] = []string{fmt.Sprintf("%s: %s messages", ds.Label, count(v))}
		}
	}
	for i := range data {
		tips.Title[i] = "Date: " + labels[i]
		tips.AfterBody[i] = fmt.Sprintf("Total for day: %s messages", count(assistant[i]+user[i]))
	}

	return &Chart{
		Type:     Line,
		Labels:   labels,
		Datasets: datasets,
		Axes:     Axes{XTitle: "Date", YTitle: "Message Count"},
		Tooltips: tips,
	}, nil
}

// GroupMessages renders user messages per date, one line per study group
func GroupMessages() Renderer {
	return renderer{canvas: CanvasGroupMessages, build: buildGroupMessages}
}

func buildGroupMessages(ctx context.Context, src Source, _ model.Group) (*Chart, error) {
	data, err := src.MessagesPerDayAndGroup(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil || len(data.Groups) == 0 {
		return nil, ErrNoData
	}

	var points []Point
	for _, group := range data.Groups {
		for _, d := range data.ByGroup[group] {
			points = append(points, Point{Date: d.Date, Series: group, Value: float64(d.UserCount)})
		}
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}
	aligned := AlignByDate(data.Groups, points)

	return groupLines(aligned, "Study Group %s", "messages", "Message Count"), nil
}

// UserMessagesPerHour renders user messages per hour of day
func UserMessagesPerHour() Renderer {
	return renderer{canvas: CanvasUserMessagesByHour, build: buildUserMessagesPerHour}
}

func buildUserMessagesPerHour(ctx context.Context, src Source, _ model.Group) (*Chart, error) {
	data, err := src.MessagesPerHour(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}

	const label = "User Messages per Hour"
	labels := make([]string, len(data))
	values := make([]float64, len(data))
	tips := Tooltips{
		Title: make([]string, len(data)),
		Label: [][][]string{make([][]string, len(data))},
	}
	for i, d := range data {
		labels[i] = d.Hour
		values[i] = float64(d.UserCount)
		tips.Title[i] = "Hour: " + d.Hour + ":00"
		tips.Label[0][i] = []string{fmt.Sprintf("%s: %d messages", label, d.UserCount)}
	}

	return &Chart{
		Type:   Bar,
		Labels: labels,
		Datasets: []Dataset{{
			Label:       label,
			Data:        values,
			Colors:      []string{brandOrange},
			BorderColor: []string{brandOrange},
			BorderWidth: 1,
		}},
		Axes:     Axes{XTitle: "Hour of the Day", YTitle: "Message Count"},
		Tooltips: tips,
	}, nil
}
