package snapshot

import (
	"fmt"

	"github.com/drew/studydash/internal/model"
	"github.com/drew/studydash/internal/ui"
)

// Print renders the snapshot as a terminal report
func (s *Snapshot) Print(r *ui.Renderer) {
	r.Header("studydash snapshot",
		"Backend: "+s.Backend,
		"Group:   "+s.Group.Label(),
		"Taken:   "+s.Taken.Format("2006-01-02 15:04:05 MST"))

	r.Section("Endpoints")
	for _, o := range s.Outcomes {
		r.Outcome(o.Endpoint, o.Status, o.Records, o.Error)
	}
	r.EndSection()

	if s.ActiveInactive != nil && len(s.ActiveInactive.Groups) > 0 {
		r.Section("Active users")
		for _, g := range s.ActiveInactive.Groups {
			pair := s.ActiveInactive.ByGroup[g]
			r.Share(model.Group(g).Label(), pair.Active, pair.Total())
		}
		r.EndSection()
	}

	printDistribution(r, "Gender", s.Gender)
	printDistribution(r, "Age", s.Age)
	printDistribution(r, "Language", s.Language)

	if n := len(s.MessageStats); n > 0 {
		last := s.MessageStats[n-1]
		r.Section("Messages")
		r.Line("%s: %d from users, %d from the assistant", last.Date, last.UserCount, last.AssistantCount)
		r.EndSection()
	}

	ok, empty, failed := s.Counts()
	r.Summary(ok, empty, failed)
}

func printDistribution(r *ui.Renderer, title string, d model.Distribution) {
	if len(d) == 0 {
		return
	}
	total := d.Total()
	r.Section(fmt.Sprintf("%s (%d users)", title, total))
	for _, b := range d {
		r.Share(b.Label, b.Count, total)
	}
	r.EndSection()
}
