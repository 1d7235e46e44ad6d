// Package snapshot fetches every statistic once, for printing or export.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/drew/studydash/internal/charts"
	"github.com/drew/studydash/internal/model"
	"github.com/drew/studydash/internal/stats"
	"github.com/drew/studydash/internal/ui"
)

// Outcome is the result of fetching one endpoint
type Outcome struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Status   string `json:"status" yaml:"status"`
	Records  int    `json:"records" yaml:"records"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Snapshot holds the validated records of every endpoint
type Snapshot struct {
	Backend string      `json:"backend" yaml:"backend"`
	Group   model.Group `json:"group" yaml:"group"`
	Taken   time.Time   `json:"taken" yaml:"taken"`

	MealRetention    []model.HourCount      `json:"meal_retention_by_hour,omitempty" yaml:"meal_retention_by_hour,omitempty"`
	LoggingFrequency []model.DateCount      `json:"logging_frequency,omitempty" yaml:"logging_frequency,omitempty"`
	MealsPerDay      []model.GroupDateCount `json:"meals_per_day,omitempty" yaml:"meals_per_day,omitempty"`
	CohortRetention  []model.DateUsers      `json:"cohort_retention,omitempty" yaml:"cohort_retention,omitempty"`
	MessageStats     []model.MessageDay     `json:"message_stats,omitempty" yaml:"message_stats,omitempty"`
	GroupMessages    *model.GroupMessages   `json:"messages_per_group,omitempty" yaml:"messages_per_group,omitempty"`
	MessagesPerHour  []model.HourUsers      `json:"messages_per_hour,omitempty" yaml:"messages_per_hour,omitempty"`
	ActiveInactive   *model.ActiveInactive  `json:"active_inactive,omitempty" yaml:"active_inactive,omitempty"`
	Gender           model.Distribution     `json:"gender,omitempty" yaml:"gender,omitempty"`
	Age              model.Distribution     `json:"age,omitempty" yaml:"age,omitempty"`
	Language         model.Distribution     `json:"language,omitempty" yaml:"language,omitempty"`

	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}

type fetch struct {
	endpoint string
	run      func(ctx context.Context) (int, error)
}

// Take fetches every endpoint concurrently. A failing endpoint is recorded
// in Outcomes and never stops the others.
func Take(ctx context.Context, src charts.Source, backend string, group model.Group, now time.Time) *Snapshot {
	s := &Snapshot{Backend: backend, Group: group, Taken: now}

	fetches := []fetch{
		{stats.PathMealRetentionByHour, func(ctx context.Context) (n int, err error) {
			s.MealRetention, err = src.MealRetentionByHour(ctx)
			return len(s.MealRetention), err
		}},
		{stats.PathLoggingFrequency, func(ctx context.Context) (n int, err error) {
			s.LoggingFrequency, err = src.LoggingFrequency(ctx)
			return len(s.LoggingFrequency), err
		}},
		{stats.PathMealsPerDay, func(ctx context.Context) (n int, err error) {
			s.MealsPerDay, err = src.MealsPerDay(ctx)
			return len(s.MealsPerDay), err
		}},
		{stats.PathCohortRetention, func(ctx context.Context) (n int, err error) {
			s.CohortRetention, err = src.CohortRetention(ctx)
			return len(s.CohortRetention), err
		}},
		{stats.PathMessageStats, func(ctx context.Context) (n int, err error) {
			s.MessageStats, err = src.MessageStats(ctx)
			return len(s.MessageStats), err
		}},
		{stats.PathMessagesPerGroup, func(ctx context.Context) (n int, err error) {
			s.GroupMessages, err = src.MessagesPerDayAndGroup(ctx)
			if s.GroupMessages != nil {
				n = len(s.GroupMessages.Groups)
			}
			return n, err
		}},
		{stats.PathMessagesPerHour, func(ctx context.Context) (n int, err error) {
			s.MessagesPerHour, err = src.MessagesPerHour(ctx)
			return len(s.MessagesPerHour), err
		}},
		{stats.PathActiveInactive, func(ctx context.Context) (n int, err error) {
			s.ActiveInactive, err = src.ActiveInactiveUsers(ctx, group)
			if s.ActiveInactive != nil {
				n = len(s.ActiveInactive.Groups)
			}
			return n, err
		}},
		{stats.PathGender, func(ctx context.Context) (n int, err error) {
			s.Gender, err = src.GenderDistribution(ctx, group)
			return len(s.Gender), err
		}},
		{stats.PathAge, func(ctx context.Context) (n int, err error) {
			s.Age, err = src.AgeDistribution(ctx, group)
			return len(s.Age), err
		}},
		{stats.PathLanguage, func(ctx context.Context) (n int, err error) {
			s.Language, err = src.LanguageDistribution(ctx, group)
			return len(s.Language), err
		}},
	}

	s.Outcomes = make([]Outcome, len(fetches))
	g := new(errgroup.Group)
	g.SetLimit(10)
	for i, f := range fetches {
		g.Go(func() error {
			n, err := f.run(ctx)
			s.Outcomes[i] = outcome(f.endpoint, n, err)
			return nil
		})
	}
	g.Wait()

	return s
}

func outcome(endpoint string, n int, err error) Outcome {
	switch {
	case err != nil:
		return Outcome{Endpoint: endpoint, Status: ui.OutcomeFailed, Error: err.Error()}
	case n == 0:
		return Outcome{Endpoint: endpoint, Status: ui.OutcomeEmpty}
	default:
		return Outcome{Endpoint: endpoint, Status: ui.OutcomeOK, Records: n}
	}
}

// Counts tallies the outcomes
func (s *Snapshot) Counts() (ok, empty, failed int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case ui.OutcomeOK:
			ok++
		case ui.OutcomeEmpty:
			empty++
		case ui.OutcomeFailed:
			failed++
		}
	}
	return ok, empty, failed
}

// ErrFormat means an export format other than json or yaml
var ErrFormat = errors.New("unsupported format")

// Encode writes the snapshot as "json" or "yaml"
func (s *Snapshot) Encode(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%q: %w", format, ErrFormat)
	}
}
