package charts

import (
	"context"
	"sync"

	"github.com/drew/studydash/internal/model"
)

// fakeSource serves canned records and counts calls per endpoint
type fakeSource struct {
	mu     sync.Mutex
	calls  map[string][]model.Group
	errs   map[string]error
	hours  []model.HourCount
	freq   []model.DateCount
	perDay []model.GroupDateCount
	cohort []model.DateUsers
	msgs   []model.MessageDay
	groupM *model.GroupMessages
	perHr  []model.HourUsers
	active *model.ActiveInactive
	gender model.Distribution
	age    model.Distribution
	lang   model.Distribution
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: map[string][]model.Group{}, errs: map[string]error{}}
}

func (f *fakeSource) record(name string, g model.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name] = append(f.calls[name], g)
	return f.errs[name]
}

func (f *fakeSource) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[name])
}

func (f *fakeSource) MealRetentionByHour(ctx context.Context) ([]model.HourCount, error) {
	return f.hours, f.record("hours", model.GroupAll)
}

func (f *fakeSource) LoggingFrequency(ctx context.Context) ([]model.DateCount, error) {
	return f.freq, f.record("freq", model.GroupAll)
}

func (f *fakeSource) MealsPerDay(ctx context.Context) ([]model.GroupDateCount, error) {
	return f.perDay, f.record("perDay", model.GroupAll)
}

func (f *fakeSource) CohortRetention(ctx context.Context) ([]model.DateUsers, error) {
	return f.cohort, f.record("cohort", model.GroupAll)
}

func (f *fakeSource) MessageStats(ctx context.Context) ([]model.MessageDay, error) {
	return f.msgs, f.record("msgs", model.GroupAll)
}

func (f *fakeSource) MessagesPerDayAndGroup(ctx context.Context) (*model.GroupMessages, error) {
	return f.groupM, f.record("groupM", model.GroupAll)
}

func (f *fakeSource) MessagesPerHour(ctx context.Context) ([]model.HourUsers, error) {
	return f.perHr, f.record("perHr", model.GroupAll)
}

func (f *fakeSource) ActiveInactiveUsers(ctx context.Context, g model.Group) (*model.ActiveInactive, error) {
	return f.active, f.record("active", g)
}

func (f *fakeSource) GenderDistribution(ctx context.Context, g model.Group) (model.Distribution, error) {
	return f.gender, f.record("gender", g)
}

func (f *fakeSource) AgeDistribution(ctx context.Context, g model.Group) (model.Distribution, error) {
	return f.age, f.record("age", g)
}

func (f *fakeSource) LanguageDistribution(ctx context.Context, g model.Group) (model.Distribution, error) {
	return f.lang, f.record("lang", g)
}
