package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/drew/studydash/internal/model"
)

// fakeBackend serves a small but complete data set. Errors can be injected
// per endpoint name.
type fakeBackend struct {
	mu     sync.Mutex
	errs   map[string]error
	tables map[string]string
	groups []model.Group
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		errs:   map[string]error{},
		tables: map[string]string{"/users/download-users": usersCSV(23)},
	}
}

// usersCSV builds n user rows; every third user is called alice
func usersCSV(n int) string {
	var b strings.Builder
	b.WriteString("Name,Role,Status\n")
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("user%02d", i)
		if i%3 == 0 {
			name = fmt.Sprintf("alice%02d", i)
		}
		role := "member"
		if i%2 == 0 {
			role = "admin"
		}
		fmt.Fprintf(&b, "%s,%s,active\n", name, role)
	}
	return b.String()
}

func (f *fakeBackend) fail(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func (f *fakeBackend) err(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[name]
}

func (f *fakeBackend) seen(g model.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, g)
}

func (f *fakeBackend) seenGroups() []model.Group {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Group(nil), f.groups...)
}

func (f *fakeBackend) MealRetentionByHour(context.Context) ([]model.HourCount, error) {
	return []model.HourCount{{Hour: "8", MealCount: 4}, {Hour: "12", MealCount: 9}, {Hour: "19", MealCount: 6}}, f.err("hours")
}

func (f *fakeBackend) LoggingFrequency(context.Context) ([]model.DateCount, error) {
	return []model.DateCount{{Date: "2024-03-01", MealCount: 3}, {Date: "2024-03-02", MealCount: 5}}, f.err("freq")
}

func (f *fakeBackend) MealsPerDay(context.Context) ([]model.GroupDateCount, error) {
	return []model.GroupDateCount{
		{Date: "2024-03-01", StudyGroup: "1", MealCount: 2},
		{Date: "2024-03-01", StudyGroup: "2", MealCount: 1},
		{Date: "2024-03-02", StudyGroup: "1", MealCount: 4},
	}, f.err("perDay")
}

func (f *fakeBackend) CohortRetention(context.Context) ([]model.DateUsers, error) {
	return []model.DateUsers{{Date: "2024-03-01", UserCount: 20}, {Date: "2024-03-02", UserCount: 17}}, f.err("cohort")
}

func (f *fakeBackend) MessageStats(context.Context) ([]model.MessageDay, error) {
	return []model.MessageDay{{Date: "2024-03-01", AssistantCount: 12, UserCount: 8}}, f.err("msgs")
}

func (f *fakeBackend) MessagesPerDayAndGroup(context.Context) (*model.GroupMessages, error) {
	return &model.GroupMessages{
		Groups: []string{"1", "2"},
		ByGroup: map[string][]model.DateUsers{
			"1": {{Date: "2024-03-01", UserCount: 3}},
			"2": {{Date: "2024-03-01", UserCount: 5}, {Date: "2024-03-02", UserCount: 2}},
		},
	}, f.err("groupM")
}

func (f *fakeBackend) MessagesPerHour(context.Context) ([]model.HourUsers, error) {
	return []model.HourUsers{{Hour: "9", UserCount: 4}, {Hour: "21", UserCount: 1}}, f.err("perHr")
}

func (f *fakeBackend) ActiveInactiveUsers(_ context.Context, g model.Group) (*model.ActiveInactive, error) {
	f.seen(g)
	return &model.ActiveInactive{
		Groups: []string{"0", "1", "2", "3"},
		ByGroup: map[string]model.ActivePair{
			"0": {Active: 5, Inactive: 5},
			"1": {Active: 6, Inactive: 4},
			"2": {Active: 9, Inactive: 1},
			"3": {Active: 2, Inactive: 8},
		},
	}, f.err("active")
}

func (f *fakeBackend) GenderDistribution(_ context.Context, g model.Group) (model.Distribution, error) {
	f.seen(g)
	return model.Distribution{{Label: "female", Count: 6}, {Label: "male", Count: 4}}, f.err("gender")
}

func (f *fakeBackend) AgeDistribution(_ context.Context, g model.Group) (model.Distribution, error) {
	f.seen(g)
	return model.Distribution{{Label: "18-25", Count: 3}, {Label: "26-40", Count: 7}}, f.err("age")
}

func (f *fakeBackend) LanguageDistribution(_ context.Context, g model.Group) (model.Distribution, error) {
	f.seen(g)
	return model.Distribution{{Label: "English", Count: 8}, {Label: "French", Count: 2}}, f.err("lang")
}

func (f *fakeBackend) TableSource(_ context.Context, path string) ([]byte, error) {
	if err := f.err("table"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.tables[path]
	if !ok {
		return nil, errors.New("unexpected status 404")
	}
	return []byte(body), nil
}
