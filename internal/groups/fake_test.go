package groups

import (
	"context"
	"sync/atomic"

	"github.com/drew/studydash/internal/model"
)

// blockingSource serves fixed group data. Calls for block wait on release.
type blockingSource struct {
	block   model.Group
	release chan struct{}
	age     error

	langCalls atomic.Int32
	blocked   atomic.Int32
}

func (s *blockingSource) wait(ctx context.Context, g model.Group) {
	if s.release == nil || g != s.block {
		return
	}
	s.blocked.Add(1)
	select {
	case <-s.release:
	case <-ctx.Done():
	}
}

func (s *blockingSource) languageCalls() int32 {
	return s.langCalls.Load()
}

func (s *blockingSource) blockedCalls() int32 {
	return s.blocked.Load()
}

func (s *blockingSource) MealRetentionByHour(context.Context) ([]model.HourCount, error) {
	return nil, nil
}

func (s *blockingSource) LoggingFrequency(context.Context) ([]model.DateCount, error) {
	return nil, nil
}

func (s *blockingSource) MealsPerDay(context.Context) ([]model.GroupDateCount, error) {
	return nil, nil
}

func (s *blockingSource) CohortRetention(context.Context) ([]model.DateUsers, error) {
	return nil, nil
}

func (s *blockingSource) MessageStats(context.Context) ([]model.MessageDay, error) {
	return nil, nil
}

func (s *blockingSource) MessagesPerDayAndGroup(context.Context) (*model.GroupMessages, error) {
	return nil, nil
}

func (s *blockingSource) MessagesPerHour(context.Context) ([]model.HourUsers, error) {
	return nil, nil
}

func (s *blockingSource) ActiveInactiveUsers(ctx context.Context, g model.Group) (*model.ActiveInactive, error) {
	return &model.ActiveInactive{
		Groups:  []string{"1", "2"},
		ByGroup: map[string]model.ActivePair{"1": {Active: 1, Inactive: 1}, "2": {Active: 2, Inactive: 0}},
	}, nil
}

func (s *blockingSource) GenderDistribution(ctx context.Context, g model.Group) (model.Distribution, error) {
	s.wait(ctx, g)
	return model.Distribution{{Label: "Female", Count: 1}}, nil
}

func (s *blockingSource) AgeDistribution(ctx context.Context, g model.Group) (model.Distribution, error) {
	s.wait(ctx, g)
	if s.age != nil {
		return nil, s.age
	}
	return model.Distribution{{Label: "18-25", Count: 1}}, nil
}

func (s *blockingSource) LanguageDistribution(ctx context.Context, g model.Group) (model.Distribution, error) {
	s.langCalls.Add(1)
	s.wait(ctx, g)
	return model.Distribution{{Label: "de", Count: 1}}, nil
}
