package stats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drew/studydash/internal/model"
)

// fakeBackend serves fixed bodies per path and records the queries it saw
type fakeBackend struct {
	mu      sync.Mutex
	bodies  map[string]string
	status  map[string]int
	queries map[string]string
}

func newFakeBackend(t *testing.T, bodies map[string]string) (*fakeBackend, *Client) {
	t.Helper()
	fb := &fakeBackend{bodies: bodies, status: map[string]int{}, queries: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.queries[r.URL.Path] = r.URL.RawQuery
		if code, ok := fb.status[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}
		body, ok := fb.bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return fb, NewClient(srv.URL+"/", srv.Client(), nil)
}

func (fb *fakeBackend) query(path string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.queries[path]
}

func TestMealRetentionByHour(t *testing.T) {
	_, c := newFakeBackend(t, map[string]string{
		PathMealRetentionByHour: `[{"hour":"07:00","meal_count":4},{"hour":8,"meal_count":0}]`,
	})

	got, err := c.MealRetentionByHour(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.HourCount{{Hour: "07:00", MealCount: 4}, {Hour: "8", MealCount: 0}}, got)
}

func TestMealsPerDayNumericGroup(t *testing.T) {
	_, c := newFakeBackend(t, map[string]string{
		PathMealsPerDay: `[{"date":"2024-01-01","study_group":1,"meal_count":3},{"date":"2024-01-02","study_group":"2","meal_count":1}]`,
	})

	got, err := c.MealsPerDay(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].StudyGroup)
	assert.Equal(t, "2", got[1].StudyGroup)
}

func TestMessagesPerDayAndGroup(t *testing.T) {
	_, c := newFakeBackend(t, map[string]string{
		PathMessagesPerGroup: `{"study_groups":{"2":[{"date":"2024-01-02","user_count":5}],"1":[]}}`,
	})

	got, err := c.MessagesPerDayAndGroup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, got.Groups)
	assert.Equal(t, []model.DateUsers{{Date: "2024-01-02", UserCount: 5}}, got.ByGroup["2"])
	assert.Empty(t, got.ByGroup["1"])
}

func TestActiveInactiveUsers(t *testing.T) {
	_, c := newFakeBackend(t, map[string]string{
		PathActiveInactive: `{"1":[8,2],"0":[0,0]}`,
	})

	got, err := c.ActiveInactiveUsers(context.Background(), model.GroupAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "0"}, got.Groups)
	assert.Equal(t, model.ActivePair{Active: 8, Inactive: 2}, got.ByGroup["1"])
}

func TestDistributionKeepsOrderAndScopesGroup(t *testing.T) {
	fb, c := newFakeBackend(t, map[string]string{
		PathGender: `{"Male":3,"Female":5,"Other":1}`,
	})

	got, err := c.GenderDistribution(context.Background(), model.Group("2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Male", "Female", "Other"}, got.Labels())
	assert.Equal(t, "study_group=2", fb.query(PathGender))

	_, err = c.GenderDistribution(context.Background(), model.GroupAll)
	require.NoError(t, err)
	assert.Equal(t, "", fb.query(PathGender))
}

func TestStatusError(t *testing.T) {
	fb, c := newFakeBackend(t, map[string]string{})
	fb.mu.Lock()
	fb.status[PathMessageStats] = http.StatusInternalServerError
	fb.mu.Unlock()

	_, err := c.MessageStats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 500, se.Code)
	assert.Equal(t, PathMessageStats, se.Endpoint)
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		call     func(*Client) error
		wantPath string
	}{
		{
			name: "not json",
			path: PathLoggingFrequency,
			body: `<html>oops</html>`,
			call: func(c *Client) error { _, err := c.LoggingFrequency(context.Background()); return err },
		},
		{
			name: "object instead of array",
			path: PathCohortRetention,
			body: `{"date":"2024-01-01"}`,
			call: func(c *Client) error { _, err := c.CohortRetention(context.Background()); return err },
		},
		{
			name:     "missing field",
			path:     PathMessageStats,
			body:     `[{"date":"2024-01-01","user_count":1}]`,
			call:     func(c *Client) error { _, err := c.MessageStats(context.Background()); return err },
			wantPath: "0.assistant_count",
		},
		{
			name:     "string count",
			path:     PathMessagesPerHour,
			body:     `[{"hour":1,"user_count":"3"}]`,
			call:     func(c *Client) error { _, err := c.MessagesPerHour(context.Background()); return err },
			wantPath: "0.user_count",
		},
		{
			name:     "bad pair",
			path:     PathActiveInactive,
			body:     `{"1":[3]}`,
			call:     func(c *Client) error { _, err := c.ActiveInactiveUsers(context.Background(), model.GroupAll); return err },
			wantPath: "1",
		},
		{
			name:     "non numeric distribution",
			path:     PathAge,
			body:     `{"18-25":"many"}`,
			call:     func(c *Client) error { _, err := c.AgeDistribution(context.Background(), model.GroupAll); return err },
			wantPath: "18-25",
		},
		{
			name:     "nested group record",
			path:     PathMessagesPerGroup,
			body:     `{"study_groups":{"1":[{"date":5,"user_count":1}]}}`,
			call:     func(c *Client) error { _, err := c.MessagesPerDayAndGroup(context.Background()); return err },
			wantPath: "study_groups.1.0.date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newFakeBackend(t, map[string]string{tt.path: tt.body})

			err := tt.call(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrShape), "expected shape error, got %v", err)

			var se *ShapeError
			require.ErrorAs(t, err, &se)
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, se.Path)
			}
		})
	}
}

func TestTableSource(t *testing.T) {
	_, c := newFakeBackend(t, map[string]string{
		"/users/download-users": "name,status\nalice,active\n",
	})

	body, err := c.TableSource(context.Background(), "users/download-users")
	require.NoError(t, err)
	assert.Contains(t, string(body), "alice")
}

func TestTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil, nil)

	_, err := c.LoggingFrequency(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStatus))
	assert.False(t, errors.Is(err, ErrShape))
}

func TestBodyTooLarge(t *testing.T) {
	body := `{"Female":3,"Male":2}`
	_, c := newFakeBackend(t, map[string]string{PathGender: body})

	c.maxBody = int64(len(body))
	_, err := c.GenderDistribution(context.Background(), model.GroupAll)
	require.NoError(t, err)

	c.maxBody = int64(len(body) - 1)
	_, err = c.GenderDistribution(context.Background(), model.GroupAll)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBodyTooLarge))
	assert.False(t, errors.Is(err, ErrShape))
}
