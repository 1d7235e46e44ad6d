// Package stats is the client of the statistics backend. Every response is
// checked against its endpoint contract before any record is built from it.
package stats

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/drew/studydash/internal/model"
)

// Endpoint paths of the statistics backend
const (
	PathMealRetentionByHour = "/meals/meal_retention_by_hour"
	PathLoggingFrequency    = "/meals/logging_frequency"
	PathMealsPerDay         = "/meals/meals_per_day"
	PathCohortRetention     = "/meals/cohort_retention"
	PathMessageStats        = "/messages/stats"
	PathMessagesPerGroup    = "/messages/per-day-and-study-group"
	PathMessagesPerHour     = "/messages/per-hour"
	PathActiveInactive      = "/users/active-inactive-users"
	PathGender              = "/users/gender-distrib"
	PathAge                 = "/users/age-distrib"
	PathLanguage            = "/users/language-distrib"
)

// defaultMaxBody caps how much of a response is read
const defaultMaxBody = 8 << 20

// Client fetches statistics from the backend
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	maxBody int64
}

// NewClient returns a client for the backend at baseURL. A nil httpClient
// uses a client with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
		maxBody: defaultMaxBody,
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get issues a GET for path and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%s: more than %d bytes: %w", path, c.maxBody, ErrBodyTooLarge)
	}

	c.logger.Debug("backend request", "path", path, "query", query.Encode(), "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend error body", "path", path, "body", describe(body))
		return nil, &StatusError{Endpoint: path, Code: resp.StatusCode}
	}
	return body, nil
}

func groupQuery(group model.Group) url.Values {
	if group.IsAll() {
		return nil
	}
	return url.Values{"study_group": {group.Query()}}
}

// MealRetentionByHour returns the meals logged per hour of day
func (c *Client) MealRetentionByHour(ctx context.Context) ([]model.HourCount, error) {
	body, err := c.get(ctx, PathMealRetentionByHour, nil)
	if err != nil {
		return nil, err
	}
	return decodeHourCounts(PathMealRetentionByHour, body)
}

// LoggingFrequency returns meals logged per date
func (c *Client) LoggingFrequency(ctx context.Context) ([]model.DateCount, error) {
	body, err := c.get(ctx, PathLoggingFrequency, nil)
	if err != nil {
		return nil, err
	}
	return decodeDateCounts(PathLoggingFrequency, body)
}

// MealsPerDay returns meals per date per study group
func (c *Client) MealsPerDay(ctx context.Context) ([]model.GroupDateCount, error) {
	body, err := c.get(ctx, PathMealsPerDay, nil)
	if err != nil {
		return nil, err
	}
	return decodeGroupDateCounts(PathMealsPerDay, body)
}

// CohortRetention returns the active users per date
func (c *Client) CohortRetention(ctx context.Context) ([]model.DateUsers, error) {
	body, err := c.get(ctx, PathCohortRetention, nil)
	if err != nil {
		return nil, err
	}
	return decodeDateUsers(PathCohortRetention, body)
}

// MessageStats returns assistant and user message counts per date
func (c *Client) MessageStats(ctx context.Context) ([]model.MessageDay, error) {
	body, err := c.get(ctx, PathMessageStats, nil)
	if err != nil {
		return nil, err
	}
	return decodeMessageDays(PathMessageStats, body)
}

// MessagesPerDayAndGroup returns user message counts per date for each group
func (c *Client) MessagesPerDayAndGroup(ctx context.Context) (*model.GroupMessages, error) {
	body, err := c.get(ctx, PathMessagesPerGroup, nil)
	if err != nil {
		return nil, err
	}
	return decodeGroupMessages(PathMessagesPerGroup, body)
}

// MessagesPerHour returns user messages per hour of day
func (c *Client) MessagesPerHour(ctx context.Context) ([]model.HourUsers, error) {
	body, err := c.get(ctx, PathMessagesPerHour, nil)
	if err != nil {
		return nil, err
	}
	return decodeHourUsers(PathMessagesPerHour, body)
}

// ActiveInactiveUsers returns started/never-started user counts per group.
// The payload always covers every group; group is passed along as a scope
// hint.
func (c *Client) ActiveInactiveUsers(ctx context.Context, group model.Group) (*model.ActiveInactive, error) {
	body, err := c.get(ctx, PathActiveInactive, groupQuery(group))
	if err != nil {
		return nil, err
	}
	return decodeActiveInactive(PathActiveInactive, body)
}

// GenderDistribution returns users per gender, scoped to group
func (c *Client) GenderDistribution(ctx context.Context, group model.Group) (model.Distribution, error) {
	return c.distribution(ctx, PathGender, group)
}

// AgeDistribution returns users per age range, scoped to group
func (c *Client) AgeDistribution(ctx context.Context, group model.Group) (model.Distribution, error) {
	return c.distribution(ctx, PathAge, group)
}

// LanguageDistribution returns users per language, scoped to group
func (c *Client) LanguageDistribution(ctx context.Context, group model.Group) (model.Distribution, error) {
	return c.distribution(ctx, PathLanguage, group)
}

func (c *Client) distribution(ctx context.Context, path string, group model.Group) (model.Distribution, error) {
	body, err := c.get(ctx, path, groupQuery(group))
	if err != nil {
		return nil, err
	}
	return decodeDistribution(path, body)
}

// TableSource returns the raw body of a configured table source path
func (c *Client) TableSource(ctx context.Context, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.get(ctx, path, nil)
}
