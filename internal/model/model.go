// Package model holds the records exchanged with the statistics backend and
// the study-group types shared by the dashboard components.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupAll selects every study group at once
const GroupAll Group = "all"

// Group identifies a study group: "all" or a small non-negative integer
type Group string

// ParseGroup validates a raw group value from a dropdown item or query string
func ParseGroup(s string) (Group, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(GroupAll)) {
		return GroupAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid study group %q", s)
	}
	return Group(strconv.Itoa(n)), nil
}

// IsAll reports whether g selects every group
func (g Group) IsAll() bool {
	return g == "" || g == GroupAll
}

// Query returns the study_group query value, empty for all groups
func (g Group) Query() string {
	if g.IsAll() {
		return ""
	}
	return string(g)
}

// Suffix returns the canvas id suffix for the group ("Group2"), empty for all
func (g Group) Suffix() string {
	if g.IsAll() {
		return ""
	}
	return "Group" + string(g)
}

// Label returns the display label for the group
func (g Group) Label() string {
	if g.IsAll() {
		return "All Groups"
	}
	return "Group " + string(g)
}

// GroupInfo is the static description shown in the group panel
type GroupInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Icons       []string `json:"icons" yaml:"icons"`
	Count       int      `json:"count" yaml:"count"`
}

// Row is one table row: the ordered cell texts
type Row []string

// Cell returns the text of column i, empty if the row is short
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// HourCount is one /meals/meal_retention_by_hour record
type HourCount struct {
	Hour      string `json:"hour" yaml:"hour"`
	MealCount int    `json:"meal_count" yaml:"meal_count"`
}

// DateCount is one /meals/logging_frequency record
type DateCount struct {
	Date      string `json:"date" yaml:"date"`
	MealCount int    `json:"meal_count" yaml:"meal_count"`
}

// GroupDateCount is one /meals/meals_per_day record
type GroupDateCount struct {
	Date       string `json:"date" yaml:"date"`
	StudyGroup string `json:"study_group" yaml:"study_group"`
	MealCount  int    `json:"meal_count" yaml:"meal_count"`
}

// DateUsers is one /meals/cohort_retention record, also used per group by
// /messages/per-day-and-study-group
type DateUsers struct {
	Date      string `json:"date" yaml:"date"`
	UserCount int    `json:"user_count" yaml:"user_count"`
}

// MessageDay is one /messages/stats record
type MessageDay struct {
	Date           string `json:"date" yaml:"date"`
	AssistantCount int    `json:"assistant_count" yaml:"assistant_count"`
	UserCount      int    `json:"user_count" yaml:"user_count"`
}

// HourUsers is one /messages/per-hour record
type HourUsers struct {
	Hour      string `json:"hour" yaml:"hour"`
	UserCount int    `json:"user_count" yaml:"user_count"`
}

// GroupMessages is the decoded /messages/per-day-and-study-group payload.
// Groups keeps the backend's key order.
type GroupMessages struct {
	Groups  []string               `json:"groups" yaml:"groups"`
	ByGroup map[string][]DateUsers `json:"study_groups" yaml:"study_groups"`
}

// ActivePair is the [active, inactive] count pair of one group
type ActivePair struct {
	Active   int `json:"active" yaml:"active"`
	Inactive int `json:"inactive" yaml:"inactive"`
}

// Total returns active + inactive
func (p ActivePair) Total() int {
	return p.Active + p.Inactive
}

// ActiveInactive is the decoded /users/active-inactive-users payload.
// Groups keeps the backend's key order.
type ActiveInactive struct {
	Groups  []string              `json:"groups" yaml:"groups"`
	ByGroup map[string]ActivePair `json:"by_group" yaml:"by_group"`
}

// Bucket is one label/count pair of a distribution
type Bucket struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Distribution is a label→count mapping in backend order
type Distribution []Bucket

// Labels returns the bucket labels in order
func (d Distribution) Labels() []string {
	out := make([]string, len(d))
	for i, b := range d {
		out[i] = b.Label
	}
	return out
}

// Counts returns the bucket counts in order
func (d Distribution) Counts() []float64 {
	out := make([]float64, len(d))
	for i, b := range d {
		out[i] = float64(b.Count)
	}
	return out
}

// Total returns the sum of all counts
func (d Distribution) Total() int {
	total := 0
	for _, b := range d {
		total += b.Count
	}
	return total
}
