package config

import (
	"slices"

	"github.com/drew/studydash/internal/table"
)

// BuiltInGroups returns the four study groups of the original study.
// These are used as fallback when the config defines no [groups].
func BuiltInGroups() map[string]GroupConfig {
	return map[string]GroupConfig{
		"0": {
			Name:        "Group 0",
			Description: "No reminders, no communication",
			Icons:       []string{"fas fa-bell-slash", "fas fa-comment-slash"},
		},
		"1": {
			Name:        "Group 1",
			Description: "Generic reminders only",
			Icons:       []string{"fas fa-bell", "fas fa-comment-slash"},
		},
		"2": {
			Name:        "Group 2",
			Description: "Chatbot communication only",
			Icons:       []string{"fas fa-bell-slash", "fas fa-comment-dots"},
		},
		"3": {
			Name:        "Group 3",
			Description: "Personalized reminders & communication",
			Icons:       []string{"fas fa-bell", "fas fa-comment-dots"},
		},
	}
}

// BuiltInTables returns the CSV exports the backend offers out of the box
func BuiltInTables() map[string]TableSource {
	return map[string]TableSource{
		"users": {
			Title:  "Users",
			Source: "/users/download-users",
			Format: "csv",
		},
		"meals": {
			Title:  "Meals",
			Source: "/meals/download-meals",
			Format: "csv",
		},
		"messages": {
			Title:  "Messages",
			Source: "/messages/download-messages",
			Format: "csv",
		},
	}
}

// DefaultFilterKeywords returns the header patterns that always get a filter
func DefaultFilterKeywords() []string {
	return slices.Clone(table.DefaultKeywords)
}

// ValidPageSizes lists the rows-per-page choices
func ValidPageSizes() []int {
	return slices.Clone(table.PageSizes)
}
