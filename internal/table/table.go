// Package table implements the paginated, filterable, searchable data table.
//
// A State owns one table's rows and its filter, search and page settings.
// The rendered View is a pure function of the State, and the State
// round-trips through URL query parameters.
package table

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"

	"github.com/drew/studydash/internal/model"
)

var (
	// ErrInvalidColumn means a filter named a column the table does not have
	ErrInvalidColumn = errors.New("invalid column")
	// ErrInvalidPageSize means a rows-per-page value outside PageSizes
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrPageOutOfRange means a page number outside [1, totalPages]
	ErrPageOutOfRange = errors.New("page out of range")
)

// PageSizes are the rows-per-page choices
var PageSizes = []int{5, 10, 25, 50, 100}

// Distinct-value bounds for a column to get a filter control
const (
	minFilterValues = 2
	maxFilterValues = 50
)

// Option display text longer than this is truncated
const maxOptionText = 30

// DefaultKeywords are the header patterns that always get a filter control
var DefaultKeywords = []string{
	"*status*", "*type*", "*category*", "*department*",
	"*role*", "*priority*", "*level*", "*grade*",
}

// Options configures a table
type Options struct {
	// PageSize is the initial rows per page, one of PageSizes
	PageSize int
	// Keywords are glob patterns matched against lower-cased headers
	Keywords []string
}

// Data is a table's header row and body rows as read from a source
type Data struct {
	Headers []string
	Rows    []model.Row
}

// State is one table instance. It is not safe for concurrent use.
type State struct {
	headers     []string
	rows        []model.Row
	filtered    []model.Row
	filters     map[int]string
	search      string
	page        int
	pageSize    int
	defaultSize int
	controls    []FilterControl
	fold        cases.Caser
}

// New builds a table over rows. Filter controls are derived once from the
// full row set.
func New(headers []string, rows []model.Row, opts Options) *State {
	size := opts.PageSize
	if !slices.Contains(PageSizes, size) {
		size = 10
	}
	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	s := &State{
		headers:     headers,
		rows:        rows,
		filters:     map[int]string{},
		page:        1,
		pageSize:    size,
		defaultSize: size,
		fold:        foldCaser(),
	}
	s.controls = buildControls(headers, rows, keywords)
	s.ApplyFilters()
	return s
}

// foldCaser returns a fresh case folder; a Caser must not be shared
func foldCaser() cases.Caser {
	return cases.Fold()
}

// FilterControl is a per-column select with its sorted distinct values
type FilterControl struct {
	Column  int
	Header  string
	Label   string
	Options []Option
}

// Option is one choice of a filter control
type Option struct {
	Value string
	Text  string
}

func buildControls(headers []string, rows []model.Row, keywords []string) []FilterControl {
	var controls []FilterControl
	for col, header := range headers {
		values := uniqueValues(rows, col)
		if len(values) == 0 {
			continue
		}
		eligible := len(values) >= minFilterValues && len(values) <= maxFilterValues
		if !eligible && !matchesKeyword(header, keywords) {
			continue
		}

		options := make([]Option, len(values))
		for i, v := range values {
			options[i] = Option{Value: v, Text: optionText(v)}
		}
		controls = append(controls, FilterControl{
			Column:  col,
			Header:  header,
			Label:   "All " + pluralLabel(header),
			Options: options,
		})
	}
	return controls
}

func uniqueValues(rows []model.Row, col int) []string {
	seen := map[string]struct{}{}
	var values []string
	for _, row := range rows {
		v := strings.TrimSpace(row.Cell(col))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// matchesKeyword globs the lower-cased header. Slashes in headers are
// ordinary text, so they are blanked before matching.
func matchesKeyword(header string, keywords []string) bool {
	lower := strings.ReplaceAll(strings.ToLower(header), "/", " ")
	for _, pattern := range keywords {
		if ok, err := doublestar.Match(pattern, lower); err == nil && ok {
			return true
		}
	}
	return false
}

// pluralLabel avoids double plurals: "Status" stays, "Role" becomes "Roles"
func pluralLabel(header string) string {
	lower := strings.ToLower(header)
	if strings.HasSuffix(lower, "s") {
		if lower == "users" {
			return "Users"
		}
		return header
	}
	return header + "s"
}

func optionText(v string) string {
	if len([]rune(v)) > maxOptionText {
		return string([]rune(v)[:maxOptionText-3]) + "..."
	}
	return v
}

// ApplyFilters recomputes the filtered rows and resets to the first page
func (s *State) ApplyFilters() {
	term := s.fold.String(s.search)
	filters := make(map[int]string, len(s.filters))
	for col, v := range s.filters {
		filters[col] = s.fold.String(v)
	}

	s.filtered = make([]model.Row, 0, len(s.rows))
	for _, row := range s.rows {
		if s.matches(row, term, filters) {
			s.filtered = append(s.filtered, row)
		}
	}
	s.page = 1
}

func (s *State) matches(row model.Row, term string, filters map[int]string) bool {
	if term != "" {
		text := s.fold.String(strings.Join(row, " "))
		if !strings.Contains(text, term) {
			return false
		}
	}
	for col, v := range filters {
		if col >= len(row) {
			continue
		}
		if !strings.Contains(s.fold.String(row[col]), v) {
			return false
		}
	}
	return true
}

// SetSearch sets the global search term and re-applies
func (s *State) SetSearch(term string) {
	s.search = strings.TrimSpace(term)
	s.ApplyFilters()
}

// SetFilter sets the filter of column col; an empty value clears it
func (s *State) SetFilter(col int, value string) error {
	if col < 0 || col >= len(s.headers) {
		return fmt.Errorf("column %d: %w", col, ErrInvalidColumn)
	}
	if value == "" {
		delete(s.filters, col)
	} else {
		s.filters[col] = value
	}
	s.ApplyFilters()
	return nil
}

// ClearFilter removes the filter of column col
func (s *State) ClearFilter(col int) {
	delete(s.filters, col)
	s.ApplyFilters()
}

// ClearSearch removes the global search term
func (s *State) ClearSearch() {
	s.search = ""
	s.ApplyFilters()
}

// ClearAll removes every filter and the search term
func (s *State) ClearAll() {
	s.filters = map[int]string{}
	s.search = ""
	s.ApplyFilters()
}

// Headers returns the column headers
func (s *State) Headers() []string {
	return s.headers
}

// Search returns the global search term
func (s *State) Search() string {
	return s.search
}

// Filter returns the filter value of column col
func (s *State) Filter(col int) string {
	return s.filters[col]
}

// Page returns the current page, 1-based
func (s *State) Page() int {
	return s.page
}

// PageSize returns the rows per page
func (s *State) PageSize() int {
	return s.pageSize
}

// Total returns the number of rows before filtering
func (s *State) Total() int {
	return len(s.rows)
}

// Filtered returns the rows passing the search and every filter
func (s *State) Filtered() []model.Row {
	return s.filtered
}

// TotalPages returns the number of pages of filtered rows, 0 when none
func (s *State) TotalPages() int {
	return (len(s.filtered) + s.pageSize - 1) / s.pageSize
}

// lastPage is TotalPages with an empty table counted as one page
func (s *State) lastPage() int {
	return max(s.TotalPages(), 1)
}

// Active reports whether a search term or any column filter is set
func (s *State) Active() bool {
	return s.search != "" || len(s.filters) > 0
}

// Controls returns the filter controls
func (s *State) Controls() []FilterControl {
	return s.controls
}
