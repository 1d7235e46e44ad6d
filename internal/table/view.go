package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/drew/studydash/internal/model"
)

// View is everything needed to draw the table for the current state
type View struct {
	Headers    []string
	Rows       []model.Row
	Pagination Pagination
	Summary    string
	Search     string
	Chips      []Chip
	Controls   []ControlView
}

// Pagination is the state of the pager controls
type Pagination struct {
	Page       int
	TotalPages int
	First      bool
	Prev       bool
	Next       bool
	Last       bool
	// InputValue is what the page-number input shows
	InputValue int
	InputMin   int
	InputMax   int
	PerPage    []PerPageOption
}

// PerPageOption is one rows-per-page choice
type PerPageOption struct {
	Size     int
	Selected bool
}

// Chip is one active filter shown above the table. Column is -1 for the
// global search.
type Chip struct {
	Column int
	Header string
	Value  string
}

// Global reports whether the chip is the global search
func (c Chip) Global() bool {
	return c.Column < 0
}

// Text is the chip caption
func (c Chip) Text() string {
	if c.Global() {
		return fmt.Sprintf("Global: %q", c.Value)
	}
	return fmt.Sprintf("%s: %q", c.Header, c.Value)
}

// ControlView is a filter control with its current selection
type ControlView struct {
	FilterControl
	Selected string
}

// DisplayRows returns the view of the current page
func (s *State) DisplayRows() View {
	start := (s.page - 1) * s.pageSize
	end := min(start+s.pageSize, len(s.filtered))
	var rows []model.Row
	if start < end {
		rows = s.filtered[start:end]
	}

	total := s.TotalPages()
	perPage := make([]PerPageOption, len(PageSizes))
	for i, size := range PageSizes {
		perPage[i] = PerPageOption{Size: size, Selected: size == s.pageSize}
	}

	controls := make([]ControlView, len(s.controls))
	for i, c := range s.controls {
		controls[i] = ControlView{FilterControl: c, Selected: s.filters[c.Column]}
	}

	return View{
		Headers: s.headers,
		Rows:    rows,
		Pagination: Pagination{
			Page:       s.page,
			TotalPages: total,
			First:      s.page != 1,
			Prev:       s.page != 1,
			Next:       s.page != total && total != 0,
			Last:       s.page != total && total != 0,
			InputValue: s.page,
			InputMin:   1,
			InputMax:   s.lastPage(),
			PerPage:    perPage,
		},
		Summary:  s.summary(),
		Search:   s.search,
		Chips:    s.chips(),
		Controls: controls,
	}
}

func (s *State) summary() string {
	n := len(s.filtered)
	from := 0
	if n > 0 {
		from = (s.page-1)*s.pageSize + 1
	}
	to := min(s.page*s.pageSize, n)

	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d to %d of %d entries", from, to, n)
	if s.Active() {
		fmt.Fprintf(&b, " (filtered from %d total entries)", len(s.rows))
	}
	return b.String()
}

func (s *State) chips() []Chip {
	if !s.Active() {
		return nil
	}
	var chips []Chip
	if s.search != "" {
		chips = append(chips, Chip{Column: -1, Value: s.search})
	}
	cols := make([]int, 0, len(s.filters))
	for col := range s.filters {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	for _, col := range cols {
		chips = append(chips, Chip{Column: col, Header: s.headers[col], Value: s.filters[col]})
	}
	return chips
}

// First moves to the first page
func (s *State) First() {
	s.page = 1
}

// Prev moves back one page, staying on the first
func (s *State) Prev() {
	if s.page > 1 {
		s.page--
	}
}

// Next moves forward one page, staying on the last
func (s *State) Next() {
	if s.page < s.TotalPages() {
		s.page++
	}
}

// Last moves to the last page
func (s *State) Last() {
	s.page = s.lastPage()
}

// GotoPage moves to the page typed into the page input. Anything that is not
// a page number in [1, totalPages] leaves the page unchanged.
func (s *State) GotoPage(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("page %q: %w", input, ErrPageOutOfRange)
	}
	if n < 1 || n > s.TotalPages() {
		return fmt.Errorf("page %d of %d: %w", n, s.TotalPages(), ErrPageOutOfRange)
	}
	s.page = n
	return nil
}

// SetPageSize changes the rows per page and clamps the current page
func (s *State) SetPageSize(n int) error {
	if !slices.Contains(PageSizes, n) {
		return fmt.Errorf("%d: %w", n, ErrInvalidPageSize)
	}
	s.pageSize = n
	if s.page > s.TotalPages() {
		s.page = s.lastPage()
	}
	return nil
}
