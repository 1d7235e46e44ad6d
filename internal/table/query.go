package table

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query parameter names
const (
	ParamSearch  = "q"
	ParamPage    = "page"
	ParamPerPage = "per"
	// ParamFilterPrefix is followed by the column index, e.g. "f2"
	ParamFilterPrefix = "f"
)

// Query encodes the state as URL parameters. Defaults are left out.
func (s *State) Query() url.Values {
	q := url.Values{}
	if s.search != "" {
		q.Set(ParamSearch, s.search)
	}
	cols := make([]int, 0, len(s.filters))
	for col := range s.filters {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	for _, col := range cols {
		q.Set(ParamFilterPrefix+strconv.Itoa(col), s.filters[col])
	}
	if s.pageSize != s.defaultSize {
		q.Set(ParamPerPage, strconv.Itoa(s.pageSize))
	}
	if s.page > 1 {
		q.Set(ParamPage, strconv.Itoa(s.page))
	}
	return q
}

// FromQuery restores the state from URL parameters. Unknown columns, bad
// page sizes and out-of-range pages are ignored, leaving the defaults.
func (s *State) FromQuery(q url.Values) {
	s.search = strings.TrimSpace(q.Get(ParamSearch))
	s.filters = map[int]string{}
	for key, vals := range q {
		if !strings.HasPrefix(key, ParamFilterPrefix) || len(vals) == 0 || vals[0] == "" {
			continue
		}
		col, err := strconv.Atoi(strings.TrimPrefix(key, ParamFilterPrefix))
		if err != nil || col < 0 || col >= len(s.headers) {
			continue
		}
		s.filters[col] = vals[0]
	}
	s.ApplyFilters()

	if per, err := strconv.Atoi(q.Get(ParamPerPage)); err == nil {
		_ = s.SetPageSize(per)
	}
	if page := q.Get(ParamPage); page != "" {
		_ = s.GotoPage(page)
	}
}

// With returns the query of the state after change, leaving s untouched.
// Used to build the links of the pager, chips and filter controls.
func (s *State) With(change func(*State)) url.Values {
	c := s.clone()
	change(c)
	return c.Query()
}

func (s *State) clone() *State {
	c := *s
	c.filters = make(map[int]string, len(s.filters))
	for k, v := range s.filters {
		c.filters[k] = v
	}
	c.fold = foldCaser()
	return &c
}
