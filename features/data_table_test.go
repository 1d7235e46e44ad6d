package features

import (
	"fmt"

	"github.com/cucumber/godog"

	"github.com/drew/studydash/internal/model"
	"github.com/drew/studydash/internal/table"
)

type dataTableContext struct {
	*sharedContext
	headers []string
	rows    []model.Row
	state   *table.State
}

// aUsersTableWithRows builds n users: every third is an alice, even rows are
// admins
func (c *dataTableContext) aUsersTableWithRows(n int) error {
	c.headers = []string{"Name", "Role", "Status"}
	c.rows = nil
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("user%02d", i)
		if i%3 == 0 {
			name = fmt.Sprintf("alice%02d", i)
		}
		role := "member"
		if i%2 == 0 {
			role = "admin"
		}
		c.rows = append(c.rows, model.Row{name, role, "active"})
	}
	c.state = table.New(c.headers, c.rows, table.Options{PageSize: 10})
	return nil
}

func (c *dataTableContext) column(header string) (int, error) {
	for i, h := range c.headers {
		if h == header {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no column %q", header)
}

func (c *dataTableContext) iSearchFor(term string) error {
	c.state.SetSearch(term)
	return nil
}

func (c *dataTableContext) iFilterBy(header, value string) error {
	col, err := c.column(header)
	if err != nil {
		return err
	}
	return c.state.SetFilter(col, value)
}

func (c *dataTableContext) iGoToTheLastPage() error {
	c.state.Last()
	return nil
}

func (c *dataTableContext) iGoToTheNextPage() error {
	c.state.Next()
	return nil
}

func (c *dataTableContext) iChooseRowsPerPage(n int) error {
	return c.state.SetPageSize(n)
}

func (c *dataTableContext) iTypePageIntoThePageInput(input string) error {
	c.err = c.state.GotoPage(input)
	return nil
}

func (c *dataTableContext) iClearAllFilters() error {
	c.state.ClearAll()
	return nil
}

func (c *dataTableContext) thePageIsReloadedFromItsOwnQueryString() error {
	q := c.state.Query()
	c.state = table.New(c.headers, c.rows, table.Options{PageSize: 10})
	c.state.FromQuery(q)
	return nil
}

func (c *dataTableContext) theTableShowsRows(n int) error {
	if got := len(c.state.DisplayRows().Rows); got != n {
		return fmt.Errorf("expected %d rows on the page, got %d", n, got)
	}
	return nil
}

func (c *dataTableContext) theSummaryReads(expected string) error {
	if got := c.state.DisplayRows().Summary; got != expected {
		return fmt.Errorf("expected summary %q, got %q", expected, got)
	}
	return nil
}

func (c *dataTableContext) thePagerShowsPageOf(page, total int) error {
	p := c.state.DisplayRows().Pagination
	if p.Page != page || p.TotalPages != total {
		return fmt.Errorf("expected page %d of %d, got %d of %d", page, total, p.Page, p.TotalPages)
	}
	return nil
}

func (c *dataTableContext) control(name string) (bool, error) {
	p := c.state.DisplayRows().Pagination
	switch name {
	case "First":
		return p.First, nil
	case "Prev":
		return p.Prev, nil
	case "Next":
		return p.Next, nil
	case "Last":
		return p.Last, nil
	}
	return false, fmt.Errorf("no pager control %q", name)
}

func (c *dataTableContext) theControlIs(name, want string) error {
	enabled, err := c.control(name)
	if err != nil {
		return err
	}
	if enabled != (want == "enabled") {
		return fmt.Errorf("expected %s to be %s", name, want)
	}
	return nil
}

func (c *dataTableContext) theActiveFiltersAre(expected *godog.Table) error {
	chips := c.state.DisplayRows().Chips
	if len(chips) != len(expected.Rows) {
		return fmt.Errorf("expected %d chips, got %d", len(expected.Rows), len(chips))
	}
	for i, row := range expected.Rows {
		if got := chips[i].Text(); got != row.Cells[0].Value {
			return fmt.Errorf("chip %d: expected %s, got %s", i, row.Cells[0].Value, got)
		}
	}
	return nil
}

func (c *dataTableContext) thereAreNoActiveFilters() error {
	if chips := c.state.DisplayRows().Chips; len(chips) != 0 {
		return fmt.Errorf("expected no chips, got %d", len(chips))
	}
	return nil
}

// InitializeDataTableScenario registers the data table steps
func InitializeDataTableScenario(ctx *godog.ScenarioContext, shared *sharedContext) {
	c := &dataTableContext{sharedContext: shared}

	ctx.Step(`^a users table with (\d+) rows$`, c.aUsersTableWithRows)
	ctx.Step(`^I search for "([^"]*)"$`, c.iSearchFor)
	ctx.Step(`^I filter "([^"]*)" by "([^"]*)"$`, c.iFilterBy)
	ctx.Step(`^I go to the last page$`, c.iGoToTheLastPage)
	ctx.Step(`^I go to the next page$`, c.iGoToTheNextPage)
	ctx.Step(`^I choose (\d+) rows per page$`, c.iChooseRowsPerPage)
	ctx.Step(`^I type page "([^"]*)" into the page input$`, c.iTypePageIntoThePageInput)
	ctx.Step(`^I clear all filters$`, c.iClearAllFilters)
	ctx.Step(`^the page is reloaded from its own query string$`, c.thePageIsReloadedFromItsOwnQueryString)
	ctx.Step(`^the table shows (\d+) rows$`, c.theTableShowsRows)
	ctx.Step(`^the summary reads "([^"]*)"$`, c.theSummaryReads)
	ctx.Step(`^the pager shows page (\d+) of (\d+)$`, c.thePagerShowsPageOf)
	ctx.Step(`^the "([^"]*)" control is (enabled|disabled)$`, c.theControlIs)
	ctx.Step(`^the active filters are:$`, c.theActiveFiltersAre)
	ctx.Step(`^there are no active filters$`, c.thereAreNoActiveFilters)
}
