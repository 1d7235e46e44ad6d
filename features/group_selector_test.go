package features

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	"github.com/drew/studydash/internal/charts"
	"github.com/drew/studydash/internal/config"
	"github.com/drew/studydash/internal/groups"
	"github.com/drew/studydash/internal/model"
	"github.com/drew/studydash/internal/stats"
)

type groupSelectorContext struct {
	*sharedContext
	backend *httptest.Server
	client  *stats.Client
	orch    *groups.Orchestrator
	last    *groups.Transition

	mu      sync.Mutex
	failing map[string]bool
	queries []string
}

func (c *groupSelectorContext) theStatisticsBackendIsRunning() error {
	c.failing = map[string]bool{}
	c.backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.queries = append(c.queries, r.URL.Query().Get("study_group"))
		fail := c.failing[r.URL.Path]
		c.mu.Unlock()

		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		switch r.URL.Path {
		case stats.PathGender:
			w.Write([]byte(`{"Female":3,"Male":2}`))
		case stats.PathAge:
			w.Write([]byte(`{"18-25":4,"26-35":1}`))
		case stats.PathLanguage:
			w.Write([]byte(`{"de":2,"fr":3}`))
		case stats.PathActiveInactive:
			w.Write([]byte(`{"1":[4,1],"2":[3,3]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	c.client = stats.NewClient(c.backend.URL, c.backend.Client(), nil)
	return nil
}

func (c *groupSelectorContext) theUsersPageIsOpen() error {
	cfg := config.GetDefaults()
	catalog, order := cfg.Catalog()
	c.orch = groups.New(catalog, charts.GroupRenderers(), c.client, groups.Options{Order: order})
	t, err := c.orch.Select(context.Background(), model.GroupAll)
	if err != nil {
		return err
	}
	c.last = t
	return nil
}

func (c *groupSelectorContext) theBackendFails(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing[path] = true
	return nil
}

func (c *groupSelectorContext) iChooseGroup(raw string) error {
	group, err := model.ParseGroup(raw)
	if err != nil {
		c.err = err
		return nil
	}
	t, err := c.orch.Select(context.Background(), group)
	if err != nil {
		c.err = err
		return nil
	}
	c.last = t
	return nil
}

func (c *groupSelectorContext) iToggleTheDropdown() error {
	c.orch.Toggle()
	return nil
}

func (c *groupSelectorContext) iClickOutsideTheSelector() error {
	c.orch.OutsideClick()
	return nil
}

func (c *groupSelectorContext) theDropdownIs(state string) error {
	if open := c.orch.Open(); open != (state == "open") {
		return fmt.Errorf("expected the dropdown to be %s", state)
	}
	return nil
}

func (c *groupSelectorContext) theDropdownLabelIs(expected string) error {
	if c.last.Label != expected {
		return fmt.Errorf("expected label %q, got %q", expected, c.last.Label)
	}
	for _, item := range c.orch.Items() {
		if item.Active && item.Label != expected {
			return fmt.Errorf("active dropdown item is %q, want %q", item.Label, expected)
		}
	}
	return nil
}

func (c *groupSelectorContext) theGroupPanelIsHidden() error {
	if c.orch.Panel().Visible {
		return fmt.Errorf("expected the group panel to be hidden")
	}
	return nil
}

func (c *groupSelectorContext) theGroupPanelShows(description string) error {
	p := c.orch.Panel()
	if !p.Visible {
		return fmt.Errorf("expected the group panel to be visible")
	}
	if p.Info.Description != description {
		return fmt.Errorf("expected panel %q, got %q", description, p.Info.Description)
	}
	return nil
}

func tableColumn(t *godog.Table) []string {
	var out []string
	for _, row := range t.Rows {
		out = append(out, strings.TrimSpace(row.Cells[0].Value))
	}
	return out
}

func (c *groupSelectorContext) theCanvasesAre(expected *godog.Table) error {
	want := tableColumn(expected)
	if got := c.orch.Canvases(); !slices.Equal(got, want) {
		return fmt.Errorf("expected canvases %v, got %v", want, got)
	}
	return nil
}

func (c *groupSelectorContext) theDestroyedChartsAre(expected *godog.Table) error {
	want := tableColumn(expected)
	if !slices.Equal(c.last.Destroyed, want) {
		return fmt.Errorf("expected destroyed %v, got %v", want, c.last.Destroyed)
	}
	return nil
}

func (c *groupSelectorContext) theChartIsDrawn(canvas string) error {
	if _, ok := c.last.Charts[canvas]; !ok {
		return fmt.Errorf("chart %s was not drawn (errors: %v)", canvas, c.last.Errors)
	}
	inst, ok := c.orch.Registry().Get(canvas)
	if !ok || inst.Destroyed() {
		return fmt.Errorf("chart %s is not live in the registry", canvas)
	}
	return nil
}

func (c *groupSelectorContext) theChartFailed(canvas string) error {
	if _, ok := c.last.Errors[canvas]; !ok {
		return fmt.Errorf("expected chart %s to fail", canvas)
	}
	if _, ok := c.orch.Registry().Get(canvas); ok {
		return fmt.Errorf("failed chart %s must not be registered", canvas)
	}
	return nil
}

func (c *groupSelectorContext) theBackendWasAskedForStudyGroup(group string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.queries, group) {
		return fmt.Errorf("no request with study_group=%s (saw %v)", group, c.queries)
	}
	return nil
}

func (c *groupSelectorContext) stop() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// InitializeGroupSelectorScenario registers the group selector steps
func InitializeGroupSelectorScenario(ctx *godog.ScenarioContext, shared *sharedContext) {
	c := &groupSelectorContext{sharedContext: shared}

	ctx.Step(`^the statistics backend is running$`, c.theStatisticsBackendIsRunning)
	ctx.Step(`^the users page is open$`, c.theUsersPageIsOpen)
	ctx.Step(`^the backend fails "([^"]*)"$`, c.theBackendFails)
	ctx.Step(`^I choose group "([^"]*)"$`, c.iChooseGroup)
	ctx.Step(`^I toggle the dropdown$`, c.iToggleTheDropdown)
	ctx.Step(`^I click outside the selector$`, c.iClickOutsideTheSelector)
	ctx.Step(`^the dropdown is (open|closed)$`, c.theDropdownIs)
	ctx.Step(`^the dropdown label is "([^"]*)"$`, c.theDropdownLabelIs)
	ctx.Step(`^the group panel is hidden$`, c.theGroupPanelIsHidden)
	ctx.Step(`^the group panel shows "([^"]*)"$`, c.theGroupPanelShows)
	ctx.Step(`^the canvases are:$`, c.theCanvasesAre)
	ctx.Step(`^the destroyed charts are:$`, c.theDestroyedChartsAre)
	ctx.Step(`^the chart "([^"]*)" is drawn$`, c.theChartIsDrawn)
	ctx.Step(`^the chart "([^"]*)" failed$`, c.theChartFailed)
	ctx.Step(`^the backend was asked for study group "([^"]*)"$`, c.theBackendWasAskedForStudyGroup)

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		c.stop()
		return ctx, nil
	})
}
