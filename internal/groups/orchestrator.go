// Package groups implements the study-group selector of the users page.
//
// An Orchestrator owns the selected group, the registry of live charts and
// a generation counter. Every selection starts a new generation; chart
// results that come back for an older generation are dropped.
package groups

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/drew/studydash/internal/charts"
	"github.com/drew/studydash/internal/model"
)

var (
	// ErrUnknownGroup means a selection outside the catalog
	ErrUnknownGroup = errors.New("unknown study group")
	// ErrCanvasMissing means the page has no canvas for a group chart
	ErrCanvasMissing = charts.ErrCanvasMissing
)

var groupSuffix = regexp.MustCompile(`Group\d+$`)

// Retarget rewrites a canvas id for group: any trailing GroupN suffix is
// replaced by the group's suffix, or removed for all groups.
func Retarget(id string, group model.Group) string {
	return groupSuffix.ReplaceAllString(id, "") + group.Suffix()
}

// Options configures an Orchestrator
type Options struct {
	// Order lists the catalog groups as shown in the dropdown
	Order []model.Group
	// Canvases are the canvas ids present on the page; nil means the base
	// canvas of every renderer
	Canvases []string
	// Selected is the group the page was rendered for, all groups when empty
	Selected model.Group
	// Drawn are canvases the page already holds a chart on. They are
	// registered so the first selection destroys them.
	Drawn []string
	// LoadingMin is the minimum time the loading indicator stays on
	LoadingMin time.Duration
	Logger     *slog.Logger
}

// Item is one dropdown entry
type Item struct {
	Group  model.Group
	Label  string
	Active bool
}

// Panel is the group information panel
type Panel struct {
	Visible bool
	Group   model.Group
	Info    model.GroupInfo
}

// Transition is the result of a selection
type Transition struct {
	Group      model.Group
	Label      string
	Generation uint64
	Items      []Item
	// Destroyed lists the canvases whose chart was destroyed
	Destroyed []string
	// Canvases maps each canvas id before the selection to its new id
	Canvases map[string]string
	Panel    Panel
	// Charts holds the charts that rendered, keyed by canvas id
	Charts map[string]*charts.Chart
	// Errors holds the failed charts, keyed by canvas id
	Errors map[string]error
	// Open is the dropdown state once the selection finished
	Open bool
	// Stale is set when a newer selection started before this one finished;
	// such a transition registers nothing
	Stale bool
}

// Orchestrator drives the group selector. It is safe for concurrent use.
type Orchestrator struct {
	catalog    map[model.Group]model.GroupInfo
	order      []model.Group
	renderers  []charts.Renderer
	src        charts.Source
	logger     *slog.Logger
	loadingMin time.Duration

	mu         sync.Mutex
	selected   model.Group
	generation uint64
	open       bool
	loading    bool
	canvases   []string
	registry   *Registry
}

// New returns an orchestrator over catalog. The group renderers' base
// canvases are the initial canvases.
func New(catalog map[model.Group]model.GroupInfo, renderers []charts.Renderer, src charts.Source, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	order := opts.Order
	if order == nil {
		for g := range catalog {
			order = append(order, g)
		}
	}

	canvases := append([]string(nil), opts.Canvases...)
	if opts.Canvases == nil {
		for _, r := range renderers {
			canvases = append(canvases, r.Canvas())
		}
	}

	registry := NewRegistry()
	for _, id := range opts.Drawn {
		registry.Register(&Instance{Canvas: id})
	}

	return &Orchestrator{
		catalog:    catalog,
		order:      order,
		renderers:  renderers,
		src:        src,
		logger:     logger,
		loadingMin: opts.LoadingMin,
		selected:   normalize(opts.Selected),
		canvases:   canvases,
		registry:   registry,
	}
}

// Registry returns the live chart registry
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Selected returns the selected group
func (o *Orchestrator) Selected() model.Group {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selected
}

// Generation returns the generation of the latest selection
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

// Loading reports whether the latest selection is still rendering
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Canvases returns the current canvas ids
func (o *Orchestrator) Canvases() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.canvases...)
}

// Open reports whether the dropdown is open
func (o *Orchestrator) Open() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// Toggle opens or closes the dropdown
func (o *Orchestrator) Toggle() {
	o.mu.Lock()
	o.open = !o.open
	o.mu.Unlock()
}

// Close closes the dropdown
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.open = false
	o.mu.Unlock()
}

// OutsideClick handles a click outside the selector, closing an open dropdown
func (o *Orchestrator) OutsideClick() {
	o.Close()
}

// Items returns the dropdown entries with the selected one marked
func (o *Orchestrator) Items() []Item {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.itemsLocked()
}

func (o *Orchestrator) itemsLocked() []Item {
	items := []Item{{Group: model.GroupAll, Label: o.label(model.GroupAll), Active: o.selected.IsAll()}}
	for _, g := range o.order {
		items = append(items, Item{Group: g, Label: o.label(g), Active: g == o.selected})
	}
	return items
}

func (o *Orchestrator) label(g model.Group) string {
	if info, ok := o.catalog[g]; ok && info.Name != "" {
		return info.Name
	}
	return g.Label()
}

// Panel returns the panel for the selected group
func (o *Orchestrator) Panel() Panel {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.panelLocked()
}

func (o *Orchestrator) panelLocked() Panel {
	if o.selected.IsAll() {
		return Panel{Group: model.GroupAll}
	}
	return Panel{Visible: true, Group: o.selected, Info: o.catalog[o.selected]}
}

type chartResult struct {
	canvas string
	chart  *charts.Chart
	err    error
}

// Select switches to group. It destroys every live chart, retargets the
// canvases, then renders the group charts concurrently. Failed charts are
// logged and left out. The call returns once every chart finished and the
// minimum loading time elapsed.
func (o *Orchestrator) Select(ctx context.Context, group model.Group) (*Transition, error) {
	if !group.IsAll() {
		if _, ok := o.catalog[group]; !ok {
			return nil, fmt.Errorf("group %s: %w", group, ErrUnknownGroup)
		}
	}
	group = normalize(group)
	start := time.Now()

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.selected = group
	o.open = false
	o.loading = true

	t := &Transition{
		Group:      group,
		Label:      o.label(group),
		Generation: gen,
		Items:      o.itemsLocked(),
		Destroyed:  o.registry.DestroyAll(),
		Canvases:   make(map[string]string, len(o.canvases)),
		Panel:      o.panelLocked(),
		Charts:     map[string]*charts.Chart{},
		Errors:     map[string]error{},
	}
	present := make(map[string]bool, len(o.canvases))
	for i, id := range o.canvases {
		next := Retarget(id, group)
		t.Canvases[id] = next
		o.canvases[i] = next
		present[next] = true
	}
	o.mu.Unlock()

	results := o.render(ctx, group, present)

	if wait := o.loadingMin - time.Since(start); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		timer.Stop()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		o.logger.Debug("discarding stale group transition", "group", group, "generation", gen, "current", o.generation)
		t.Stale = true
		t.Charts = nil
		return t, nil
	}

	for _, r := range results {
		if r.err != nil {
			t.Errors[r.canvas] = r.err
			continue
		}
		t.Charts[r.canvas] = r.chart
		o.registry.Register(&Instance{Canvas: r.canvas, Chart: r.chart, Generation: gen})
	}
	o.loading = false
	t.Open = o.open
	return t, nil
}

func (o *Orchestrator) render(ctx context.Context, group model.Group, present map[string]bool) []chartResult {
	p := pool.New().WithMaxGoroutines(len(o.renderers) + 1)
	resultsChan := make(chan chartResult, len(o.renderers))

	for _, r := range o.renderers {
		canvas := charts.CanvasID(r, group)
		if !present[canvas] {
			o.logger.Warn("canvas not found, skipping chart", "canvas", canvas)
			resultsChan <- chartResult{canvas: canvas, err: ErrCanvasMissing}
			continue
		}
		p.Go(func() {
			chart, err := r.Render(ctx, o.src, group)
			charts.Log(o.logger, canvas, err)
			resultsChan <- chartResult{canvas: canvas, chart: chart, err: err}
		})
	}

	p.Wait()
	close(resultsChan)

	var results []chartResult
	for r := range resultsChan {
		results = append(results, r)
	}
	return results
}

func normalize(g model.Group) model.Group {
	if g.IsAll() {
		return model.GroupAll
	}
	return g
}
