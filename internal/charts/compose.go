package charts

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/drew/studydash/internal/model"
)

// Result is the outcome of one renderer during composition
type Result struct {
	Canvas string
	Chart  *Chart
	Err    error
}

// Compose renders a page's charts concurrently. Renderers whose canvas is
// not in canvases are skipped with a warning; a nil canvases set renders
// everything. Each failure is logged once and leaves the other charts
// untouched. The charts that succeeded are returned keyed by canvas id.
func Compose(ctx context.Context, src Source, renderers []Renderer, canvases map[string]bool, logger *slog.Logger) map[string]*Chart {
	charts := make(map[string]*Chart)
	for _, r := range ComposeResults(ctx, src, renderers, model.GroupAll, canvases, logger) {
		if r.Err == nil {
			charts[r.Canvas] = r.Chart
		}
	}
	return charts
}

// ComposeResults is Compose for one group, keeping the per-renderer outcome
// in renderer order
func ComposeResults(ctx context.Context, src Source, renderers []Renderer, group model.Group, canvases map[string]bool, logger *slog.Logger) []Result {
	results := make([]Result, len(renderers))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(10)

	for i, r := range renderers {
		canvas := CanvasID(r, group)
		if canvases != nil && !canvases[canvas] {
			logger.Warn("canvas not found, skipping chart", "canvas", canvas)
			results[i] = Result{Canvas: canvas, Err: ErrCanvasMissing}
			continue
		}

		g.Go(func() error {
			chart, err := r.Render(ctx, src, group)
			Log(logger, canvas, err)

			mu.Lock()
			results[i] = Result{Canvas: canvas, Chart: chart, Err: err}
			mu.Unlock()
			// Failures never cancel sibling charts.
			return nil
		})
	}
	g.Wait()

	return results
}

// Log reports a render outcome at the level its failure class calls for
func Log(logger *slog.Logger, canvas string, err error) {
	switch {
	case err == nil:
		logger.Debug("chart rendered", "canvas", canvas)
	case errors.Is(err, ErrNoData):
		logger.Warn("no data available for chart", "canvas", canvas)
	case errors.Is(err, context.Canceled):
		logger.Debug("chart render canceled", "canvas", canvas)
	default:
		logger.Error("error rendering chart", "canvas", canvas, "err", err)
	}
}
