package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/drew/studydash/internal/charts"
	"github.com/drew/studydash/internal/config"
	"github.com/drew/studydash/internal/groups"
	"github.com/drew/studydash/internal/model"
	"github.com/drew/studydash/internal/table"
)

// pageData is what the layout renders; Body is the page-specific part
type pageData struct {
	Title     string
	Nav       []NavItem
	Anchors   []Anchor
	StartDate string
	Timer     string
	Live      string
	Charts    map[string]*charts.Chart
	Confirm   map[string]string
	InlineCSS template.CSS
	InlineJS  template.JS
	Body      any
}

func (s *Server) page(r *http.Request, cfg config.Config, title string) pageData {
	start, known := ParseStart(cfg.Server.StudyStart)
	data := pageData{
		Title:   title,
		Nav:     NavItems(r.URL.Path, tableLinks(cfg)),
		Timer:   TimerText(start, known, s.now()),
		Live:    "/live",
		Confirm: ConfirmMessages(),
	}
	if known {
		data.StartDate = start.Format(time.RFC3339)
	}
	return data
}

func tableLinks(cfg config.Config) []TableLink {
	var links []TableLink
	for _, name := range cfg.TableNames() {
		links = append(links, TableLink{Name: name, Title: cfg.Tables[name].Title, Href: tableHref(name)})
	}
	return links
}

type groupRow struct {
	Group model.Group
	Info  model.GroupInfo
}

type homeBody struct {
	Started bool
	Start   time.Time
	Backend string
	Groups  []groupRow
	Members int
	Tables  []TableLink
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.current()
	data := s.page(r, cfg, "Home")
	data.Anchors = []Anchor{
		{Target: "status", Label: "Status"},
		{Target: "groups", Label: "Groups"},
		{Target: "tables", Label: "Tables"},
	}

	catalog, order := cfg.Catalog()
	body := homeBody{Backend: cfg.Server.Backend, Tables: tableLinks(cfg)}
	body.Start, body.Started = ParseStart(cfg.Server.StudyStart)
	if body.Started && s.now().Before(body.Start) {
		body.Started = false
	}
	for _, g := range order {
		body.Groups = append(body.Groups, groupRow{Group: g, Info: catalog[g]})
		body.Members += catalog[g].Count
	}
	data.Body = body

	s.render(w, r, http.StatusOK, pageHome, data)
}

type chartsBody struct {
	Canvases []string
}

func canvasIDs(renderers []charts.Renderer) []string {
	ids := make([]string, len(renderers))
	for i, r := range renderers {
		ids[i] = r.Canvas()
	}
	return ids
}

// handleCharts serves a page of charts that do not depend on the group
func (s *Server) handleCharts(title string, page func() []charts.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, backend := s.current()
		logger := loggerFrom(r.Context(), s.logger)
		renderers := page()

		data := s.page(r, cfg, title)
		data.Charts = charts.Compose(r.Context(), backend, renderers, nil, logger)
		data.Body = chartsBody{Canvases: canvasIDs(renderers)}

		s.render(w, r, http.StatusOK, pageCharts, data)
	}
}

type usersBody struct {
	Label    string
	Items    []groups.Item
	Panel    groups.Panel
	Canvases []string
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	cfg, backend := s.current()
	logger := loggerFrom(r.Context(), s.logger)

	group, err := model.ParseGroup(r.URL.Query().Get("group"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	catalog, order := cfg.Catalog()
	renderers := charts.GroupRenderers()
	o := groups.New(catalog, renderers, backend, groups.Options{Order: order, Logger: logger})
	t, err := o.Select(r.Context(), group)
	if errors.Is(err, groups.ErrUnknownGroup) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("group selection failed", "group", group, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	body := usersBody{Label: t.Label, Items: t.Items, Panel: t.Panel}
	for _, rd := range renderers {
		body.Canvases = append(body.Canvases, t.Canvases[rd.Canvas()])
	}

	data := s.page(r, cfg, "Users")
	data.Charts = t.Charts
	data.Live = withQuery("/live", url.Values{"group": {string(t.Group)}})
	data.Body = body

	s.render(w, r, http.StatusOK, pageUsers, data)
}

type chipLink struct {
	Text     string
	ClearURL string
}

type perPageLink struct {
	Size     int
	Selected bool
	URL      string
}

type tableBody struct {
	Path         string
	Error        string
	ShowText     string
	HideText     string
	View         table.View
	FirstURL     string
	PrevURL      string
	NextURL      string
	LastURL      string
	ClearAllURL  string
	Chips        []chipLink
	PerPage      []perPageLink
	FilterHidden map[string]string
	PageHidden   map[string]string
}

// ToggleTexts returns the captions of the collapsible table toggle
func ToggleTexts(title string) (show, hide string) {
	return "Show " + title + " Table & Filters", "Hide " + title + " Table & Filters"
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	cfg, backend := s.current()
	logger := loggerFrom(r.Context(), s.logger)

	name := r.PathValue("name")
	src, ok := cfg.Tables[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := s.page(r, cfg, src.Title)
	body := tableBody{Path: tableHref(name)}
	body.ShowText, body.HideText = ToggleTexts(src.Title)

	st, err := s.loadTable(r, cfg, backend, src)
	if err != nil {
		logger.Error("failed to load table", "table", name, "source", src.Source, "err", err)
		body.Error = fmt.Sprintf("Could not load %s: %v", src.Title, err)
		data.Body = body
		s.render(w, r, http.StatusBadGateway, pageTable, data)
		return
	}
	st.FromQuery(r.URL.Query())

	fillTableBody(&body, st)
	data.Body = body
	s.render(w, r, http.StatusOK, pageTable, data)
}

func (s *Server) loadTable(r *http.Request, cfg config.Config, backend Backend, src config.TableSource) (*table.State, error) {
	raw, err := backend.TableSource(r.Context(), src.Source)
	if err != nil {
		return nil, err
	}
	td, err := table.Load(src.Format, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return table.New(td.Headers, td.Rows, table.Options{
		PageSize: cfg.Table.DefaultPageSize,
		Keywords: cfg.Table.FilterKeywords,
	}), nil
}

// fillTableBody builds the view plus every link the controls need. Each
// link is the current query with one change applied.
func fillTableBody(body *tableBody, st *table.State) {
	link := func(change func(*table.State)) string {
		return withQuery(body.Path, st.With(change))
	}

	body.View = st.DisplayRows()
	body.FirstURL = link((*table.State).First)
	body.PrevURL = link((*table.State).Prev)
	body.NextURL = link((*table.State).Next)
	body.LastURL = link((*table.State).Last)
	body.ClearAllURL = link((*table.State).ClearAll)

	for _, chip := range body.View.Chips {
		body.Chips = append(body.Chips, chipLink{
			Text: chip.Text(),
			ClearURL: link(func(t *table.State) {
				if chip.Global() {
					t.ClearSearch()
				} else {
					t.ClearFilter(chip.Column)
				}
			}),
		})
	}

	for _, opt := range body.View.Pagination.PerPage {
		size := opt.Size
		body.PerPage = append(body.PerPage, perPageLink{
			Size:     size,
			Selected: opt.Selected,
			URL:      link(func(t *table.State) { _ = t.SetPageSize(size) }),
		})
	}

	// Submitting the filter form resets the page; the page form keeps
	// everything but the page.
	q := st.Query()
	body.FilterHidden = map[string]string{}
	if per := q.Get(table.ParamPerPage); per != "" {
		body.FilterHidden[table.ParamPerPage] = per
	}
	body.PageHidden = map[string]string{}
	for key := range q {
		if key != table.ParamPage {
			body.PageHidden[key] = q.Get(key)
		}
	}
}
