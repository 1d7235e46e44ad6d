package dashboard

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/Masterminds/sprig/v3"

	"github.com/drew/studydash/internal/charts"
)

// Page template names
const (
	pageHome   = "home"
	pageCharts = "charts"
	pageUsers  = "users"
	pageTable  = "table"
	pageReport = "report"
)

var pageTemplates = map[string]string{
	pageHome:   homeTemplate,
	pageCharts: chartsTemplate,
	pageUsers:  usersTemplate,
	pageTable:  tableTemplate,
	pageReport: reportTemplate,
}

// funcMap is sprig's functions plus the dashboard helpers
func funcMap() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["confirmMessage"] = func(class string) string {
		msg, _ := ConfirmMessage(class)
		return msg
	}
	funcs["canvasTitle"] = canvasTitle
	funcs["withQuery"] = withQuery
	funcs["percent"] = func(part, total int) string {
		if total == 0 {
			return "0.0%"
		}
		return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
	}
	return funcs
}

// parseTemplates builds one template set per page, each sharing the layout
func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.New("layout").Funcs(funcMap()).Parse(layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageTemplates))
	for name, src := range pageTemplates {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.Parse(src); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

var canvasTitles = map[string]string{
	charts.CanvasMealRetention:      "Meals Logged by Hour",
	charts.CanvasLoggingFrequency:   "Meal Logging Frequency",
	charts.CanvasMealsPerDay:        "Meals per Day by Study Group",
	charts.CanvasCohortRetention:    "Cohort Retention",
	charts.CanvasMessageStats:       "Messages per Day",
	charts.CanvasGroupMessages:      "Active Users per Study Group",
	charts.CanvasUserMessagesByHour: "User Messages by Hour",
	charts.CanvasGender:             "Gender",
	charts.CanvasAge:                "Age",
	charts.CanvasLanguage:           "Language",
	charts.CanvasActiveInactive:     "Active vs Inactive Users",
}

// canvasTitle returns the heading of a canvas, ignoring any group suffix
func canvasTitle(id string) string {
	for base, title := range canvasTitles {
		if id == base || strings.HasPrefix(id, base+"Group") {
			return title
		}
	}
	return id
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

const layoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{ .Title }} · studydash</title>
{{- if .InlineCSS }}
<style>{{ .InlineCSS }}</style>
{{- else }}
<link rel="stylesheet" href="/static/dashboard.css">
{{- end }}
</head>
<body>
<nav class="navbar">
  <span class="navbar-brand">studydash</span>
  <button class="navbar-toggle" type="button" aria-label="Toggle navigation">☰</button>
  <ul class="navbar-menu">
  {{- range .Nav }}
    <li><a class="navbar-menu-item{{ if .Active }} active{{ end }}" href="{{ .Href }}"{{ if .Reload }} data-reload="true"{{ end }}>{{ .Label }}</a></li>
  {{- end }}
  </ul>
  <span class="study-timer">⏱ <span id="live-timer" data-start-date="{{ .StartDate }}">{{ .Timer }}</span></span>
</nav>
{{- if .Anchors }}
<nav class="page-anchors">
  {{- range .Anchors }}
  <a href="{{ .Href }}">{{ .Label }}</a>
  {{- end }}
</nav>
{{- end }}
<main data-live="{{ .Live }}">
{{ template "content" . }}
</main>
<script type="application/json" id="chart-data">{{ .Charts }}</script>
<script type="application/json" id="confirm-messages">{{ .Confirm }}</script>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
{{- if .InlineJS }}
<script>{{ .InlineJS }}</script>
{{- else }}
<script src="/static/dashboard.js"></script>
{{- end }}
</body>
</html>
`

const homeTemplate = `{{ define "content" }}
<section id="status" class="card">
  <h1>Study Dashboard</h1>
  {{- if .Body.Started }}
  <p>Study running for <strong>{{ .Timer }}</strong> since {{ .Body.Start | date "2006-01-02 15:04" }}.</p>
  {{- else }}
  <p class="muted">{{ .Timer }}</p>
  {{- end }}
  <p>Backend: <code>{{ .Body.Backend }}</code></p>
</section>
<section id="groups" class="card">
  <h2>Study Groups</h2>
  <table class="group-table">
    <thead><tr><th>Group</th><th>Description</th><th>Members</th></tr></thead>
    <tbody>
    {{- range .Body.Groups }}
      <tr>
        <td>{{ range .Info.Icons }}<i class="{{ . }}"></i> {{ end }}{{ .Info.Name | default .Group.Label }}</td>
        <td>{{ .Info.Description | default "No description" }}</td>
        <td>{{ .Info.Count }}</td>
      </tr>
    {{- end }}
    </tbody>
    <tfoot><tr><td colspan="2">Total</td><td>{{ .Body.Members }}</td></tr></tfoot>
  </table>
</section>
<section id="tables" class="card">
  <h2>Data Tables</h2>
  <ul>
  {{- range .Body.Tables }}
    <li><a href="{{ .Href }}">{{ .Title | title }}</a></li>
  {{- else }}
    <li class="muted">No tables configured</li>
  {{- end }}
  </ul>
</section>
{{ end }}`

const chartsTemplate = `{{ define "content" }}
<h1>{{ .Title }}</h1>
<div class="chart-grid">
{{- range .Body.Canvases }}
  <section class="chart-card" id="{{ . }}Card">
    <h2>{{ canvasTitle . }}</h2>
    <canvas id="{{ . }}"></canvas>
    {{- if not (index $.Charts .) }}
    <p class="chart-empty">No data available</p>
    {{- end }}
  </section>
{{- end }}
</div>
{{ end }}`

const usersTemplate = `{{ define "content" }}
<h1>{{ .Title }}</h1>
<div class="group-selector">
  <button id="groupSelector" class="group-selector-button" type="button">{{ .Body.Label }} ▾</button>
  <div id="dropdownMenu" class="dropdown-menu">
  {{- range .Body.Items }}
    <a class="dropdown-item{{ if .Active }} active{{ end }}" data-group="{{ .Group }}" href="/users?group={{ .Group }}">{{ .Label }}</a>
  {{- end }}
  </div>
  <span id="loadingIndicator" class="loading" hidden>Loading…</span>
</div>
<section id="groupPanel" class="card group-panel"{{ if not .Body.Panel.Visible }} hidden{{ end }}>
  <h2 id="groupPanelName">{{ .Body.Panel.Info.Name }}</h2>
  <p id="groupPanelIcons">{{ range .Body.Panel.Info.Icons }}<i class="{{ . }}"></i> {{ end }}</p>
  <p id="groupPanelDescription">{{ .Body.Panel.Info.Description }}</p>
  <p><span id="groupPanelCount">{{ .Body.Panel.Info.Count }}</span> members</p>
</section>
<div class="chart-grid">
{{- range .Body.Canvases }}
  <section class="chart-card">
    <h2>{{ canvasTitle . }}</h2>
    <canvas id="{{ . }}"></canvas>
  </section>
{{- end }}
</div>
{{ end }}`

const tableTemplate = `{{ define "content" }}
<h1>{{ .Title }}</h1>
{{- with .Body }}
{{- if .Error }}
<p class="error">{{ .Error }}</p>
{{- else }}
<button id="data-toggle" class="collapsible" type="button" data-show-text="{{ .ShowText }}" data-hide-text="{{ .HideText }}">{{ .HideText }} <span class="icon rotate">▾</span></button>
<div class="content show">
<form class="table-controls" method="get" action="{{ .Path }}">
  <input type="search" name="q" value="{{ .View.Search }}" placeholder="Search all columns">
  {{- range .View.Controls }}
  <select name="f{{ .Column }}" aria-label="{{ .Header }}">
    <option value="">{{ .Label }}</option>
    {{- $selected := .Selected }}
    {{- range .Options }}
    <option value="{{ .Value }}"{{ if eq .Value $selected }} selected{{ end }}>{{ .Text }}</option>
    {{- end }}
  </select>
  {{- end }}
  {{- range $name, $value := .FilterHidden }}
  <input type="hidden" name="{{ $name }}" value="{{ $value }}">
  {{- end }}
  <button type="submit">Apply</button>
</form>
{{- if .Chips }}
<div class="filter-chips">
  {{- range .Chips }}
  <a class="chip" href="{{ .ClearURL }}">{{ .Text }} ✕</a>
  {{- end }}
  <a class="chip clear-all" href="{{ .ClearAllURL }}">Clear all</a>
</div>
{{- end }}
<table class="data-table">
  <thead><tr>{{ range .View.Headers }}<th>{{ . }}</th>{{ end }}</tr></thead>
  <tbody>
  {{- range .View.Rows }}
    <tr>{{ range . }}<td>{{ . }}</td>{{ end }}</tr>
  {{- else }}
    <tr class="empty"><td colspan="{{ len .View.Headers }}">No matching entries</td></tr>
  {{- end }}
  </tbody>
</table>
<div id="pagination-controls" class="pagination">
  <span class="summary">{{ .View.Summary }}</span>
  {{ if .View.Pagination.First }}<a href="{{ .FirstURL }}">« First</a>{{ else }}<span class="disabled">« First</span>{{ end }}
  {{ if .View.Pagination.Prev }}<a href="{{ .PrevURL }}">‹ Prev</a>{{ else }}<span class="disabled">‹ Prev</span>{{ end }}
  <form method="get" action="{{ .Path }}" class="page-input">
    {{- range $name, $value := .PageHidden }}
    <input type="hidden" name="{{ $name }}" value="{{ $value }}">
    {{- end }}
    Page <input type="number" name="page" value="{{ .View.Pagination.InputValue }}" min="{{ .View.Pagination.InputMin }}" max="{{ .View.Pagination.InputMax }}"> of {{ .View.Pagination.TotalPages }}
  </form>
  {{ if .View.Pagination.Next }}<a href="{{ .NextURL }}">Next ›</a>{{ else }}<span class="disabled">Next ›</span>{{ end }}
  {{ if .View.Pagination.Last }}<a href="{{ .LastURL }}">Last »</a>{{ else }}<span class="disabled">Last »</span>{{ end }}
  <span class="per-page">
  {{- range .PerPage }}
    {{ if .Selected }}<strong>{{ .Size }}</strong>{{ else }}<a href="{{ .URL }}">{{ .Size }}</a>{{ end }}
  {{- end }}
  per page</span>
</div>
</div>
{{- end }}
{{- end }}
{{ end }}`

const reportTemplate = `{{ define "content" }}
<h1>{{ .Title }}</h1>
<p class="muted">Generated {{ .Body.Generated | date "2006-01-02 15:04:05" }} from <code>{{ .Body.Backend }}</code></p>
{{- range .Body.Sections }}
<section id="{{ .ID }}" class="card">
  <h2>{{ .Title }}</h2>
  <div class="chart-grid">
  {{- range .Canvases }}
    <div class="chart-card">
      <h3>{{ canvasTitle . }}</h3>
      <canvas id="{{ . }}"></canvas>
      {{- if not (index $.Charts .) }}
      <p class="chart-empty">No data available</p>
      {{- end }}
    </div>
  {{- end }}
  </div>
</section>
{{- end }}
{{- if .Body.Failed }}
<section class="card">
  <h2>Charts without data</h2>
  <ul>{{ range .Body.Failed }}<li>{{ canvasTitle . }}</li>{{ end }}</ul>
</section>
{{- end }}
{{ end }}`
