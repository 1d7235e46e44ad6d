// Package assets embeds the dashboard's static files.
package assets

import "embed"

// Static holds everything served under /static/
//
//go:embed static
var Static embed.FS

// DashboardJS is the page script, inlined into the static report
//
//go:embed static/dashboard.js
var DashboardJS string

// DashboardCSS is the page stylesheet, inlined into the static report
//
//go:embed static/dashboard.css
var DashboardCSS string
