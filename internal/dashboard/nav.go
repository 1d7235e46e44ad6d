package dashboard

import (
	"net/url"
	"path"
)

// Form classes that ask for confirmation before submitting
const (
	FormDeleteMeal    = "delete-form"
	FormWelcome       = "confirm-form"
	FormParticipation = "participation-form"
)

var confirmMessages = map[string]string{
	FormDeleteMeal:    "Are you sure you want to remove this meal?",
	FormWelcome:       "Are you sure you want to send a welcome message to this user ?",
	FormParticipation: "Are you sure you to update the participation status of this user?",
}

// ConfirmMessage returns the confirmation question for a form class
func ConfirmMessage(formClass string) (string, bool) {
	msg, ok := confirmMessages[formClass]
	return msg, ok
}

// ConfirmMessages returns every form class with its question
func ConfirmMessages() map[string]string {
	out := make(map[string]string, len(confirmMessages))
	for k, v := range confirmMessages {
		out[k] = v
	}
	return out
}

// Navbar class names. Clicking the toggle adds or removes ActiveClass on
// both the toggle and the menu.
const (
	NavbarToggleClass = "navbar-toggle"
	NavbarMenuClass   = "navbar-menu"
	NavbarItemClass   = "navbar-menu-item"
	ActiveClass       = "active"
)

// NavItem is one navbar link
type NavItem struct {
	Label string
	Href  string
	// Active marks the link of the current page
	Active bool
	// Reload is set when following the link would land on the current page;
	// the browser reloads in place instead of navigating
	Reload bool
}

type navLink struct {
	label string
	href  string
}

var navLinks = []navLink{
	{"Home", "/"},
	{"Users", "/users"},
	{"Meals", "/meals"},
	{"Messages", "/messages"},
}

// NavItems returns the navbar for the page at current. Table pages are
// appended after the fixed links.
func NavItems(current string, tables []TableLink) []NavItem {
	cur := cleanPath(current)
	items := make([]NavItem, 0, len(navLinks)+len(tables))
	add := func(label, href string) {
		same := cleanPath(href) == cur
		items = append(items, NavItem{Label: label, Href: href, Active: same, Reload: same})
	}
	for _, l := range navLinks {
		add(l.label, l.href)
	}
	for _, t := range tables {
		add(t.Title, t.Href)
	}
	return items
}

// TableLink points at one configured table page
type TableLink struct {
	Name  string
	Title string
	Href  string
}

func tableHref(name string) string {
	return "/tables/" + url.PathEscape(name)
}

// cleanPath drops the query and trailing slash so "/users/?group=2"
// and "/users" compare equal
func cleanPath(p string) string {
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}

// Anchor is an in-page link scrolled to smoothly
type Anchor struct {
	Target string
	Label  string
}

// Href returns the fragment link of the anchor
func (a Anchor) Href() string {
	return "#" + a.Target
}
