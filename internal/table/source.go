package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/drew/studydash/internal/model"
)

// ErrNoTable means an HTML source holds no .data-table
var ErrNoTable = errors.New("no data-table found")

// Load reads a table source in the given format ("csv" or "html")
func Load(format string, r io.Reader) (Data, error) {
	switch format {
	case "", "csv":
		return FromCSV(r)
	case "html":
		return FromHTML(r)
	default:
		return Data{}, fmt.Errorf("unsupported table format %q", format)
	}
}

// FromCSV reads a header line followed by body rows. Rows may be ragged.
func FromCSV(r io.Reader) (Data, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Data{}, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return Data{}, nil
	}

	data := Data{Headers: trimAll(records[0])}
	for _, rec := range records[1:] {
		data.Rows = append(data.Rows, model.Row(trimAll(rec)))
	}
	return data, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// FromHTML reads the first table with class "data-table": headers from its
// thead th cells, rows from its tbody tr elements.
func FromHTML(r io.Reader) (Data, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Data{}, fmt.Errorf("failed to parse html: %w", err)
	}

	tbl := find(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && hasClass(n, "data-table")
	})
	if tbl == nil {
		return Data{}, ErrNoTable
	}

	var data Data
	if thead := find(tbl, isAtom(atom.Thead)); thead != nil {
		for _, th := range findAll(thead, isAtom(atom.Th)) {
			data.Headers = append(data.Headers, text(th))
		}
	}
	if tbody := find(tbl, isAtom(atom.Tbody)); tbody != nil {
		for _, tr := range findAll(tbody, isAtom(atom.Tr)) {
			var row model.Row
			for _, td := range findAll(tr, func(n *html.Node) bool {
				return n.DataAtom == atom.Td || n.DataAtom == atom.Th
			}) {
				row = append(row, text(td))
			}
			data.Rows = append(data.Rows, row)
		}
	}
	return data, nil
}

func isAtom(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && n.DataAtom == a }
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && fieldsContain(strings.Fields(attr.Val), class) {
			return true
		}
	}
	return false
}

func fieldsContain(fields []string, s string) bool {
	for _, f := range fields {
		if f == s {
			return true
		}
	}
	return false
}

// find returns the first descendant of n matching pred, depth first
func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && pred(c) {
			return c
		}
		if found := find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant of n matching pred without descending
// into matches
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && pred(c) {
			out = append(out, c)
			continue
		}
		out = append(out, findAll(c, pred)...)
	}
	return out
}

// text returns the text content of n with whitespace collapsed
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
