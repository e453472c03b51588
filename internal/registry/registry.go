// Package registry extracts the selectable items of a site page.
package registry

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selector matches every selectable element, in document order.
const Selector = ".menu-item, .database-card, .file-card"

const (
	targetAttr      = "data-url"
	statusSelector  = ".status-indicator span"
	refLinkSelector = ".breacher-link"
)

// Role is the display role of a selectable item.
type Role int

const (
	RoleMenu Role = iota
	RoleRecord
	RoleFile
)

func (r Role) String() string {
	switch r {
	case RoleMenu:
		return "menu"
	case RoleRecord:
		return "record"
	case RoleFile:
		return "file"
	}
	return "unknown"
}

// Item is one selectable element of the page.
type Item struct {
	Role        Role
	Target      string
	Title       string
	Description string
	// HasStatus is set when the element carries a status indicator to annotate.
	HasStatus bool
	// StatusText is the indicator's text as authored in the page.
	StatusText string
	Position   int
}

// External reports whether the item leaves the site.
func (i Item) External() bool {
	return IsExternal(i.Target)
}

// Link is an explicitly marked external reference link.
type Link struct {
	Text string
	Href string
}

// ProbeTarget is an element whose external target gets a status probe.
// Item is the index into Page.Items, or -1 when the element is not selectable.
type ProbeTarget struct {
	Target    string
	Item      int
	HasStatus bool
}

// Page is the parsed view of one document.
type Page struct {
	Location string
	Title    string
	Heading  string
	Items    []Item
	Links    []Link
	Probes   []ProbeTarget
}

// IsExternal reports whether target points outside the site.
func IsExternal(target string) bool {
	return strings.HasPrefix(target, "http")
}

// Parse reads an HTML document and builds its page view.
func Parse(location string, r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", location, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	page := &Page{
		Location: location,
		Title:    collapse(doc.Find("title").First().Text()),
		Heading:  collapse(doc.Find("h1").First().Text()),
		Items:    Refresh(doc),
		Links:    referenceLinks(doc),
	}
	page.Probes = probeTargets(doc)
	return page, nil
}

// Refresh scans the document for selectable elements in document order.
func Refresh(doc *goquery.Document) []Item {
	var items []Item
	doc.Find(Selector).Each(func(i int, s *goquery.Selection) {
		items = append(items, itemFrom(s, i))
	})
	return items
}

func itemFrom(s *goquery.Selection, pos int) Item {
	target, _ := s.Attr(targetAttr)
	status := s.Find(statusSelector).First()

	item := Item{
		Role:      roleOf(s),
		Target:    strings.TrimSpace(target),
		Title:     titleOf(s),
		HasStatus: status.Length() > 0,
		Position:  pos,
	}
	if item.HasStatus {
		item.StatusText = collapse(status.Text())
	}
	item.Description = descriptionOf(s, item.Title)
	return item
}

func roleOf(s *goquery.Selection) Role {
	switch {
	case s.HasClass("database-card"):
		return RoleRecord
	case s.HasClass("file-card"):
		return RoleFile
	}
	return RoleMenu
}

func titleOf(s *goquery.Selection) string {
	if title, ok := s.Attr("data-title"); ok && strings.TrimSpace(title) != "" {
		return collapse(title)
	}
	heading := s.Find("h1, h2, h3, h4, .card-title, .menu-title, .file-name").First()
	if heading.Length() > 0 {
		if text := collapse(heading.Text()); text != "" {
			return text
		}
	}
	clone := s.Clone()
	clone.Find(".status-indicator").Remove()
	return collapse(clone.Text())
}

func descriptionOf(s *goquery.Selection, title string) string {
	desc := s.Find(".card-description, .description, p").First()
	if desc.Length() == 0 {
		return ""
	}
	text := collapse(desc.Text())
	if text == title {
		return ""
	}
	return text
}

func referenceLinks(doc *goquery.Document) []Link {
	var links []Link
	doc.Find(refLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		text := collapse(s.Text())
		if text == "" {
			text = href
		}
		links = append(links, Link{Text: text, Href: strings.TrimSpace(href)})
	})
	return links
}

// probeTargets lists every element with an external data-url, selectable or
// not, in document order.
func probeTargets(doc *goquery.Document) []ProbeTarget {
	index := make(map[*html.Node]int)
	doc.Find(Selector).Each(func(i int, s *goquery.Selection) {
		index[s.Get(0)] = i
	})

	var targets []ProbeTarget
	doc.Find("[" + targetAttr + "]").Each(func(_ int, s *goquery.Selection) {
		target, _ := s.Attr(targetAttr)
		target = strings.TrimSpace(target)
		if !IsExternal(target) {
			return
		}
		item := -1
		if i, ok := index[s.Get(0)]; ok {
			item = i
		}
		targets = append(targets, ProbeTarget{
			Target:    target,
			Item:      item,
			HasStatus: s.Find(statusSelector).Length() > 0,
		})
	})
	return targets
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
