package api

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/rss-notify/app/cache"
	"github.com/lysyi3m/rss-notify/app/feed"
)

// Generator renders a cached source view as an RSS 2.0 document.
type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

func (g *Generator) Run(view cache.View, selfLink string) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:dc="http://purl.org/dc/elements/1.1/">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(view.Publisher.Title, view.Key), 4)
	g.writeElement(&buf, "link", cmp.Or(view.Publisher.HttpLink, view.Key), 4)
	description := view.Publisher.Description
	if description == "" {
		description = fmt.Sprintf("Cached feed from %s", view.Key)
	}
	g.writeElement(&buf, "description", description, 4)

	if selfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(selfLink)))
	}

	// Dates are passed through as found in the source document
	g.writeElement(&buf, "pubDate", view.Publisher.PublishDate, 4)

	lastBuildDate := view.LastUpdate
	if lastBuildDate.IsZero() {
		lastBuildDate = time.Now().In(time.Local)
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("RSS-Notify/%s", g.version), 4)

	for _, entry := range view.Items {
		g.writeItem(&buf, entry)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, entry cache.EntryView) {
	item := entry.Item

	buf.WriteString("    <item>\n")

	if item.ID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(item.ID)))
		xml.EscapeText(buf, []byte(item.ID))
		buf.WriteString("</guid>\n")
	}

	title := item.Title
	if entry.Update {
		title = "UPDATE: " + title
	}
	g.writeElement(buf, "title", title, 6)
	g.writeElement(buf, "link", item.HttpLink, 6)
	g.writeElement(buf, "description", cmp.Or(feed.CleanText(item.Description), "No description available"), 6)
	g.writeElement(buf, "pubDate", item.PublishDate, 6)
	g.writeElement(buf, "author", item.Author, 6)
	g.writeElement(buf, "dc:contributor", item.Contributor, 6)

	if entry.Unread {
		g.writeElement(buf, "category", "unread", 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
