package feed

import (
	"bytes"
	"fmt"
	"strings"

	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/mmcdole/gofeed/rss"
)

// RDFParser reads RSS 1.0 documents. Items are siblings of the channel
// element at the document root rather than children of it.
type RDFParser struct {
	base
	decoder *rss.Parser
}

func NewRDFParser() *RDFParser {
	return &RDFParser{decoder: &rss.Parser{}}
}

func (p *RDFParser) Type() Format {
	return FormatRDF
}

func (p *RDFParser) Parse(data []byte) error {
	doc, err := p.decoder.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode rdf document: %w", err)
	}

	p.publisher = Publisher{
		Title:       doc.Title,
		HttpLink:    doc.Link,
		Description: doc.Description,
	}
	if doc.DublinCoreExt != nil {
		p.publisher.PublishDate = firstOf(doc.DublinCoreExt.Date)
	}

	for _, entry := range doc.Items {
		if entry == nil {
			continue
		}
		p.appendItem(p.parseItem(entry))
	}

	return nil
}

func (p *RDFParser) parseItem(entry *rss.Item) Item {
	item := Item{
		Title:       entry.Title,
		HttpLink:    entry.Link,
		Description: entry.Description,
	}

	if dc := entry.DublinCoreExt; dc != nil {
		item.PublishDate = firstOf(dc.Date)
		item.Author = firstOf(dc.Creator)
		item.Contributor = firstOf(dc.Contributor)
	}

	// dc:contributor is frequently wrapped in rdf:Description/rdf:value
	if item.Contributor == "" {
		item.Contributor = nestedExtensionText(entry.Extensions, "dc", "contributor")
	}

	return item
}

func nestedExtensionText(extensions ext.Extensions, prefix, name string) string {
	elements := extensions[prefix][name]
	for _, element := range elements {
		if text := extensionText(element); text != "" {
			return text
		}
	}
	return ""
}

func extensionText(element ext.Extension) string {
	if text := strings.TrimSpace(element.Value); text != "" {
		return text
	}
	for _, children := range element.Children {
		for _, child := range children {
			if text := extensionText(child); text != "" {
				return text
			}
		}
	}
	return ""
}
