package feed

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed/rss"
)

type RSS2Parser struct {
	base
	decoder *rss.Parser
}

func NewRSS2Parser() *RSS2Parser {
	return &RSS2Parser{decoder: &rss.Parser{}}
}

func (p *RSS2Parser) Type() Format {
	return FormatRSS2
}

func (p *RSS2Parser) Parse(data []byte) error {
	doc, err := p.decoder.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode rss document: %w", err)
	}

	p.publisher = Publisher{
		Title:       doc.Title,
		HttpLink:    doc.Link,
		Description: doc.Description,
		PublishDate: cmp.Or(doc.PubDate, doc.LastBuildDate),
	}

	for _, entry := range doc.Items {
		if entry == nil {
			continue
		}
		p.appendItem(p.parseItem(entry))
	}

	return nil
}

func (p *RSS2Parser) parseItem(entry *rss.Item) Item {
	item := Item{
		Title:       entry.Title,
		HttpLink:    entry.Link,
		Description: cmp.Or(entry.Description, entry.Content),
		Author:      entry.Author,
		PublishDate: entry.PubDate,
	}

	if entry.GUID != nil {
		item.ID = entry.GUID.Value
	}

	if dc := entry.DublinCoreExt; dc != nil {
		dcDate := firstOf(dc.Date)
		if item.PublishDate == "" {
			item.PublishDate = dcDate
		} else if dcDate != item.PublishDate {
			item.UpdateTime = dcDate
		}
		item.Author = cmp.Or(item.Author, firstOf(dc.Creator))
		item.Contributor = firstOf(dc.Contributor)
	}

	return item
}
