package feed

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed/atom"
)

type AtomParser struct {
	base
	decoder *atom.Parser
}

func NewAtomParser() *AtomParser {
	return &AtomParser{decoder: &atom.Parser{}}
}

func (p *AtomParser) Type() Format {
	return FormatAtom
}

func (p *AtomParser) Parse(data []byte) error {
	doc, err := p.decoder.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode atom document: %w", err)
	}

	p.publisher = Publisher{
		Title:       doc.Title,
		HttpLink:    atomLink(doc.Links, true),
		Description: doc.Subtitle,
		PublishDate: doc.Updated,
	}

	for _, entry := range doc.Entries {
		if entry == nil {
			continue
		}
		p.appendItem(p.parseEntry(entry))
	}

	return nil
}

func (p *AtomParser) parseEntry(entry *atom.Entry) Item {
	item := Item{
		Title:       entry.Title,
		HttpLink:    atomLink(entry.Links, false),
		Description: entry.Summary,
		PublishDate: entry.Published,
		UpdateTime:  entry.Updated,
		Author:      atomPerson(entry.Authors),
		Contributor: atomPerson(entry.Contributors),
		ID:          entry.ID,
	}

	if item.Description == "" && entry.Content != nil {
		item.Description = entry.Content.Value
	}

	return item
}

// atomLink returns the href of the last link in document order. Publisher
// links pointing at the feed itself are skipped.
func atomLink(links []*atom.Link, skipSelf bool) string {
	href := ""
	for _, link := range links {
		if link == nil {
			continue
		}
		if skipSelf && link.Rel == "self" {
			continue
		}
		href = link.Href
	}
	return href
}

func atomPerson(people []*atom.Person) string {
	for _, person := range people {
		if person == nil {
			continue
		}
		return cmp.Or(person.Name, person.Email)
	}
	return ""
}
