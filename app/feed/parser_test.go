package feed

import (
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <lastBuildDate>Mon, 03 Jul 2023 12:00:00 GMT</lastBuildDate>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
      <dc:creator>Jane Doe</dc:creator>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewRSS2Parser()
	if err := parser.Parse([]byte(rssData)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	publisher := parser.Publisher()
	if publisher.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", publisher.Title)
	}
	if publisher.HttpLink != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got: %s", publisher.HttpLink)
	}
	if publisher.Description != "Test Description" {
		t.Errorf("Expected description 'Test Description', got: %s", publisher.Description)
	}
	if publisher.PublishDate != "Mon, 03 Jul 2023 12:00:00 GMT" {
		t.Errorf("Expected publish date from lastBuildDate, got: %s", publisher.PublishDate)
	}

	items := parser.Items()
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	item1 := items[0]
	if item1.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", item1.Title)
	}
	if item1.ID != "item-1" {
		t.Errorf("Expected ID 'item-1', got: %s", item1.ID)
	}
	if item1.Author != "test@example.com (Test Author)" {
		t.Errorf("Expected author 'test@example.com (Test Author)', got: %s", item1.Author)
	}
	if item1.PublishDate != "Mon, 03 Jul 2023 10:00:00 GMT" {
		t.Errorf("Expected raw pubDate, got: %s", item1.PublishDate)
	}

	item2 := items[1]
	if item2.ID != "https://example.com/item2" {
		t.Errorf("Expected ID to fall back to link, got: %s", item2.ID)
	}
	if item2.Author != "Jane Doe" {
		t.Errorf("Expected author from dc:creator, got: %s", item2.Author)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <subtitle>Atom Subtitle</subtitle>
  <link rel="self" href="https://example.com/feed.xml"/>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Test Entry</title>
    <link href="https://example.com/entry1"/>
    <id>urn:uuid:entry-1</id>
    <published>2023-07-03T09:00:00Z</published>
    <updated>2023-07-03T10:00:00Z</updated>
    <summary>Entry summary</summary>
    <author>
      <name>Atom Author</name>
      <email>atom@example.com</email>
    </author>
  </entry>
  <entry>
    <title>Content Only</title>
    <link href="https://example.com/entry2"/>
    <content type="html">Entry content</content>
  </entry>
</feed>`

	parser := NewAtomParser()
	if err := parser.Parse([]byte(atomData)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	publisher := parser.Publisher()
	if publisher.Title != "Test Atom Feed" {
		t.Errorf("Expected title 'Test Atom Feed', got: %s", publisher.Title)
	}
	if publisher.HttpLink != "https://example.com" {
		t.Errorf("Expected self link to be skipped, got: %s", publisher.HttpLink)
	}
	if publisher.Description != "Atom Subtitle" {
		t.Errorf("Expected description 'Atom Subtitle', got: %s", publisher.Description)
	}
	if publisher.PublishDate != "2023-07-03T12:00:00Z" {
		t.Errorf("Expected publish date '2023-07-03T12:00:00Z', got: %s", publisher.PublishDate)
	}

	items := parser.Items()
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	item := items[0]
	if item.HttpLink != "https://example.com/entry1" {
		t.Errorf("Expected link 'https://example.com/entry1', got: %s", item.HttpLink)
	}
	if item.ID != "urn:uuid:entry-1" {
		t.Errorf("Expected ID 'urn:uuid:entry-1', got: %s", item.ID)
	}
	if item.PublishDate != "2023-07-03T09:00:00Z" {
		t.Errorf("Expected published '2023-07-03T09:00:00Z', got: %s", item.PublishDate)
	}
	if item.UpdateTime != "2023-07-03T10:00:00Z" {
		t.Errorf("Expected updated '2023-07-03T10:00:00Z', got: %s", item.UpdateTime)
	}
	if item.Author != "Atom Author" {
		t.Errorf("Expected author 'Atom Author', got: %s", item.Author)
	}
	if item.Description != "Entry summary" {
		t.Errorf("Expected description 'Entry summary', got: %s", item.Description)
	}

	if items[1].Description != "Entry content" {
		t.Errorf("Expected description to fall back to content, got: %s", items[1].Description)
	}
	if items[1].ID != "https://example.com/entry2" {
		t.Errorf("Expected ID to fall back to link, got: %s", items[1].ID)
	}
}

func TestParseRDF(t *testing.T) {
	rdfData := `<?xml version="1.0" encoding="utf-8"?>
<rdf:RDF
  xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
  xmlns="http://purl.org/rss/1.0/"
  xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel rdf:about="https://example.org/">
    <title>RDF Channel</title>
    <link>https://example.org/</link>
    <description>RDF Description</description>
    <dc:date>2023-07-03T12:00:00+00:00</dc:date>
  </channel>
  <item rdf:about="https://example.org/a">
    <title>First</title>
    <link>https://example.org/a</link>
    <description>First description</description>
    <dc:date>2023-07-03T10:00:00+00:00</dc:date>
    <dc:creator>Alice</dc:creator>
    <dc:contributor>Bob</dc:contributor>
  </item>
  <item rdf:about="https://example.org/b">
    <title>Second</title>
    <link>https://example.org/b</link>
  </item>
</rdf:RDF>`

	parser := NewRDFParser()
	if err := parser.Parse([]byte(rdfData)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	publisher := parser.Publisher()
	if publisher.Title != "RDF Channel" {
		t.Errorf("Expected title 'RDF Channel', got: %s", publisher.Title)
	}
	if publisher.HttpLink != "https://example.org/" {
		t.Errorf("Expected link 'https://example.org/', got: %s", publisher.HttpLink)
	}
	if publisher.PublishDate != "2023-07-03T12:00:00+00:00" {
		t.Errorf("Expected publish date from dc:date, got: %s", publisher.PublishDate)
	}

	items := parser.Items()
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	first := items[0]
	if first.Author != "Alice" {
		t.Errorf("Expected author 'Alice', got: %s", first.Author)
	}
	if first.Contributor != "Bob" {
		t.Errorf("Expected contributor 'Bob', got: %s", first.Contributor)
	}
	if first.PublishDate != "2023-07-03T10:00:00+00:00" {
		t.Errorf("Expected publish date from dc:date, got: %s", first.PublishDate)
	}
	if first.ID != "https://example.org/a" {
		t.Errorf("Expected ID to fall back to link, got: %s", first.ID)
	}
	if items[1].Title != "Second" {
		t.Errorf("Expected second title 'Second', got: %s", items[1].Title)
	}
}

func TestParseDropsUnidentifiableItems(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test</title>
    <item>
      <title>No link, no guid</title>
    </item>
    <item>
      <title>Has link</title>
      <link>http://x/1</link>
    </item>
  </channel>
</rss>`

	parser := NewRSS2Parser()
	if err := parser.Parse([]byte(rssData)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	items := parser.Items()
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].ID != "http://x/1" {
		t.Errorf("Expected effective ID 'http://x/1', got: %s", items[0].ID)
	}
}

func TestPostprocessItem(t *testing.T) {
	item := Item{HttpLink: "http://x/1"}
	if !postprocessItem(&item) {
		t.Error("Expected item with link to be kept")
	}
	if item.ID != "http://x/1" {
		t.Errorf("Expected ID 'http://x/1', got: %s", item.ID)
	}

	item = Item{ID: "guid-1"}
	if !postprocessItem(&item) {
		t.Error("Expected item with ID to be kept")
	}
	if item.ID != "guid-1" {
		t.Errorf("Expected ID to be untouched, got: %s", item.ID)
	}

	item = Item{Title: "orphan"}
	if postprocessItem(&item) {
		t.Error("Expected item without ID and link to be dropped")
	}
}

func TestParserClear(t *testing.T) {
	parser := NewRSS2Parser()
	err := parser.Parse([]byte(`<rss version="2.0"><channel><title>T</title><item><link>http://x/1</link></item></channel></rss>`))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	parser.Clear()

	if parser.Publisher() != (Publisher{}) {
		t.Errorf("Expected empty publisher after clear, got: %+v", parser.Publisher())
	}
	if len(parser.Items()) != 0 {
		t.Errorf("Expected no items after clear, got: %d", len(parser.Items()))
	}
}
