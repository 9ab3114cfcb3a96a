package feed

import (
	"bytes"
	"fmt"
	"strings"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

// NewParserFor inspects the root element of data and returns an empty parser
// for the matching dialect.
func NewParserFor(data []byte) (Parser, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatAtom:
		return NewAtomParser(), nil
	case FormatRDF:
		return NewRDFParser(), nil
	case FormatRSS2:
		return NewRSS2Parser(), nil
	}

	return nil, ErrUnrecognizedFormat
}

func DetectFormat(data []byte) (Format, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrUnrecognizedFormat)
	}

	p := xpp.NewXMLPullParser(bytes.NewReader(data), false, charset.NewReaderLabel)
	if err := findRoot(p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}

	switch strings.ToLower(p.Name) {
	case "feed":
		return FormatAtom, nil
	case "rdf":
		return FormatRDF, nil
	case "rss":
		return FormatRSS2, nil
	}

	return "", fmt.Errorf("%w: root element <%s>", ErrUnrecognizedFormat, p.Name)
}

func findRoot(p *xpp.XMLPullParser) error {
	for {
		event, err := p.Next()
		if err != nil {
			return err
		}
		if event == xpp.StartTag {
			return nil
		}
		if event == xpp.EndDocument {
			return fmt.Errorf("no root element before end of document")
		}
	}
}

// Run selects a parser for data and parses it. Any decoding failure is
// reported as ErrUnrecognizedFormat.
func Run(data []byte) (Parser, error) {
	parser, err := NewParserFor(data)
	if err != nil {
		return nil, err
	}

	if err := parser.Parse(data); err != nil {
		parser.Clear()
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}

	return parser, nil
}
