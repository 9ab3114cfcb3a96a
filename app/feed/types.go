package feed

import "errors"

var ErrUnrecognizedFormat = errors.New("unrecognized feed format")

// Feed document types

type Format string

const (
	FormatAtom Format = "Atom 1.0"
	FormatRDF  Format = "RDF (RSS 1.0)"
	FormatRSS2 Format = "RSS 2.0"
)

type Publisher struct {
	Title       string `json:"title"`
	HttpLink    string `json:"link"`
	Description string `json:"description"`
	PublishDate string `json:"publish_date"`
}

// Item dates are kept as found in the document; change detection compares text.
type Item struct {
	Title       string `json:"title"`
	HttpLink    string `json:"link"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Contributor string `json:"contributor"`
	PublishDate string `json:"publish_date"`
	UpdateTime  string `json:"update_time"`
	ID          string `json:"id"`
}

// Parser is implemented by every supported feed dialect.
type Parser interface {
	Parse(data []byte) error
	Publisher() Publisher
	Items() []Item
	Clear()
	Type() Format
}

// Filter configuration

type Filter struct {
	Field    string   `yaml:"field" json:"field"`
	Includes []string `yaml:"includes" json:"includes,omitempty"`
	Excludes []string `yaml:"excludes" json:"excludes,omitempty"`
}
