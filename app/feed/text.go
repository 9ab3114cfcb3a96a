package feed

import (
	stdhtml "html"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// CleanText decodes entities, drops markup and collapses whitespace. It is a
// display helper, not a sanitizer.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "<![CDATA[", "")
	s = strings.ReplaceAll(s, "]]>", "")
	// Entity-encoded markup is decoded first so that it is stripped as well.
	s = stdhtml.UnescapeString(s)

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}

	return norm.NFC.String(strings.Join(strings.Fields(b.String()), " "))
}

// Truncate cuts s to at most limit runes, appending "..." when shortened.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
