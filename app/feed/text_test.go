package feed

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain title", "Plain title"},
		{"<b>Bold</b> move", "Bold move"},
		{"Fish &amp; Chips", "Fish & Chips"},
		{"&lt;p&gt;Encoded&lt;/p&gt; markup", "Encoded markup"},
		{"<![CDATA[Wrapped text]]>", "Wrapped text"},
		{"  lots \n of\t space  ", "lots of space"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected 'short', got %q", got)
	}

	long := strings.Repeat("a", 300)
	got := Truncate(long, 290)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
	if len(got) != 293 {
		t.Errorf("Expected 293 characters, got %d", len(got))
	}

	if got := Truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("Expected rune-aware cut, got %q", got)
	}
}
