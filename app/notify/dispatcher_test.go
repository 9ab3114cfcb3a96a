package notify

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

type recordingSink struct {
	mu        sync.Mutex
	shown     []string
	withdrawn []string
}

func (s *recordingSink) Show(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, n.Title)
}

func (s *recordingSink) Withdraw(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawn = append(s.withdrawn, n.Title)
}

func titles(list []Notification) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Title)
	}
	return out
}

func TestDispatchFIFOEviction(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(2, sink)

	d.Dispatch(Message{Title: "N1", URL: "http://x/1", SourceKey: "src"})
	d.Dispatch(Message{Title: "N2", URL: "http://x/2", SourceKey: "src"})
	d.Dispatch(Message{Title: "N3", URL: "http://x/3", SourceKey: "src"})

	got := titles(d.List())
	if len(got) != 2 || got[0] != "N2" || got[1] != "N3" {
		t.Errorf("Expected queue [N2 N3], got %v", got)
	}
	if len(sink.withdrawn) != 1 || sink.withdrawn[0] != "N1" {
		t.Errorf("Expected N1 to be withdrawn, got %v", sink.withdrawn)
	}
}

func TestDispatchReplacesSameURL(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(10, sink)

	first := d.Dispatch(Message{Title: "Old", URL: "http://x/1", SourceKey: "src"})
	d.Dispatch(Message{Title: "Other", URL: "http://x/2", SourceKey: "src"})
	second := d.Dispatch(Message{Title: "New", URL: "http://x/1", SourceKey: "src"})

	if d.Len() != 2 {
		t.Errorf("Expected 2 live notifications, got %d", d.Len())
	}
	if d.Live(first.ID) {
		t.Error("Expected the replaced notification to be destroyed")
	}
	if !d.Live(second.ID) {
		t.Error("Expected the new notification to be live")
	}

	got := titles(d.List())
	if got[0] != "Other" || got[1] != "New" {
		t.Errorf("Expected replacement to be appended at the tail, got %v", got)
	}
}

func TestDispatchEmptyURLNotDeduplicated(t *testing.T) {
	d := NewDispatcher(10, &recordingSink{})

	d.Dispatch(Message{Title: "A", SourceKey: "src"})
	d.Dispatch(Message{Title: "B", SourceKey: "src"})

	if d.Len() != 2 {
		t.Errorf("Expected 2 notifications without URL, got %d", d.Len())
	}
}

func TestDispatchNeverExceedsLimit(t *testing.T) {
	d := NewDispatcher(3, &recordingSink{})

	for i := 0; i < 20; i++ {
		d.Dispatch(Message{Title: fmt.Sprintf("N%d", i), URL: fmt.Sprintf("http://x/%d", i%5), SourceKey: "src"})
		if d.Len() > 3 {
			t.Fatalf("Queue length %d exceeds limit after dispatch %d", d.Len(), i)
		}
	}

	seen := map[string]bool{}
	for _, n := range d.List() {
		if seen[n.URL] {
			t.Errorf("Duplicate live notification for %s", n.URL)
		}
		seen[n.URL] = true
	}
}

func TestSetLimitAppliesOnNextDispatch(t *testing.T) {
	d := NewDispatcher(5, &recordingSink{})
	for i := 0; i < 5; i++ {
		d.Dispatch(Message{Title: fmt.Sprintf("N%d", i), URL: fmt.Sprintf("http://x/%d", i), SourceKey: "src"})
	}

	d.SetLimit(2)
	if d.Len() != 5 {
		t.Errorf("Expected queue untouched until next dispatch, got %d", d.Len())
	}

	d.Dispatch(Message{Title: "N5", URL: "http://x/5", SourceKey: "src"})
	got := titles(d.List())
	if len(got) != 2 || got[0] != "N4" || got[1] != "N5" {
		t.Errorf("Expected [N4 N5], got %v", got)
	}
}

func TestZeroLimitKeepsNothing(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(0, sink)

	n := d.Dispatch(Message{Title: "N", URL: "http://x/1", SourceKey: "src"})

	if d.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", d.Len())
	}
	if d.Live(n.ID) {
		t.Error("Expected notification not to be live")
	}
	if len(sink.shown) != 0 {
		t.Errorf("Expected nothing shown, got %v", sink.shown)
	}
	if len(sink.withdrawn) != 0 {
		t.Errorf("Expected nothing withdrawn, got %v", sink.withdrawn)
	}
}

func TestShrunkToZeroWithdrawsLiveOnly(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(2, sink)

	d.Dispatch(Message{Title: "A", URL: "http://x/a", SourceKey: "src"})
	d.SetLimit(0)
	d.Dispatch(Message{Title: "B", URL: "http://x/b", SourceKey: "src"})

	if d.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", d.Len())
	}
	if len(sink.shown) != 1 || sink.shown[0] != "A" {
		t.Errorf("Expected only A shown, got %v", sink.shown)
	}
	if len(sink.withdrawn) != 1 || sink.withdrawn[0] != "A" {
		t.Errorf("Expected only A withdrawn, got %v", sink.withdrawn)
	}
}

func TestDispatchCarriesEntryKey(t *testing.T) {
	d := NewDispatcher(5, &recordingSink{})

	n := d.Dispatch(Message{Title: "A", SourceKey: "src", EntryKey: "urn:a"})

	got, ok := d.Get(n.ID)
	if !ok {
		t.Fatal("Expected notification to be live")
	}
	if got.EntryKey != "urn:a" || got.URL != "" {
		t.Errorf("Expected entry key urn:a with no URL, got %+v", got)
	}
}

func TestOpenAndDismiss(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(10, sink)

	a := d.Dispatch(Message{Title: "A", Body: "body", URL: "http://x/a", SourceKey: "src"})
	b := d.Dispatch(Message{Title: "B", Body: "body", URL: "http://x/b", SourceKey: "src"})

	opened, err := d.Open(a.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if opened.URL != "http://x/a" || opened.SourceKey != "src" {
		t.Errorf("Expected opened notification context, got %+v", opened)
	}
	if d.Live(a.ID) {
		t.Error("Expected opened notification to be destroyed")
	}

	if err := d.Dismiss(b.ID); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", d.Len())
	}

	if _, err := d.Open(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
	if err := d.Dismiss("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestCopyURLKeepsNotification(t *testing.T) {
	d := NewDispatcher(10, &recordingSink{})
	var copied string
	d.copyText = func(s string) error {
		copied = s
		return nil
	}

	n := d.Dispatch(Message{Title: "A", URL: "http://x/a", SourceKey: "src"})

	if _, err := d.CopyURL(n.ID); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if copied != "http://x/a" {
		t.Errorf("Expected URL on clipboard, got '%s'", copied)
	}
	if !d.Live(n.ID) {
		t.Error("Expected notification to stay live after copy")
	}

	if _, err := d.CopyURL("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestClear(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(10, sink)

	d.Dispatch(Message{Title: "A", URL: "http://x/a", SourceKey: "src"})
	d.Dispatch(Message{Title: "B", URL: "http://x/b", SourceKey: "src"})
	d.Clear()

	if d.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", d.Len())
	}
	if len(sink.withdrawn) != 2 {
		t.Errorf("Expected 2 withdrawals, got %d", len(sink.withdrawn))
	}
}
