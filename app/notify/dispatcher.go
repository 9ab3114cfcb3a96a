// Package notify keeps the bounded queue of live article notifications.
//
// The dispatcher owns notification lifetime. Other components may hold a
// notification ID and ask whether it is still live, but only the dispatcher
// destroys notifications: on URL deduplication, on FIFO eviction, or when a
// notification is opened or dismissed.
package notify

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	SourceKey string    `json:"source"`
	EntryKey  string    `json:"entry_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink delivers notifications to whatever surface presents them.
type Sink interface {
	Show(n Notification)
	Withdraw(n Notification)
}

type Dispatcher struct {
	mu       sync.Mutex
	queue    []*Notification
	limit    int
	sink     Sink
	copyText func(string) error
}

func NewDispatcher(limit int, sink Sink) *Dispatcher {
	if sink == nil {
		sink = NewLogSink()
	}
	return &Dispatcher{
		limit:    limit,
		sink:     sink,
		copyText: clipboard.WriteAll,
	}
}

// SetLimit changes the capacity. The queue is trimmed on the next dispatch.
func (d *Dispatcher) SetLimit(limit int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limit = limit
}

func (d *Dispatcher) Limit() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.limit
}

// Message is what a caller asks the dispatcher to present. EntryKey names the
// cached article so that acting on the notification can find it again.
type Message struct {
	Title     string
	Body      string
	URL       string
	SourceKey string
	EntryKey  string
}

// Dispatch replaces any live notification for the same URL, appends the new
// one and evicts from the head while the queue is over capacity. A
// notification that does not fit is never shown.
func (d *Dispatcher) Dispatch(msg Message) Notification {
	n := &Notification{
		ID:        uuid.NewString(),
		Title:     msg.Title,
		Body:      msg.Body,
		URL:       msg.URL,
		SourceKey: msg.SourceKey,
		EntryKey:  msg.EntryKey,
		CreatedAt: time.Now(),
	}

	var destroyed []*Notification
	shown := true

	d.mu.Lock()
	if msg.URL != "" {
		for i := len(d.queue) - 1; i >= 0; i-- {
			if d.queue[i].URL == msg.URL {
				destroyed = append(destroyed, d.queue[i])
				d.queue = append(d.queue[:i], d.queue[i+1:]...)
				break
			}
		}
	}

	d.queue = append(d.queue, n)

	for len(d.queue) > max(d.limit, 0) {
		if d.queue[0] == n {
			shown = false
		} else {
			destroyed = append(destroyed, d.queue[0])
		}
		d.queue[0] = nil
		d.queue = d.queue[1:]
	}
	d.mu.Unlock()

	for _, old := range destroyed {
		d.sink.Withdraw(*old)
	}
	if shown {
		d.sink.Show(*n)
	}

	return *n
}

func (d *Dispatcher) Get(id string) (Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i := d.indexOf(id); i >= 0 {
		return *d.queue[i], true
	}
	return Notification{}, false
}

func (d *Dispatcher) Live(id string) bool {
	if id == "" {
		return false
	}
	_, ok := d.Get(id)
	return ok
}

// List returns live notifications, oldest first.
func (d *Dispatcher) List() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := make([]Notification, 0, len(d.queue))
	for _, n := range d.queue {
		list = append(list, *n)
	}
	return list
}

func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

func (d *Dispatcher) Dismiss(id string) error {
	n, err := d.remove(id)
	if err != nil {
		return err
	}
	d.sink.Withdraw(n)
	return nil
}

// Open destroys the notification and returns it so the caller can open the
// article and mark it read.
func (d *Dispatcher) Open(id string) (Notification, error) {
	n, err := d.remove(id)
	if err != nil {
		return Notification{}, err
	}
	d.sink.Withdraw(n)
	slog.Debug("Notification opened", "id", id, "url", n.URL)
	return n, nil
}

// CopyURL puts the article URL on the clipboard. The notification stays live.
func (d *Dispatcher) CopyURL(id string) (Notification, error) {
	n, ok := d.Get(id)
	if !ok {
		return Notification{}, ErrNotFound
	}
	if err := d.copyText(n.URL); err != nil {
		return n, err
	}
	return n, nil
}

// Clear withdraws every live notification.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, n := range queue {
		d.sink.Withdraw(*n)
	}
}

func (d *Dispatcher) remove(id string) (Notification, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexOf(id)
	if i < 0 {
		return Notification{}, ErrNotFound
	}
	n := d.queue[i]
	d.queue = append(d.queue[:i], d.queue[i+1:]...)
	return *n, nil
}

func (d *Dispatcher) indexOf(id string) int {
	for i, n := range d.queue {
		if n.ID == id {
			return i
		}
	}
	return -1
}
