package feed

// base holds the state shared by all dialect parsers.
type base struct {
	publisher Publisher
	items     []Item
}

func (b *base) Publisher() Publisher {
	return b.publisher
}

func (b *base) Items() []Item {
	return b.items
}

func (b *base) Clear() {
	b.publisher = Publisher{}
	b.items = nil
}

// appendItem runs post-processing and keeps the item only when it can be identified.
func (b *base) appendItem(item Item) {
	if !postprocessItem(&item) {
		return
	}
	b.items = append(b.items, item)
}

// postprocessItem backfills ID from HttpLink. Items with neither are rejected.
func postprocessItem(item *Item) bool {
	if item.ID != "" {
		return true
	}
	if item.HttpLink == "" {
		return false
	}
	item.ID = item.HttpLink
	return true
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
