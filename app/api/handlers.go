package api

import (
	"cmp"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-notify/app/cache"
	"github.com/lysyi3m/rss-notify/app/notify"
)

func NewHandler(store *cache.Store, dispatcher *notify.Dispatcher,
	scheduler SchedulerInterface, version string) *Handler {
	return &Handler{
		store:      store,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		generator:  NewGenerator(version),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp":       time.Now().In(time.Local).Format(time.RFC3339),
		"sources":         len(h.store.Keys()),
		"total_unread":    h.store.TotalUnread(),
		"notifications":   h.dispatcher.Len(),
		"generation":      h.scheduler.Generation(),
		"pending_fetches": h.scheduler.PendingFetches(),
	}

	if lastReload := h.scheduler.LastReload(); !lastReload.IsZero() {
		health["last_reload"] = lastReload.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetFeeds(c *gin.Context) {
	views := h.store.Snapshots()

	feeds := make([]map[string]interface{}, 0, len(views))
	for _, view := range views {
		feeds = append(feeds, map[string]interface{}{
			"key":         view.Key,
			"title":       view.Publisher.Title,
			"link":        view.Publisher.HttpLink,
			"label":       view.Label,
			"unread":      view.Unread,
			"items":       len(view.Items),
			"last_update": view.LastUpdate,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds":        feeds,
		"total":        len(feeds),
		"total_unread": h.store.TotalUnread(),
	})
}

func (h *Handler) GetFeedItems(c *gin.Context) {
	view, ok := h.lookupView(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetFeedRSS(c *gin.Context) {
	view, ok := h.lookupView(c)
	if !ok {
		return
	}

	selfLink := "http://" + c.Request.Host + c.Request.URL.RequestURI()

	rss, err := h.generator.Run(view, selfLink)
	if err != nil {
		slog.Error("RSS generation error", "source", view.Key, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(view.Items)))
	c.Header("X-Feed-Unread", strconv.Itoa(view.Unread))
	if !view.LastUpdate.IsZero() {
		c.Header("X-Last-Updated", view.LastUpdate.Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) APIReload(c *gin.Context) {
	if err := h.scheduler.Reload(); err != nil {
		slog.Error("Error enqueueing reload", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue reload",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Reload enqueued",
	})
}

func (h *Handler) APIMarkFeedRead(c *gin.Context) {
	key := c.Param("key")

	marked, err := h.store.MarkAllRead(key)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"marked":       marked,
		"total_unread": h.store.TotalUnread(),
	})
}

func (h *Handler) APIMarkItemRead(c *gin.Context) {
	key := c.Param("key")
	link := c.Query("link")
	if link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing link parameter"})
		return
	}

	if err := h.store.MarkRead(key, link); err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"total_unread": h.store.TotalUnread(),
	})
}

func (h *Handler) APIListNotifications(c *gin.Context) {
	list := h.dispatcher.List()

	c.JSON(http.StatusOK, gin.H{
		"notifications": list,
		"total":         len(list),
		"limit":         h.dispatcher.Limit(),
	})
}

// APIOpenNotification destroys the notification and marks its article read.
// The client is expected to open the returned URL.
func (h *Handler) APIOpenNotification(c *gin.Context) {
	n, err := h.dispatcher.Open(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if err := h.store.MarkRead(n.SourceKey, cmp.Or(n.EntryKey, n.URL)); err != nil {
		// The article may have been evicted since the notification was shown
		slog.Debug("Opened notification has no cached entry", "id", n.ID, "source", n.SourceKey, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     n.URL,
	})
}

func (h *Handler) APICopyNotification(c *gin.Context) {
	n, err := h.dispatcher.CopyURL(c.Param("id"))
	if errors.Is(err, notify.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		slog.Error("Clipboard error", "id", n.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to copy URL",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     n.URL,
	})
}

func (h *Handler) APIDismissNotification(c *gin.Context) {
	if err := h.dispatcher.Dismiss(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) lookupView(c *gin.Context) (cache.View, bool) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source key parameter"})
		return cache.View{}, false
	}

	view, err := h.store.Snapshot(key)
	if err != nil {
		h.storeError(c, err)
		return cache.View{}, false
	}

	return view, true
}

func (h *Handler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cache.ErrSourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
	case errors.Is(err, cache.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	default:
		slog.Error("Cache error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
