package notifications

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/session"

	"github.com/google/uuid"
)

// ErrWrongRecipient: an event was ingested for someone other than the
// active recipient. The event log is strictly single-recipient.
var ErrWrongRecipient = errors.New("event recipient is not the active user")

// Event is an operational event produced by the order/payment/reservation
// subsystems, addressed to one recipient.
type Event struct {
	RecipientID   string
	Type          models.NotificationType
	Title         string
	Message       string
	ReferenceID   string
	ReferenceType string
	DriverInfo    *models.DriverInfo
}

// defaultTitles backfills events that arrive without display text.
var defaultTitles = map[models.NotificationType]string{
	models.NotifyPaymentConfirmed:     "Payment confirmed",
	models.NotifyOrderPreparing:       "Your order is being prepared",
	models.NotifyDriverAssigned:       "Driver assigned",
	models.NotifyOutForDelivery:       "Out for delivery",
	models.NotifyDelivered:            "Order delivered",
	models.NotifyReservationConfirmed: "Reservation confirmed",
	models.NotifyReservationCancelled: "Reservation cancelled",
	models.NotifyReservationReminder:  "Reservation reminder",
	models.NotifyGeneric:              "Notification",
}

// Center owns the active recipient's notification log: ingestion,
// de-duplication of state transitions, read/unread bookkeeping, and
// fan-out to observers. Notifications are best-effort: every remote
// failure degrades to a usable local state instead of propagating.
type Center struct {
	mu       sync.Mutex
	client   *Client
	sessions *session.Manager

	recipientID string
	token       string
	entries     []models.Notification

	observers []chan models.Notification

	writeTimeout time.Duration
}

// New creates a center bound to the session manager's identity. Logout
// clears the log unconditionally via the manager's hook.
func New(client *Client, sessions *session.Manager) *Center {
	c := &Center{
		client:       client,
		sessions:     sessions,
		writeTimeout: 10 * time.Second,
	}
	sessions.AddLogoutHook(c.Reset)
	return c
}

// Load fetches the active recipient's log from the event store, replacing
// any previous recipient's entries wholesale. A transport failure loads
// an empty log: notifications are an enhancement, never an error banner.
func (c *Center) Load(ctx context.Context) {
	ident := c.sessions.Identity()
	if ident == nil {
		c.Reset()
		return
	}
	fetched, err := c.client.Fetch(ctx, ident.SessionToken)
	if err != nil {
		log.Printf("notifications: load degraded to empty log: %v", err)
		fetched = nil
	}
	scoped := make([]models.Notification, 0, len(fetched))
	for _, n := range fetched {
		if n.RecipientID == ident.ID {
			scoped = append(scoped, n)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipientID = ident.ID
	c.token = ident.SessionToken
	c.entries = scoped
}

// Ingest accepts an event for the active recipient, assigns it a local
// temporary identifier, prepends it to the log, and alerts observers.
// An event that duplicates an existing entry (same type and reference)
// coalesces into it instead of producing a second one. The write-through
// to the event store is asynchronous and best-effort; its failure never
// rolls back the local insertion.
func (c *Center) Ingest(event Event) (*models.Notification, error) {
	c.mu.Lock()
	if c.recipientID == "" || event.RecipientID != c.recipientID {
		c.mu.Unlock()
		return nil, ErrWrongRecipient
	}

	if event.ReferenceID != "" {
		for i := range c.entries {
			if c.entries[i].Type == event.Type &&
				c.entries[i].ReferenceID == event.ReferenceID &&
				c.entries[i].RecipientID == event.RecipientID {
				out := c.entries[i]
				c.mu.Unlock()
				return &out, nil
			}
		}
	}

	n := models.Notification{
		ID:            "tmp-" + uuid.NewString(),
		RecipientID:   event.RecipientID,
		Type:          event.Type,
		Title:         event.Title,
		Message:       event.Message,
		Status:        models.StatusUnread,
		ReferenceID:   event.ReferenceID,
		ReferenceType: event.ReferenceType,
		DriverInfo:    event.DriverInfo,
		CreatedAt:     time.Now(),
	}
	if n.Title == "" {
		n.Title = defaultTitles[n.Type]
		if n.Title == "" {
			n.Title = defaultTitles[models.NotifyGeneric]
		}
	}
	if n.Message == "" && event.DriverInfo != nil {
		n.Message = event.DriverInfo.Name + " is handling your delivery"
		if event.DriverInfo.Vehicle != "" {
			n.Message += " (" + event.DriverInfo.Vehicle + ")"
		}
	}

	c.entries = append([]models.Notification{n}, c.entries...)
	token := c.token
	observers := make([]chan models.Notification, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, ch := range observers {
		select {
		case ch <- n:
		default: // slow observers miss ephemeral alerts
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
		defer cancel()
		if err := c.client.Create(ctx, token, n); err != nil {
			log.Printf("notifications: write-through failed for %s: %v", n.ID, err)
		}
	}()

	return &n, nil
}

// MarkRead transitions one notification UNREAD to READ locally, then
// confirms the transition with the event store. If the store rejects it,
// the local log is re-fetched so the UI never claims a persisted state
// the store did not confirm.
func (c *Center) MarkRead(ctx context.Context, id string) {
	c.mu.Lock()
	var changed bool
	for i := range c.entries {
		if c.entries[i].ID == id && c.entries[i].Status == models.StatusUnread {
			c.entries[i].Status = models.StatusRead
			changed = true
		}
	}
	token := c.token
	c.mu.Unlock()

	if !changed {
		return
	}
	if err := c.client.MarkRead(ctx, token, id); err != nil {
		log.Printf("notifications: mark-read write failed for %s, resyncing: %v", id, err)
		c.Load(ctx)
	}
}

// MarkAllRead transitions every UNREAD entry to READ. Dismissed entries
// are untouched. Store writes are best-effort per entry.
func (c *Center) MarkAllRead(ctx context.Context) {
	c.mu.Lock()
	var ids []string
	for i := range c.entries {
		if c.entries[i].Status == models.StatusUnread {
			c.entries[i].Status = models.StatusRead
			ids = append(ids, c.entries[i].ID)
		}
	}
	token := c.token
	c.mu.Unlock()

	for _, id := range ids {
		if err := c.client.MarkRead(ctx, token, id); err != nil {
			log.Printf("notifications: mark-all-read write failed for %s: %v", id, err)
		}
	}
}

// Dismiss hides a notification from all listings. Local-only: dismissal
// is a presentation state, not a store state.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries[i].Status = models.StatusDismissed
		}
	}
}

// Delete removes a notification locally and from the event store. If the
// store deletion fails, the log is reloaded so local state cannot drift
// from the store permanently.
func (c *Center) Delete(ctx context.Context, id string) {
	c.mu.Lock()
	kept := c.entries[:0]
	for _, n := range c.entries {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	c.entries = kept
	token := c.token
	c.mu.Unlock()

	if err := c.client.Delete(ctx, token, id); err != nil {
		log.Printf("notifications: delete write failed for %s, resyncing: %v", id, err)
		c.Load(ctx)
	}
}

// ClearAll empties the log, including dismissed entries, and attempts the
// matching store deletions. Any store failure triggers a resync.
func (c *Center) ClearAll(ctx context.Context) {
	c.mu.Lock()
	ids := make([]string, len(c.entries))
	for i, n := range c.entries {
		ids[i] = n.ID
	}
	c.entries = nil
	token := c.token
	c.mu.Unlock()

	var failed bool
	for _, id := range ids {
		if err := c.client.Delete(ctx, token, id); err != nil {
			log.Printf("notifications: clear-all delete failed for %s: %v", id, err)
			failed = true
		}
	}
	if failed {
		c.Load(ctx)
	}
}

// List returns the visible log, most recent first: active recipient only,
// dismissed entries excluded.
func (c *Center) List() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, 0, len(c.entries))
	for _, n := range c.entries {
		if n.RecipientID == c.recipientID && n.Status != models.StatusDismissed {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount is the number of UNREAD entries for the active recipient.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.entries {
		if n.RecipientID == c.recipientID && n.Status == models.StatusUnread {
			count++
		}
	}
	return count
}

// Subscribe registers an observer for ephemeral alerts on ingestion.
// Delivery is non-blocking; a full observer buffer drops the alert.
func (c *Center) Subscribe() <-chan models.Notification {
	ch := make(chan models.Notification, 8)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, ch)
	return ch
}

// Reset clears the log and recipient binding unconditionally. Runs on
// every logout so entries can never leak across sessions.
func (c *Center) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipientID = ""
	c.token = ""
	c.entries = nil
}
