package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"agridash-backend/internal/cache"
	"agridash-backend/internal/metrics"
	"agridash-backend/internal/models"
	"agridash-backend/internal/repositories"
)

// NotificationStore is the persistence contract for notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListUnread(ctx context.Context, targetUserID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id int64, userID string, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, ids []int64, userID string, at time.Time) ([]int64, error)
}

// subscriber is one live unread-feed consumer. Snapshots are pushed whole,
// never as diffs, so a consumer can always render its latest value as-is.
type subscriber struct {
	targetUserID string
	ch           chan []*models.Notification
	once         sync.Once

	mu     sync.Mutex
	closed bool
}

// push delivers a snapshot, dropping the oldest pending one when the
// consumer is slow. Only the latest state matters for a feed.
func (sub *subscriber) push(snapshot []*models.Notification) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	for {
		select {
		case sub.ch <- snapshot:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}

// NotificationService emits stock-change notifications and serves live
// unread feeds. Every mutation recomputes and pushes a fresh snapshot to
// each subscriber.
type NotificationService struct {
	Store NotificationStore
	Cache *cache.Cache

	mu     sync.Mutex
	nextID int64
	subs   map[int64]*subscriber
}

func NewNotificationService(store NotificationStore, c *cache.Cache) *NotificationService {
	return &NotificationService{
		Store: store,
		Cache: c,
		subs:  map[int64]*subscriber{},
	}
}

// EmitStockChange records a notification describing a quantity change.
// The message carries the magnitude, the direction and the quantity after
// the change. Insert failures are retried once when transient; the caller
// decides whether a final failure aborts anything (sales treat it as
// best-effort).
func (s *NotificationService) EmitStockChange(ctx context.Context, targetUserID string, entry *models.StockEntry, before, after int) error {
	magnitude := after - before
	direction := "added"
	if magnitude < 0 {
		magnitude = -magnitude
		direction = "removed"
	}

	n := &models.Notification{
		Title: "Stock updated",
		Message: fmt.Sprintf("%d unit(s) %s from product %q. Current quantity: %d",
			magnitude, direction, entry.ProductName, after),
		TargetUserID: targetUserID,
		Kind:         models.NotificationKindStock,
	}

	err := s.Store.Create(ctx, n)
	if err != nil && repositories.IsTransient(err) {
		log.Printf("[Notifications] transient store error, retrying once: %v", err)
		err = s.Store.Create(ctx, n)
	}
	if err != nil {
		return &TransientIOError{Op: "notification insert", Err: err}
	}

	metrics.NotificationsEmittedTotal.Inc()
	s.Cache.PublishNotificationEvent(ctx, "created")
	s.broadcast(ctx)
	return nil
}

// SubscribeUnread registers a live unread feed for the given user. The
// returned channel immediately receives the current snapshot, then a fresh
// one after every mutation. Cancel is idempotent; after it returns the
// channel is closed and no more sends happen.
func (s *NotificationService) SubscribeUnread(ctx context.Context, targetUserID string) (<-chan []*models.Notification, func(), error) {
	snapshot, err := s.unreadSnapshot(ctx, targetUserID)
	if err != nil {
		return nil, nil, err
	}

	sub := &subscriber{
		targetUserID: targetUserID,
		ch:           make(chan []*models.Notification, 8),
	}
	sub.ch <- snapshot

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = sub
	s.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			sub.mu.Lock()
			sub.closed = true
			close(sub.ch)
			sub.mu.Unlock()
		})
	}
	return sub.ch, cancel, nil
}

// MarkRead flips a single notification to read, recording reader and time.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, userID string) error {
	ok, err := s.Store.MarkRead(ctx, id, userID, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Resource: "notification", ID: id}
	}
	s.Cache.PublishNotificationEvent(ctx, "read")
	s.broadcast(ctx)
	return nil
}

// MarkAllRead flips every given id to read in one batch. Ids that do not
// exist are skipped, not failed: the call succeeds and the missing ids come
// back so the caller can log or surface them. An empty id list is a no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, ids []int64, userID string) (missing []int64, err error) {
	if len(ids) == 0 {
		return nil, nil
	}

	updated, err := s.Store.MarkAllRead(ctx, ids, userID, time.Now())
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(updated))
	for _, id := range updated {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}

	if len(updated) > 0 {
		s.Cache.PublishNotificationEvent(ctx, "read")
		s.broadcast(ctx)
	}
	return missing, nil
}

// ListenPeerEvents rebroadcasts fresh snapshots whenever another instance
// reports a notification change over the shared Redis channel. Blocks until
// events closes or ctx ends; a nil channel (Redis unavailable) returns
// immediately, leaving the feed in-process only.
func (s *NotificationService) ListenPeerEvents(ctx context.Context, events <-chan string) {
	if events == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			s.broadcast(ctx)
		}
	}
}

// ListUnread returns the current unread snapshot without subscribing.
func (s *NotificationService) ListUnread(ctx context.Context, targetUserID string) ([]*models.Notification, error) {
	return s.unreadSnapshot(ctx, targetUserID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, targetUserID string) (int, error) {
	snapshot, err := s.unreadSnapshot(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	return len(snapshot), nil
}

// unreadSnapshot loads and orders the unread feed: newest first, with
// zero-valued timestamps sinking to the end.
func (s *NotificationService) unreadSnapshot(ctx context.Context, targetUserID string) ([]*models.Notification, error) {
	list, err := s.Store.ListUnread(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[j].CreatedAt.IsZero() {
			return !list[i].CreatedAt.IsZero()
		}
		if list[i].CreatedAt.IsZero() {
			return false
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// broadcast recomputes each subscriber's snapshot and pushes it.
func (s *NotificationService) broadcast(ctx context.Context) {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		snapshot, err := s.unreadSnapshot(ctx, sub.targetUserID)
		if err != nil {
			log.Printf("[Notifications] snapshot recompute failed: %v", err)
			continue
		}
		sub.push(snapshot)
	}
}
