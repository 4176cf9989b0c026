package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agridash-backend/internal/models"
)

func notificationFixture() (*NotificationService, *fakeNotificationStore) {
	store := newFakeNotificationStore()
	return NewNotificationService(store, nil), store
}

func receiveSnapshot(t *testing.T, feed <-chan []*models.Notification) []*models.Notification {
	t.Helper()
	select {
	case snapshot, ok := <-feed:
		require.True(t, ok, "feed closed unexpectedly")
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

// ===== Emission =====

func TestEmitStockChangeMessageFormat(t *testing.T) {
	svc, store := notificationFixture()
	entry := &models.StockEntry{ProductName: "Coffee"}

	// removal
	err := svc.EmitStockChange(context.Background(), "", entry, 50, 46)
	require.NoError(t, err)

	// addition
	err = svc.EmitStockChange(context.Background(), "", entry, 46, 58)
	require.NoError(t, err)

	assert.Equal(t, `4 unit(s) removed from product "Coffee". Current quantity: 46`,
		store.notifications[1].Message)
	assert.Equal(t, `12 unit(s) added from product "Coffee". Current quantity: 58`,
		store.notifications[2].Message)
	assert.False(t, store.notifications[1].Read)
	assert.Equal(t, models.NotificationKindStock, store.notifications[1].Kind)
}

func TestEmitStockChangeRetriesTransientInsert(t *testing.T) {
	svc, store := notificationFixture()
	store.createErr = []error{context.DeadlineExceeded}

	err := svc.EmitStockChange(context.Background(), "", &models.StockEntry{ProductName: "Corn"}, 10, 9)

	require.NoError(t, err)
	assert.Len(t, store.notifications, 1)
}

func TestEmitStockChangeSurfacesPersistentFailure(t *testing.T) {
	svc, store := notificationFixture()
	store.createErr = []error{context.DeadlineExceeded, context.DeadlineExceeded}

	err := svc.EmitStockChange(context.Background(), "", &models.StockEntry{ProductName: "Corn"}, 10, 9)

	var tErr *TransientIOError
	require.ErrorAs(t, err, &tErr)
}

// ===== Live unread feed =====

func TestSubscribeUnreadDeliversInitialSnapshot(t *testing.T) {
	svc, _ := notificationFixture()
	ctx := context.Background()
	entry := &models.StockEntry{ProductName: "Rice"}
	require.NoError(t, svc.EmitStockChange(ctx, "", entry, 5, 4))

	feed, cancel, err := svc.SubscribeUnread(ctx, "7")
	require.NoError(t, err)
	defer cancel()

	snapshot := receiveSnapshot(t, feed)
	require.Len(t, snapshot, 1)
	assert.Contains(t, snapshot[0].Message, "Rice")
}

func TestSubscribeUnreadPushesOnEveryChange(t *testing.T) {
	svc, _ := notificationFixture()
	ctx := context.Background()
	entry := &models.StockEntry{ProductName: "Rice"}

	feed, cancel, err := svc.SubscribeUnread(ctx, "7")
	require.NoError(t, err)
	defer cancel()

	assert.Empty(t, receiveSnapshot(t, feed))

	// a new notification pushes a fresh snapshot
	require.NoError(t, svc.EmitStockChange(ctx, "", entry, 5, 4))
	snapshot := receiveSnapshot(t, feed)
	require.Len(t, snapshot, 1)

	// marking it read pushes again, now empty
	require.NoError(t, svc.MarkRead(ctx, snapshot[0].ID, "7"))
	assert.Empty(t, receiveSnapshot(t, feed))
}

func TestSubscribeUnreadFiltersByTarget(t *testing.T) {
	svc, _ := notificationFixture()
	ctx := context.Background()
	entry := &models.StockEntry{ProductName: "Rice"}

	// one broadcast, one for user 7, one for user 9
	require.NoError(t, svc.EmitStockChange(ctx, "", entry, 3, 2))
	require.NoError(t, svc.EmitStockChange(ctx, "7", entry, 2, 1))
	require.NoError(t, svc.EmitStockChange(ctx, "9", entry, 1, 0))

	feed, cancel, err := svc.SubscribeUnread(ctx, "7")
	require.NoError(t, err)
	defer cancel()

	snapshot := receiveSnapshot(t, feed)
	assert.Len(t, snapshot, 2)
	for _, n := range snapshot {
		assert.NotEqual(t, "9", n.TargetUserID)
	}
}

func TestSnapshotSortedNewestFirst(t *testing.T) {
	svc, store := notificationFixture()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// insert out of order, plus one zero-timestamp record
	for i, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		n := &models.Notification{Title: "t", Message: fmt.Sprintf("m%d", i), CreatedAt: base.Add(offset)}
		require.NoError(t, store.Create(context.Background(), n))
	}
	zero := &models.Notification{Title: "t", Message: "no timestamp"}
	zero.CreatedAt = time.Time{}
	store.notifications[99] = zero

	snapshot, err := svc.ListUnread(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, snapshot, 4)

	for i := 0; i < 2; i++ {
		assert.True(t, !snapshot[i].CreatedAt.Before(snapshot[i+1].CreatedAt),
			"snapshot not in descending order at index %d", i)
	}
	// zero timestamps sink to the end
	assert.True(t, snapshot[3].CreatedAt.IsZero())
}

func TestCancelIsIdempotentAndClosesFeed(t *testing.T) {
	svc, _ := notificationFixture()

	feed, cancel, err := svc.SubscribeUnread(context.Background(), "")
	require.NoError(t, err)
	receiveSnapshot(t, feed)

	cancel()
	cancel() // second call must be a no-op

	_, ok := <-feed
	assert.False(t, ok, "feed should be closed after cancel")

	// further emits must not panic with no subscribers left
	require.NoError(t, svc.EmitStockChange(context.Background(), "", &models.StockEntry{ProductName: "Oat"}, 2, 1))
}

// ===== Cross-instance fan-out =====

func TestListenPeerEventsRebroadcasts(t *testing.T) {
	svc, store := notificationFixture()
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	feed, cancel, err := svc.SubscribeUnread(ctx, "")
	require.NoError(t, err)
	defer cancel()
	assert.Empty(t, receiveSnapshot(t, feed))

	events := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.ListenPeerEvents(ctx, events)
	}()

	// a peer instance wrote a notification straight to the shared store
	require.NoError(t, store.Create(ctx, &models.Notification{Title: "t", Message: "from peer"}))
	events <- "created"

	snapshot := receiveSnapshot(t, feed)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "from peer", snapshot[0].Message)

	stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop on context cancel")
	}
}

func TestListenPeerEventsWithoutChannelReturns(t *testing.T) {
	svc, _ := notificationFixture()

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.ListenPeerEvents(context.Background(), nil)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener should return immediately without a channel")
	}
}

// ===== Read transitions =====

func TestMarkReadRecordsReaderAndTime(t *testing.T) {
	svc, store := notificationFixture()
	ctx := context.Background()
	require.NoError(t, svc.EmitStockChange(ctx, "", &models.StockEntry{ProductName: "Oat"}, 2, 1))

	require.NoError(t, svc.MarkRead(ctx, 1, "7"))

	n := store.notifications[1]
	assert.True(t, n.Read)
	assert.Equal(t, "7", n.ReadByUserID)
	require.NotNil(t, n.ReadAt)
}

func TestMarkReadUnknownID(t *testing.T) {
	svc, _ := notificationFixture()

	err := svc.MarkRead(context.Background(), 123, "7")

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, int64(123), nfErr.ID)
}

func TestMarkAllReadReportsMissingIDs(t *testing.T) {
	svc, store := notificationFixture()
	ctx := context.Background()
	entry := &models.StockEntry{ProductName: "Oat"}
	require.NoError(t, svc.EmitStockChange(ctx, "", entry, 3, 2))
	require.NoError(t, svc.EmitStockChange(ctx, "", entry, 2, 1))

	// id 50 does not exist; the batch still succeeds for the rest
	missing, err := svc.MarkAllRead(ctx, []int64{1, 50, 2}, "7")

	require.NoError(t, err)
	assert.Equal(t, []int64{50}, missing)
	assert.True(t, store.notifications[1].Read)
	assert.True(t, store.notifications[2].Read)
}

func TestMarkAllReadEmptyBatchIsNoOp(t *testing.T) {
	svc, _ := notificationFixture()

	missing, err := svc.MarkAllRead(context.Background(), nil, "7")

	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestUnreadCount(t *testing.T) {
	svc, _ := notificationFixture()
	ctx := context.Background()
	entry := &models.StockEntry{ProductName: "Oat"}
	require.NoError(t, svc.EmitStockChange(ctx, "", entry, 3, 2))
	require.NoError(t, svc.EmitStockChange(ctx, "5", entry, 2, 1))

	count, err := svc.UnreadCount(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = svc.UnreadCount(ctx, "8")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
