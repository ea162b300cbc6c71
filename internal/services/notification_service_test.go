package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"staffdesk/internal/apperr"
	"staffdesk/internal/models"
)

// countingCache mirrors the redis generation semantics in memory.
type countingCache struct {
	mu          sync.Mutex
	counts      map[int]int
	invalidated map[int]int
}

func newCountingCache() *countingCache {
	return &countingCache{counts: map[int]int{}, invalidated: map[int]int{}}
}

func (c *countingCache) GetUnread(_ context.Context, id int) (int, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[id]
	return n, int64(c.invalidated[id]), ok
}

func (c *countingCache) SetUnread(_ context.Context, id, n int, generation int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int64(c.invalidated[id]) != generation {
		return
	}
	c.counts[id] = n
}

func (c *countingCache) InvalidateUnread(_ context.Context, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, id)
	c.invalidated[id]++
}

// racingStore runs onCount after the unread count has been read, the way
// a concurrent delivery can land between the query and the cache write.
type racingStore struct {
	NotificationStore
	onCount func()
}

func (s *racingStore) CountUnread(ctx context.Context, id int) (int, error) {
	n, err := s.NotificationStore.CountUnread(ctx, id)
	if s.onCount != nil {
		hook := s.onCount
		s.onCount = nil
		hook()
	}
	return n, err
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent map[int][]*models.Notification
}

func (p *recordingPublisher) Publish(id int, n *models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[int][]*models.Notification{}
	}
	p.sent[id] = append(p.sent[id], n)
}

func quickDispatcher(f *fixture, cache UnreadCache, pub Publisher) *Dispatcher {
	d := NewDispatcher(f.notifications, cache, pub)
	d.Backoff = time.Millisecond
	return d
}

func TestNotificationListAndMark(t *testing.T) {
	f := newFixture(t)
	cache := newCountingCache()
	svc := NewNotificationService(f.notifications, cache)
	d := quickDispatcher(f, cache, nil)
	ctx := context.Background()

	events := []models.NotificationEvent{
		{AccountID: f.alice.ID, Title: "one", Message: "1"},
		{AccountID: f.alice.ID, Title: "two", Message: "2"},
		{AccountID: f.alice.ID, Title: "three", Message: "3"},
		{AccountID: f.bob.ID, Title: "bob", Message: "b"},
	}
	if err := d.Deliver(ctx, events); err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(ctx, principal(f.alice), false, models.NewPage(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Notifications) != 3 || list.UnreadCount != 3 {
		t.Fatalf("list = %d rows, unread %d", len(list.Notifications), list.UnreadCount)
	}
	if list.Notifications[0].Title != "three" {
		t.Errorf("first = %q, want newest", list.Notifications[0].Title)
	}

	bobID := f.notifications.For(f.bob.ID)[0].ID
	ids := []int{list.Notifications[0].ID, list.Notifications[1].ID, bobID}

	n, err := svc.Mark(ctx, principal(f.alice), &models.MarkNotificationsRequest{Action: models.ActionMarkRead, NotificationIDs: ids})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("marked %d, want 2 (foreign id ignored)", n)
	}
	if f.notifications.For(f.bob.ID)[0].IsRead {
		t.Error("marked another account's notification")
	}

	n, err = svc.Mark(ctx, principal(f.alice), &models.MarkNotificationsRequest{Action: models.ActionMarkRead, NotificationIDs: ids})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("re-marking changed %d rows", n)
	}

	unread, err := svc.List(ctx, principal(f.alice), true, models.NewPage(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if len(unread.Notifications) != 1 || unread.UnreadCount != 1 {
		t.Errorf("unread = %d rows, count %d", len(unread.Notifications), unread.UnreadCount)
	}

	if _, err := svc.Mark(ctx, principal(f.alice), &models.MarkNotificationsRequest{Action: models.ActionMarkAllRead}); err != nil {
		t.Fatal(err)
	}
	count, err := svc.UnreadCount(ctx, f.alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unread after mark_all_read = %d", count)
	}
}

func TestMarkValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.notifications, nil)
	ctx := context.Background()

	if _, err := svc.Mark(ctx, principal(f.alice), &models.MarkNotificationsRequest{Action: "delete"}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bad action: err = %v", err)
	}
	if _, err := svc.Mark(ctx, principal(f.alice), &models.MarkNotificationsRequest{Action: models.ActionMarkRead}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("no ids: err = %v", err)
	}
	if _, err := svc.Mark(ctx, models.Principal{}, &models.MarkNotificationsRequest{Action: models.ActionMarkAllRead}); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("anonymous: err = %v", err)
	}
}

func TestUnreadCountNotCachedAcrossConcurrentDelivery(t *testing.T) {
	f := newFixture(t)
	cache := newCountingCache()
	d := quickDispatcher(f, cache, nil)
	store := &racingStore{NotificationStore: f.notifications}
	svc := NewNotificationService(store, cache)
	ctx := context.Background()

	store.onCount = func() {
		if err := d.Deliver(ctx, []models.NotificationEvent{{AccountID: f.alice.ID, Title: "New task", Message: "m"}}); err != nil {
			t.Error(err)
		}
	}

	first, err := svc.UnreadCount(ctx, f.alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first != 0 {
		t.Fatalf("first count = %d, want 0 (read before delivery)", first)
	}

	second, err := svc.UnreadCount(ctx, f.alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if second != 1 {
		t.Errorf("second count = %d, want 1; stale count was cached", second)
	}

	third, _ := svc.UnreadCount(ctx, f.alice.ID)
	if _, _, ok := cache.GetUnread(ctx, f.alice.ID); !ok || third != 1 {
		t.Errorf("fresh count not cached: ok=%v count=%d", ok, third)
	}
}

func TestDispatcherRetriesTransientFailures(t *testing.T) {
	f := newFixture(t)
	cache := newCountingCache()
	pub := &recordingPublisher{}
	d := quickDispatcher(f, cache, pub)

	failures := 2
	f.notifications.FailCreate = func(*models.Notification) error {
		if failures > 0 {
			failures--
			return errors.New("connection reset")
		}
		return nil
	}

	err := d.Deliver(context.Background(), []models.NotificationEvent{{AccountID: f.alice.ID, Title: "hello", Message: "hi"}})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if got := f.notifications.For(f.alice.ID); len(got) != 1 {
		t.Errorf("stored %d notifications, want 1", len(got))
	}
	if len(pub.sent[f.alice.ID]) != 1 || pub.sent[f.alice.ID][0].ID == 0 {
		t.Errorf("published = %+v", pub.sent)
	}
	if cache.invalidated[f.alice.ID] != 1 {
		t.Errorf("cache invalidations = %d", cache.invalidated[f.alice.ID])
	}
}

func TestDispatcherReportsFailuresAndContinues(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{}
	d := quickDispatcher(f, nil, pub)

	attempts := 0
	f.notifications.FailCreate = func(n *models.Notification) error {
		if n.AccountID == f.alice.ID {
			attempts++
			return errors.New("disk full")
		}
		return nil
	}

	err := d.Deliver(context.Background(), []models.NotificationEvent{
		{AccountID: f.alice.ID, Title: "a", Message: "a"},
		{AccountID: f.bob.ID, Title: "b", Message: "b"},
	})
	if err == nil {
		t.Fatal("expected an error for the failed event")
	}
	if attempts != d.Attempts {
		t.Errorf("attempts = %d, want %d", attempts, d.Attempts)
	}
	if len(f.notifications.For(f.bob.ID)) != 1 || len(pub.sent[f.bob.ID]) != 1 {
		t.Error("later events were not delivered")
	}
	if len(pub.sent[f.alice.ID]) != 0 {
		t.Error("failed event was published")
	}
}

func TestDispatcherDoesNotRetryClassifiedErrors(t *testing.T) {
	f := newFixture(t)
	d := quickDispatcher(f, nil, nil)

	attempts := 0
	f.notifications.FailCreate = func(*models.Notification) error {
		attempts++
		return apperr.NotFound("account not found")
	}

	if err := d.Deliver(context.Background(), []models.NotificationEvent{{AccountID: 9999, Title: "x", Message: "x"}}); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDeliverIgnoresCancelledRequest(t *testing.T) {
	f := newFixture(t)
	d := quickDispatcher(f, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Deliver(ctx, []models.NotificationEvent{{AccountID: f.alice.ID, Title: "x", Message: "x"}}); err != nil {
		t.Fatal(err)
	}
	if len(f.notifications.For(f.alice.ID)) != 1 {
		t.Error("notification not stored after request cancellation")
	}
}

func TestRegistrationFlowNotifications(t *testing.T) {
	f := newFixture(t)
	accounts := NewAccountService(f.accounts)
	d := quickDispatcher(f, nil, nil)
	ctx := context.Background()

	account, events, err := accounts.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Deliver(ctx, events); err != nil {
		t.Fatal(err)
	}
	if len(f.notifications.For(f.admin.ID)) != 1 || len(f.notifications.For(f.otherAdmin.ID)) != 1 {
		t.Error("each admin should get exactly one registration notification")
	}

	_, events, err = accounts.Decide(ctx, principal(f.admin), account.ID, &models.DecisionRequest{Action: models.StatusApproved})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Deliver(ctx, events); err != nil {
		t.Fatal(err)
	}
	if got := f.notifications.For(account.ID); len(got) != 1 || got[0].Title != "Registration approved" {
		t.Errorf("registrant notifications = %+v", got)
	}
	if len(f.notifications.All()) != 3 {
		t.Errorf("total notifications = %d, want 3", len(f.notifications.All()))
	}
}
