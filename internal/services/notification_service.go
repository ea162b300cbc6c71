package services

import (
	"context"

	"staffdesk/internal/apperr"
	"staffdesk/internal/models"
)

type NotificationService struct {
	Notifications NotificationStore
	Cache         UnreadCache
}

func NewNotificationService(notifications NotificationStore, cache UnreadCache) *NotificationService {
	if cache == nil {
		cache = noopCache{}
	}
	return &NotificationService{
		Notifications: notifications,
		Cache:         cache,
	}
}

// List returns the caller's notifications, newest first, with the unread
// count across all of them.
func (s *NotificationService) List(ctx context.Context, p models.Principal, unreadOnly bool, page models.Page) (*models.NotificationList, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	rows, total, err := s.Notifications.List(ctx, p.AccountID, unreadOnly, page)
	if err != nil {
		return nil, err
	}

	unread, err := s.UnreadCount(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}

	return &models.NotificationList{
		Notifications: rows,
		UnreadCount:   unread,
		Pagination:    models.NewPagination(page, total),
	}, nil
}

// UnreadCount serves from cache when possible.
func (s *NotificationService) UnreadCount(ctx context.Context, accountID int) (int, error) {
	n, generation, ok := s.Cache.GetUnread(ctx, accountID)
	if ok {
		return n, nil
	}
	n, err := s.Notifications.CountUnread(ctx, accountID)
	if err != nil {
		return 0, err
	}
	s.Cache.SetUnread(ctx, accountID, n, generation)
	return n, nil
}

// Mark applies a mark_read or mark_all_read request to the caller's own
// notifications. Re-marking is a no-op.
func (s *NotificationService) Mark(ctx context.Context, p models.Principal, req *models.MarkNotificationsRequest) (int64, error) {
	if err := requirePrincipal(p); err != nil {
		return 0, err
	}
	if err := validateStruct(req); err != nil {
		return 0, err
	}

	switch req.Action {
	case models.ActionMarkRead:
		return s.MarkRead(ctx, p, req.NotificationIDs)
	case models.ActionMarkAllRead:
		return s.MarkAllRead(ctx, p)
	}
	return 0, apperr.Validation("invalid action")
}

func (s *NotificationService) MarkRead(ctx context.Context, p models.Principal, ids []int) (int64, error) {
	if err := requirePrincipal(p); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fieldError("notificationIds", "at least one notification id is required")
	}
	n, err := s.Notifications.MarkRead(ctx, p.AccountID, ids)
	if err != nil {
		return 0, err
	}
	s.Cache.InvalidateUnread(ctx, p.AccountID)
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, p models.Principal) (int64, error) {
	if err := requirePrincipal(p); err != nil {
		return 0, err
	}
	n, err := s.Notifications.MarkAllRead(ctx, p.AccountID)
	if err != nil {
		return 0, err
	}
	s.Cache.InvalidateUnread(ctx, p.AccountID)
	return n, nil
}
