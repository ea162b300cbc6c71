package models

import "time"

type Notification struct {
	ID        int       `json:"id"`
	AccountID int       `json:"account_id"`
	TaskID    *int      `json:"task_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationEvent is produced by a state change and delivered after
// the change has committed.
type NotificationEvent struct {
	AccountID int
	TaskID    *int
	Title     string
	Message   string
}

type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	Pagination    Pagination     `json:"pagination"`
}

const (
	ActionMarkRead    = "mark_read"
	ActionMarkAllRead = "mark_all_read"
)

type MarkNotificationsRequest struct {
	Action          string `json:"action" validate:"required,oneof=mark_read mark_all_read"`
	NotificationIDs []int  `json:"notificationIds"`
}
