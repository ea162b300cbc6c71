package repositories

import (
	"context"
	"fmt"

	"staffdesk/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO notifications(account_id, task_id, title, message)
         VALUES($1, $2, $3, $4)
         RETURNING id, is_read, created_at`,
		n.AccountID, n.TaskID, n.Title, n.Message,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	return translate(err, "notification")
}

func (r *NotificationRepository) List(ctx context.Context, accountID int, unreadOnly bool, p models.Page) ([]models.Notification, int, error) {
	where := "WHERE account_id = $1"
	if unreadOnly {
		where += " AND is_read = FALSE"
	}

	var total int
	if err := r.DB.QueryRow(ctx, "SELECT COUNT(*) FROM notifications "+where, accountID).Scan(&total); err != nil {
		return nil, 0, translate(err, "notification")
	}

	rows, err := r.DB.Query(ctx, fmt.Sprintf(
		`SELECT id, account_id, task_id, title, message, is_read, created_at
         FROM notifications %s
         ORDER BY created_at DESC, id DESC
         LIMIT $2 OFFSET $3`, where),
		accountID, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, translate(err, "notification")
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Notification, error) {
		var n models.Notification
		err := row.Scan(&n.ID, &n.AccountID, &n.TaskID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
		return n, err
	})
	if err != nil {
		return nil, 0, translate(err, "notification")
	}
	return list, total, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, accountID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE account_id=$1 AND is_read=FALSE`, accountID,
	).Scan(&count)
	return count, translate(err, "notification")
}

// MarkRead only touches rows owned by accountID; foreign ids are ignored.
func (r *NotificationRepository) MarkRead(ctx context.Context, accountID int, ids []int) (int64, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE
         WHERE account_id=$1 AND id = ANY($2) AND is_read=FALSE`,
		accountID, ids)
	if err != nil {
		return 0, translate(err, "notification")
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, accountID int) (int64, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE account_id=$1 AND is_read=FALSE`, accountID)
	if err != nil {
		return 0, translate(err, "notification")
	}
	return tag.RowsAffected(), nil
}
