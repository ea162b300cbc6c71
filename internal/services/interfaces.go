package services

import (
	"context"

	"staffdesk/internal/models"
)

// AccountStore persists accounts.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	Get(ctx context.Context, id int) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByEmailOrNationalID(ctx context.Context, email, nationalID string) (bool, error)
	List(ctx context.Context, f models.AccountFilter) ([]models.Account, int, error)
	ListIDs(ctx context.Context, role models.Role, status models.AccountStatus) ([]int, error)
	// TransitionStatus moves the account from one status to another only if
	// it is still in from. It reports whether a row changed.
	TransitionStatus(ctx context.Context, id int, from, to models.AccountStatus) (bool, error)
	UpdateProfile(ctx context.Context, a *models.Account) error
	UpdatePassword(ctx context.Context, id int, hash string) error
	SetTOTP(ctx context.Context, id int, secret string, enabled bool) error
}

// TaskStore persists tasks and their submissions.
type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	Get(ctx context.Context, id int) (*models.Task, error)
	List(ctx context.Context, f models.TaskFilter) ([]models.Task, int, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id int) error
	// UpsertSubmission inserts or replaces the (task, account) submission and
	// marks the task COMPLETED atomically. created is false on replacement.
	UpsertSubmission(ctx context.Context, s *models.TaskSubmission) (created bool, err error)
	// ListSubmissions returns a task's submissions; accountID > 0 narrows to one author.
	ListSubmissions(ctx context.Context, taskID, accountID int) ([]models.TaskSubmission, error)
	ListSubmissionsForTasks(ctx context.Context, taskIDs []int, accountID int) (map[int][]models.TaskSubmission, error)
}

// TransactionStore persists ledger rows. List and Summarize must apply the
// same filter predicate. A zero Page means no limit.
type TransactionStore interface {
	Create(ctx context.Context, t *models.Transaction) error
	Get(ctx context.Context, id int) (*models.Transaction, error)
	Update(ctx context.Context, t *models.Transaction) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error)
	Summarize(ctx context.Context, f models.TransactionFilter) (models.TransactionSummary, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, accountID int, unreadOnly bool, p models.Page) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, accountID int) (int, error)
	MarkRead(ctx context.Context, accountID int, ids []int) (int64, error)
	MarkAllRead(ctx context.Context, accountID int) (int64, error)
}

// UnreadCache caches per-account unread counts. Implementations must treat
// a backend outage as a miss.
//
// GetUnread also returns the account's cache generation. SetUnread stores
// a count only if no InvalidateUnread happened since that generation was
// read, so a count loaded concurrently with a new notification is never
// cached.
type UnreadCache interface {
	GetUnread(ctx context.Context, accountID int) (count int, generation int64, ok bool)
	SetUnread(ctx context.Context, accountID, count int, generation int64)
	InvalidateUnread(ctx context.Context, accountID int)
}

// Publisher pushes a persisted notification to live connections.
type Publisher interface {
	Publish(accountID int, n *models.Notification)
}

type noopCache struct{}

func (noopCache) GetUnread(context.Context, int) (int, int64, bool) { return 0, 0, false }
func (noopCache) SetUnread(context.Context, int, int, int64)        {}
func (noopCache) InvalidateUnread(context.Context, int)             {}

type noopPublisher struct{}

func (noopPublisher) Publish(int, *models.Notification) {}
