package repositories

import (
	"context"
	"fmt"
	"strings"

	"staffdesk/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.due_at, t.assignment, t.assignee_id, t.created_by_id,
	       t.status, t.created_at, t.updated_at,
	       a.full_name, a.email, c.full_name, c.email
	FROM tasks t
	LEFT JOIN accounts a ON a.id = t.assignee_id
	JOIN accounts c ON c.id = t.created_by_id`

type TaskRepository struct {
	DB *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{DB: db}
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var assigneeName, assigneeEmail *string
	creator := &models.AccountRef{}

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueAt, &t.Assignment, &t.AssigneeID, &t.CreatedByID,
		&t.Status, &t.CreatedAt, &t.UpdatedAt,
		&assigneeName, &assigneeEmail, &creator.FullName, &creator.Email)
	if err != nil {
		return nil, err
	}

	creator.ID = t.CreatedByID
	t.CreatedBy = creator
	if t.AssigneeID != nil && assigneeName != nil {
		t.Assignee = &models.AccountRef{ID: *t.AssigneeID, FullName: *assigneeName, Email: *assigneeEmail}
	}
	t.Submissions = []models.TaskSubmission{}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.Status == "" {
		t.Status = models.TaskNotStarted
	}
	err := r.DB.QueryRow(ctx,
		`INSERT INTO tasks(title, description, due_at, assignment, assignee_id, created_by_id, status)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.DueAt, t.Assignment, t.AssigneeID, t.CreatedByID, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return translate(err, "task")
}

func (r *TaskRepository) Get(ctx context.Context, id int) (*models.Task, error) {
	t, err := scanTask(r.DB.QueryRow(ctx, taskSelect+` WHERE t.id=$1`, id))
	return t, translate(err, "task")
}

// List applies the visibility scope and the status filter together so an
// employee can never widen the scope through the filter.
func (r *TaskRepository) List(ctx context.Context, f models.TaskFilter) ([]models.Task, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if f.VisibleTo > 0 {
		conditions = append(conditions, fmt.Sprintf("(t.assignee_id = $%d OR t.assignment = 'ALL_EMPLOYEES')", argNum))
		args = append(args, f.VisibleTo)
		argNum++
	}
	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argNum))
		args = append(args, f.Status)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, "SELECT COUNT(*) FROM tasks t"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "task")
	}

	query := fmt.Sprintf("%s%s ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d",
		taskSelect, whereClause, argNum, argNum+1)
	rows, err := r.DB.Query(ctx, query, append(args, f.Page.Limit(), f.Page.Offset())...)
	if err != nil {
		return nil, 0, translate(err, "task")
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, translate(err, "task")
		}
		tasks = append(tasks, *t)
	}
	return tasks, total, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE tasks SET title=$1, description=$2, due_at=$3, status=$4, updated_at=NOW()
         WHERE id=$5
         RETURNING updated_at`,
		t.Title, t.Description, t.DueAt, t.Status, t.ID,
	).Scan(&t.UpdatedAt)
	return translate(err, "task")
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return translate(err, "task")
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "task")
	}
	return nil
}

// UpsertSubmission writes the submission and forces the task to COMPLETED in
// one transaction. xmax is zero only for a freshly inserted tuple.
func (r *TaskRepository) UpsertSubmission(ctx context.Context, s *models.TaskSubmission) (bool, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin submission: %w", err)
	}
	defer tx.Rollback(ctx)

	var created bool
	err = tx.QueryRow(ctx,
		`INSERT INTO task_submissions(task_id, account_id, description, document_url, document_name, document_size)
         VALUES($1, $2, $3, $4, $5, $6)
         ON CONFLICT (task_id, account_id) DO UPDATE
           SET description = EXCLUDED.description,
               document_url = EXCLUDED.document_url,
               document_name = EXCLUDED.document_name,
               document_size = EXCLUDED.document_size,
               submitted_at = NOW()
         RETURNING id, submitted_at, (xmax = 0)`,
		s.TaskID, s.AccountID, s.Description, s.DocumentURL, s.DocumentName, s.DocumentSize,
	).Scan(&s.ID, &s.SubmittedAt, &created)
	if err != nil {
		return false, translate(err, "submission")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2`,
		models.TaskCompleted, s.TaskID); err != nil {
		return false, translate(err, "task")
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit submission: %w", err)
	}
	return created, nil
}

const submissionSelect = `
	SELECT s.id, s.task_id, s.account_id, s.description, s.document_url, s.document_name,
	       s.document_size, s.submitted_at, a.full_name, a.email
	FROM task_submissions s
	JOIN accounts a ON a.id = s.account_id`

func scanSubmission(row pgx.Row) (*models.TaskSubmission, error) {
	var s models.TaskSubmission
	ref := &models.AccountRef{}
	err := row.Scan(&s.ID, &s.TaskID, &s.AccountID, &s.Description, &s.DocumentURL, &s.DocumentName,
		&s.DocumentSize, &s.SubmittedAt, &ref.FullName, &ref.Email)
	if err != nil {
		return nil, err
	}
	ref.ID = s.AccountID
	s.Account = ref
	return &s, nil
}

func (r *TaskRepository) ListSubmissions(ctx context.Context, taskID, accountID int) ([]models.TaskSubmission, error) {
	byTask, err := r.ListSubmissionsForTasks(ctx, []int{taskID}, accountID)
	if err != nil {
		return nil, err
	}
	subs := byTask[taskID]
	if subs == nil {
		subs = []models.TaskSubmission{}
	}
	return subs, nil
}

func (r *TaskRepository) ListSubmissionsForTasks(ctx context.Context, taskIDs []int, accountID int) (map[int][]models.TaskSubmission, error) {
	result := make(map[int][]models.TaskSubmission, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	query := submissionSelect + ` WHERE s.task_id = ANY($1)`
	args := []interface{}{taskIDs}
	if accountID > 0 {
		query += ` AND s.account_id = $2`
		args = append(args, accountID)
	}
	query += ` ORDER BY s.submitted_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "submission")
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, translate(err, "submission")
		}
		result[s.TaskID] = append(result[s.TaskID], *s)
	}
	return result, rows.Err()
}
