package services

import (
	"context"
	"fmt"

	"staffdesk/internal/apperr"
	"staffdesk/internal/logger"
	"staffdesk/internal/models"
)

var statusLabels = map[models.TaskStatus]string{
	models.TaskNotStarted: "Not started",
	models.TaskInProgress: "In progress",
	models.TaskCompleted:  "Completed",
}

type TaskService struct {
	Tasks    TaskStore
	Accounts AccountStore
}

func NewTaskService(tasks TaskStore, accounts AccountStore) *TaskService {
	return &TaskService{
		Tasks:    tasks,
		Accounts: accounts,
	}
}

// Create stores a task and fans out one event per recipient: the assignee
// for SPECIFIC tasks, every approved employee for ALL_EMPLOYEES.
func (s *TaskService) Create(ctx context.Context, p models.Principal, req *models.CreateTaskRequest) (*models.Task, []models.NotificationEvent, error) {
	if err := requireAdmin(p); err != nil {
		return nil, nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		Assignment:  req.Assignment,
		CreatedByID: p.AccountID,
		Status:      models.TaskNotStarted,
	}

	var recipients []int
	switch req.Assignment {
	case models.AssignSpecific:
		assignee, err := s.assignableEmployee(ctx, req.AssigneeID)
		if err != nil {
			return nil, nil, err
		}
		task.AssigneeID = &assignee.ID
		task.Assignee = &models.AccountRef{ID: assignee.ID, FullName: assignee.FullName, Email: assignee.Email}
		recipients = []int{assignee.ID}
	case models.AssignAllEmployees:
		ids, err := s.Accounts.ListIDs(ctx, models.RoleEmployee, models.StatusApproved)
		if err != nil {
			return nil, nil, err
		}
		recipients = ids
	}

	if err := s.Tasks.Create(ctx, task); err != nil {
		return nil, nil, err
	}
	if task.Submissions == nil {
		task.Submissions = []models.TaskSubmission{}
	}

	events := make([]models.NotificationEvent, 0, len(recipients))
	for _, id := range recipients {
		events = append(events, models.NotificationEvent{
			AccountID: id,
			TaskID:    &task.ID,
			Title:     "New task",
			Message:   fmt.Sprintf("You have a new task: %s", task.Title),
		})
	}

	l := logger.FromContext(ctx)
	l.Info().Int("task_id", task.ID).Str("assignment", string(task.Assignment)).Int("recipients", len(recipients)).Msg("task created")

	return task, events, nil
}

// assignableEmployee resolves a SPECIFIC assignee, which must be an
// approved employee at the time of creation.
func (s *TaskService) assignableEmployee(ctx context.Context, id *int) (*models.Account, error) {
	if id == nil || *id <= 0 {
		return nil, fieldError("assignee_id", "assignee is required for SPECIFIC tasks")
	}
	account, err := s.Accounts.Get(ctx, *id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, fieldError("assignee_id", "assignee must be an approved employee")
		}
		return nil, err
	}
	if account.Role != models.RoleEmployee || account.Status != models.StatusApproved {
		return nil, fieldError("assignee_id", "assignee must be an approved employee")
	}
	return account, nil
}

// checkAccess enforces task visibility: admins see everything, employees
// only tasks assigned to them or to everyone.
func checkAccess(p models.Principal, task *models.Task) error {
	if p.IsAdmin() {
		return nil
	}
	if !task.VisibleTo(p.AccountID) {
		return apperr.Forbidden("you do not have access to this task")
	}
	return nil
}

// submissionScope returns the author filter for submissions visible to p.
func submissionScope(p models.Principal) int {
	if p.IsAdmin() {
		return 0
	}
	return p.AccountID
}

func (s *TaskService) Get(ctx context.Context, p models.Principal, id int) (*models.Task, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	task, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkAccess(p, task); err != nil {
		return nil, err
	}

	subs, err := s.Tasks.ListSubmissions(ctx, task.ID, submissionScope(p))
	if err != nil {
		return nil, err
	}
	task.Submissions = subs
	return task, nil
}

// List returns the tasks visible to p, newest first, each with the
// submissions p may see.
func (s *TaskService) List(ctx context.Context, p models.Principal, status models.TaskStatus, page models.Page) ([]models.Task, models.Pagination, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, models.Pagination{}, err
	}
	if status != "" && !status.Valid() {
		return nil, models.Pagination{}, fieldError("status", "must be one of: NOT_STARTED IN_PROGRESS COMPLETED")
	}

	filter := models.TaskFilter{Status: status, Page: page}
	if !p.IsAdmin() {
		filter.VisibleTo = p.AccountID
	}

	tasks, total, err := s.Tasks.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	ids := make([]int, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	byTask, err := s.Tasks.ListSubmissionsForTasks(ctx, ids, submissionScope(p))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	for i := range tasks {
		if subs := byTask[tasks[i].ID]; subs != nil {
			tasks[i].Submissions = subs
		} else {
			tasks[i].Submissions = []models.TaskSubmission{}
		}
	}

	return tasks, models.NewPagination(page, total), nil
}

// Update applies a partial update. The creating admin may edit every field;
// other admins may edit nothing; an employee with access may only set status.
func (s *TaskService) Update(ctx context.Context, p models.Principal, id int, req *models.UpdateTaskRequest) (*models.Task, []models.NotificationEvent, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}
	if req.Empty() {
		return nil, nil, apperr.Validation("no fields to update")
	}
	if req.ClearDueDate && req.DueAt != nil {
		return nil, nil, fieldError("clear_due_date", "cannot be combined with due_date")
	}

	task, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	previous := task.Status

	switch {
	case p.IsAdmin():
		if task.CreatedByID != p.AccountID {
			return nil, nil, apperr.Forbidden("only the task creator can modify this task")
		}
		if req.Title != nil {
			task.Title = *req.Title
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.DueAt != nil {
			task.DueAt = req.DueAt
		}
		if req.ClearDueDate {
			task.DueAt = nil
		}
	default:
		if err := checkAccess(p, task); err != nil {
			return nil, nil, err
		}
		if req.TouchesContent() {
			return nil, nil, apperr.Forbidden("employees can only update task status")
		}
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	if err := s.Tasks.Update(ctx, task); err != nil {
		return nil, nil, err
	}

	var events []models.NotificationEvent
	if p.IsEmployee() && task.Status != previous {
		events = append(events, models.NotificationEvent{
			AccountID: task.CreatedByID,
			TaskID:    &task.ID,
			Title:     "Task status updated",
			Message:   fmt.Sprintf("Status of task %q changed to %s", task.Title, statusLabels[task.Status]),
		})
	}

	l := logger.FromContext(ctx)
	l.Info().Int("task_id", task.ID).Str("status", string(task.Status)).Int("by", p.AccountID).Msg("task updated")

	return task, events, nil
}

// Delete removes a task. Only the creating admin may delete it.
func (s *TaskService) Delete(ctx context.Context, p models.Principal, id int) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	task, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if task.CreatedByID != p.AccountID {
		return apperr.Forbidden("only the task creator can delete this task")
	}
	if err := s.Tasks.Delete(ctx, id); err != nil {
		return err
	}

	l := logger.FromContext(ctx)
	l.Info().Int("task_id", id).Int("by", p.AccountID).Msg("task deleted")
	return nil
}

// Submit records the caller's submission, replacing an earlier one, and
// marks the task COMPLETED. The creator is told whether it was new.
func (s *TaskService) Submit(ctx context.Context, p models.Principal, id int, req *models.SubmitTaskRequest) (*models.SubmitResult, []models.NotificationEvent, error) {
	if err := requireEmployee(p); err != nil {
		return nil, nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}

	task, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := checkAccess(p, task); err != nil {
		return nil, nil, err
	}

	submitter, err := s.Accounts.Get(ctx, p.AccountID)
	if err != nil {
		return nil, nil, err
	}

	sub := &models.TaskSubmission{
		TaskID:       task.ID,
		AccountID:    p.AccountID,
		Description:  req.Description,
		DocumentURL:  req.DocumentURL,
		DocumentName: req.DocumentName,
		DocumentSize: req.DocumentSize,
		Account:      &models.AccountRef{ID: submitter.ID, FullName: submitter.FullName, Email: submitter.Email},
	}
	created, err := s.Tasks.UpsertSubmission(ctx, sub)
	if err != nil {
		return nil, nil, err
	}

	event := models.NotificationEvent{AccountID: task.CreatedByID, TaskID: &task.ID}
	if created {
		event.Title = "Task submitted"
		event.Message = fmt.Sprintf("%s submitted task %q", submitter.FullName, task.Title)
	} else {
		event.Title = "Submission updated"
		event.Message = fmt.Sprintf("%s updated their submission for task %q", submitter.FullName, task.Title)
	}

	l := logger.FromContext(ctx)
	l.Info().Int("task_id", task.ID).Int("account_id", p.AccountID).Bool("created", created).Msg("task submitted")

	return &models.SubmitResult{Submission: sub, Created: created}, []models.NotificationEvent{event}, nil
}

// ListSubmissions returns every submission to an admin and only the
// caller's own to an employee with access.
func (s *TaskService) ListSubmissions(ctx context.Context, p models.Principal, id int) ([]models.TaskSubmission, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	task, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkAccess(p, task); err != nil {
		return nil, err
	}
	return s.Tasks.ListSubmissions(ctx, task.ID, submissionScope(p))
}
