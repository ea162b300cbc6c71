package models

import "time"

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NOT_STARTED"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type AssignmentKind string

const (
	AssignSpecific     AssignmentKind = "SPECIFIC"
	AssignAllEmployees AssignmentKind = "ALL_EMPLOYEES"
)

type Task struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueAt       *time.Time       `json:"due_date,omitempty"`
	Assignment  AssignmentKind   `json:"assignment_type"`
	AssigneeID  *int             `json:"assignee_id,omitempty"`
	CreatedByID int              `json:"created_by_id"`
	Status      TaskStatus       `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Assignee    *AccountRef      `json:"assignee,omitempty"`
	CreatedBy   *AccountRef      `json:"created_by,omitempty"`
	Submissions []TaskSubmission `json:"submissions"`
}

// VisibleTo reports whether an employee may see and act on the task.
func (t *Task) VisibleTo(accountID int) bool {
	if t.Assignment == AssignAllEmployees {
		return true
	}
	return t.AssigneeID != nil && *t.AssigneeID == accountID
}

type TaskSubmission struct {
	ID           int         `json:"id"`
	TaskID       int         `json:"task_id"`
	AccountID    int         `json:"account_id"`
	Description  string      `json:"description"`
	DocumentURL  string      `json:"document_url,omitempty"`
	DocumentName string      `json:"document_name,omitempty"`
	DocumentSize int64       `json:"document_size,omitempty"`
	SubmittedAt  time.Time   `json:"submitted_at"`
	Account      *AccountRef `json:"account,omitempty"`
}

type CreateTaskRequest struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description" validate:"required"`
	DueAt       *time.Time     `json:"due_date"`
	Assignment  AssignmentKind `json:"assignment_type" validate:"required,oneof=SPECIFIC ALL_EMPLOYEES"`
	AssigneeID  *int           `json:"assignee_id"`
}

// UpdateTaskRequest is a partial update. Nil fields are not touched; a
// due date is removed with ClearDueDate since null and absent decode alike.
type UpdateTaskRequest struct {
	Title        *string     `json:"title" validate:"omitempty,min=1"`
	Description  *string     `json:"description" validate:"omitempty,min=1"`
	DueAt        *time.Time  `json:"due_date"`
	ClearDueDate bool        `json:"clear_due_date"`
	Status       *TaskStatus `json:"status" validate:"omitempty,oneof=NOT_STARTED IN_PROGRESS COMPLETED"`
}

// TouchesContent reports whether any field other than status is set.
func (r *UpdateTaskRequest) TouchesContent() bool {
	return r.Title != nil || r.Description != nil || r.DueAt != nil || r.ClearDueDate
}

func (r *UpdateTaskRequest) Empty() bool {
	return !r.TouchesContent() && r.Status == nil
}

type SubmitTaskRequest struct {
	Description  string `json:"description" validate:"required"`
	DocumentURL  string `json:"document_url"`
	DocumentName string `json:"document_name"`
	DocumentSize int64  `json:"document_size" validate:"gte=0"`
}

// TaskFilter narrows a task listing. VisibleTo > 0 restricts to tasks
// assigned to that account or to everyone.
type TaskFilter struct {
	Status    TaskStatus
	VisibleTo int
	Page      Page
}

type SubmitResult struct {
	Submission *TaskSubmission `json:"submission"`
	Created    bool            `json:"created"`
}
