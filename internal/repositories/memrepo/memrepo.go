// Package memrepo provides in-memory stores with the same observable
// semantics as the postgres repositories. Tests use them in place of a
// database.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"staffdesk/internal/apperr"
	"staffdesk/internal/models"

	"github.com/shopspring/decimal"
)

func paginate[T any](items []T, p models.Page) []T {
	if p.Size <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Accounts is an in-memory AccountStore.
type Accounts struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]*models.Account
}

func NewAccounts() *Accounts {
	return &Accounts{rows: map[int]*models.Account{}}
}

func (s *Accounts) Create(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if strings.EqualFold(existing.Email, a.Email) || existing.NationalID == a.NationalID {
			return apperr.Conflict("account already exists")
		}
	}
	s.nextID++
	now := time.Now()
	a.ID, a.CreatedAt, a.UpdatedAt = s.nextID, now, now
	cp := *a
	s.rows[a.ID] = &cp
	return nil
}

func (s *Accounts) Get(_ context.Context, id int) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("account not found")
	}
	cp := *a
	return &cp, nil
}

func (s *Accounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.rows {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("account not found")
}

func (s *Accounts) ExistsByEmailOrNationalID(_ context.Context, email, nationalID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.rows {
		if strings.EqualFold(a.Email, email) || a.NationalID == nationalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Accounts) sorted() []models.Account {
	out := make([]models.Account, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Accounts) List(_ context.Context, f models.AccountFilter) ([]models.Account, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []models.Account{}
	all := s.sorted()
	for i := len(all) - 1; i >= 0; i-- {
		a := all[i]
		if (f.Role == "" || a.Role == f.Role) && (f.Status == "" || a.Status == f.Status) {
			matched = append(matched, a)
		}
	}
	return paginate(matched, f.Page), len(matched), nil
}

func (s *Accounts) ListIDs(_ context.Context, role models.Role, status models.AccountStatus) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []int{}
	for _, a := range s.sorted() {
		if a.Role == role && a.Status == status {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (s *Accounts) TransitionStatus(_ context.Context, id int, from, to models.AccountStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	return true, nil
}

func (s *Accounts) UpdateProfile(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[a.ID]
	if !ok {
		return apperr.NotFound("account not found")
	}
	row.FullName, row.Address, row.Phone = a.FullName, a.Address, a.Phone
	row.BankAccountNumber, row.EwalletNumber = a.BankAccountNumber, a.EwalletNumber
	row.UpdatedAt = time.Now()
	a.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *Accounts) UpdatePassword(_ context.Context, id int, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return apperr.NotFound("account not found")
	}
	row.PasswordHash = hash
	return nil
}

func (s *Accounts) SetTOTP(_ context.Context, id int, secret string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return apperr.NotFound("account not found")
	}
	row.TOTPSecret, row.TOTPEnabled = secret, enabled
	return nil
}

// SetStatus forces a status, bypassing the transition guard. Test setup only.
func (s *Accounts) SetStatus(id int, status models.AccountStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.Status = status
	}
}

// Tasks is an in-memory TaskStore.
type Tasks struct {
	mu          sync.Mutex
	nextID      int
	nextSubID   int
	rows        map[int]*models.Task
	submissions map[int]*models.TaskSubmission
}

func NewTasks() *Tasks {
	return &Tasks{rows: map[int]*models.Task{}, submissions: map[int]*models.TaskSubmission{}}
}

func (s *Tasks) Create(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Status == "" {
		t.Status = models.TaskNotStarted
	}
	s.nextID++
	now := time.Now()
	t.ID, t.CreatedAt, t.UpdatedAt = s.nextID, now, now
	if t.Submissions == nil {
		t.Submissions = []models.TaskSubmission{}
	}
	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *Tasks) Get(_ context.Context, id int) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	cp := *t
	cp.Submissions = []models.TaskSubmission{}
	return &cp, nil
}

func (s *Tasks) List(_ context.Context, f models.TaskFilter) ([]models.Task, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []models.Task{}
	for _, t := range s.rows {
		if f.VisibleTo > 0 && !t.VisibleTo(f.VisibleTo) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		cp := *t
		cp.Submissions = []models.TaskSubmission{}
		matched = append(matched, cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return paginate(matched, f.Page), len(matched), nil
}

func (s *Tasks) Update(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[t.ID]
	if !ok {
		return apperr.NotFound("task not found")
	}
	row.Title, row.Description, row.DueAt, row.Status = t.Title, t.Description, t.DueAt, t.Status
	row.UpdatedAt = time.Now()
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *Tasks) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("task not found")
	}
	delete(s.rows, id)
	for sid, sub := range s.submissions {
		if sub.TaskID == id {
			delete(s.submissions, sid)
		}
	}
	return nil
}

func (s *Tasks) UpsertSubmission(_ context.Context, sub *models.TaskSubmission) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.rows[sub.TaskID]
	if !ok {
		return false, apperr.NotFound("task not found")
	}

	now := time.Now()
	for _, existing := range s.submissions {
		if existing.TaskID == sub.TaskID && existing.AccountID == sub.AccountID {
			existing.Description = sub.Description
			existing.DocumentURL, existing.DocumentName, existing.DocumentSize = sub.DocumentURL, sub.DocumentName, sub.DocumentSize
			existing.SubmittedAt = now
			sub.ID, sub.SubmittedAt = existing.ID, now
			task.Status = models.TaskCompleted
			return false, nil
		}
	}

	s.nextSubID++
	sub.ID, sub.SubmittedAt = s.nextSubID, now
	cp := *sub
	s.submissions[sub.ID] = &cp
	task.Status = models.TaskCompleted
	return true, nil
}

func (s *Tasks) ListSubmissions(ctx context.Context, taskID, accountID int) ([]models.TaskSubmission, error) {
	byTask, _ := s.ListSubmissionsForTasks(ctx, []int{taskID}, accountID)
	if subs := byTask[taskID]; subs != nil {
		return subs, nil
	}
	return []models.TaskSubmission{}, nil
}

func (s *Tasks) ListSubmissionsForTasks(_ context.Context, taskIDs []int, accountID int) (map[int][]models.TaskSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[int]bool{}
	for _, id := range taskIDs {
		wanted[id] = true
	}
	result := map[int][]models.TaskSubmission{}
	ids := make([]int, 0, len(s.submissions))
	for id := range s.submissions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		sub := s.submissions[id]
		if !wanted[sub.TaskID] || (accountID > 0 && sub.AccountID != accountID) {
			continue
		}
		result[sub.TaskID] = append(result[sub.TaskID], *sub)
	}
	return result, nil
}

// SubmissionCount returns the number of stored submissions for a task.
func (s *Tasks) SubmissionCount(taskID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.submissions {
		if sub.TaskID == taskID {
			n++
		}
	}
	return n
}

// Transactions is an in-memory TransactionStore.
type Transactions struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]*models.Transaction
}

func NewTransactions() *Transactions {
	return &Transactions{rows: map[int]*models.Transaction{}}
}

func matchesTransaction(t *models.Transaction, f models.TransactionFilter) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Start != nil && t.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.Date.After(*f.End) {
		return false
	}
	return true
}

func (s *Transactions) Create(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now()
	t.ID, t.CreatedAt, t.UpdatedAt = s.nextID, now, now
	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *Transactions) Get(_ context.Context, id int) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("transaction not found")
	}
	cp := *t
	return &cp, nil
}

func (s *Transactions) Update(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[t.ID]; !ok {
		return apperr.NotFound("transaction not found")
	}
	t.UpdatedAt = time.Now()
	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *Transactions) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("transaction not found")
	}
	delete(s.rows, id)
	return nil
}

func (s *Transactions) List(_ context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []models.Transaction{}
	for _, t := range s.rows {
		if matchesTransaction(t, f) {
			matched = append(matched, *t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, f.Page), len(matched), nil
}

func (s *Transactions) Summarize(_ context.Context, f models.TransactionFilter) (models.TransactionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range s.rows {
		if !matchesTransaction(t, f) {
			continue
		}
		if t.Type == models.Income {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return models.NewTransactionSummary(income, expense), nil
}

// Notifications is an in-memory NotificationStore.
type Notifications struct {
	mu     sync.Mutex
	nextID int
	rows   []*models.Notification

	// FailCreate, when set, is returned by Create. Used to exercise delivery retries.
	FailCreate func(n *models.Notification) error
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (s *Notifications) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		if err := s.FailCreate(n); err != nil {
			return err
		}
	}
	s.nextID++
	n.ID, n.IsRead, n.CreatedAt = s.nextID, false, time.Now()
	cp := *n
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *Notifications) List(_ context.Context, accountID int, unreadOnly bool, p models.Page) ([]models.Notification, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []models.Notification{}
	for i := len(s.rows) - 1; i >= 0; i-- {
		n := s.rows[i]
		if n.AccountID != accountID || (unreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, *n)
	}
	return paginate(matched, p), len(matched), nil
}

func (s *Notifications) CountUnread(_ context.Context, accountID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.rows {
		if n.AccountID == accountID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Notifications) MarkRead(_ context.Context, accountID int, ids []int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[int]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var changed int64
	for _, n := range s.rows {
		if n.AccountID == accountID && wanted[n.ID] && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (s *Notifications) MarkAllRead(_ context.Context, accountID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for _, n := range s.rows {
		if n.AccountID == accountID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

// For returns every notification stored for an account, oldest first.
func (s *Notifications) For(accountID int) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.rows {
		if n.AccountID == accountID {
			out = append(out, *n)
		}
	}
	return out
}

// All returns every stored notification, oldest first.
func (s *Notifications) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0, len(s.rows))
	for _, n := range s.rows {
		out = append(out, *n)
	}
	return out
}
