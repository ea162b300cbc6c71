package handlers

import (
	"net/http"
	"strings"

	"staffdesk/internal/models"
	"staffdesk/internal/services"
	"staffdesk/pkg/utils"
)

type TaskHandler struct {
	Service  *services.TaskService
	Notifier Notifier
}

func NewTaskHandler(s *services.TaskService, notifier Notifier) *TaskHandler {
	return &TaskHandler{Service: s, Notifier: notifier}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	task, events, err := h.Service.Create(r.Context(), principalOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	notify(r, h.Notifier, events)

	utils.JSON(w, http.StatusCreated, task)
}

// ListTasks returns the caller's visible tasks, filtered by ?status=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := models.TaskStatus(strings.ToUpper(r.URL.Query().Get("status")))

	tasks, pagination, err := h.Service.List(r.Context(), principalOf(r), status, pageFromQuery(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"tasks":      tasks,
		"pagination": pagination,
	})
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	task, err := h.Service.Get(r.Context(), principalOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	var req models.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	task, events, err := h.Service.Update(r.Context(), principalOf(r), id, &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	notify(r, h.Notifier, events)

	utils.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), principalOf(r), id); err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

// SubmitTask records the caller's submission. A first submission is 201,
// a replacement 200.
func (h *TaskHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	var req models.SubmitTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	result, events, err := h.Service.Submit(r.Context(), principalOf(r), id, &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	notify(r, h.Notifier, events)

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	utils.JSON(w, status, result.Submission)
}

func (h *TaskHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	subs, err := h.Service.ListSubmissions(r.Context(), principalOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}
