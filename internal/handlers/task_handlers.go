package handlers

import (
	"net/http"
	"tasklist/internal/handlers/dto"
	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "tasklist"

type TaskHandler struct {
	Board  Board
	Health HealthChecker
}

func NewTaskHandler(board Board, health HealthChecker) *TaskHandler {
	return &TaskHandler{
		Board:  board,
		Health: health,
	}
}

// Register mounts every route on r.
func (h *TaskHandler) Register(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Route("/board", func(r chi.Router) {
		r.Get("/", h.GetBoard)            // GET /board
		r.Put("/search", h.SetSearch)     // PUT /board/search
		r.Put("/category", h.SetCategory) // PUT /board/category
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.PostTask)            // POST /tasks
		r.Post("/reorder", h.ReorderTasks) // POST /tasks/reorder

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateTaskByID)      // PUT /tasks/{id}
			r.Delete("/", h.DeleteTaskByID)   // DELETE /tasks/{id}
			r.Post("/toggle", h.ToggleTask)   // POST /tasks/{id}/toggle
			r.Post("/restore", h.RestoreTask) // POST /tasks/{id}/restore
			r.Delete("/purge", h.PurgeTask)   // DELETE /tasks/{id}/purge
		})
	})
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.Health.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Health check failed", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
			toPayload("error", err.Error()))
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName))
}

func (h *TaskHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	h.respondWithBoard(w, http.StatusOK)
}

func (h *TaskHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.SearchRequest
	if !h.decode(w, r, &request) {
		return
	}

	h.Board.SetSearch(request.Query)
	h.respondWithBoard(w, http.StatusOK)
}

func (h *TaskHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CategoryRequest
	if !h.decode(w, r, &request) {
		return
	}

	if err := h.Board.SetCategoryFilter(request.Category); err != nil {
		h.serviceError(w, r, err, "set_category")
		return
	}
	h.respondWithBoard(w, http.StatusOK)
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.TaskRequest
	if !h.decode(w, r, &request) {
		return
	}

	created, err := h.Board.AddTask(r.Context(), request.TaskName, request.TaskType, request.Deadline)
	if err != nil {
		h.serviceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Task created",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	h.respondWithTask(w, http.StatusCreated, created)
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var request dto.TaskRequest
	if !h.decode(w, r, &request) {
		return
	}

	updated, err := h.Board.EditTask(r.Context(), id, request.TaskName, request.TaskType, request.Deadline)
	if err != nil {
		h.serviceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Task updated",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	h.respondWithTask(w, http.StatusOK, updated)
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	toggled, err := h.Board.ToggleCompletion(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err, "toggle_task")
		return
	}
	h.respondWithTask(w, http.StatusOK, toggled)
}

// DeleteTaskByID moves the task to the recycle bin.
func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.Board.SoftDelete(r.Context(), id); err != nil {
		h.serviceError(w, r, err, "delete_task")
		return
	}
	h.respondWithBoard(w, http.StatusOK)
}

func (h *TaskHandler) RestoreTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	restored, err := h.Board.Restore(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err, "restore_task")
		return
	}
	h.respondWithTask(w, http.StatusOK, restored)
}

func (h *TaskHandler) PurgeTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.Board.Purge(r.Context(), id); err != nil {
		h.serviceError(w, r, err, "purge_task")
		return
	}

	logger.Info("HTTP_OUT: Task purged", zap.String("task_id", id))
	h.respondWithBoard(w, http.StatusOK)
}

// ReorderTasks applies a finished drag gesture.
func (h *TaskHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ReorderRequest
	if !h.decode(w, r, &request) {
		return
	}

	outcome, err := h.Board.Reorder(r.Context(), request.SourceID, request.TargetID)
	if err != nil {
		h.serviceError(w, r, err, "reorder_tasks")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("outcome", outcome.Kind.String()),
		toPayload("board", dto.FromState(h.Board.State())))
}

func (h *TaskHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	code, err := decodeJSON(w, r, dst)
	if err != nil {
		logger.Warn("HTTP: Unusable request body",
			zap.Error(err),
			zap.Int("http_status", code),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, code, err.Error())
		return false
	}
	return true
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		logger.Warn("HTTP: Empty id",
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "id cannot be empty")
		return "", false
	}
	return id, true
}

// serviceError answers a failed operation. Business errors carry the current
// board so a stale client can refresh without another request.
func (h *TaskHandler) serviceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if handleBusinessError(w, err, toPayload("board", dto.FromState(h.Board.State()))) {
		return
	}

	logger.Error("HTTP: Service error", err,
		zap.String("operation", op),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusInternalServerError, err.Error())
}

func (h *TaskHandler) respondWithTask(w http.ResponseWriter, code int, t task.Task) {
	state := h.Board.State()
	responseWithJSON(w, code,
		toPayload("task", dto.FromTask(t, state.Now)),
		toPayload("board", dto.FromState(state)))
}

func (h *TaskHandler) respondWithBoard(w http.ResponseWriter, code int) {
	responseWithJSON(w, code, toPayload("board", dto.FromState(h.Board.State())))
}
