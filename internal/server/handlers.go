package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studiowebux/taskdeck/internal/events"
	"github.com/studiowebux/taskdeck/internal/store"
	"github.com/studiowebux/taskdeck/internal/types"
)

const (
	taskNotFound = "Task not found"

	// maxBodySize caps create/update bodies
	maxBodySize = 1 << 20
)

type collectionHandler struct {
	name   string
	store  *store.Store
	logger *zap.Logger
	hub    *events.Hub
}

func (h *collectionHandler) publish(operation string, id int64) {
	h.hub.Publish(events.Event{Collection: h.name, Operation: operation, ID: id})
}

func (h *collectionHandler) list(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.List(r.Context(), h.name)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *collectionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, taskNotFound)
		return
	}

	task, err := h.store.Get(r.Context(), h.name, id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *collectionHandler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.readBody(w, r)
	if !ok {
		return
	}

	task, err := h.store.Create(r.Context(), h.name, input)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.publish(events.OpCreate, task.ID)
	writeJSON(w, http.StatusCreated, task)
}

func (h *collectionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, taskNotFound)
		return
	}

	input, ok := h.readBody(w, r)
	if !ok {
		return
	}

	task, err := h.store.Update(r.Context(), h.name, id, input)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.publish(events.OpUpdate, id)
	writeJSON(w, http.StatusOK, task)
}

func (h *collectionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, taskNotFound)
		return
	}

	if err := h.store.Delete(r.Context(), h.name, id); err != nil {
		h.storeError(w, r, err)
		return
	}
	h.publish(events.OpRemove, id)
	w.WriteHeader(http.StatusNoContent)
}

// readBody decodes and validates a task body, answering 422 on failure and
// 413 when the body exceeds maxBodySize
func (h *collectionHandler) readBody(w http.ResponseWriter, r *http.Request) (input types.TaskInput, ok bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return input, false
		}
		h.internalError(w, r, err)
		return input, false
	}

	input, errs := decodeTaskBody(body)
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": errs})
		return input, false
	}
	return input, true
}

func (h *collectionHandler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, taskNotFound)
		return
	}
	h.internalError(w, r, err)
}

func (h *collectionHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("collection", h.name),
		zap.Error(err),
	)
	writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
}

// taskID parses the {id} segment. Non-integer ids name no task.
func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
