package reportapi

import (
	"encoding/json"
	"io"
	"net/http"

	"laudocore/internal/core"
	"laudocore/pkg/domain"
)

func (h *Handler) handleObjects(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			h.handleListObjects(w, r, principal, reportID)
		case http.MethodPost:
			h.handleCreateObject(w, r, principal, reportID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case len(rest) == 1 && rest[0] == "reorder" && r.Method == http.MethodPost:
		h.handleReorder(w, r, principal, reportID)
	case len(rest) == 1:
		h.handleObject(w, r, principal, reportID, rest[0])
	case len(rest) == 2 && rest[1] == "images" && r.Method == http.MethodPost:
		h.handleAttachImage(w, r, principal, reportID, rest[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleListObjects(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string) {
	objects, err := h.Service.ListExamObjects(r.Context(), principal, reportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	records := make([]domain.ExamObjectRecord, 0, len(objects))
	for _, obj := range objects {
		rec, encErr := domain.EncodeExamObject(obj)
		if encErr != nil {
			writeError(w, http.StatusInternalServerError, "encode exam object")
			return
		}
		records = append(records, rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"objects": records})
}

func (h *Handler) handleCreateObject(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string) {
	var rec domain.ExamObjectRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	obj, err := domain.DecodeExamObject(rec)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown exam object kind")
		return
	}
	created, err := h.Service.CreateExamObject(r.Context(), principal, reportID, obj)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := domain.EncodeExamObject(created)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode exam object")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"object": out})
}

func (h *Handler) handleObject(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID, objectID string) {
	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var rec domain.ExamObjectRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		incoming, err := domain.DecodeExamObject(rec)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown exam object kind")
			return
		}
		updated, err := h.Service.UpdateExamObject(r.Context(), principal, reportID, objectID, func(current domain.ExamObject) (domain.ExamObject, error) {
			header := current.Header()
			if title := incoming.Header().Title; title != "" {
				header.Title = title
			}
			return incoming.WithHeader(header), nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out, err := domain.EncodeExamObject(updated)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "encode exam object")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"object": out})
	case http.MethodDelete:
		if err := h.Service.DeleteExamObject(r.Context(), principal, reportID, objectID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleReorder enforces the reorder request shape before touching the
// service: malformed JSON, a missing items key, a non-list items value, and
// an item without an id are all rejected with 400. An empty list succeeds.
func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string) {
	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	rawItems, ok := envelope["items"]
	if !ok {
		writeError(w, http.StatusBadRequest, "missing items")
		return
	}
	var items []core.ReorderItem
	if err := json.Unmarshal(rawItems, &items); err != nil {
		writeError(w, http.StatusBadRequest, "items must be a list")
		return
	}
	for _, item := range items {
		if item.ID == "" {
			writeError(w, http.StatusBadRequest, "item missing id")
			return
		}
	}
	if err := h.Service.ReorderExamObjects(r.Context(), principal, reportID, items); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reordered": len(items)})
}

func (h *Handler) handleAttachImage(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID, objectID string) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	q := r.URL.Query()
	img, err := h.Service.AttachObjectImage(r.Context(), principal, reportID, objectID, q.Get("filename"), data, q.Get("caption"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"image": img})
}
