package reportapi

import (
	"encoding/json"
	"net/http"

	"laudocore/pkg/domain"
)

type blockPayload struct {
	Placement domain.Placement `json:"placement"`
	GroupKey  domain.GroupKey  `json:"group_key,omitempty"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
}

func (h *Handler) handleBlocks(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			blocks, err := h.Service.ListTextBlocks(r.Context(), principal, reportID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
		case http.MethodPost:
			h.handleCreateBlock(w, r, principal, reportID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case len(rest) == 1 && rest[0] == "upsert" && (r.Method == http.MethodPost || r.Method == http.MethodPut):
		h.handleUpsertBlock(w, r, principal, reportID)
	case len(rest) == 1:
		h.handleBlock(w, r, principal, reportID, rest[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleCreateBlock(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string) {
	var payload blockPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	created, err := h.Service.CreateTextBlock(r.Context(), principal, reportID, domain.TextBlock{
		Placement: payload.Placement,
		GroupKey:  payload.GroupKey,
		Title:     payload.Title,
		Body:      payload.Body,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"block": created})
}

// handleUpsertBlock addresses a block by placement (and group key for group
// intros); the placement is locked server side against client tampering.
func (h *Handler) handleUpsertBlock(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string) {
	var payload blockPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	block, err := h.Service.UpsertTextBlock(r.Context(), principal, reportID, payload.Placement, payload.GroupKey, payload.Title, payload.Body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"block": block})
}

func (h *Handler) handleBlock(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID, blockID string) {
	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var payload blockPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		updated, err := h.Service.UpdateTextBlock(r.Context(), principal, reportID, blockID, func(b *domain.TextBlock) error {
			b.Title = payload.Title
			b.Body = payload.Body
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"block": updated})
	case http.MethodDelete:
		if err := h.Service.DeleteTextBlock(r.Context(), principal, reportID, blockID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
