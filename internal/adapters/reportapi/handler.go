// Package reportapi adapts the report authoring service to HTTP. Routing is
// a plain path switch under /api/v1/reports; payloads are JSON except for
// binary uploads and the PDF download.
package reportapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"laudocore/internal/core"
	"laudocore/pkg/domain"
)

const basePath = "/api/v1/reports"

// PrincipalFunc resolves the authenticated principal from a request.
// Authentication itself lives outside this module.
type PrincipalFunc func(*http.Request) (domain.Principal, bool)

// Handler provides HTTP access to the report authoring service.
type Handler struct {
	Service   *core.Service
	Principal PrincipalFunc
}

// NewHandler constructs the report HTTP handler.
func NewHandler(svc *core.Service, principal PrincipalFunc) *Handler {
	return &Handler{Service: svc, Principal: principal}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "report service not configured")
		return
	}
	principal, ok := h.resolvePrincipal(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == basePath {
		switch r.Method {
		case http.MethodGet:
			h.handleListReports(w, r, principal)
		case http.MethodPost:
			h.handleCreateReport(w, r, principal)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}
	if !strings.HasPrefix(path, basePath+"/") {
		http.NotFound(w, r)
		return
	}
	segments := strings.Split(strings.TrimPrefix(path, basePath+"/"), "/")
	reportID := segments[0]

	switch {
	case len(segments) == 1:
		h.handleReport(w, r, principal, reportID)
	case len(segments) == 2 && segments[1] == "close" && r.Method == http.MethodPost:
		h.handleClose(w, r, principal, reportID)
	case len(segments) == 2 && segments[1] == "pdf" && r.Method == http.MethodGet:
		h.handlePDF(w, r, principal, reportID)
	case segments[1] == "objects":
		h.handleObjects(w, r, principal, reportID, segments[2:])
	case segments[1] == "blocks":
		h.handleBlocks(w, r, principal, reportID, segments[2:])
	case len(segments) == 3 && segments[1] == "images" && r.Method == http.MethodDelete:
		if err := h.Service.DeleteObjectImage(r.Context(), principal, reportID, segments[2]); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) resolvePrincipal(r *http.Request) (domain.Principal, bool) {
	if h.Principal == nil {
		return domain.Principal{}, false
	}
	return h.Principal(r)
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	reports, err := h.Service.ListReports(r.Context(), principal)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *Handler) handleCreateReport(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var report domain.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	created, err := h.Service.CreateReport(r.Context(), principal, report)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"report": created})
}

// reportPatch carries the mutable report fields of an update request.
type reportPatch struct {
	Protocol            *string           `json:"protocol,omitempty"`
	Objective           *domain.Objective `json:"objective,omitempty"`
	Typification        *string           `json:"typification,omitempty"`
	RequestingAuthority *string           `json:"requesting_authority,omitempty"`
	Conclusion          *string           `json:"conclusion,omitempty"`
	InstitutionID       *string           `json:"institution_id,omitempty"`
	NucleusID           *string           `json:"nucleus_id,omitempty"`
	TeamID              *string           `json:"team_id,omitempty"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string) {
	switch r.Method {
	case http.MethodGet:
		report, err := h.Service.GetReport(r.Context(), principal, reportID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"report": report})
	case http.MethodPatch, http.MethodPut:
		var patch reportPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		updated, err := h.Service.UpdateReport(r.Context(), principal, reportID, func(rep *domain.Report) error {
			applyPatch(rep, patch)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"report": updated})
	case http.MethodDelete:
		if err := h.Service.DeleteReport(r.Context(), principal, reportID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func applyPatch(rep *domain.Report, patch reportPatch) {
	if patch.Protocol != nil {
		rep.Protocol = *patch.Protocol
	}
	if patch.Objective != nil {
		rep.Objective = *patch.Objective
	}
	if patch.Typification != nil {
		rep.Typification = *patch.Typification
	}
	if patch.RequestingAuthority != nil {
		rep.RequestingAuthority = *patch.RequestingAuthority
	}
	if patch.Conclusion != nil {
		rep.Conclusion = *patch.Conclusion
	}
	if patch.InstitutionID != nil {
		rep.InstitutionID = patch.InstitutionID
	}
	if patch.NucleusID != nil {
		rep.NucleusID = patch.NucleusID
	}
	if patch.TeamID != nil {
		rep.TeamID = patch.TeamID
	}
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string) {
	pdf, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	closed, err := h.Service.CloseReport(r.Context(), principal, reportID, pdf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": closed})
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request, principal domain.Principal, reportID string) {
	doc, err := h.Service.RenderPDF(r.Context(), principal, reportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindState, domain.KindAuth:
		status = http.StatusForbidden
	}
	payload := map[string]any{"error": err.Error()}
	var de *domain.Error
	if errors.As(err, &de) && len(de.Fields) > 0 {
		payload["fields"] = de.Fields
	}
	writeJSON(w, status, payload)
}
