package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fabricflow/fabricflow/application/port/inbound"
	"github.com/fabricflow/fabricflow/domain"
	"github.com/fabricflow/fabricflow/domain/changeset"
	"github.com/fabricflow/fabricflow/infrastructure/http/response"
	"github.com/fabricflow/fabricflow/infrastructure/http/validator"
	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
)

// identityValueHeaders are forwarded to the actor resolver as username hints
var identityValueHeaders = map[string]string{
	"X-Username": "username",
	"X-User":     "user",
}

type AuditHandler struct {
	query  inbound.AuditQueryUseCase
	audit  inbound.AuditLogger
	logger logger.Logger
}

func NewAuditHandler(query inbound.AuditQueryUseCase, audit inbound.AuditLogger, log logger.Logger) *AuditHandler {
	return &AuditHandler{query: query, audit: audit, logger: log}
}

// RegisterRoutes registers audit routes
func (h *AuditHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/audit-logs", h.ListAuditLogs).Methods(http.MethodGet)
	router.HandleFunc("/v1/audit-logs", h.RecordChange).Methods(http.MethodPost)
	router.HandleFunc("/v1/audit-logs/{id}", h.GetAuditLog).Methods(http.MethodGet)
	router.HandleFunc("/v1/changesets/preview", h.PreviewChangeSet).Methods(http.MethodPost)
}

type previewRequest struct {
	Old changeset.Record `json:"old"`
	New changeset.Record `json:"new"`
}

type recordChangeRequest struct {
	Action     string           `json:"action"`
	Resource   string           `json:"resource"`
	ResourceID string           `json:"resource_id"`
	Old        changeset.Record `json:"old"`
	New        changeset.Record `json:"new"`
	Details    any              `json:"details"`
	Error      string           `json:"error"`
	Severity   domain.Severity  `json:"severity"`
}

type recordChangeResponse struct {
	Summary []string `json:"summary"`
}

// ListAuditLogs handles GET /v1/audit-logs
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		Resource:   q.Get("resource"),
		ResourceID: q.Get("resource_id"),
		ActorID:    q.Get("actor_id"),
		Action:     q.Get("action"),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		response.BadRequest(w, "Invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		response.BadRequest(w, "Invalid offset")
		return
	}

	entries, err := h.query.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", entries)
}

// GetAuditLog handles GET /v1/audit-logs/{id}
func (h *AuditHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	entry, err := h.query.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Audit log retrieved successfully", entry)
}

// PreviewChangeSet handles POST /v1/changesets/preview
func (h *AuditHandler) PreviewChangeSet(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.New == nil {
		response.UnprocessableEntity(w, "new is required")
		return
	}

	response.Success(w, http.StatusOK, "Change set computed", h.query.Preview(req.Old, req.New))
}

// RecordChange handles POST /v1/audit-logs. The entry is written in the
// background; the response carries the computed summary.
func (h *AuditHandler) RecordChange(w http.ResponseWriter, r *http.Request) {
	var req recordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if !validator.ValidateRequired(req.Action) {
		response.UnprocessableEntity(w, "action is required")
		return
	}
	if !validator.ValidateRequired(req.Resource) {
		response.UnprocessableEntity(w, "resource is required")
		return
	}
	if !validator.ValidateSeverity(string(req.Severity)) {
		response.UnprocessableEntity(w, "Invalid severity")
		return
	}

	logReq := inbound.LogRequest{
		Action:     req.Action,
		Resource:   req.Resource,
		ResourceID: req.ResourceID,
		Details:    req.Details,
		Request:    requestContext(r),
		Severity:   req.Severity,
	}
	if req.Error != "" {
		logReq.Failure = errors.New(req.Error)
	}

	summary := []string{}
	if req.New != nil {
		cs := h.query.Preview(req.Old, req.New)
		logReq.ChangeSet = &cs
		summary = cs.Summary
	}

	h.audit.LogAsync(r.Context(), logReq)
	response.Success(w, http.StatusAccepted, "Audit entry accepted", recordChangeResponse{Summary: summary})
}

func (h *AuditHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !response.FromError(w, err) && h.logger != nil {
		h.logger.Error(r.Context(), "Audit request failed", err, map[string]interface{}{
			"path": r.URL.Path,
		})
	}
}

// requestContext extracts the identity hints the actor resolver uses
func requestContext(r *http.Request) inbound.RequestContext {
	values := map[string]string{}
	for header, key := range identityValueHeaders {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			values[key] = v
		}
	}
	return inbound.RequestContext{
		Authorization: r.Header.Get("Authorization"),
		Cookie:        r.Header.Get("Cookie"),
		Values:        values,
	}
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
