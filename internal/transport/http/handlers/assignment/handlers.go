package assignmenthandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/assignment"
	"pms/internal/domain/audit"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
)

type Handler struct {
	Service *assignment.Service
	Audit   *audit.Service
}

func NewHandler(service *assignment.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assignments", func(r chi.Router) {
		r.Get("/projects", h.handleListProjectAssignments)
		r.Post("/projects", h.handleAssignProject)
		r.Post("/projects/bulk", h.handleBulkAssignProjects)
		r.Delete("/projects/{assignmentID}", h.handleCancelProjectAssignment)
		r.Post("/projects/{assignmentID}/reorder", h.handleReorderProjectAssignment)

		r.Get("/wbs", h.handleListWbsAssignments)
		r.Post("/wbs", h.handleAssignWbs)
		r.Post("/wbs/bulk", h.handleBulkAssignWbs)
		r.Delete("/wbs/{assignmentID}", h.handleCancelWbsAssignment)
		r.Post("/wbs/{assignmentID}/reorder", h.handleReorderWbsAssignment)

		r.Post("/recalculate", h.handleRecalculateWeights)
		r.Post("/reset/period/{periodID}", h.handleResetPeriod)
		r.Post("/reset/project/{projectID}", h.handleResetProject)
		r.Post("/reset/employee/{employeeID}", h.handleResetEmployee)
		r.Delete("/", h.handleDeleteAll)

		r.Get("/report", h.handleAssignmentReport)
	})

	r.Route("/wbs-items/{wbsItemID}/criteria", func(r chi.Router) {
		r.Get("/", h.handleGetCriteria)
		r.Put("/", h.handleUpsertCriteria)
		r.Delete("/", h.handleDeleteCriteria)
	})
}

// failFromError translates domain errors into the wire taxonomy: broken
// business rules carry their rule code, lookup misses become 404.
func failFromError(w http.ResponseWriter, err error, requestID string) {
	var validationErr *assignment.ValidationError
	if errors.As(err, &validationErr) {
		api.Fail(w, http.StatusUnprocessableEntity, string(validationErr.Rule), validationErr.Message, requestID)
		return
	}
	var notFoundErr *assignment.NotFoundError
	if errors.As(err, &notFoundErr) {
		api.Fail(w, http.StatusNotFound, "not_found", notFoundErr.Error(), requestID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
}

func (h *Handler) handleListProjectAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Service.ListProjectAssignments(r.Context(), r.URL.Query().Get("periodId"), r.URL.Query().Get("employeeId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignment_list_failed", "failed to list project assignments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssignProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload assignment.ProjectAssignmentInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.PeriodID == "" || payload.EmployeeID == "" || payload.ProjectID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "periodId, employeeId and projectId are required", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.AssignProject(r.Context(), payload, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.project.create", "project_assignment", created.ID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit assignment.project.create failed", "err", err)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBulkAssignProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Items []assignment.ProjectAssignmentInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Items) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "items required", middleware.GetRequestID(r.Context()))
		return
	}

	result := h.Service.BulkAssignProjects(r.Context(), payload.Items, user.UserID)
	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.project.bulk_create", "project_assignment", "", middleware.GetRequestID(r.Context()), result); err != nil {
		slog.Warn("audit assignment.project.bulk_create failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancelProjectAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	if err := h.Service.CancelProjectAssignment(r.Context(), assignmentID, user.UserID); err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.project.cancel", "project_assignment", assignmentID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit assignment.project.cancel failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "cancelled"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReorderProjectAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	direction, err := assignment.ParseDirection(payload.Direction)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	updated, err := h.Service.ReorderProjectAssignment(r.Context(), assignmentID, direction, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.project.reorder", "project_assignment", assignmentID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit assignment.project.reorder failed", "err", err)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListWbsAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Service.ListWbsAssignments(r.Context(), r.URL.Query().Get("periodId"), r.URL.Query().Get("employeeId"), r.URL.Query().Get("projectId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignment_list_failed", "failed to list wbs assignments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssignWbs(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload assignment.WbsAssignmentInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.PeriodID == "" || payload.EmployeeID == "" || payload.ProjectID == "" || payload.WbsItemID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "periodId, employeeId, projectId and wbsItemId are required", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.AssignWbs(r.Context(), payload, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.wbs.create", "wbs_assignment", created.ID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit assignment.wbs.create failed", "err", err)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBulkAssignWbs(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Items []assignment.WbsAssignmentInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Items) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "items required", middleware.GetRequestID(r.Context()))
		return
	}

	result := h.Service.BulkAssignWbs(r.Context(), payload.Items, user.UserID)
	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.wbs.bulk_create", "wbs_assignment", "", middleware.GetRequestID(r.Context()), result); err != nil {
		slog.Warn("audit assignment.wbs.bulk_create failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancelWbsAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	if err := h.Service.CancelWbsAssignment(r.Context(), assignmentID, user.UserID); err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.wbs.cancel", "wbs_assignment", assignmentID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit assignment.wbs.cancel failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "cancelled"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReorderWbsAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	direction, err := assignment.ParseDirection(payload.Direction)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	updated, err := h.Service.ReorderWbsAssignment(r.Context(), assignmentID, direction, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.wbs.reorder", "wbs_assignment", assignmentID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit assignment.wbs.reorder failed", "err", err)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecalculateWeights(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID string `json:"employeeId"`
		PeriodID   string `json:"periodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.EmployeeID == "" || payload.PeriodID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId and periodId are required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.RecalculateWeightsForEmployeePeriod(r.Context(), payload.EmployeeID, payload.PeriodID); err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.weights.recalculate", "wbs_assignment", "", middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit assignment.weights.recalculate failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "recalculated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResetPeriod(w http.ResponseWriter, r *http.Request) {
	h.handleReset(w, r, "period", chi.URLParam(r, "periodID"), h.Service.ResetPeriodAssignments)
}

func (h *Handler) handleResetProject(w http.ResponseWriter, r *http.Request) {
	h.handleReset(w, r, "project", chi.URLParam(r, "projectID"), h.Service.ResetProjectAssignments)
}

func (h *Handler) handleResetEmployee(w http.ResponseWriter, r *http.Request) {
	h.handleReset(w, r, "employee", chi.URLParam(r, "employeeID"), h.Service.ResetEmployeeAssignments)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request, scope, id string, reset func(ctx context.Context, id, actingUserID string) (assignment.CascadeResult, error)) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := reset(r.Context(), id, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.reset."+scope, scope, id, middleware.GetRequestID(r.Context()), result); err != nil {
		slog.Warn("audit assignment.reset failed", "scope", scope, "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.DeleteAllAssignments(r.Context(), user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.delete_all", "assignment", "", middleware.GetRequestID(r.Context()), result); err != nil {
		slog.Warn("audit assignment.delete_all failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssignmentReport(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employeeId")
	periodID := r.URL.Query().Get("periodId")
	if employeeID == "" || periodID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId and periodId are required", middleware.GetRequestID(r.Context()))
		return
	}

	path, err := h.Service.GenerateAssignmentReportPDF(r.Context(), employeeID, periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate assignment report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"path": path}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.Service.GetWbsCriteria(r.Context(), chi.URLParam(r, "wbsItemID"))
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, criteria, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertCriteria(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Criteria   string `json:"criteria"`
		Importance int    `json:"importance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	wbsItemID := chi.URLParam(r, "wbsItemID")
	criteria, err := h.Service.UpsertWbsCriteria(r.Context(), wbsItemID, payload.Criteria, payload.Importance, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.criteria.upsert", "wbs_evaluation_criteria", criteria.ID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit assignment.criteria.upsert failed", "err", err)
	}
	api.Success(w, criteria, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCriteria(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	wbsItemID := chi.URLParam(r, "wbsItemID")
	if err := h.Service.DeleteWbsCriteria(r.Context(), wbsItemID, user.UserID); err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "assignment.criteria.delete", "wbs_evaluation_criteria", wbsItemID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit assignment.criteria.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
