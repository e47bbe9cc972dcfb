package evallinehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/audit"
	"pms/internal/domain/evalline"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
)

type Handler struct {
	Service *evalline.Service
	Audit   *audit.Service
}

func NewHandler(service *evalline.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluation-lines", func(r chi.Router) {
		r.Post("/primary", h.handleConfigurePrimary)
		r.Post("/primary/bulk", h.handleBulkConfigurePrimary)
		r.Post("/primary/auto", h.handleAutoConfigurePrimary)
		r.Post("/secondary", h.handleConfigureSecondary)
		r.Post("/secondary/bulk", h.handleBulkConfigureSecondary)
		r.Post("/validate", h.handleValidateLine)
		r.Get("/mappings", h.handleListMappings)
	})
}

func failFromError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, evalline.ErrNoEvaluationPermission):
		api.Fail(w, http.StatusForbidden, "no_evaluation_permission", err.Error(), requestID)
	case errors.Is(err, evalline.ErrPeriodClosed):
		api.Fail(w, http.StatusUnprocessableEntity, "period_closed", err.Error(), requestID)
	case errors.Is(err, evalline.ErrPeriodNotFound),
		errors.Is(err, evalline.ErrEmployeeNotFound),
		errors.Is(err, evalline.ErrEvaluatorNotFound),
		errors.Is(err, evalline.ErrWbsItemNotFound),
		errors.Is(err, evalline.ErrLineNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
	}
}

func (h *Handler) handleConfigurePrimary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID  string `json:"employeeId"`
		PeriodID    string `json:"periodId"`
		EvaluatorID string `json:"evaluatorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.EmployeeID == "" || payload.PeriodID == "" || payload.EvaluatorID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId, periodId and evaluatorId are required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.ConfigurePrimaryEvaluator(r.Context(), payload.EmployeeID, payload.PeriodID, payload.EvaluatorID, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "evalline.primary.configure", "evaluation_line_mapping", result.MappingID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit evalline.primary.configure failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleConfigureSecondary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID  string `json:"employeeId"`
		WbsItemID   string `json:"wbsItemId"`
		PeriodID    string `json:"periodId"`
		EvaluatorID string `json:"evaluatorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.EmployeeID == "" || payload.WbsItemID == "" || payload.PeriodID == "" || payload.EvaluatorID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId, wbsItemId, periodId and evaluatorId are required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.ConfigureSecondaryEvaluator(r.Context(), payload.EmployeeID, payload.WbsItemID, payload.PeriodID, payload.EvaluatorID, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "evalline.secondary.configure", "evaluation_line_mapping", result.MappingID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit evalline.secondary.configure failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAutoConfigurePrimary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		PeriodID string `json:"periodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.PeriodID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "periodId is required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.AutoConfigurePrimaryEvaluators(r.Context(), payload.PeriodID, user.UserID)
	if err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "evalline.primary.auto_configure", "evaluation_period", payload.PeriodID, middleware.GetRequestID(r.Context()), result); err != nil {
		slog.Warn("audit evalline.primary.auto_configure failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBulkConfigurePrimary(w http.ResponseWriter, r *http.Request) {
	h.handleBulkConfigure(w, r, "evalline.primary.bulk_configure", h.Service.BulkConfigurePrimaryEvaluators)
}

func (h *Handler) handleBulkConfigureSecondary(w http.ResponseWriter, r *http.Request) {
	h.handleBulkConfigure(w, r, "evalline.secondary.bulk_configure", h.Service.BulkConfigureSecondaryEvaluators)
}

func (h *Handler) handleBulkConfigure(w http.ResponseWriter, r *http.Request, action string, run func(ctx context.Context, periodID string, items []evalline.BulkItem, createdBy string) evalline.BulkResult) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		PeriodID string              `json:"periodId"`
		Items    []evalline.BulkItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.PeriodID == "" || len(payload.Items) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "periodId and items are required", middleware.GetRequestID(r.Context()))
		return
	}

	result := run(r.Context(), payload.PeriodID, payload.Items, user.UserID)
	if err := h.Audit.Record(r.Context(), user.UserID, action, "evaluation_line_mapping", "", middleware.GetRequestID(r.Context()), result); err != nil {
		slog.Warn("audit bulk evaluator configuration failed", "action", action, "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleValidateLine(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EvaluateeID    string `json:"evaluateeId"`
		EvaluatorID    string `json:"evaluatorId"`
		WbsItemID      string `json:"wbsItemId"`
		EvaluationType string `json:"evaluationType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.EvaluateeID == "" || payload.EvaluatorID == "" || payload.EvaluationType == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "evaluateeId, evaluatorId and evaluationType are required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.ValidateEvaluationLine(r.Context(), payload.EvaluateeID, payload.EvaluatorID, payload.WbsItemID, payload.EvaluationType); err != nil {
		failFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"allowed": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}

	mappings, err := h.Service.ListMappingsForEmployee(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mapping_list_failed", "failed to list evaluator mappings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, mappings, middleware.GetRequestID(r.Context()))
}
