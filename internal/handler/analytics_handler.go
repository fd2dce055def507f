package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/workforce-analytics-api/internal/dto"
	"github.com/workforce-analytics-api/internal/service"
)

const defaultTopLimit = 5

type AnalyticsHandler struct {
	responder
	analytics service.AnalyticsService
	validator *validator.Validate
}

func NewAnalyticsHandler(analytics service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		responder: responder{logger: logger},
		analytics: analytics,
		validator: validator.New(),
	}
}

func (h *AnalyticsHandler) Company(w http.ResponseWriter, r *http.Request) {
	resp, err := h.analytics.CompanyAnalytics(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *AnalyticsHandler) Department(w http.ResponseWriter, r *http.Request) {
	id, err := h.extractID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid department id", err.Error())
		return
	}

	resp, err := h.analytics.DepartmentAnalytics(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *AnalyticsHandler) Employee(w http.ResponseWriter, r *http.Request) {
	id, err := h.extractID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid employee id", err.Error())
		return
	}

	resp, err := h.analytics.EmployeeAnalytics(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *AnalyticsHandler) Project(w http.ResponseWriter, r *http.Request) {
	id, err := h.extractID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid project id", err.Error())
		return
	}

	resp, err := h.analytics.ProjectAnalytics(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *AnalyticsHandler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	query := h.parseTopQuery(r)
	if err := h.validator.Struct(&query); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	resp, err := h.analytics.TopPerformers(r.Context(), &query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *AnalyticsHandler) TopProjects(w http.ResponseWriter, r *http.Request) {
	query := h.parseTopQuery(r)
	if err := h.validator.Struct(&query); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	resp, err := h.analytics.TopProjects(r.Context(), &query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// parseTopQuery: нечисловой limit превращается в 0 и не проходит валидацию
func (h *AnalyticsHandler) parseTopQuery(r *http.Request) dto.TopQuery {
	query := dto.TopQuery{Limit: defaultTopLimit}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			limit = 0
		}
		query.Limit = limit
	}

	return query
}
