package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/dto"
)

// responder - общие методы ответа для всех хендлеров
type responder struct {
	logger *slog.Logger
}

func (h responder) extractID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return 0, errors.New("id is required")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

func (h responder) handleServiceError(w http.ResponseWriter, err error) {
	var notTrained *domain.ModelNotTrainedError

	switch {
	case errors.Is(err, domain.ErrScopeNotFound):
		h.respondError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, domain.ErrTaskNotFound):
		h.respondError(w, http.StatusNotFound, "training task not found", "")
	case errors.As(err, &notTrained):
		h.respondError(w, http.StatusConflict, "model not trained", notTrained.Error())
	case errors.Is(err, domain.ErrInsufficientData):
		h.respondError(w, http.StatusUnprocessableEntity, "insufficient data", err.Error())
	case errors.Is(err, domain.ErrInvalidMetricInput):
		h.respondError(w, http.StatusUnprocessableEntity, "invalid metric input", err.Error())
	case errors.Is(err, domain.ErrRunnerClosed), errors.Is(err, domain.ErrTrainingQueueFull):
		h.respondError(w, http.StatusServiceUnavailable, "training unavailable", err.Error())
	case errors.Is(err, domain.ErrModelStore):
		h.logger.Error("model store error", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "model store error", "")
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h responder) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}
