package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workforce-analytics-api/internal/dto"
	"github.com/workforce-analytics-api/internal/service"
)

// TrainingQueue - асинхронный запуск обучения
type TrainingQueue interface {
	Submit(departmentID int64) (service.Task, error)
	Task(id string) (service.Task, error)
}

type PredictionHandler struct {
	responder
	trainer   service.TrainingService
	queue     TrainingQueue
	predictor service.PredictionService
}

func NewPredictionHandler(
	trainer service.TrainingService,
	queue TrainingQueue,
	predictor service.PredictionService,
	logger *slog.Logger,
) *PredictionHandler {
	return &PredictionHandler{
		responder: responder{logger: logger},
		trainer:   trainer,
		queue:     queue,
		predictor: predictor,
	}
}

// Train ставит обучение в очередь (202) или, при wait=true, обучает синхронно (200)
func (h *PredictionHandler) Train(w http.ResponseWriter, r *http.Request) {
	id, err := h.extractID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid department id", err.Error())
		return
	}

	query := h.parseTrainQuery(r)
	if query.Wait {
		// набор моделей сохраняется целиком даже при обрыве запроса
		resp, err := h.trainer.Train(context.WithoutCancel(r.Context()), id)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		h.respondJSON(w, http.StatusOK, resp)
		return
	}

	task, err := h.queue.Submit(id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/predictions/tasks/"+task.ID)
	h.respondJSON(w, http.StatusAccepted, task.Response())
}

func (h *PredictionHandler) Task(w http.ResponseWriter, r *http.Request) {
	task, err := h.queue.Task(chi.URLParam(r, "taskID"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, task.Response())
}

func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	id, err := h.extractID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid department id", err.Error())
		return
	}

	resp, err := h.predictor.Predict(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *PredictionHandler) parseTrainQuery(r *http.Request) dto.TrainQuery {
	return dto.TrainQuery{
		Wait: r.URL.Query().Get("wait") == "true",
	}
}
