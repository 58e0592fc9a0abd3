package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/torneos-api/middleware"
	"github.com/Dosada05/torneos-api/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// Create обрабатывает POST /api/torneos/{id}/partidos (требует админ-токен).
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Create(r.Context(), id, input)
	if err != nil {
		// Ссылка на несуществующего участника — ошибка входных данных, не 404.
		if errors.Is(err, services.ErrParticipantNotFound) {
			badRequestResponse(w, r, err)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update обрабатывает PUT /api/torneos/{id}/partidos/{partidoID}
// (требует админ-токен). Меняются только результат и место проведения.
func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	matchID := chi.URLParam(r, "partidoID")

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), id, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete обрабатывает DELETE /api/torneos/{id}/partidos/{partidoID}
// (требует админ-токен). Таблица пересчитывается безусловно.
func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	matchID := chi.URLParam(r, "partidoID")

	if err := h.matchService.Delete(r.Context(), id, matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if claims, ok := middleware.AdminClaimsFromContext(r.Context()); ok {
		slog.Info("match deleted by admin",
			slog.String("torneo_id", id),
			slog.String("partido_id", matchID),
			slog.String("admin_role", claims.Role))
	}

	response := jsonResponse{
		"mensaje":    "match deleted",
		"partido_id": matchID,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
