package handlers

import (
	"net/http"

	"github.com/Dosada05/torneos-api/services"
	"github.com/go-chi/chi/v5"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
}

func NewParticipantHandler(ps services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: ps}
}

// Enroll обрабатывает POST /api/torneos/{id}/participantes.
// Возвращает participante_id и participante_key — ключ показывается один раз.
func (h *ParticipantHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input struct {
		Name string `json:"nombre"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, key, err := h.participantService.Enroll(r.Context(), id, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"participante_id":  participant.ID,
		"participante_key": key,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Remove обрабатывает DELETE /api/torneos/{id}/participantes/{participanteID}.
// Вызывается админом или самим участником после проверки его ключа
// через /auth/participante.
func (h *ParticipantHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	participantID := chi.URLParam(r, "participanteID")

	if err := h.participantService.Remove(r.Context(), id, participantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"mensaje":         "participant removed",
		"participante_id": participantID,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
