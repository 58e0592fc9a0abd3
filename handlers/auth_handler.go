package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/torneos-api/services"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	tournamentService  services.TournamentService
	participantService services.ParticipantService
}

func NewAuthHandler(ts services.TournamentService, ps services.ParticipantService) *AuthHandler {
	return &AuthHandler{
		tournamentService:  ts,
		participantService: ps,
	}
}

// VerifyAdminKey обрабатывает POST /api/torneos/{id}/auth/admin.
// При верном ключе выпускает админ-токен, привязанный к турниру.
func (h *AuthHandler) VerifyAdminKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input struct {
		AdminKey string `json:"admin_key"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.AdminKey == "" {
		badRequestResponse(w, r, errors.New("admin_key is required"))
		return
	}

	token, err := h.tournamentService.VerifyAdminKey(r.Context(), id, input.AdminKey)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"valid": true,
		"token": token,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerifyParticipantKey обрабатывает POST /api/torneos/{id}/auth/participante.
// Токен не выпускается: ключ участника проверяется на каждый запрос.
func (h *AuthHandler) VerifyParticipantKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input struct {
		ParticipantKey string `json:"participante_key"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ParticipantKey == "" {
		badRequestResponse(w, r, errors.New("participante_key is required"))
		return
	}

	participantID, err := h.participantService.VerifyKey(r.Context(), id, input.ParticipantKey)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"valid":           true,
		"participante_id": participantID,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
