package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/torneos-api/middleware"
	"github.com/Dosada05/torneos-api/models"
	"github.com/Dosada05/torneos-api/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// List обрабатывает GET /api/torneos.
// Ответ — массив турниров как есть (без конверта), это контракт фронтенда.
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter services.ListTournamentsFilter
	query := r.URL.Query()

	if d := query.Get("disciplina"); d != "" {
		discipline := models.Discipline(d)
		if !discipline.Valid() {
			badRequestResponse(w, r, errors.New("invalid disciplina query parameter"))
			return
		}
		filter.Discipline = &discipline
	}
	if e := query.Get("estado"); e != "" {
		n, err := strconv.Atoi(e)
		if err != nil || !models.TournamentStatus(n).Valid() {
			badRequestResponse(w, r, errors.New("invalid estado query parameter"))
			return
		}
		status := models.TournamentStatus(n)
		filter.Status = &status
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournaments, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Paginate обрабатывает GET /api/torneos/paginado?index=&limite=.
func (h *TournamentHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	index, err := strconv.Atoi(query.Get("index"))
	if err != nil {
		badRequestResponse(w, r, errors.New("index query parameter must be an integer"))
		return
	}
	limit, err := strconv.Atoi(query.Get("limite"))
	if err != nil {
		badRequestResponse(w, r, errors.New("limite query parameter must be an integer"))
		return
	}

	page, err := h.tournamentService.Paginate(r.Context(), index, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, page, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID обрабатывает GET /api/torneos/{id}.
func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetResource обрабатывает GET /api/torneos/{id}/{recurso},
// recurso ∈ {participantes, partidos}.
func (h *TournamentHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resource := chi.URLParam(r, "recurso")

	doc, err := h.tournamentService.GetResource(r.Context(), id, resource)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, doc, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create обрабатывает POST /api/torneos.
// Возвращает torneo_id и admin_key — ключ показывается единственный раз.
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, adminKey, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"torneo_id": tournament.ID,
		"admin_key": adminKey,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update обрабатывает PUT /api/torneos/{id} (требует админ-токен).
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete обрабатывает DELETE /api/torneos/{id} (требует админ-токен).
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	name, err := h.tournamentService.Delete(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if claims, ok := middleware.AdminClaimsFromContext(r.Context()); ok {
		slog.Info("tournament deleted by admin",
			slog.String("torneo_id", id),
			slog.String("admin_role", claims.Role))
	}

	response := jsonResponse{
		"mensaje": "tournament deleted",
		"nombre":  name,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
