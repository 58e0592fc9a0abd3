package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/torneos-api/live"
	"github.com/Dosada05/torneos-api/models"
	"github.com/Dosada05/torneos-api/repositories"
)

// ResourceParticipants / ResourceMatches — допустимые значения {recurso}
// в GET /api/torneos/{id}/{recurso}.
const (
	ResourceParticipants = "participantes"
	ResourceMatches      = "partidos"
)

type ListTournamentsFilter struct {
	Discipline *models.Discipline
	Status     *models.TournamentStatus
}

type CreateTournamentInput struct {
	Name            string                   `json:"nombre"`
	Discipline      models.Discipline        `json:"disciplina"`
	Format          string                   `json:"formato"`
	Status          *models.TournamentStatus `json:"estado"`
	MaxParticipants int                      `json:"nro_participantes"`
	Organizer       string                   `json:"organizador"`
	Prize           string                   `json:"premio"`
	StartDate       string                   `json:"fecha_inicio"`
	EndDate         string                   `json:"fecha_fin"`
	Description     string                   `json:"descripcion"`
	Tags            []string                 `json:"tags"`
}

type UpdateTournamentInput struct {
	Name            *string                  `json:"nombre"`
	Discipline      *models.Discipline       `json:"disciplina"`
	Format          *string                  `json:"formato"`
	Status          *models.TournamentStatus `json:"estado"`
	MaxParticipants *int                     `json:"nro_participantes"`
	Organizer       *string                  `json:"organizador"`
	Prize           *string                  `json:"premio"`
	StartDate       *string                  `json:"fecha_inicio"`
	EndDate         *string                  `json:"fecha_fin"`
	Description     *string                  `json:"descripcion"`
	Tags            *[]string                `json:"tags"`
}

type Pagination struct {
	Index        int `json:"index"`
	Limit        int `json:"limite"`
	TotalRecords int `json:"total_torneos"`
	TotalPages   int `json:"total_paginas"`
}

type TournamentPage struct {
	Data       []models.Tournament `json:"data"`
	Pagination Pagination          `json:"paginacion"`
}

type TournamentService interface {
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Paginate(ctx context.Context, index, limit int) (*TournamentPage, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	// GetResource возвращает документ участников или партидов как есть.
	GetResource(ctx context.Context, id, resource string) (interface{}, error)
	// Create возвращает созданный турнир и админ-ключ открытым текстом.
	// Ключ показывается один раз, дальше хранится только его хеш.
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, string, error)
	Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	// Delete каскадно удаляет документы участников/партидов и изображения
	// турнира, возвращает имя удалённого турнира.
	Delete(ctx context.Context, id string) (string, error)
	// VerifyAdminKey сверяет ключ с хешем и выпускает админ-токен.
	VerifyAdminKey(ctx context.Context, id, adminKey string) (string, error)
	SetCoverURL(ctx context.Context, id, coverURL string) error
}

type tournamentService struct {
	store           *repositories.FileStore
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	creds           CredentialService
	hub             *live.Hub
	logger          *slog.Logger
}

func NewTournamentService(
	store *repositories.FileStore,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	creds CredentialService,
	hub *live.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		store:           store,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		creds:           creds,
		hub:             hub,
		logger:          logger,
	}
}

func (s *tournamentService) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTournamentsMissing
		}
		return nil, err
	}
	if len(tournaments) == 0 {
		return nil, ErrTournamentsMissing
	}

	filtered := make([]models.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		if filter.Discipline != nil && t.Discipline != *filter.Discipline {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

func (s *tournamentService) Paginate(ctx context.Context, index, limit int) (*TournamentPage, error) {
	if index < 1 || limit < 1 {
		return nil, ErrInvalidPagination
	}

	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTournamentsMissing
		}
		return nil, err
	}
	// Пустой список — тот же случай, что и отсутствующий файл.
	if len(tournaments) == 0 {
		return nil, ErrTournamentsMissing
	}

	total := len(tournaments)
	totalPages := (total + limit - 1) / limit
	if index > totalPages {
		return nil, ErrPageOutOfRange
	}

	start := (index - 1) * limit
	end := start + limit
	if end > total {
		end = total
	}
	data := []models.Tournament{}
	if start < total {
		data = tournaments[start:end]
	}

	return &TournamentPage{
		Data: data,
		Pagination: Pagination{
			Index:        index,
			Limit:        limit,
			TotalRecords: total,
			TotalPages:   totalPages,
		},
	}, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetResource(ctx context.Context, id, resource string) (interface{}, error) {
	switch resource {
	case ResourceParticipants:
		doc, err := s.participantRepo.GetDoc(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrResourceNotFound
			}
			return nil, err
		}
		// Хеши ключей участников не покидают хранилище.
		for i := range doc.Participants {
			doc.Participants[i].KeyHash = ""
		}
		return doc, nil
	case ResourceMatches:
		doc, err := s.matchRepo.GetDoc(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrResourceNotFound
			}
			return nil, err
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidResource, resource)
	}
}

func validateCreateInput(input CreateTournamentInput) error {
	v := NewValidationError()
	if strings.TrimSpace(input.Name) == "" {
		v.Add("nombre", "is required")
	}
	if !input.Discipline.Valid() {
		v.Add("disciplina", "must be one of the known disciplines")
	}
	if strings.TrimSpace(input.Format) == "" {
		v.Add("formato", "is required")
	}
	if strings.TrimSpace(input.Organizer) == "" {
		v.Add("organizador", "is required")
	}
	if input.MaxParticipants < 2 {
		v.Add("nro_participantes", "must be an integer of at least 2")
	}
	if input.Status != nil && !input.Status.Valid() {
		v.Add("estado", "must be 0, 1 or 2")
	}
	if v.HasErrors() {
		return v
	}
	return nil
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, string, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, "", err
	}

	s.store.LockTournaments()
	defer s.store.UnlockTournaments()

	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", err
	}

	existing := make(map[string]bool, len(tournaments))
	for _, t := range tournaments {
		existing[t.ID] = true
	}
	id, err := NewTournamentID(existing)
	if err != nil {
		return nil, "", err
	}

	adminKey, err := s.creds.GenerateKey()
	if err != nil {
		return nil, "", err
	}
	adminKeyHash, err := s.creds.HashKey(adminKey)
	if err != nil {
		return nil, "", err
	}

	status := models.StatusNotStarted
	if input.Status != nil {
		status = *input.Status
	}

	tournament := models.Tournament{
		ID:              id,
		Name:            strings.TrimSpace(input.Name),
		Discipline:      input.Discipline,
		Format:          strings.TrimSpace(input.Format),
		Status:          status,
		MaxParticipants: input.MaxParticipants,
		Organizer:       strings.TrimSpace(input.Organizer),
		Prize:           input.Prize,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Description:     input.Description,
		Tags:            input.Tags,
		AdminKeyHash:    adminKeyHash,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	tournaments = append(tournaments, tournament)
	if err := s.tournamentRepo.SaveAll(ctx, tournaments); err != nil {
		return nil, "", err
	}

	s.logger.Info("tournament created",
		slog.String("torneo_id", tournament.ID),
		slog.String("nombre", tournament.Name))
	return &tournament, adminKey, nil
}

func validateUpdateInput(input UpdateTournamentInput) error {
	v := NewValidationError()
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		v.Add("nombre", "must not be empty")
	}
	if input.Discipline != nil && !input.Discipline.Valid() {
		v.Add("disciplina", "must be one of the known disciplines")
	}
	if input.Format != nil && strings.TrimSpace(*input.Format) == "" {
		v.Add("formato", "must not be empty")
	}
	if input.Organizer != nil && strings.TrimSpace(*input.Organizer) == "" {
		v.Add("organizador", "must not be empty")
	}
	if input.MaxParticipants != nil && *input.MaxParticipants < 2 {
		v.Add("nro_participantes", "must be an integer of at least 2")
	}
	if input.Status != nil && !input.Status.Valid() {
		v.Add("estado", "must be 0, 1 or 2")
	}
	if v.HasErrors() {
		return v
	}
	return nil
}

func (s *tournamentService) Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	s.store.LockTournaments()
	defer s.store.UnlockTournaments()

	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	idx := -1
	for i := range tournaments {
		if tournaments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrTournamentNotFound
	}

	t := &tournaments[idx]
	if input.Name != nil {
		t.Name = strings.TrimSpace(*input.Name)
	}
	if input.Discipline != nil {
		t.Discipline = *input.Discipline
	}
	if input.Format != nil {
		t.Format = strings.TrimSpace(*input.Format)
	}
	if input.Status != nil {
		t.Status = *input.Status
	}
	if input.MaxParticipants != nil {
		t.MaxParticipants = *input.MaxParticipants
	}
	if input.Organizer != nil {
		t.Organizer = strings.TrimSpace(*input.Organizer)
	}
	if input.Prize != nil {
		t.Prize = *input.Prize
	}
	if input.StartDate != nil {
		t.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		t.EndDate = *input.EndDate
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Tags != nil {
		t.Tags = *input.Tags
	}

	if err := s.tournamentRepo.SaveAll(ctx, tournaments); err != nil {
		return nil, err
	}

	updated := *t
	s.hub.BroadcastEvent(live.Event{
		Type:         live.EventTournamentUpdated,
		TournamentID: id,
		Payload:      updated,
	})
	return &updated, nil
}

func (s *tournamentService) Delete(ctx context.Context, id string) (string, error) {
	s.store.LockTournaments()
	defer s.store.UnlockTournaments()
	s.store.Lock(id)
	defer s.store.Unlock(id)

	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrTournamentNotFound
		}
		return "", err
	}

	idx := -1
	for i := range tournaments {
		if tournaments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", ErrTournamentNotFound
	}

	name := tournaments[idx].Name
	tournaments = append(tournaments[:idx], tournaments[idx+1:]...)
	if err := s.tournamentRepo.SaveAll(ctx, tournaments); err != nil {
		return "", err
	}

	// Каскад: документы участников и партидов плюс загруженные изображения.
	if err := s.store.RemoveTournamentData(id); err != nil {
		s.logger.Error("failed to remove tournament data after delete",
			slog.String("torneo_id", id),
			slog.Any("error", err))
	}

	s.hub.BroadcastEvent(live.Event{
		Type:         live.EventTournamentDeleted,
		TournamentID: id,
	})
	s.logger.Info("tournament deleted",
		slog.String("torneo_id", id),
		slog.String("nombre", name))
	return name, nil
}

func (s *tournamentService) VerifyAdminKey(ctx context.Context, id, adminKey string) (string, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if tournament.AdminKeyHash == "" {
		return "", ErrMissingAdminKeyHash
	}
	if !s.creds.VerifyKey(adminKey, tournament.AdminKeyHash) {
		return "", ErrInvalidAdminKey
	}
	return s.creds.IssueAdminToken(id)
}

func (s *tournamentService) SetCoverURL(ctx context.Context, id, coverURL string) error {
	s.store.LockTournaments()
	defer s.store.UnlockTournaments()

	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	for i := range tournaments {
		if tournaments[i].ID == id {
			tournaments[i].CoverURL = coverURL
			return s.tournamentRepo.SaveAll(ctx, tournaments)
		}
	}
	return ErrTournamentNotFound
}
