package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/torneos-api/live"
	"github.com/Dosada05/torneos-api/models"
	"github.com/Dosada05/torneos-api/repositories"
)

type CreateMatchInput struct {
	Participant1ID string `json:"participante1_id"`
	Participant2ID string `json:"participante2_id"`
	Date           string `json:"fecha"`
	Venue          string `json:"jugado_en"`
	Result1        *int   `json:"resultado1"`
	Result2        *int   `json:"resultado2"`
}

// UpdateMatchInput — частичное обновление: меняются только результат и
// место проведения, ID и пара участников неизменяемы.
type UpdateMatchInput struct {
	Venue   *string `json:"jugado_en"`
	Result1 *int    `json:"resultado1"`
	Result2 *int    `json:"resultado2"`
}

type MatchService interface {
	Create(ctx context.Context, torneoID string, input CreateMatchInput) (*models.Match, error)
	Update(ctx context.Context, torneoID, matchID string, input UpdateMatchInput) (*models.Match, error)
	Delete(ctx context.Context, torneoID, matchID string) error
}

type matchService struct {
	store           *repositories.FileStore
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	standings       StandingsService
	hub             *live.Hub
	logger          *slog.Logger
}

func NewMatchService(
	store *repositories.FileStore,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	standings StandingsService,
	hub *live.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		store:           store,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		standings:       standings,
		hub:             hub,
		logger:          logger,
	}
}

// validateResults: результат указывается целиком или не указывается вовсе,
// счёт не бывает отрицательным.
func validateResults(v *ValidationError, result1, result2 *int) {
	if (result1 == nil) != (result2 == nil) {
		v.Add("resultado", "both resultado1 and resultado2 must be present, or neither")
		return
	}
	if result1 != nil && *result1 < 0 {
		v.Add("resultado1", "must not be negative")
	}
	if result2 != nil && *result2 < 0 {
		v.Add("resultado2", "must not be negative")
	}
}

func (s *matchService) Create(ctx context.Context, torneoID string, input CreateMatchInput) (*models.Match, error) {
	v := NewValidationError()
	if strings.TrimSpace(input.Participant1ID) == "" {
		v.Add("participante1_id", "is required")
	}
	if strings.TrimSpace(input.Participant2ID) == "" {
		v.Add("participante2_id", "is required")
	}
	if input.Participant1ID != "" && input.Participant1ID == input.Participant2ID {
		v.Add("participante2_id", "must differ from participante1_id")
	}
	if strings.TrimSpace(input.Date) == "" {
		v.Add("fecha", "is required")
	}
	validateResults(v, input.Result1, input.Result2)
	if v.HasErrors() {
		return nil, v
	}

	s.store.Lock(torneoID)
	defer s.store.Unlock(torneoID)

	participantsDoc, err := s.participantRepo.GetDoc(ctx, torneoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	known := make(map[string]bool, len(participantsDoc.Participants))
	for _, p := range participantsDoc.Participants {
		known[p.ID] = true
	}
	if !known[input.Participant1ID] || !known[input.Participant2ID] {
		return nil, ErrParticipantNotFound
	}

	doc, err := s.matchRepo.GetDoc(ctx, torneoID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		doc = &models.MatchesDoc{TournamentID: torneoID, Matches: []models.Match{}}
	}

	ids := make([]string, 0, len(doc.Matches))
	for _, m := range doc.Matches {
		ids = append(ids, m.ID)
	}

	match := models.Match{
		ID:             NextSequentialID(ids),
		Participant1ID: input.Participant1ID,
		Participant2ID: input.Participant2ID,
		Date:           input.Date,
		Venue:          input.Venue,
		Result1:        input.Result1,
		Result2:        input.Result2,
	}
	doc.Matches = append(doc.Matches, match)

	if err := s.matchRepo.SaveDoc(ctx, doc); err != nil {
		return nil, err
	}

	if match.Played() {
		if _, err := s.standings.Recompute(ctx, torneoID); err != nil {
			return nil, fmt.Errorf("failed to recompute standings: %w", err)
		}
		s.hub.BroadcastEvent(live.Event{Type: live.EventStandingsUpdated, TournamentID: torneoID})
	}

	s.hub.BroadcastEvent(live.Event{
		Type:         live.EventMatchCreated,
		TournamentID: torneoID,
		Payload:      match,
	})
	s.logger.Info("match created",
		slog.String("torneo_id", torneoID),
		slog.String("partido_id", match.ID))
	return &match, nil
}

func (s *matchService) Update(ctx context.Context, torneoID, matchID string, input UpdateMatchInput) (*models.Match, error) {
	v := NewValidationError()
	validateResults(v, input.Result1, input.Result2)
	if v.HasErrors() {
		return nil, v
	}

	s.store.Lock(torneoID)
	defer s.store.Unlock(torneoID)

	doc, err := s.matchRepo.GetDoc(ctx, torneoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	idx := -1
	for i := range doc.Matches {
		if doc.Matches[i].ID == matchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMatchNotFound
	}

	match := &doc.Matches[idx]
	if input.Venue != nil {
		match.Venue = *input.Venue
	}
	resultChanged := input.Result1 != nil && input.Result2 != nil
	if resultChanged {
		match.Result1 = input.Result1
		match.Result2 = input.Result2
	}

	if err := s.matchRepo.SaveDoc(ctx, doc); err != nil {
		return nil, err
	}

	if resultChanged {
		if _, err := s.standings.Recompute(ctx, torneoID); err != nil {
			return nil, fmt.Errorf("failed to recompute standings: %w", err)
		}
		s.hub.BroadcastEvent(live.Event{Type: live.EventStandingsUpdated, TournamentID: torneoID})
	}

	updated := *match
	s.hub.BroadcastEvent(live.Event{
		Type:         live.EventMatchUpdated,
		TournamentID: torneoID,
		Payload:      updated,
	})
	return &updated, nil
}

func (s *matchService) Delete(ctx context.Context, torneoID, matchID string) error {
	s.store.Lock(torneoID)
	defer s.store.Unlock(torneoID)

	doc, err := s.matchRepo.GetDoc(ctx, torneoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	idx := -1
	for i := range doc.Matches {
		if doc.Matches[i].ID == matchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrMatchNotFound
	}

	doc.Matches = append(doc.Matches[:idx], doc.Matches[idx+1:]...)
	if err := s.matchRepo.SaveDoc(ctx, doc); err != nil {
		return err
	}

	// Пересчёт безусловный: вклад удалённого партидо надо откатить,
	// даже если у него не было результата.
	if _, err := s.standings.Recompute(ctx, torneoID); err != nil {
		return fmt.Errorf("failed to recompute standings after delete: %w", err)
	}

	s.hub.BroadcastEvent(live.Event{
		Type:         live.EventMatchDeleted,
		TournamentID: torneoID,
		Payload:      map[string]string{"partido_id": matchID},
	})
	s.hub.BroadcastEvent(live.Event{Type: live.EventStandingsUpdated, TournamentID: torneoID})
	return nil
}
