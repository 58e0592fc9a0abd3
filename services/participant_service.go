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

type ParticipantService interface {
	// Enroll записывает участника в турнир и возвращает его ключ открытым
	// текстом. Запись открыта только пока турнир не начался (estado == 0).
	Enroll(ctx context.Context, torneoID, name string) (*models.Participant, string, error)
	// VerifyKey проверяет ключ участника и возвращает его ID.
	// Токен не выпускается: выход из турнира — одноразовая операция,
	// ключ предъявляется на каждый запрос.
	VerifyKey(ctx context.Context, torneoID, participantKey string) (string, error)
	// Remove удаляет участника и пересчитывает таблицу: его сыгранные
	// партиды становятся "осиротевшими" и перестают учитываться.
	Remove(ctx context.Context, torneoID, participantID string) error
}

type participantService struct {
	store           *repositories.FileStore
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	standings       StandingsService
	creds           CredentialService
	hub             *live.Hub
	logger          *slog.Logger
}

func NewParticipantService(
	store *repositories.FileStore,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	standings StandingsService,
	creds CredentialService,
	hub *live.Hub,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		store:           store,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		standings:       standings,
		creds:           creds,
		hub:             hub,
		logger:          logger,
	}
}

func (s *participantService) Enroll(ctx context.Context, torneoID, name string) (*models.Participant, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		v := NewValidationError()
		v.Add("nombre", "is required")
		return nil, "", v
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, torneoID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, "", ErrTournamentNotFound
		}
		return nil, "", err
	}
	if tournament.Status != models.StatusNotStarted {
		return nil, "", ErrEnrollmentClosed
	}

	s.store.Lock(torneoID)
	defer s.store.Unlock(torneoID)

	doc, err := s.participantRepo.GetDoc(ctx, torneoID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, "", err
		}
		// Первый участник — документ создаётся лениво.
		doc = &models.ParticipantsDoc{TournamentID: torneoID, Participants: []models.Participant{}}
	}

	if len(doc.Participants) >= tournament.MaxParticipants {
		return nil, "", ErrTournamentFull
	}
	for _, p := range doc.Participants {
		if strings.EqualFold(p.Name, name) {
			return nil, "", ErrParticipantNameConflict
		}
	}

	key, err := s.creds.GenerateKey()
	if err != nil {
		return nil, "", err
	}
	keyHash, err := s.creds.HashKey(key)
	if err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(doc.Participants))
	for _, p := range doc.Participants {
		ids = append(ids, p.ID)
	}

	participant := models.Participant{
		ID:        NextSequentialID(ids),
		Name:      name,
		KeyHash:   keyHash,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	doc.Participants = append(doc.Participants, participant)

	if err := s.participantRepo.SaveDoc(ctx, doc); err != nil {
		return nil, "", err
	}

	s.hub.BroadcastEvent(live.Event{
		Type:         live.EventParticipantJoined,
		TournamentID: torneoID,
		Payload:      map[string]string{"participante_id": participant.ID, "nombre": participant.Name},
	})
	s.logger.Info("participant enrolled",
		slog.String("torneo_id", torneoID),
		slog.String("participante_id", participant.ID))
	return &participant, key, nil
}

func (s *participantService) VerifyKey(ctx context.Context, torneoID, participantKey string) (string, error) {
	if participantKey == "" {
		return "", ErrInvalidParticipantKey
	}

	doc, err := s.participantRepo.GetDoc(ctx, torneoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrResourceNotFound
		}
		return "", err
	}

	for _, p := range doc.Participants {
		if p.KeyHash == "" {
			continue
		}
		if s.creds.VerifyKey(participantKey, p.KeyHash) {
			return p.ID, nil
		}
	}
	return "", ErrInvalidParticipantKey
}

func (s *participantService) Remove(ctx context.Context, torneoID, participantID string) error {
	s.store.Lock(torneoID)
	defer s.store.Unlock(torneoID)

	doc, err := s.participantRepo.GetDoc(ctx, torneoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}

	idx := -1
	for i := range doc.Participants {
		if doc.Participants[i].ID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrParticipantNotFound
	}

	doc.Participants = append(doc.Participants[:idx], doc.Participants[idx+1:]...)
	if err := s.participantRepo.SaveDoc(ctx, doc); err != nil {
		return err
	}

	if _, err := s.standings.Recompute(ctx, torneoID); err != nil {
		return fmt.Errorf("failed to recompute standings after removal: %w", err)
	}

	s.hub.BroadcastEvent(live.Event{
		Type:         live.EventParticipantRemoved,
		TournamentID: torneoID,
		Payload:      map[string]string{"participante_id": participantID},
	})
	s.hub.BroadcastEvent(live.Event{
		Type:         live.EventStandingsUpdated,
		TournamentID: torneoID,
	})
	return nil
}
