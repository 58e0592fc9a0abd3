package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/torneos-api/models"
	"github.com/Dosada05/torneos-api/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// StandingsService пересчитывает таблицу турнира по полной истории партидов.
// Пересчёт полный и идемпотентный: статистика всегда равна результату
// проигрыша всех сыгранных партидов с нуля, инкрементальных апдейтов нет —
// так правки и удаления партидов не накапливают дрейф.
type StandingsService interface {
	// Recompute перечитывает участников и партидо турнира, обнуляет
	// статистику и проигрывает каждый сыгранный партидо заново.
	// Вызывающий держит блокировку турнира.
	Recompute(ctx context.Context, torneoID string) (*models.ParticipantsDoc, error)
}

type standingsService struct {
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	logger          *slog.Logger
}

func NewStandingsService(
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		logger:          logger,
	}
}

func (s *standingsService) Recompute(ctx context.Context, torneoID string) (*models.ParticipantsDoc, error) {
	var (
		participantsDoc *models.ParticipantsDoc
		matchesDoc      *models.MatchesDoc
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.participantRepo.GetDoc(gctx, torneoID)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		participantsDoc = doc
		return nil
	})
	g.Go(func() error {
		doc, err := s.matchRepo.GetDoc(gctx, torneoID)
		if err != nil {
			// Отсутствие файла партидов — просто пустая история.
			if errors.Is(err, repositories.ErrNotFound) {
				matchesDoc = &models.MatchesDoc{TournamentID: torneoID, Matches: []models.Match{}}
				return nil
			}
			return fmt.Errorf("failed to load matches: %w", err)
		}
		matchesDoc = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Participant, len(participantsDoc.Participants))
	for i := range participantsDoc.Participants {
		p := &participantsDoc.Participants[i]
		p.ResetStats()
		byID[p.ID] = p
	}

	for _, match := range matchesDoc.Matches {
		if !match.Played() {
			continue
		}

		p1, ok1 := byID[match.Participant1ID]
		p2, ok2 := byID[match.Participant2ID]
		if !ok1 || !ok2 {
			// Партидо ссылается на удалённого участника: пропускаем,
			// это предупреждение о целостности, не фатальная ошибка.
			s.logger.Warn("skipping orphan match during standings recompute",
				slog.String("torneo_id", torneoID),
				slog.String("partido_id", match.ID),
				slog.String("participante1_id", match.Participant1ID),
				slog.String("participante2_id", match.Participant2ID),
			)
			continue
		}

		p1.GamesPlayed++
		p2.GamesPlayed++

		r1, r2 := *match.Result1, *match.Result2
		switch {
		case r1 > r2:
			p1.Wins++
			p1.Points += pointsWin
			p2.Losses++
		case r2 > r1:
			p2.Wins++
			p2.Points += pointsWin
			p1.Losses++
		default:
			p1.Draws++
			p2.Draws++
			p1.Points += pointsDraw
			p2.Points += pointsDraw
		}
	}

	if err := s.participantRepo.SaveDoc(ctx, participantsDoc); err != nil {
		return nil, fmt.Errorf("failed to save recomputed standings: %w", err)
	}
	return participantsDoc, nil
}
