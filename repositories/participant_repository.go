package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/torneos-api/models"
)

const participantsResource = "participantes"

type ParticipantRepository interface {
	// GetDoc возвращает документ участников турнира. ErrNotFound, если файла ещё нет.
	GetDoc(ctx context.Context, torneoID string) (*models.ParticipantsDoc, error)
	SaveDoc(ctx context.Context, doc *models.ParticipantsDoc) error
}

type fileParticipantRepository struct {
	store *FileStore
}

func NewFileParticipantRepository(store *FileStore) ParticipantRepository {
	return &fileParticipantRepository{store: store}
}

func (r *fileParticipantRepository) GetDoc(_ context.Context, torneoID string) (*models.ParticipantsDoc, error) {
	var doc models.ParticipantsDoc
	path := r.store.resourcePath(torneoID, participantsResource)
	if err := r.store.readJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc.Participants == nil {
		doc.Participants = []models.Participant{}
	}
	return &doc, nil
}

func (r *fileParticipantRepository) SaveDoc(_ context.Context, doc *models.ParticipantsDoc) error {
	path := r.store.resourcePath(doc.TournamentID, participantsResource)
	if err := r.store.writeJSON(path, doc); err != nil {
		return fmt.Errorf("failed to save participants for tournament %s: %w", doc.TournamentID, err)
	}
	return nil
}
