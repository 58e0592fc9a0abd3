package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/torneos-api/models"
)

const matchesResource = "partidos"

type MatchRepository interface {
	// GetDoc возвращает документ партидов турнира. ErrNotFound, если файла ещё нет.
	GetDoc(ctx context.Context, torneoID string) (*models.MatchesDoc, error)
	SaveDoc(ctx context.Context, doc *models.MatchesDoc) error
}

type fileMatchRepository struct {
	store *FileStore
}

func NewFileMatchRepository(store *FileStore) MatchRepository {
	return &fileMatchRepository{store: store}
}

func (r *fileMatchRepository) GetDoc(_ context.Context, torneoID string) (*models.MatchesDoc, error) {
	var doc models.MatchesDoc
	path := r.store.resourcePath(torneoID, matchesResource)
	if err := r.store.readJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc.Matches == nil {
		doc.Matches = []models.Match{}
	}
	return &doc, nil
}

func (r *fileMatchRepository) SaveDoc(_ context.Context, doc *models.MatchesDoc) error {
	path := r.store.resourcePath(doc.TournamentID, matchesResource)
	if err := r.store.writeJSON(path, doc); err != nil {
		return fmt.Errorf("failed to save matches for tournament %s: %w", doc.TournamentID, err)
	}
	return nil
}
