package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/torneos-api/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	// List возвращает все турниры. ErrNotFound, если torneos.json отсутствует.
	List(ctx context.Context) ([]models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	// SaveAll перезаписывает torneos.json целиком.
	SaveAll(ctx context.Context, tournaments []models.Tournament) error
}

// storedTournament — представление турнира на диске. Внешнее поле
// admin_key_hashed затеняет json:"-" у модели, так хеш живёт только в файле.
type storedTournament struct {
	models.Tournament
	AdminKeyHash string `json:"admin_key_hashed,omitempty"`
}

type fileTournamentRepository struct {
	store *FileStore
}

func NewFileTournamentRepository(store *FileStore) TournamentRepository {
	return &fileTournamentRepository{store: store}
}

func (r *fileTournamentRepository) List(_ context.Context) ([]models.Tournament, error) {
	var stored []storedTournament
	if err := r.store.readJSON(r.store.tournamentsPath(), &stored); err != nil {
		return nil, err
	}
	tournaments := make([]models.Tournament, 0, len(stored))
	for _, st := range stored {
		t := st.Tournament
		t.AdminKeyHash = st.AdminKeyHash
		tournaments = append(tournaments, t)
	}
	return tournaments, nil
}

func (r *fileTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournaments, err := r.List(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	for i := range tournaments {
		if tournaments[i].ID == id {
			return &tournaments[i], nil
		}
	}
	return nil, ErrTournamentNotFound
}

func (r *fileTournamentRepository) SaveAll(_ context.Context, tournaments []models.Tournament) error {
	stored := make([]storedTournament, 0, len(tournaments))
	for _, t := range tournaments {
		st := storedTournament{Tournament: t, AdminKeyHash: t.AdminKeyHash}
		st.Tournament.AdminKeyHash = ""
		stored = append(stored, st)
	}
	if err := r.store.writeJSON(r.store.tournamentsPath(), stored); err != nil {
		return fmt.Errorf("failed to save tournaments: %w", err)
	}
	return nil
}
