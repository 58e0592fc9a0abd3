package repositories

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dosada05/torneos-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentRepository_MissingFileIsNotFound(t *testing.T) {
	store := NewFileStore(t.TempDir())
	repo := NewFileTournamentRepository(store)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTournamentRepository_MalformedJSONIsStructureInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "torneos.json"), []byte("{not json"), 0o644))

	repo := NewFileTournamentRepository(NewFileStore(dir))
	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, ErrStructureInvalid)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestTournamentRepository_NonArrayPayloadIsStructureInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "torneos.json"), []byte(`{"torneos": []}`), 0o644))

	repo := NewFileTournamentRepository(NewFileStore(dir))
	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, ErrStructureInvalid)
}

func TestTournamentRepository_RoundTripKeepsAdminKeyHashOnDiskOnly(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	repo := NewFileTournamentRepository(store)
	ctx := context.Background()

	tournament := models.Tournament{
		ID:              "0042",
		Name:            "Copa X",
		Discipline:      models.DisciplineFutbol,
		Format:          "Liga",
		Status:          models.StatusNotStarted,
		MaxParticipants: 8,
		Organizer:       "Club Y",
		AdminKeyHash:    "$2a$12$fakehashfortest",
		CreatedAt:       "2024-01-01T00:00:00Z",
	}
	require.NoError(t, repo.SaveAll(ctx, []models.Tournament{tournament}))

	// Хеш присутствует в файле...
	raw, err := os.ReadFile(filepath.Join(dir, "torneos.json"))
	require.NoError(t, err)
	var onDisk []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, "$2a$12$fakehashfortest", onDisk[0]["admin_key_hashed"])

	// ...и восстанавливается при чтении.
	loaded, err := repo.GetByID(ctx, "0042")
	require.NoError(t, err)
	assert.Equal(t, tournament.AdminKeyHash, loaded.AdminKeyHash)
	assert.Equal(t, tournament.Name, loaded.Name)

	// Но сериализация модели наружу хеш не содержит.
	apiJSON, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.NotContains(t, string(apiJSON), "admin_key_hashed")
	assert.NotContains(t, string(apiJSON), "fakehashfortest")
}

func TestTournamentRepository_GetByIDUnknown(t *testing.T) {
	store := NewFileStore(t.TempDir())
	repo := NewFileTournamentRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, []models.Tournament{{ID: "0001", Name: "A"}}))

	_, err := repo.GetByID(ctx, "9999")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestParticipantRepository_LazyDirectoryCreation(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileParticipantRepository(NewFileStore(dir))
	ctx := context.Background()

	doc := &models.ParticipantsDoc{
		TournamentID: "0042",
		Participants: []models.Participant{{ID: "0001", Name: "Alice"}},
	}
	require.NoError(t, repo.SaveDoc(ctx, doc))

	// Каталог турнира и файл документа созданы лениво при первой записи.
	_, err := os.Stat(filepath.Join(dir, "0042", "participantes-0042.json"))
	require.NoError(t, err)

	loaded, err := repo.GetDoc(ctx, "0042")
	require.NoError(t, err)
	assert.Equal(t, doc.Participants, loaded.Participants)
}

func TestMatchRepository_MissingDocIsNotFound(t *testing.T) {
	repo := NewFileMatchRepository(NewFileStore(t.TempDir()))

	_, err := repo.GetDoc(context.Background(), "0001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_RemoveTournamentData(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	participantRepo := NewFileParticipantRepository(store)
	matchRepo := NewFileMatchRepository(store)
	ctx := context.Background()

	require.NoError(t, participantRepo.SaveDoc(ctx, &models.ParticipantsDoc{TournamentID: "0042"}))
	require.NoError(t, matchRepo.SaveDoc(ctx, &models.MatchesDoc{TournamentID: "0042"}))

	require.NoError(t, store.RemoveTournamentData("0042"))

	_, err := os.Stat(filepath.Join(dir, "0042"))
	assert.True(t, os.IsNotExist(err))

	// Повторное удаление безвредно.
	assert.NoError(t, store.RemoveTournamentData("0042"))
}

func TestFileStore_WriteReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	repo := NewFileTournamentRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, []models.Tournament{{ID: "0001", Name: "v1"}}))
	require.NoError(t, repo.SaveAll(ctx, []models.Tournament{{ID: "0001", Name: "v2"}}))

	loaded, err := repo.GetByID(ctx, "0001")
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.Name)

	// Временные файлы записи не должны оставаться.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
