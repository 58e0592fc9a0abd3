package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dosada05/torneos-api/live"
	"github.com/Dosada05/torneos-api/models"
	"github.com/Dosada05/torneos-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	dataDir      string
	store        *repositories.FileStore
	tournaments  TournamentService
	participants ParticipantService
	matches      MatchService
	creds        CredentialService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	dataDir := t.TempDir()
	logger := testLogger()
	store := repositories.NewFileStore(dataDir)
	tournamentRepo := repositories.NewFileTournamentRepository(store)
	participantRepo := repositories.NewFileParticipantRepository(store)
	matchRepo := repositories.NewFileMatchRepository(store)
	creds := NewCredentialService("test-secret")
	hub := live.NewHub(logger)
	standings := NewStandingsService(participantRepo, matchRepo, logger)

	return &serviceFixture{
		dataDir:      dataDir,
		store:        store,
		tournaments:  NewTournamentService(store, tournamentRepo, participantRepo, matchRepo, creds, hub, logger),
		participants: NewParticipantService(store, tournamentRepo, participantRepo, standings, creds, hub, logger),
		matches:      NewMatchService(store, participantRepo, matchRepo, standings, hub, logger),
		creds:        creds,
	}
}

func (f *serviceFixture) createTournament(t *testing.T, name string, maxParticipants int) (*models.Tournament, string) {
	t.Helper()
	tournament, adminKey, err := f.tournaments.Create(context.Background(), CreateTournamentInput{
		Name:            name,
		Discipline:      models.DisciplineFutbol,
		Format:          "Liga",
		MaxParticipants: maxParticipants,
		Organizer:       "Club Deportivo",
	})
	require.NoError(t, err)
	return tournament, adminKey
}

func TestTournamentService_CreateAssignsIDAndKey(t *testing.T) {
	f := newServiceFixture(t)

	tournament, adminKey, err := f.tournaments.Create(context.Background(), CreateTournamentInput{
		Name:            "Copa Primavera",
		Discipline:      models.DisciplineCS2,
		Format:          "Eliminacion directa",
		MaxParticipants: 16,
		Organizer:       "Liga Gamer",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^\d{4}$`, tournament.ID)
	assert.Equal(t, models.StatusNotStarted, tournament.Status)
	assert.NotEmpty(t, tournament.CreatedAt)
	assert.Regexp(t, `^[a-z]+-[a-z]+-\d{4}$`, adminKey)
	assert.True(t, f.creds.VerifyKey(adminKey, tournament.AdminKeyHash))
}

func TestTournamentService_CreateValidationErrors(t *testing.T) {
	f := newServiceFixture(t)

	_, _, err := f.tournaments.Create(context.Background(), CreateTournamentInput{
		Name:            "   ",
		Discipline:      "ajedrez",
		Format:          "Liga",
		MaxParticipants: 1,
		Organizer:       "X",
	})
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "nombre")
	assert.Contains(t, v.Fields, "disciplina")
	assert.Contains(t, v.Fields, "nro_participantes")
}

func TestTournamentService_GetByIDNotFound(t *testing.T) {
	f := newServiceFixture(t)
	f.createTournament(t, "Copa A", 4)

	_, err := f.tournaments.GetByID(context.Background(), "9999")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentService_ListEmptyStore(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.tournaments.List(context.Background(), ListTournamentsFilter{})
	assert.ErrorIs(t, err, ErrTournamentsMissing)
}

func TestTournamentService_ListFilters(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.createTournament(t, "Copa Futbol", 4)
	_, _, err := f.tournaments.Create(ctx, CreateTournamentInput{
		Name:            "Copa LoL",
		Discipline:      models.DisciplineLoL,
		Format:          "Liga",
		MaxParticipants: 8,
		Organizer:       "Org",
	})
	require.NoError(t, err)

	all, err := f.tournaments.List(ctx, ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	lol := models.DisciplineLoL
	filtered, err := f.tournaments.List(ctx, ListTournamentsFilter{Discipline: &lol})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Copa LoL", filtered[0].Name)

	inProgress := models.StatusInProgress
	filtered, err = f.tournaments.List(ctx, ListTournamentsFilter{Status: &inProgress})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestTournamentService_Paginate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.createTournament(t, "Copa", 4)
	}

	page, err := f.tournaments.Paginate(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 5, page.Pagination.TotalRecords)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	// Последняя страница короче лимита.
	page, err = f.tournaments.Paginate(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	_, err = f.tournaments.Paginate(ctx, 4, 2)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	_, err = f.tournaments.Paginate(ctx, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidPagination)

	_, err = f.tournaments.Paginate(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPagination)
}

func TestTournamentService_PaginateEmptyStore(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	// Файла хранилища ещё нет.
	_, err := f.tournaments.Paginate(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrTournamentsMissing)

	// Файл существует, но массив пуст: последний турнир удалён.
	created, _ := f.createTournament(t, "Copa Unica", 4)
	_, err = f.tournaments.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = f.tournaments.Paginate(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrTournamentsMissing)
}

func TestTournamentService_UpdateAppliesPartialChanges(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	created, _ := f.createTournament(t, "Copa Vieja", 4)

	name := "Copa Nueva"
	status := models.StatusInProgress
	updated, err := f.tournaments.Update(ctx, created.ID, UpdateTournamentInput{
		Name:   &name,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "Copa Nueva", updated.Name)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	// Нетронутые поля сохраняются.
	assert.Equal(t, created.Discipline, updated.Discipline)
	assert.Equal(t, created.MaxParticipants, updated.MaxParticipants)

	reloaded, err := f.tournaments.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Copa Nueva", reloaded.Name)
	// Хеш админ-ключа переживает обновление.
	assert.Equal(t, created.AdminKeyHash, reloaded.AdminKeyHash)
}

func TestTournamentService_UpdateUnknownID(t *testing.T) {
	f := newServiceFixture(t)
	f.createTournament(t, "Copa", 4)

	name := "Nueva"
	_, err := f.tournaments.Update(context.Background(), "9999", UpdateTournamentInput{Name: &name})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentService_DeleteCascades(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	created, _ := f.createTournament(t, "Copa Borrable", 4)

	_, _, err := f.participants.Enroll(ctx, created.ID, "Alice")
	require.NoError(t, err)

	name, err := f.tournaments.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Copa Borrable", name)

	_, err = f.tournaments.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	// Каталог турнира удалён вместе с документами.
	_, statErr := os.Stat(filepath.Join(f.dataDir, created.ID))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTournamentService_VerifyAdminKey(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	created, adminKey := f.createTournament(t, "Copa Segura", 4)

	token, err := f.tournaments.VerifyAdminKey(ctx, created.ID, adminKey)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := f.creds.VerifyAdminToken(token, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.TournamentID)

	_, err = f.tournaments.VerifyAdminKey(ctx, created.ID, "pato-lago-0000")
	assert.ErrorIs(t, err, ErrInvalidAdminKey)

	_, err = f.tournaments.VerifyAdminKey(ctx, "9999", adminKey)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentService_GetResourceHidesParticipantHashes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	created, _ := f.createTournament(t, "Copa", 4)

	_, _, err := f.participants.Enroll(ctx, created.ID, "Alice")
	require.NoError(t, err)

	resource, err := f.tournaments.GetResource(ctx, created.ID, ResourceParticipants)
	require.NoError(t, err)

	raw, err := json.Marshal(resource)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "participante_key_hashed")
	assert.Contains(t, string(raw), "Alice")
}

func TestTournamentService_GetResourceInvalidName(t *testing.T) {
	f := newServiceFixture(t)
	created, _ := f.createTournament(t, "Copa", 4)

	_, err := f.tournaments.GetResource(context.Background(), created.ID, "arbitros")
	assert.ErrorIs(t, err, ErrInvalidResource)
}

func TestTournamentService_GetResourceMissingDoc(t *testing.T) {
	f := newServiceFixture(t)
	created, _ := f.createTournament(t, "Copa", 4)

	// Никто ещё не записался: документа участников нет.
	_, err := f.tournaments.GetResource(context.Background(), created.ID, ResourceParticipants)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
