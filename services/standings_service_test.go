package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/Dosada05/torneos-api/models"
	"github.com/Dosada05/torneos-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newStandingsFixture(t *testing.T) (StandingsService, repositories.ParticipantRepository, repositories.MatchRepository) {
	t.Helper()
	store := repositories.NewFileStore(t.TempDir())
	participantRepo := repositories.NewFileParticipantRepository(store)
	matchRepo := repositories.NewFileMatchRepository(store)
	return NewStandingsService(participantRepo, matchRepo, testLogger()), participantRepo, matchRepo
}

func seedParticipants(t *testing.T, repo repositories.ParticipantRepository, torneoID string, names ...string) {
	t.Helper()
	doc := &models.ParticipantsDoc{TournamentID: torneoID}
	for _, name := range names {
		doc.Participants = append(doc.Participants, models.Participant{
			ID:   NextSequentialID(idsOf(doc.Participants)),
			Name: name,
		})
	}
	require.NoError(t, repo.SaveDoc(context.Background(), doc))
}

func idsOf(participants []models.Participant) []string {
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestRecompute_WinLossAndDraw(t *testing.T) {
	standings, participantRepo, matchRepo := newStandingsFixture(t)
	ctx := context.Background()

	seedParticipants(t, participantRepo, "0001", "Alice", "Bob", "Carol")
	require.NoError(t, matchRepo.SaveDoc(ctx, &models.MatchesDoc{
		TournamentID: "0001",
		Matches: []models.Match{
			{ID: "0001", Participant1ID: "0001", Participant2ID: "0002", Date: "2024-01-01", Result1: intPtr(3), Result2: intPtr(1)},
			{ID: "0002", Participant1ID: "0002", Participant2ID: "0003", Date: "2024-01-02", Result1: intPtr(2), Result2: intPtr(2)},
			{ID: "0003", Participant1ID: "0001", Participant2ID: "0003", Date: "2024-01-03"}, // sin resultado
		},
	}))

	doc, err := standings.Recompute(ctx, "0001")
	require.NoError(t, err)
	require.Len(t, doc.Participants, 3)

	alice, bob, carol := doc.Participants[0], doc.Participants[1], doc.Participants[2]

	assert.Equal(t, 1, alice.GamesPlayed)
	assert.Equal(t, 1, alice.Wins)
	assert.Equal(t, 3, alice.Points)

	assert.Equal(t, 2, bob.GamesPlayed)
	assert.Equal(t, 1, bob.Losses)
	assert.Equal(t, 1, bob.Draws)
	assert.Equal(t, 1, bob.Points)

	assert.Equal(t, 1, carol.GamesPlayed)
	assert.Equal(t, 1, carol.Draws)
	assert.Equal(t, 1, carol.Points)
}

func TestRecompute_Idempotent(t *testing.T) {
	standings, participantRepo, matchRepo := newStandingsFixture(t)
	ctx := context.Background()

	seedParticipants(t, participantRepo, "0001", "Alice", "Bob")
	require.NoError(t, matchRepo.SaveDoc(ctx, &models.MatchesDoc{
		TournamentID: "0001",
		Matches: []models.Match{
			{ID: "0001", Participant1ID: "0001", Participant2ID: "0002", Date: "2024-01-01", Result1: intPtr(5), Result2: intPtr(0)},
			{ID: "0002", Participant1ID: "0001", Participant2ID: "0002", Date: "2024-01-02", Result1: intPtr(1), Result2: intPtr(1)},
		},
	}))

	first, err := standings.Recompute(ctx, "0001")
	require.NoError(t, err)
	second, err := standings.Recompute(ctx, "0001")
	require.NoError(t, err)

	assert.Equal(t, first.Participants, second.Participants)
}

func TestRecompute_UnmatchedParticipantStaysZero(t *testing.T) {
	standings, participantRepo, matchRepo := newStandingsFixture(t)
	ctx := context.Background()

	seedParticipants(t, participantRepo, "0001", "Alice", "Bob", "Idle")
	require.NoError(t, matchRepo.SaveDoc(ctx, &models.MatchesDoc{
		TournamentID: "0001",
		Matches: []models.Match{
			{ID: "0001", Participant1ID: "0001", Participant2ID: "0002", Date: "2024-01-01", Result1: intPtr(2), Result2: intPtr(0)},
		},
	}))

	doc, err := standings.Recompute(ctx, "0001")
	require.NoError(t, err)

	idle := doc.Participants[2]
	assert.Zero(t, idle.GamesPlayed)
	assert.Zero(t, idle.Wins)
	assert.Zero(t, idle.Draws)
	assert.Zero(t, idle.Losses)
	assert.Zero(t, idle.Points)
}

func TestRecompute_WinLossSymmetry(t *testing.T) {
	standings, participantRepo, matchRepo := newStandingsFixture(t)
	ctx := context.Background()

	seedParticipants(t, participantRepo, "0001", "A", "B", "C", "D")
	require.NoError(t, matchRepo.SaveDoc(ctx, &models.MatchesDoc{
		TournamentID: "0001",
		Matches: []models.Match{
			{ID: "0001", Participant1ID: "0001", Participant2ID: "0002", Date: "d", Result1: intPtr(1), Result2: intPtr(0)},
			{ID: "0002", Participant1ID: "0003", Participant2ID: "0004", Date: "d", Result1: intPtr(0), Result2: intPtr(4)},
			{ID: "0003", Participant1ID: "0001", Participant2ID: "0003", Date: "d", Result1: intPtr(2), Result2: intPtr(3)},
		},
	}))

	doc, err := standings.Recompute(ctx, "0001")
	require.NoError(t, err)

	totalWins, totalLosses := 0, 0
	for _, p := range doc.Participants {
		totalWins += p.Wins
		totalLosses += p.Losses
	}
	assert.Equal(t, totalWins, totalLosses)
}

func TestRecompute_SkipsOrphanMatches(t *testing.T) {
	standings, participantRepo, matchRepo := newStandingsFixture(t)
	ctx := context.Background()

	seedParticipants(t, participantRepo, "0001", "Alice", "Bob")
	require.NoError(t, matchRepo.SaveDoc(ctx, &models.MatchesDoc{
		TournamentID: "0001",
		Matches: []models.Match{
			// Участник 0009 не существует: партидо пропускается целиком.
			{ID: "0001", Participant1ID: "0001", Participant2ID: "0009", Date: "d", Result1: intPtr(7), Result2: intPtr(0)},
			{ID: "0002", Participant1ID: "0001", Participant2ID: "0002", Date: "d", Result1: intPtr(1), Result2: intPtr(0)},
		},
	}))

	doc, err := standings.Recompute(ctx, "0001")
	require.NoError(t, err)

	alice := doc.Participants[0]
	assert.Equal(t, 1, alice.GamesPlayed)
	assert.Equal(t, 1, alice.Wins)
	assert.Equal(t, 3, alice.Points)
}

func TestRecompute_NoMatchesFileMeansEmptyHistory(t *testing.T) {
	standings, participantRepo, _ := newStandingsFixture(t)
	ctx := context.Background()

	seedParticipants(t, participantRepo, "0001", "Alice")

	doc, err := standings.Recompute(ctx, "0001")
	require.NoError(t, err)
	assert.Zero(t, doc.Participants[0].GamesPlayed)
}
