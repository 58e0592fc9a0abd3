package models

// Match представляет партидо между двумя участниками турнира.
// Resultado1/Resultado2 либо оба присутствуют (партидо сыграно),
// либо оба nil (ещё не сыграно).
type Match struct {
	ID             string `json:"partido_id"`
	Participant1ID string `json:"participante1_id"`
	Participant2ID string `json:"participante2_id"`
	Date           string `json:"fecha"`
	Venue          string `json:"jugado_en,omitempty"`
	Result1        *int   `json:"resultado1,omitempty"`
	Result2        *int   `json:"resultado2,omitempty"`
}

// Played сообщает, есть ли у партидо полный результат.
func (m Match) Played() bool {
	return m.Result1 != nil && m.Result2 != nil
}

// MatchesDoc — документ partidos-<id>.json целиком.
type MatchesDoc struct {
	TournamentID string  `json:"torneo_id"`
	Matches      []Match `json:"partidos"`
}
