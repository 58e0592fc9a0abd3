package models

// Participant представляет участника турнира.
// Пять статистических полей — производные: их пересчитывает StandingsService
// по полной истории партидов, руками они не пишутся.
type Participant struct {
	ID           string `json:"id"`
	Name         string `json:"nombre"`
	KeyHash      string `json:"participante_key_hashed,omitempty"`
	CreatedAt    string `json:"creado_en"`
	GamesPlayed  int    `json:"partidos_jugados"`
	Wins         int    `json:"ganados"`
	Draws        int    `json:"empatados"`
	Losses       int    `json:"perdidos"`
	Points       int    `json:"puntos"`
}

// ParticipantsDoc — документ participantes-<id>.json целиком.
type ParticipantsDoc struct {
	TournamentID string        `json:"torneo_id"`
	Participants []Participant `json:"participantes"`
}

// ResetStats обнуляет производные поля перед пересчётом.
func (p *Participant) ResetStats() {
	p.GamesPlayed = 0
	p.Wins = 0
	p.Draws = 0
	p.Losses = 0
	p.Points = 0
}
