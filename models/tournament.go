package models

// Discipline представляет дисциплину турнира, значения соответствуют JSON в хранилище.
type Discipline string

const (
	DisciplineFutbol Discipline = "futbol"
	DisciplineCS2    Discipline = "counter_strike_2"
	DisciplineVolley Discipline = "volley"
	DisciplineLoL    Discipline = "league_of_legends"
	DisciplineBasket Discipline = "basket"
)

var validDisciplines = map[Discipline]bool{
	DisciplineFutbol: true,
	DisciplineCS2:    true,
	DisciplineVolley: true,
	DisciplineLoL:    true,
	DisciplineBasket: true,
}

func (d Discipline) Valid() bool {
	return validDisciplines[d]
}

// TournamentStatus представляет статус турнира (числовой код в хранилище).
type TournamentStatus int

const (
	StatusNotStarted TournamentStatus = 0
	StatusInProgress TournamentStatus = 1
	StatusFinished   TournamentStatus = 2
)

func (s TournamentStatus) Valid() bool {
	return s >= StatusNotStarted && s <= StatusFinished
}

// Tournament представляет турнир.
// AdminKeyHash помечен json:"-": хеш админ-ключа никогда не попадает в
// HTTP-ответы, на диск его кладёт репозиторий через своё stored-представление.
type Tournament struct {
	ID              string           `json:"torneo_id"`
	Name            string           `json:"nombre"`
	Discipline      Discipline       `json:"disciplina"`
	Format          string           `json:"formato"`
	Status          TournamentStatus `json:"estado"`
	MaxParticipants int              `json:"nro_participantes"`
	Organizer       string           `json:"organizador"`
	Prize           string           `json:"premio,omitempty"`
	StartDate       string           `json:"fecha_inicio,omitempty"`
	EndDate         string           `json:"fecha_fin,omitempty"`
	Description     string           `json:"descripcion,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	CoverURL        string           `json:"portadaURL,omitempty"`
	AdminKeyHash    string           `json:"-"`
	CreatedAt       string           `json:"creado_en"`
}
