package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotFound — файл или запись отсутствуют.
	ErrNotFound = errors.New("record not found")
	// ErrStructureInvalid — документ на диске не соответствует ожидаемой форме.
	// Это проблема целостности данных, не ошибка клиента.
	ErrStructureInvalid = errors.New("stored document has invalid structure")
)

// tournamentsLockKey — ключ блокировки для общего списка торнео.
const tournamentsLockKey = "__torneos__"

// FileStore инкапсулирует доступ к JSON-файлам хранилища.
// Раскладка: <dataDir>/torneos.json плюс по каталогу на турнир:
// <dataDir>/<id>/participantes-<id>.json и <dataDir>/<id>/partidos-<id>.json.
//
// Цикл read-modify-write не атомарен, поэтому FileStore держит реестр
// мьютексов по torneo_id: мутирующие операции берут Lock(id) на всё время
// цикла, и гонка "последний писатель побеждает" из исходного дизайна уходит.
type FileStore struct {
	dataDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{
		dataDir: dataDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *FileStore) DataDir() string {
	return s.dataDir
}

func (s *FileStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Lock захватывает мьютекс турнира на время цикла read-modify-write.
func (s *FileStore) Lock(torneoID string) {
	s.lockFor(torneoID).Lock()
}

func (s *FileStore) Unlock(torneoID string) {
	s.lockFor(torneoID).Unlock()
}

// LockTournaments захватывает мьютекс общего списка торнео.
func (s *FileStore) LockTournaments() {
	s.lockFor(tournamentsLockKey).Lock()
}

func (s *FileStore) UnlockTournaments() {
	s.lockFor(tournamentsLockKey).Unlock()
}

func (s *FileStore) tournamentsPath() string {
	return filepath.Join(s.dataDir, "torneos.json")
}

// resourcePath — путь к документу ресурса турнира, например
// <dataDir>/0042/participantes-0042.json.
func (s *FileStore) resourcePath(torneoID, resource string) string {
	return filepath.Join(s.dataDir, torneoID, fmt.Sprintf("%s-%s.json", resource, torneoID))
}

// TournamentDir — каталог файлов конкретного турнира (создаётся лениво при записи).
func (s *FileStore) TournamentDir(torneoID string) string {
	return filepath.Join(s.dataDir, torneoID)
}

// RemoveTournamentData удаляет каталог турнира со всеми документами и
// загруженными изображениями. Каскад при удалении турнира.
func (s *FileStore) RemoveTournamentData(torneoID string) error {
	if err := os.RemoveAll(s.TournamentDir(torneoID)); err != nil {
		return fmt.Errorf("failed to remove tournament data dir: %w", err)
	}
	return nil
}

// readJSON читает и декодирует файл. Отсутствие файла — ErrNotFound,
// некорректный JSON или неподходящая форма — ErrStructureInvalid.
func (s *FileStore) readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStructureInvalid, filepath.Base(path), err)
	}
	return nil
}

// writeJSON сериализует документ целиком (с отступами, как исходные файлы)
// и заменяет файл через временный файл + rename. Каталог создаётся лениво.
func (s *FileStore) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
