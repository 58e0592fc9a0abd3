package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

const idWidth = 4

// maxIDAttempts ограничивает перегенерацию при коллизиях случайных ID.
// При 10000 возможных значениях и разумном числе турниров 64 попыток хватает
// с запасом; исчерпание означает переполненное хранилище.
const maxIDAttempts = 64

var ErrIDSpaceExhausted = errors.New("could not allocate a unique tournament id")

// NewTournamentID генерирует случайный 4-значный ID, перегенерируя при
// коллизии с уже существующими.
func NewTournamentID(existing map[string]bool) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", fmt.Errorf("failed to generate tournament id: %w", err)
		}
		id := fmt.Sprintf("%0*d", idWidth, n)
		if !existing[id] {
			return id, nil
		}
	}
	return "", ErrIDSpaceExhausted
}

// NextSequentialID возвращает max(существующие)+1 с нулевым паддингом,
// база — "0001". Нечисловые ID игнорируются при поиске максимума, разреженный
// набор не дозаполняется: после удаления максимального элемента его номер
// может быть переиспользован, промежуточные — никогда.
func NextSequentialID(existing []string) string {
	max := 0
	for _, id := range existing {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%0*d", idWidth, max+1)
}
