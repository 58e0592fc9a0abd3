package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSequentialID(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{name: "empty list starts at 0001", existing: nil, want: "0001"},
		{name: "dense list", existing: []string{"0001", "0002", "0003"}, want: "0004"},
		{name: "sparse list keeps max+1", existing: []string{"0001", "0007"}, want: "0008"},
		{name: "unordered list", existing: []string{"0005", "0002"}, want: "0006"},
		{name: "non-numeric ids ignored", existing: []string{"abcd", "0002"}, want: "0003"},
		{name: "only non-numeric ids", existing: []string{"abcd"}, want: "0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextSequentialID(tt.existing))
		})
	}
}

func TestNewTournamentID_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		id, err := NewTournamentID(nil)
		require.NoError(t, err)
		assert.Regexp(t, `^\d{4}$`, id)
	}
}

func TestNewTournamentID_SkipsExisting(t *testing.T) {
	// Занята нижняя половина пространства: генератор обязан вернуть
	// значение из свободной верхней.
	existing := make(map[string]bool, 5000)
	for i := 0; i < 5000; i++ {
		existing[fmt.Sprintf("%04d", i)] = true
	}

	for attempt := 0; attempt < 20; attempt++ {
		id, err := NewTournamentID(existing)
		require.NoError(t, err)
		assert.False(t, existing[id], "generator returned an occupied id %s", id)
	}
}

func TestNewTournamentID_ExhaustedSpace(t *testing.T) {
	existing := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		existing[fmt.Sprintf("%04d", i)] = true
	}

	_, err := NewTournamentID(existing)
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
}
