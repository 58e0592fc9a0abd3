package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Общие ошибки сервисного слоя, используемые в маппинге HTTP.
var (
	// Ресурсы не найдены
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTournamentsMissing  = errors.New("no tournaments stored")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrResourceNotFound    = errors.New("resource not found")

	// Валидация и бизнес-правила
	ErrInvalidResource     = errors.New("invalid resource name")
	ErrInvalidPagination   = errors.New("invalid pagination parameters")
	ErrPageOutOfRange      = errors.New("page index out of range")
	ErrTournamentFull      = errors.New("tournament has reached its participant capacity")
	ErrEnrollmentClosed    = errors.New("enrollment is only allowed before the tournament starts")
	ErrUploadInvalidFormat = errors.New("cover image format not allowed")
	ErrUploadTooLarge      = errors.New("cover image exceeds the size limit")

	// Конфликты
	ErrParticipantNameConflict = errors.New("participant name is already taken in this tournament")

	// Аутентификация и авторизация
	ErrInvalidAdminKey       = errors.New("invalid admin key")
	ErrInvalidParticipantKey = errors.New("invalid participant key")
	ErrTokenInvalid          = errors.New("token is missing or malformed")
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenWrongTournament  = errors.New("token is not valid for this tournament")
	ErrCoverUploadForbidden  = errors.New("replacing a cover image requires an admin token")

	// Целостность данных
	ErrMissingAdminKeyHash = errors.New("tournament has no admin key hash stored")
)

// ValidationError собирает ошибки валидации входных данных по полям.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
