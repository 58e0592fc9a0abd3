package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/torneos-api/repositories"
	"github.com/Dosada05/torneos-api/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: в Decode передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse логирует реальную причину и отдаёт клиенту общий 500
// с меткой времени, не раскрывая внутренностей.
func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	env := jsonResponse{
		"error":     "the server encountered a problem and could not process your request",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if werr := writeJSON(w, http.StatusInternalServerError, env, nil); werr != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, v *services.ValidationError) {
	env := jsonResponse{
		"error":    "validation failed",
		"detalles": v.Fields,
	}
	if err := writeJSON(w, http.StatusBadRequest, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "the requested resource could not be found"
	}
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
// Хендлеры со специфичной семантикой (например, create match, где
// неизвестный участник — это 400) перехватывают свои случаи до вызова.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		failedValidationResponse(w, r, validationErr)

	case errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrTournamentsMissing),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrResourceNotFound):
		notFoundResponse(w, r, err.Error())

	case errors.Is(err, services.ErrInvalidResource),
		errors.Is(err, services.ErrInvalidPagination),
		errors.Is(err, services.ErrPageOutOfRange),
		errors.Is(err, services.ErrTournamentFull),
		errors.Is(err, services.ErrEnrollmentClosed),
		errors.Is(err, services.ErrUploadInvalidFormat),
		errors.Is(err, services.ErrUploadTooLarge):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrParticipantNameConflict):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrInvalidAdminKey),
		errors.Is(err, services.ErrInvalidParticipantKey),
		errors.Is(err, services.ErrTokenInvalid),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrCoverUploadForbidden):
		unauthorizedResponse(w, r, err.Error())

	case errors.Is(err, services.ErrTokenWrongTournament):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, repositories.ErrStructureInvalid),
		errors.Is(err, services.ErrMissingAdminKeyHash):
		// Целостность хранилища нарушена: это наша проблема, не клиента.
		serverErrorResponse(w, r, err)

	default:
		serverErrorResponse(w, r, err)
	}
}
