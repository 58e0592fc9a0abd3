package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dosada05/torneos-api/services"
	"github.com/Dosada05/torneos-api/storage"
	"github.com/go-chi/chi/v5"
)

// maxCoverSize — предельный размер обложки турнира.
const maxCoverSize = 5 << 20 // 5MB

var allowedCoverExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type UploadHandler struct {
	tournamentService services.TournamentService
	creds             services.CredentialService
	uploader          storage.FileUploader
	dataDir           string
}

func NewUploadHandler(
	ts services.TournamentService,
	creds services.CredentialService,
	uploader storage.FileUploader,
	dataDir string,
) *UploadHandler {
	return &UploadHandler{
		tournamentService: ts,
		creds:             creds,
		uploader:          uploader,
		dataDir:           dataDir,
	}
}

// UploadCover обрабатывает POST /api/torneos/{id}/portada.
// Первая загрузка (сразу после создания турнира) не требует токена —
// у клиента в этот момент ещё нет сессии, только одноразовый admin_key.
// Замена существующей обложки уже требует админ-токен.
func (h *UploadHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	replacing := tournament.CoverURL != ""
	if replacing {
		if err := h.authorize(r, id); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverSize+4096)
	if err := r.ParseMultipartForm(maxCoverSize); err != nil {
		mapServiceErrorToHTTP(w, r, services.ErrUploadTooLarge)
		return
	}

	file, header, err := r.FormFile("portada")
	if err != nil {
		badRequestResponse(w, r, errors.New("multipart field 'portada' is required"))
		return
	}
	defer file.Close()

	if header.Size > maxCoverSize {
		mapServiceErrorToHTTP(w, r, services.ErrUploadTooLarge)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedCoverExtensions[ext]
	if !ok {
		mapServiceErrorToHTTP(w, r, fmt.Errorf("%w: %q", services.ErrUploadInvalidFormat, ext))
		return
	}

	key := fmt.Sprintf("torneos/%s/portada%s", id, ext)
	result, err := h.uploader.Upload(r.Context(), key, contentType, file)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := h.tournamentService.SetCoverURL(r.Context(), id, result.Location); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if replacing {
		status = http.StatusOK
	}
	response := jsonResponse{"portadaURL": result.Location}
	if err := writeJSON(w, status, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UploadHandler) authorize(r *http.Request, torneoID string) error {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return services.ErrCoverUploadForbidden
	}
	_, err := h.creds.VerifyAdminToken(parts[1], torneoID)
	return err
}

// ServeTournamentImage обрабатывает GET /api/imagenes/torneos/{id}/{archivo}
// при локальном драйвере хранения. Пути с ".." отвергаются.
func (h *UploadHandler) ServeTournamentImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	file := chi.URLParam(r, "archivo")

	if strings.Contains(id, "..") || strings.Contains(file, "..") ||
		strings.ContainsAny(id, `/\`) || strings.ContainsAny(file, `/\`) {
		badRequestResponse(w, r, errors.New("invalid image path"))
		return
	}

	path := filepath.Join(h.dataDir, id, file)
	if _, err := os.Stat(path); err != nil {
		notFoundResponse(w, r, "image not found")
		return
	}
	http.ServeFile(w, r, path)
}
